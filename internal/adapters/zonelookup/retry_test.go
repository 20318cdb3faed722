package zonelookup

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func retryTransient(err error) bool { return errors.Is(err, errTransient) }

func TestRetryConfigDefaults(t *testing.T) {
	c := RetryConfig{InitialWait: time.Millisecond}.withDefaults()

	if c.MaxAttempts != DefaultRetryConfig.MaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", c.MaxAttempts, DefaultRetryConfig.MaxAttempts)
	}
	if c.InitialWait != time.Millisecond {
		t.Errorf("InitialWait = %v, want 1ms", c.InitialWait)
	}
	if c.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2", c.Multiplier)
	}
}

func TestRetryConfigNextIsCapped(t *testing.T) {
	c := RetryConfig{MaxAttempts: 5, InitialWait: time.Second, MaxWait: 5 * time.Second, Multiplier: 2}

	tests := []struct {
		wait time.Duration
		want time.Duration
	}{
		{time.Second, 2 * time.Second},
		{2 * time.Second, 4 * time.Second},
		{4 * time.Second, 5 * time.Second},
		{5 * time.Second, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := c.next(tt.wait); got != tt.want {
			t.Errorf("next(%v) = %v, want %v", tt.wait, got, tt.want)
		}
	}
}

func TestRetryConfigDo(t *testing.T) {
	c := RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		results   []error
		wantCalls int
		wantErr   error
	}{
		{"succeeds first time", []error{nil}, 1, nil},
		{"recovers after transient", []error{errTransient, errTransient, nil}, 3, nil},
		{"gives up after max attempts", []error{errTransient, errTransient, errTransient, nil}, 3, errTransient},
		{"stops on permanent error", []error{permanent, nil}, 1, permanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := c.Do(context.Background(), retryTransient, func() error {
				err := tt.results[calls]
				calls++
				return err
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryConfigDoStopsWhenContextDone(t *testing.T) {
	c := RetryConfig{MaxAttempts: 10, InitialWait: time.Hour, MaxWait: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := c.Do(ctx, retryTransient, func() error {
		calls++
		cancel()
		return errTransient
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
