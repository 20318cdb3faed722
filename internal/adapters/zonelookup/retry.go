package zonelookup

import (
	"context"
	"time"
)

// RetryConfig defines retry behavior for upstream calls.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig is used for any zero field of Options.Retry.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 4,
	InitialWait: 200 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Multiplier:  2.0,
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultRetryConfig.MaxAttempts
	}
	if c.InitialWait <= 0 {
		c.InitialWait = DefaultRetryConfig.InitialWait
	}
	if c.MaxWait <= 0 {
		c.MaxWait = DefaultRetryConfig.MaxWait
	}
	if c.Multiplier < 1 {
		c.Multiplier = DefaultRetryConfig.Multiplier
	}
	return c
}

// next returns the wait that follows wait, capped at MaxWait.
func (c RetryConfig) next(wait time.Duration) time.Duration {
	n := time.Duration(float64(wait) * c.Multiplier)
	if n > c.MaxWait {
		return c.MaxWait
	}
	return n
}

// Do calls op until it succeeds, returns an error shouldRetry rejects, or
// MaxAttempts is reached. The last error from op is returned. Waiting between
// attempts stops early when ctx is done.
func (c RetryConfig) Do(ctx context.Context, shouldRetry func(error) bool, op func() error) error {
	c = c.withDefaults()
	wait := c.InitialWait

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op()
		if err == nil || attempt >= c.MaxAttempts || !shouldRetry(err) {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait = c.next(wait)
	}
}
