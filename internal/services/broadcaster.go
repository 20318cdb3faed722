package services

import (
	"context"
	"cruise-status-service/internal/ports"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Broadcaster periodically computes every ship's status and hands the records
// to a publisher. A failed round is logged and the next tick tries again.
type Broadcaster struct {
	Service   *StatusService
	Publisher ports.StatusPublisher
	Interval  time.Duration
	Now       func() time.Time
}

// Run publishes once immediately and then on every tick until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.Service == nil || b.Publisher == nil {
		return errors.New("broadcaster: service and publisher are required")
	}
	if b.Interval <= 0 {
		return errors.New("broadcaster: interval must be positive")
	}

	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for {
		if err := b.Broadcast(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("status broadcast failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Broadcast computes and publishes one round of statuses.
func (b *Broadcaster) Broadcast(ctx context.Context) error {
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}

	statuses, err := b.Service.Statuses(ctx, now)
	if err != nil {
		return err
	}
	if err := b.Publisher.PublishStatuses(ctx, statuses); err != nil {
		return err
	}

	log.Debug().Int("ships", len(statuses)).Msg("statuses broadcast")
	return nil
}
