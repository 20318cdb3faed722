package services

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/ports"
	"errors"
	"fmt"
	"time"
)

// Recorder for status computations.
type StatusMetrics interface {
	ObserveComputation(d time.Duration, statuses []domain.StatusRecord)
}

// StatusService loads rows, optionally enriches them and runs the engine.
// Every call reads the source again; nothing computed is retained.
type StatusService struct {
	Repo     ports.ScheduleRepository
	Engine   *Engine
	Enricher *ZoneEnricher
	Metrics  StatusMetrics
}

func NewStatusService(repo ports.ScheduleRepository, engine *Engine, enricher *ZoneEnricher, metrics StatusMetrics) *StatusService {
	return &StatusService{Repo: repo, Engine: engine, Enricher: enricher, Metrics: metrics}
}

func (s *StatusService) rows(ctx context.Context) ([]domain.ScheduleRow, error) {
	if s.Repo == nil || s.Engine == nil {
		return nil, errors.New("status service: repository and engine are required")
	}

	rows, err := s.Repo.ListRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("status service: list rows: %w", err)
	}

	if s.Enricher != nil {
		rows = s.Enricher.Enrich(ctx, rows)
	}
	return rows, nil
}

// Statuses computes the status of every ship at now.
func (s *StatusService) Statuses(ctx context.Context, now time.Time) ([]domain.StatusRecord, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	statuses := s.Engine.ComputeStatuses(ctx, rows, now)
	if s.Metrics != nil {
		s.Metrics.ObserveComputation(time.Since(start), statuses)
	}
	return statuses, nil
}

// ShipStatus computes the status of one ship at now. The bool is false when
// the source holds no rows for ship.
func (s *StatusService) ShipStatus(ctx context.Context, ship string, now time.Time) (domain.StatusRecord, bool, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return domain.StatusRecord{}, false, err
	}

	rec, ok := s.Engine.ShipStatus(ctx, rows, ship, now)
	return rec, ok, nil
}

// ShipSchedule returns the reconciled stops of one ship.
func (s *StatusService) ShipSchedule(ctx context.Context, ship string) (domain.ShipSchedule, bool, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return domain.ShipSchedule{}, false, err
	}

	sched, ok := s.Engine.Schedule(rows, ship)
	return sched, ok, nil
}
