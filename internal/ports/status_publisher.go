package ports

import (
	"context"
	"cruise-status-service/internal/domain"
)

// Sink for computed status snapshots (feeds, dashboards).
type StatusPublisher interface {
	PublishStatuses(ctx context.Context, statuses []domain.StatusRecord) error
}
