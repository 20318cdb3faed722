package ports

import (
	"context"
	"cruise-status-service/internal/domain"
)

// Port: a boundary for retrieving raw itinerary rows from a data source.
type ScheduleRepository interface {
	// Retrieve every schedule row. An unreadable source is an error.
	ListRows(ctx context.Context) ([]domain.ScheduleRow, error)
}
