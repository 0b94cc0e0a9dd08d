package repositories

import (
	"context"

	"sigedoc/internal/domain/models"
)

// ActaRepository defines persistence operations for meeting records.
// UpdateStatus only succeeds when the current status is one of the
// allowed source states, which keeps the lifecycle monotone even under
// concurrent writers.
type ActaRepository interface {
	Create(ctx context.Context, acta *models.Acta) error
	GetByID(ctx context.Context, id string) (*models.Acta, error)
	List(ctx context.Context) ([]models.Acta, error)
	UpdateStatus(ctx context.Context, id string, from []models.Status, to models.Status) error
	Delete(ctx context.Context, id string) error
}
