// Package store persists completed screening runs.
package store

import (
	"context"

	"github.com/consciencex/lhb-ubo/internal/ubo/models"
)

// RunStore persists screening results. Lookups for unknown run IDs return
// sentinel.ErrNotFound.
type RunStore interface {
	Save(ctx context.Context, result *models.ScreeningResult) error
	FindByID(ctx context.Context, runID string) (*models.ScreeningResult, error)
	ListByCompany(ctx context.Context, registrationID string) ([]*models.ScreeningResult, error)
	Count(ctx context.Context) (int, error)
}
