package repository

import (
	"context"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// CalculationRepository persists analytics runs and their per-item results.
type CalculationRepository interface {
	SaveRun(ctx context.Context, run *domain.CalculationRun, results []domain.CalculationResult) (int64, error)
	ListRuns(ctx context.Context, limit int) ([]domain.CalculationRun, error)
	GetRunResults(ctx context.Context, runID int64) ([]domain.CalculationResult, error)
}
