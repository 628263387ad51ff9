package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

const defaultRunListLimit = 20

type calculationRepository struct {
	db *DB
}

func NewCalculationRepository(db *DB) *calculationRepository {
	return &calculationRepository{db: db}
}

// SaveRun stores the run header and every result in one transaction.
func (r *calculationRepository) SaveRun(ctx context.Context, run *domain.CalculationRun, results []domain.CalculationResult) (int64, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO calculation_runs (
				session_id, config, summary, excel_summary, total_items, failed_items
			) VALUES ($1, $2::jsonb, $3::jsonb, $4::jsonb, $5, $6)
			RETURNING id, created_at
		`
		err := tx.QueryRowContext(ctx, query,
			run.SessionID,
			string(run.Config),
			string(run.Summary),
			string(run.ExcelSummary),
			run.TotalItems,
			run.FailedItems,
		).Scan(&run.ID, &run.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert calculation run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO calculation_results (
				run_id, position, item_id, cycle_stock, safety_stock, target_safety_stock,
				in_transit_stock, total_target_stock, total_actual_stock, savings_potential,
				service_level, reorder_point, economic_order_quantity, safety_factor_k,
				status, failure
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, res := range results {
			_, err := stmt.ExecContext(ctx,
				run.ID, i, res.ID,
				res.CycleStock, res.SafetyStock, res.TargetSafetyStock,
				res.InTransitStock, res.TotalTargetStock, res.TotalActualStock,
				res.SavingsPotential, res.ServiceLevel, res.ReorderPoint,
				res.EconomicOrderQuantity, res.SafetyFactorK,
				string(res.Status), res.Failure,
			)
			if err != nil {
				return fmt.Errorf("failed to insert result %s: %w", res.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs first.
func (r *calculationRepository) ListRuns(ctx context.Context, limit int) ([]domain.CalculationRun, error) {
	if limit <= 0 {
		limit = defaultRunListLimit
	}

	query := `
		SELECT id, session_id, config, summary, excel_summary, total_items, failed_items, created_at
		FROM calculation_runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	var rows []runRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list calculation runs: %w", err)
	}

	runs := make([]domain.CalculationRun, len(rows))
	for i, row := range rows {
		runs[i] = row.toDomain()
	}
	return runs, nil
}

// runRow scans jsonb columns into plain byte slices, which database/sql copies
// out of the driver buffer.
type runRow struct {
	ID           int64     `db:"id"`
	SessionID    string    `db:"session_id"`
	Config       []byte    `db:"config"`
	Summary      []byte    `db:"summary"`
	ExcelSummary []byte    `db:"excel_summary"`
	TotalItems   int       `db:"total_items"`
	FailedItems  int       `db:"failed_items"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r runRow) toDomain() domain.CalculationRun {
	return domain.CalculationRun{
		ID:           r.ID,
		SessionID:    r.SessionID,
		Config:       r.Config,
		Summary:      r.Summary,
		ExcelSummary: r.ExcelSummary,
		TotalItems:   r.TotalItems,
		FailedItems:  r.FailedItems,
		CreatedAt:    r.CreatedAt,
	}
}

// GetRunResults returns a run's results in their original order.
func (r *calculationRepository) GetRunResults(ctx context.Context, runID int64) ([]domain.CalculationResult, error) {
	query := `
		SELECT item_id, cycle_stock, safety_stock, target_safety_stock, in_transit_stock,
		       total_target_stock, total_actual_stock, savings_potential, service_level,
		       reorder_point, economic_order_quantity, safety_factor_k, status, failure
		FROM calculation_results
		WHERE run_id = $1
		ORDER BY position
	`

	var results []domain.CalculationResult
	if err := sqlx.SelectContext(ctx, r.db, &results, query, runID); err != nil {
		return nil, fmt.Errorf("failed to load results for run %d: %w", runID, err)
	}
	return results, nil
}
