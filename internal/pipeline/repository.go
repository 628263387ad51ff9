package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// RunTracker records pipeline runs and file jobs.
type RunTracker interface {
	CreatePipelineRun(ctx context.Context, run *PipelineRun) error
	UpdatePipelineRun(ctx context.Context, run *PipelineRun) error
	GetPipelineRunByDate(ctx context.Context, pipelineName string, date time.Time) (*PipelineRun, error)
	CreateFileJob(ctx context.Context, job *FileJob) error
	UpdateFileJob(ctx context.Context, job *FileJob) error
	IncrementProcessedFiles(ctx context.Context, runID int64) error
	AddRowCount(ctx context.Context, runID int64, count int) error
}

var trackingSchema = []string{
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id              BIGSERIAL PRIMARY KEY,
		pipeline_name   TEXT NOT NULL,
		date            DATE NOT NULL,
		status          TEXT NOT NULL,
		total_files     INTEGER NOT NULL DEFAULT 0,
		processed_files INTEGER NOT NULL DEFAULT 0,
		total_rows      INTEGER NOT NULL DEFAULT 0,
		started_at      TIMESTAMPTZ NOT NULL,
		completed_at    TIMESTAMPTZ,
		error_message   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_file_jobs (
		id              BIGSERIAL PRIMARY KEY,
		pipeline_run_id BIGINT NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
		file_path       TEXT NOT NULL,
		status          TEXT NOT NULL,
		error_message   TEXT NOT NULL DEFAULT '',
		processed_at    TIMESTAMPTZ,
		retry_count     INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_name_date ON pipeline_runs (pipeline_name, date)`,
}

// OpenDB connects through the pgx database/sql driver.
func OpenDB(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Repository is the Postgres RunTracker.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the run tracking tables when they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range trackingSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply tracking schema: %w", err)
		}
	}
	return nil
}

type runRecord struct {
	ID             int64        `db:"id"`
	PipelineName   string       `db:"pipeline_name"`
	Date           time.Time    `db:"date"`
	Status         string       `db:"status"`
	TotalFiles     int          `db:"total_files"`
	ProcessedFiles int          `db:"processed_files"`
	TotalRows      int          `db:"total_rows"`
	StartedAt      time.Time    `db:"started_at"`
	CompletedAt    sql.NullTime `db:"completed_at"`
	ErrorMessage   string       `db:"error_message"`
}

func (rec runRecord) toRun() *PipelineRun {
	run := &PipelineRun{
		ID:             rec.ID,
		PipelineName:   rec.PipelineName,
		Date:           rec.Date,
		Status:         RunStatus(rec.Status),
		TotalFiles:     rec.TotalFiles,
		ProcessedFiles: rec.ProcessedFiles,
		TotalRows:      rec.TotalRows,
		StartedAt:      rec.StartedAt,
		ErrorMessage:   rec.ErrorMessage,
	}
	if rec.CompletedAt.Valid {
		t := rec.CompletedAt.Time
		run.CompletedAt = &t
	}
	return run
}

func (r *Repository) CreatePipelineRun(ctx context.Context, run *PipelineRun) error {
	const q = `INSERT INTO pipeline_runs
		(pipeline_name, date, status, total_files, processed_files, total_rows, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	if err := r.db.GetContext(ctx, &run.ID, q,
		run.PipelineName, run.Date, string(run.Status), run.TotalFiles,
		run.ProcessedFiles, run.TotalRows, run.StartedAt,
	); err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePipelineRun(ctx context.Context, run *PipelineRun) error {
	const q = `UPDATE pipeline_runs
		SET status = $1, total_files = $2, completed_at = $3, error_message = $4
		WHERE id = $5`

	if _, err := r.db.ExecContext(ctx, q,
		string(run.Status), run.TotalFiles, run.CompletedAt, run.ErrorMessage, run.ID,
	); err != nil {
		return fmt.Errorf("failed to update pipeline run %d: %w", run.ID, err)
	}
	return nil
}

// GetPipelineRunByDate returns the latest run for the date, or nil when
// there is none.
func (r *Repository) GetPipelineRunByDate(ctx context.Context, pipelineName string, date time.Time) (*PipelineRun, error) {
	const q = `SELECT id, pipeline_name, date, status, total_files, processed_files,
		total_rows, started_at, completed_at, error_message
		FROM pipeline_runs
		WHERE pipeline_name = $1 AND date = $2
		ORDER BY id DESC
		LIMIT 1`

	var rec runRecord
	err := r.db.GetContext(ctx, &rec, q, pipelineName, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline run: %w", err)
	}
	return rec.toRun(), nil
}

func (r *Repository) CreateFileJob(ctx context.Context, job *FileJob) error {
	const q = `INSERT INTO pipeline_file_jobs (pipeline_run_id, file_path, status, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if err := r.db.GetContext(ctx, &job.ID, q,
		job.PipelineRunID, job.FilePath, string(job.Status), job.ErrorMessage,
	); err != nil {
		return fmt.Errorf("failed to create file job: %w", err)
	}
	return nil
}

func (r *Repository) UpdateFileJob(ctx context.Context, job *FileJob) error {
	const q = `UPDATE pipeline_file_jobs
		SET status = $1, error_message = $2, processed_at = $3, retry_count = $4
		WHERE id = $5`

	if _, err := r.db.ExecContext(ctx, q,
		string(job.Status), job.ErrorMessage, job.ProcessedAt, job.RetryCount, job.ID,
	); err != nil {
		return fmt.Errorf("failed to update file job %d: %w", job.ID, err)
	}
	return nil
}

func (r *Repository) IncrementProcessedFiles(ctx context.Context, runID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET processed_files = processed_files + 1 WHERE id = $1`, runID)
	return err
}

func (r *Repository) AddRowCount(ctx context.Context, runID int64, count int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET total_rows = total_rows + $1 WHERE id = $2`, count, runID)
	return err
}
