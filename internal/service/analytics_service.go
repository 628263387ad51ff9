package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/cache"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/engine/aggregate"
	"github.com/andresuchdata/inventory-optimizer/internal/engine/excelmatch"
	"github.com/andresuchdata/inventory-optimizer/internal/engine/policy"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
)

const (
	defaultResultPreview = 100
	defaultRunsLimit     = 20
)

// ReplaceRequest replaces the configuration and/or the dataset of a session.
// Nil fields are left untouched.
type ReplaceRequest struct {
	Config *domain.CalculationConfig `json:"config"`
	Data   []domain.InputItem        `json:"data"`
}

type AnalyticsService struct {
	sessions    cache.SessionStore
	runs        repository.CalculationRepository
	defaults    domain.CalculationConfig
	resultLimit int
}

// NewAnalyticsService creates the analytics service. runs may be nil, in
// which case run persistence answers ErrPersistenceDisabled.
func NewAnalyticsService(sessions cache.SessionStore, runs repository.CalculationRepository, defaults domain.CalculationConfig, resultLimit int) *AnalyticsService {
	if resultLimit <= 0 {
		resultLimit = defaultResultPreview
	}
	return &AnalyticsService{
		sessions:    sessions,
		runs:        runs,
		defaults:    defaults,
		resultLimit: resultLimit,
	}
}

// BuildReport runs both engines over items. Result lists are capped at limit
// when limit is positive; summaries always cover every item.
func BuildReport(items []domain.InputItem, cfg domain.CalculationConfig, limit int) *domain.AnalyticsReport {
	general := policy.NewCalculator(cfg, nil)
	excel := excelmatch.NewCalculator(cfg)

	results := general.CalculateAll(items)
	excelResults := excel.CalculateAll(items)

	return &domain.AnalyticsReport{
		HasData:                 len(items) > 0,
		Summary:                 general.Summary(results),
		ExcelSummary:            excel.Summary(excelResults),
		Results:                 head(results, limit),
		ExcelResults:            head(excelResults, limit),
		WarehouseSummaries:      aggregate.ByWarehouse(items, results),
		ExcelWarehouseSummaries: aggregate.ExcelByWarehouse(items, excelResults),
		Config:                  cfg,
		TotalItems:              len(items),
	}
}

// Config returns the session configuration, or the defaults for a new session.
func (s *AnalyticsService) Config(ctx context.Context, sessionID string) (domain.CalculationConfig, error) {
	session, err := loadSession(ctx, s.sessions, sessionID, s.defaults)
	if err != nil {
		return domain.CalculationConfig{}, err
	}
	return session.Config, nil
}

// SetConfig validates and stores a configuration for the session.
func (s *AnalyticsService) SetConfig(ctx context.Context, sessionID string, cfg domain.CalculationConfig) (domain.CalculationConfig, error) {
	if err := cfg.Validate(); err != nil {
		return domain.CalculationConfig{}, err
	}
	session, err := loadSession(ctx, s.sessions, sessionID, s.defaults)
	if err != nil {
		return domain.CalculationConfig{}, err
	}
	session.Config = cfg
	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, sessionID, session); err != nil {
		return domain.CalculationConfig{}, fmt.Errorf("failed to save session: %w", err)
	}
	return cfg, nil
}

// Replace swaps the configuration and/or dataset of a session in one step.
// Nothing is stored unless every supplied part is valid.
func (s *AnalyticsService) Replace(ctx context.Context, sessionID string, req ReplaceRequest) error {
	if req.Config != nil {
		if err := req.Config.Validate(); err != nil {
			return err
		}
	}
	if req.Data != nil {
		if err := upload.Validate(req.Data); err != nil {
			return err
		}
	}

	session, err := loadSession(ctx, s.sessions, sessionID, s.defaults)
	if err != nil {
		return err
	}
	if req.Config != nil {
		session.Config = *req.Config
	}
	if req.Data != nil {
		session.Items = req.Data
	}
	session.UpdatedAt = time.Now()

	if err := s.sessions.Save(ctx, sessionID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Report computes the analytics of the session dataset.
func (s *AnalyticsService) Report(ctx context.Context, sessionID string) (*domain.AnalyticsReport, error) {
	session, err := loadSession(ctx, s.sessions, sessionID, s.defaults)
	if err != nil {
		return nil, err
	}
	if !session.HasData() {
		return nil, ErrNoData
	}
	return BuildReport(session.Items, session.Config, s.resultLimit), nil
}

// SaveRun computes the session analytics and persists the run with every
// per-item result.
func (s *AnalyticsService) SaveRun(ctx context.Context, sessionID string) (*domain.CalculationRun, error) {
	if s.runs == nil {
		return nil, ErrPersistenceDisabled
	}

	session, err := loadSession(ctx, s.sessions, sessionID, s.defaults)
	if err != nil {
		return nil, err
	}
	if !session.HasData() {
		return nil, ErrNoData
	}

	report := BuildReport(session.Items, session.Config, 0)
	run, err := domain.NewCalculationRun(sessionID, report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run: %w", err)
	}

	id, err := s.runs.SaveRun(ctx, run, report.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	run.ID = id
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	log.Info().
		Int64("run_id", id).
		Str("session_id", sessionID).
		Int("items", run.TotalItems).
		Int("failed", run.FailedItems).
		Msg("analytics: run saved")

	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *AnalyticsService) ListRuns(ctx context.Context, limit int) ([]domain.CalculationRun, error) {
	if s.runs == nil {
		return nil, ErrPersistenceDisabled
	}
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if runs == nil {
		runs = []domain.CalculationRun{}
	}
	return runs, nil
}

// RunResults returns the per-item results stored with a run.
func (s *AnalyticsService) RunResults(ctx context.Context, runID int64) ([]domain.CalculationResult, error) {
	if s.runs == nil {
		return nil, ErrPersistenceDisabled
	}
	results, err := s.runs.GetRunResults(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if len(results) == 0 {
		return nil, ErrRunNotFound
	}
	return results, nil
}
