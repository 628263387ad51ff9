package domain

import (
	"encoding/json"
	"time"
)

// AnalyticsReport is the combined output of both calculation engines for one
// dataset, as served to the dashboard.
type AnalyticsReport struct {
	HasData                 bool                  `json:"hasData"`
	Summary                 PortfolioSummary      `json:"summary"`
	ExcelSummary            ExcelSummary          `json:"excelSummary"`
	Results                 []CalculationResult   `json:"results"`
	ExcelResults            []ExcelMatchingResult `json:"excelResults"`
	WarehouseSummaries      []WarehouseSummary    `json:"warehouseSummaries"`
	ExcelWarehouseSummaries []WarehouseSummary    `json:"excelWarehouseSummaries"`
	Config                  CalculationConfig     `json:"config"`
	TotalItems              int                   `json:"totalItems"`
}

// CalculationRun is a persisted analytics computation.
type CalculationRun struct {
	ID           int64           `json:"id" db:"id"`
	SessionID    string          `json:"sessionId" db:"session_id"`
	Config       json.RawMessage `json:"config" db:"config"`
	Summary      json.RawMessage `json:"summary" db:"summary"`
	ExcelSummary json.RawMessage `json:"excelSummary" db:"excel_summary"`
	TotalItems   int             `json:"totalItems" db:"total_items"`
	FailedItems  int             `json:"failedItems" db:"failed_items"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// NewCalculationRun snapshots a report for persistence.
func NewCalculationRun(sessionID string, report *AnalyticsReport) (*CalculationRun, error) {
	cfg, err := json.Marshal(report.Config)
	if err != nil {
		return nil, err
	}
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return nil, err
	}
	excel, err := json.Marshal(report.ExcelSummary)
	if err != nil {
		return nil, err
	}
	return &CalculationRun{
		SessionID:    sessionID,
		Config:       cfg,
		Summary:      summary,
		ExcelSummary: excel,
		TotalItems:   report.TotalItems,
		FailedItems:  report.Summary.FailedItems,
	}, nil
}
