// Package policy runs both calculation engines over planning workbooks as a
// batch pipeline.
package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/engine/aggregate"
	"github.com/andresuchdata/inventory-optimizer/internal/engine/excelmatch"
	policyengine "github.com/andresuchdata/inventory-optimizer/internal/engine/policy"
	"github.com/andresuchdata/inventory-optimizer/internal/pipeline"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
)

const (
	EngineGeneral       = "general"
	EngineExcelMatching = "excel_matching"
)

// Config configures the workbook pipeline.
type Config struct {
	Calculation     domain.CalculationConfig
	InputDateFormat string
}

// Pipeline implements pipeline.Pipeline for planning workbooks.
type Pipeline struct {
	config  Config
	general *policyengine.Calculator
	excel   *excelmatch.Calculator
}

func NewPipeline(cfg Config) *Pipeline {
	if cfg.InputDateFormat == "" {
		cfg.InputDateFormat = "20060102"
	}
	return &Pipeline{
		config:  cfg,
		general: policyengine.NewCalculator(cfg.Calculation, nil),
		excel:   excelmatch.NewCalculator(cfg.Calculation),
	}
}

func (p *Pipeline) Name() string {
	return "inventory_policy"
}

func (p *Pipeline) GetOutputTable() string {
	return "policy_results"
}

// GetSnapshotDate reads the date from the start of the file name, falling
// back to the file's modification time.
func (p *Pipeline) GetSnapshotDate(path string) (time.Time, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	layout := p.config.InputDateFormat
	if len(base) >= len(layout) {
		if t, err := time.Parse(layout, base[:len(layout)]); err == nil {
			return t, nil
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("filename %s has no %s date and cannot be stat'ed: %w", path, layout, err)
	}
	return info.ModTime().UTC(), nil
}

// Validate performs basic validation on the input file.
func (p *Pipeline) Validate(inputFile string) error {
	info, err := os.Stat(inputFile)
	if err != nil {
		return fmt.Errorf("cannot stat input file %s: %w", inputFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, expected file", inputFile)
	}
	if !upload.SupportedFile(inputFile) {
		return fmt.Errorf("%s: %w", inputFile, upload.ErrUnsupportedFormat)
	}
	return nil
}

// Transform parses a workbook, validates it and emits one row per item per engine.
func (p *Pipeline) Transform(ctx context.Context, inputFile string) ([]pipeline.TransformedRow, error) {
	snapshot, err := p.GetSnapshotDate(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot date: %w", err)
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", inputFile, err)
	}
	defer f.Close()

	items, err := upload.ParseFile(inputFile, f)
	if err != nil {
		return nil, err
	}
	if err := upload.Validate(items); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	general := p.general.CalculateAll(items)
	excel := p.excel.CalculateAll(items)
	warehouses := aggregate.NewWarehouseIndex(items)

	source := filepath.Base(inputFile)
	date := snapshot.Format("2006-01-02")

	rows := make([]pipeline.TransformedRow, 0, len(items)*2)
	for _, r := range general {
		rows = append(rows, resultRow(source, date, EngineGeneral, warehouses.Warehouse(r.ID), r))
	}
	for _, r := range excel {
		row := resultRow(source, date, EngineExcelMatching, warehouses.Warehouse(r.ID), r.CalculationResult)
		row.Data["total_potential_units"] = r.TotalPotentialUnits
		row.Data["total_actual_stock_value"] = r.TotalActualStockValue
		row.Data["total_target_stock_value"] = r.TotalTargetStockValue
		rows = append(rows, row)
	}

	return rows, nil
}

func resultRow(source, date, engine, warehouse string, r domain.CalculationResult) pipeline.TransformedRow {
	return pipeline.TransformedRow{Data: map[string]interface{}{
		"source_file":             source,
		"snapshot_date":           date,
		"engine":                  engine,
		"item_id":                 r.ID,
		"warehouse":               warehouse,
		"status":                  string(r.Status),
		"failure":                 r.Failure,
		"cycle_stock":             r.CycleStock,
		"safety_stock":            r.SafetyStock,
		"target_safety_stock":     r.TargetSafetyStock,
		"in_transit_stock":        r.InTransitStock,
		"total_target_stock":      r.TotalTargetStock,
		"total_actual_stock":      r.TotalActualStock,
		"savings_potential":       r.SavingsPotential,
		"service_level":           r.ServiceLevel,
		"reorder_point":           r.ReorderPoint,
		"economic_order_quantity": r.EconomicOrderQuantity,
		"safety_factor":           r.SafetyFactorK,
	}}
}
