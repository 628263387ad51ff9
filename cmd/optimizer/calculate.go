package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/service"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

func runCalculate(c *cli.Context, cfg *config.Config) error {
	path := c.String("file")

	calcCfg := cfg.Engine.CalculationDefaults()
	calcCfg.ForecastingPeriod = domain.ForecastingPeriod(c.String("forecasting-period"))
	calcCfg.ReorderQuantityApproach = domain.ReorderQuantityApproach(c.String("reorder-approach"))
	if err := calcCfg.Validate(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	items, err := upload.ParseFile(path, f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := upload.Validate(items); err != nil {
		return err
	}

	report := service.BuildReport(items, calcCfg, c.Int("limit"))
	logger.Log.Info().
		Str("file", path).
		Int("items", report.TotalItems).
		Int("failed", report.Summary.FailedItems).
		Msg("calculation finished")

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
