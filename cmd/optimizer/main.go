package main

import (
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

func main() {
	cfg := config.Load()

	app := &cli.App{
		Name:  "optimizer",
		Usage: "Compute inventory policies from planning workbooks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (console or json)",
				Value:   cfg.Log.Format,
				EnvVars: []string{"LOG_FORMAT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetFormat(c.String("log-format"))
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "calculate",
				Usage: "Run both engines over one workbook and print the report as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Workbook to calculate (.xlsx, .xls or .csv)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "forecasting-period",
						Usage: "Period of one demand observation (daily, weekly, monthly)",
						Value: cfg.Engine.ForecastingPeriod,
					},
					&cli.StringFlag{
						Name:  "reorder-approach",
						Usage: `Order quantity approach ("EOQ" or "Direct input")`,
						Value: cfg.Engine.ReorderQuantityApproach,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Cap on per-item results in the output (0 prints all)",
					},
				},
				Action: func(c *cli.Context) error {
					return runCalculate(c, cfg)
				},
			},
			{
				Name:  "batch",
				Usage: "Run the policy pipeline over every workbook in a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input-dir",
						Usage:    "Directory containing planning workbooks",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "db-url",
						Usage:   "Database connection string for run tracking (optional)",
						EnvVars: []string{"DATABASE_URL"},
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory for result CSVs",
						Value: cfg.Pipeline.OutputDir,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers",
						Value: defaultWorkers(cfg.Pipeline.WorkerCount),
					},
					&cli.BoolFlag{
						Name:  "upload-results",
						Usage: "Upload result CSVs to object storage",
						Value: cfg.Storage.Enabled,
					},
				},
				Action: func(c *cli.Context) error {
					return runBatch(c, cfg)
				},
			},
			{
				Name:  "drive-sync",
				Usage: "Download planning workbooks from a Google Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "folder",
						Usage:   "Drive folder id, or a folder path like Plans/2024",
						Value:   cfg.Drive.FolderID,
						EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"},
					},
					&cli.StringFlag{
						Name:     "dest",
						Usage:    "Local directory to download into",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					return runDriveSync(c, cfg)
				},
			},
			{
				Name:  "storage-sync",
				Usage: "Download archived workbooks from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix",
						Value: "uploads/",
					},
					&cli.StringFlag{
						Name:     "dest",
						Usage:    "Local directory to download into",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					return runStorageSync(c, cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("optimizer failed")
	}
}

func defaultWorkers(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.NumCPU()
}
