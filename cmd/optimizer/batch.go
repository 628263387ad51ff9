package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/pipeline"
	"github.com/andresuchdata/inventory-optimizer/internal/pipeline/policy"
	"github.com/andresuchdata/inventory-optimizer/internal/storage"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

func runBatch(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.Component("batch")

	files, err := workbooksIn(c.String("input-dir"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info().Str("dir", c.String("input-dir")).Msg("no workbooks found; nothing to process")
		return nil
	}

	var tracker pipeline.RunTracker
	if dbURL := c.String("db-url"); dbURL != "" {
		db, err := pipeline.OpenDB(ctx, dbURL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		repo := pipeline.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		tracker = repo
	} else {
		tracker = pipeline.NewMemoryTracker()
	}

	var flush pipeline.FlushFunc
	if c.Bool("upload-results") {
		objects, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		flush = uploadResult(objects)
	}

	impl := policy.NewPipeline(policy.Config{
		Calculation:     cfg.Engine.CalculationDefaults(),
		InputDateFormat: cfg.Pipeline.InputDateFormat,
	})

	pCfg := pipeline.DefaultConfig(impl.Name())
	pCfg.OutputDir = c.String("output-dir")
	pCfg.WorkerCount = c.Int("workers")
	if cfg.Pipeline.BatchSize > 0 {
		pCfg.BatchSize = cfg.Pipeline.BatchSize
	}

	log.Info().Int("files", len(files)).Str("output_dir", pCfg.OutputDir).Msg("starting policy pipeline")
	if err := pipeline.NewOrchestrator(tracker, pCfg, flush).Run(ctx, impl, files); err != nil {
		return fmt.Errorf("policy pipeline run failed: %w", err)
	}

	log.Info().Msg("policy pipeline completed successfully")
	return nil
}

// uploadResult pushes every flushed CSV to object storage under results/.
func uploadResult(objects storage.ObjectStorage) pipeline.FlushFunc {
	return func(ctx context.Context, csvPath string) error {
		data, err := os.ReadFile(csvPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", csvPath, err)
		}
		key := storage.ResultKey(filepath.Base(csvPath))
		if err := objects.UploadObject(ctx, key, data); err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
		logger.Log.Info().Str("key", key).Msg("uploaded result file")
		return nil
	}
}

// workbooksIn lists the supported workbooks directly inside dir, sorted by name.
func workbooksIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !upload.SupportedFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
