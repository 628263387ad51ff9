package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/drive"
	"github.com/andresuchdata/inventory-optimizer/internal/storage"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

func runDriveSync(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	folder := strings.TrimSpace(c.String("folder"))
	if folder == "" {
		return fmt.Errorf("--folder or GOOGLE_DRIVE_FOLDER_ID is required")
	}
	if strings.TrimSpace(cfg.Drive.CredentialsJSON) == "" {
		return fmt.Errorf("GOOGLE_DRIVE_CREDENTIALS_JSON env is required")
	}

	svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
	if err != nil {
		return fmt.Errorf("failed to create Drive service: %w", err)
	}

	folderID := folder
	if strings.Contains(folder, "/") {
		folderID, err = svc.FindFolderByPath(ctx, folder)
		if err != nil {
			return err
		}
	}

	files, err := drive.NewDownloader(svc).DownloadWorkbooks(ctx, drive.DownloadOptions{
		FolderID:    folderID,
		DownloadDir: c.String("dest"),
	})
	if err != nil {
		return fmt.Errorf("failed to download files from Drive: %w", err)
	}

	logger.Log.Info().Str("folder", folder).Int("files", len(files)).Msg("drive sync finished")
	return nil
}

func runStorageSync(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.Storage.Enabled {
		return fmt.Errorf("object storage is disabled; set STORAGE_ENABLED=true")
	}

	objects, err := storage.New(cfg.Storage)
	if err != nil {
		return err
	}

	dest := c.String("dest")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	infos, err := objects.ListObjects(ctx, c.String("prefix"))
	if err != nil {
		return fmt.Errorf("failed to list objects: %w", err)
	}

	var n int
	for _, obj := range infos {
		name := path.Base(obj.Key)
		if !upload.SupportedFile(name) {
			continue
		}
		if err := objects.DownloadObject(ctx, obj.Key, filepath.Join(dest, name)); err != nil {
			return fmt.Errorf("failed to download %s: %w", obj.Key, err)
		}
		n++
	}

	logger.Log.Info().Str("prefix", c.String("prefix")).Int("files", n).Msg("storage sync finished")
	return nil
}
