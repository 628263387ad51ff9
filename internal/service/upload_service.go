package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/cache"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/storage"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
)

const defaultUploadPreview = 5

// UploadResult is returned after a workbook has been accepted.
type UploadResult struct {
	SessionID string             `json:"sessionId"`
	FileName  string             `json:"fileName"`
	RowCount  int                `json:"rowCount"`
	Preview   []domain.InputItem `json:"preview"`
}

// UploadStatus describes the dataset currently held by a session.
type UploadStatus struct {
	HasData  bool               `json:"hasData"`
	FileName string             `json:"fileName,omitempty"`
	RowCount int                `json:"rowCount"`
	Data     []domain.InputItem `json:"data"`
}

type UploadService struct {
	sessions     cache.SessionStore
	storage      storage.ObjectStorage
	defaults     domain.CalculationConfig
	previewLimit int
	now          func() time.Time
}

// NewUploadService creates the upload service. A nil object storage skips archiving.
func NewUploadService(sessions cache.SessionStore, store storage.ObjectStorage, defaults domain.CalculationConfig, previewLimit int) *UploadService {
	if store == nil {
		store = storage.Noop{}
	}
	if previewLimit <= 0 {
		previewLimit = defaultUploadPreview
	}
	return &UploadService{
		sessions:     sessions,
		storage:      store,
		defaults:     defaults,
		previewLimit: previewLimit,
		now:          time.Now,
	}
}

// Upload parses and validates a workbook and replaces the session dataset
// with it. The session configuration is kept.
func (s *UploadService) Upload(ctx context.Context, sessionID, fileName string, data []byte) (*UploadResult, error) {
	if !upload.SupportedFile(fileName) {
		return nil, fmt.Errorf("%s: %w", fileName, upload.ErrUnsupportedFormat)
	}

	items, err := upload.ParseFile(fileName, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	if err := upload.Validate(items); err != nil {
		return nil, err
	}

	session, err := loadSession(ctx, s.sessions, sessionID, s.defaults)
	if err != nil {
		return nil, err
	}
	now := s.now()
	session.Items = items
	session.FileName = fileName
	session.UpdatedAt = now

	if err := s.sessions.Save(ctx, sessionID, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	key := storage.UploadKey(sessionID, fileName, now)
	if err := s.storage.UploadObject(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("upload: archiving workbook failed")
	}

	log.Info().
		Str("session_id", sessionID).
		Str("file", fileName).
		Int("rows", len(items)).
		Msg("upload: dataset stored")

	return &UploadResult{
		SessionID: sessionID,
		FileName:  fileName,
		RowCount:  len(items),
		Preview:   head(items, s.previewLimit),
	}, nil
}

// Status reports the dataset of a session.
func (s *UploadService) Status(ctx context.Context, sessionID string) (*UploadStatus, error) {
	session, ok, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok || !session.HasData() {
		return &UploadStatus{Data: []domain.InputItem{}}, nil
	}
	return &UploadStatus{
		HasData:  true,
		FileName: session.FileName,
		RowCount: len(session.Items),
		Data:     session.Items,
	}, nil
}

// loadSession returns the stored session or a fresh one carrying the defaults.
func loadSession(ctx context.Context, sessions cache.SessionStore, id string, defaults domain.CalculationConfig) (*cache.Session, error) {
	session, ok, err := sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return &cache.Session{Config: defaults}, nil
	}
	if session.Config.ForecastingPeriod == "" {
		session.Config = defaults
	}
	return session, nil
}

func head[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
