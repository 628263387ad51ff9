package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/inventory-optimizer/internal/cache"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
)

func TestUpload_StoresDatasetAndArchives(t *testing.T) {
	sessions := cache.NewMemorySessionStore(0)
	archive := &recordingStorage{}
	svc := NewUploadService(sessions, archive, domain.DefaultCalculationConfig(), 0)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	rows := [][2]string{{"A", "W1"}, {"B", "W1"}, {"C", "W2"}, {"D", "W2"}, {"E", "W3"}, {"F", "W3"}}
	data := workbookCSV(t, rows)

	res, err := svc.Upload(context.Background(), "s1", "plan.csv", data)
	require.NoError(t, err)
	assert.Equal(t, "s1", res.SessionID)
	assert.Equal(t, 6, res.RowCount)
	require.Len(t, res.Preview, 5)
	assert.Equal(t, "A", res.Preview[0].ID)

	assert.Equal(t, data, archive.uploads["uploads/s1/1700000000_plan.csv"])

	status, err := svc.Status(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, status.HasData)
	assert.Equal(t, 6, status.RowCount)
	assert.Equal(t, "plan.csv", status.FileName)

	session, ok, err := sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultCalculationConfig(), session.Config)
}

func TestUpload_KeepsSessionConfig(t *testing.T) {
	sessions := cache.NewMemorySessionStore(0)
	cfg := domain.DefaultCalculationConfig()
	cfg.Currency = "USD"
	require.NoError(t, sessions.Save(context.Background(), "s1", &cache.Session{Config: cfg}))

	svc := NewUploadService(sessions, nil, domain.DefaultCalculationConfig(), 5)
	_, err := svc.Upload(context.Background(), "s1", "plan.csv", workbookCSV(t, [][2]string{{"A", "W"}}))
	require.NoError(t, err)

	session, _, _ := sessions.Get(context.Background(), "s1")
	assert.Equal(t, "USD", session.Config.Currency)
}

func TestUpload_Rejections(t *testing.T) {
	svc := NewUploadService(cache.NewMemorySessionStore(0), nil, domain.DefaultCalculationConfig(), 5)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "s1", "notes.txt", []byte("x"))
	assert.ErrorIs(t, err, upload.ErrUnsupportedFormat)

	_, err = svc.Upload(ctx, "s1", "plan.csv", workbookCSV(t, [][2]string{{"A", ""}}))
	var verr *upload.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Row 1: Missing warehouse"}, verr.Messages)

	_, err = svc.Upload(ctx, "s1", "plan.csv", workbookCSV(t, nil))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"No data found in the workbook"}, verr.Messages)

	status, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, status.HasData)
	assert.Empty(t, status.Data)
}
