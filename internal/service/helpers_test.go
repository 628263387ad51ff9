package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/storage"
)

// workbookCSV renders a planning sheet in the positional CSV layout: three
// header rows, then one row per item with twelve months of demand.
func workbookCSV(t *testing.T, rows [][2]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write([]string{"header"}))
	}
	for _, r := range rows {
		rec := make([]string, 60)
		rec[0] = r[0]
		rec[3] = r[1]
		for m := 0; m < 12; m++ {
			rec[32+m] = strconv.Itoa(100 + 10*m)
		}
		require.NoError(t, w.Write(rec))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return buf.Bytes()
}

func sampleItems() []domain.InputItem {
	return []domain.InputItem{
		{ID: "A", Warehouse: "North", DemandData: []float64{100, 120, 80, 110}, CurrentStock: domain.Float(900)},
		{ID: "B", Warehouse: "South", DemandData: []float64{40, 45, 50, 35}},
		{ID: "C", Warehouse: "North", DemandData: []float64{10, 0, 20, 15}, ServiceLevel: domain.Float(0.99)},
	}
}

type recordingStorage struct {
	storage.Noop
	mu      sync.Mutex
	uploads map[string][]byte
}

func (s *recordingStorage) UploadObject(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	s.uploads[key] = data
	return nil
}

type fakeRuns struct {
	runs    []domain.CalculationRun
	results map[int64][]domain.CalculationResult
}

func (f *fakeRuns) SaveRun(_ context.Context, run *domain.CalculationRun, results []domain.CalculationResult) (int64, error) {
	id := int64(len(f.runs) + 1)
	stored := *run
	stored.ID = id
	f.runs = append(f.runs, stored)
	if f.results == nil {
		f.results = make(map[int64][]domain.CalculationResult)
	}
	f.results[id] = results
	return id, nil
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]domain.CalculationRun, error) {
	var out []domain.CalculationRun
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.runs[i])
	}
	return out, nil
}

func (f *fakeRuns) GetRunResults(_ context.Context, runID int64) ([]domain.CalculationResult, error) {
	return f.results[runID], nil
}
