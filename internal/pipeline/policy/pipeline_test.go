package policy

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
	"github.com/andresuchdata/inventory-optimizer/internal/pipeline"
	"github.com/andresuchdata/inventory-optimizer/internal/upload"
)

// Column positions of the planning sheet used by these fixtures.
const (
	fxID          = 0
	fxWarehouse   = 3
	fxDemandStart = 32
	fxWidth       = 60
)

func writeWorkbookCSV(t *testing.T, dir, name string, records map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Write([]string{"header"}))
	}
	for id, warehouse := range records {
		row := make([]string, fxWidth)
		row[fxID] = id
		row[fxWarehouse] = warehouse
		for m := 0; m < 12; m++ {
			row[fxDemandStart+m] = strconv.Itoa(80 + 5*m)
		}
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

func newTestPipeline() *Pipeline {
	return NewPipeline(Config{Calculation: domain.DefaultCalculationConfig()})
}

func TestTransform_EmitsRowPerItemPerEngine(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbookCSV(t, dir, "20240131_plan.csv", map[string]string{"A": "Berlin", "B": "Madrid"})
	p := newTestPipeline()

	require.NoError(t, p.Validate(path))
	rows, err := p.Transform(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	engines := map[string]int{}
	for _, r := range rows {
		engines[r.Data["engine"].(string)]++
		assert.Equal(t, "20240131_plan.csv", r.Data["source_file"])
		assert.Equal(t, "2024-01-31", r.Data["snapshot_date"])
		assert.Equal(t, string(domain.StatusComputed), r.Data["status"])
	}
	assert.Equal(t, 2, engines[EngineGeneral])
	assert.Equal(t, 2, engines[EngineExcelMatching])

	for _, r := range rows {
		switch r.Data["item_id"] {
		case "A":
			assert.Equal(t, "Berlin", r.Data["warehouse"])
		case "B":
			assert.Equal(t, "Madrid", r.Data["warehouse"])
		}
	}
}

func TestTransform_RejectsInvalidWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbookCSV(t, dir, "20240131_bad.csv", map[string]string{"A": ""})

	_, err := newTestPipeline().Transform(context.Background(), path)

	var verr *upload.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Row 1: Missing warehouse"}, verr.Messages)
}

func TestGetSnapshotDate(t *testing.T) {
	p := newTestPipeline()

	got, err := p.GetSnapshotDate("/data/20240229_north.xlsx")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	dir := t.TempDir()
	path := filepath.Join(dir, "undated.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mod := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mod, mod))

	got, err = p.GetSnapshotDate(path)
	require.NoError(t, err)
	assert.True(t, mod.Equal(got))

	_, err = p.GetSnapshotDate(filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	p := newTestPipeline()
	dir := t.TempDir()

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	assert.ErrorIs(t, p.Validate(txt), upload.ErrUnsupportedFormat)
	assert.Error(t, p.Validate(dir))
	assert.Error(t, p.Validate(filepath.Join(dir, "nope.csv")))
}

func TestOrchestrator_RunsWorkbookPipeline(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	files := []string{
		writeWorkbookCSV(t, in, "20240131_a.csv", map[string]string{"A": "W1"}),
		writeWorkbookCSV(t, in, "20240131_b.csv", map[string]string{"B": "W2"}),
		writeWorkbookCSV(t, in, "20240229_c.csv", map[string]string{"C": "W1"}),
	}

	cfg := pipeline.DefaultConfig("inventory_policy")
	cfg.OutputDir = out
	cfg.WorkerCount = 2

	var flushed []string
	tracker := pipeline.NewMemoryTracker()
	orch := pipeline.NewOrchestrator(tracker, cfg, func(_ context.Context, path string) error {
		flushed = append(flushed, filepath.Base(path))
		return nil
	})

	require.NoError(t, orch.Run(context.Background(), newTestPipeline(), files))

	assert.Equal(t, []string{
		"policy_results_20240131_part001.csv",
		"policy_results_20240229_part001.csv",
	}, flushed)

	run, err := tracker.GetPipelineRunByDate(context.Background(), "inventory_policy", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, pipeline.RunCompleted, run.Status)
	assert.Equal(t, 2, run.ProcessedFiles)
	assert.Equal(t, 4, run.TotalRows)
}
