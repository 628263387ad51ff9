package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig("lines")
	cfg.OutputDir = t.TempDir()
	cfg.WorkerCount = 3
	return cfg
}

func TestWorker_ProcessBatch(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeLines(t, dir, "20240105_a.txt", "one\ntwo"),
		writeLines(t, dir, "20240105_b.txt", "three"),
	}
	tracker := NewMemoryTracker()
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	w := NewWorker(linePipeline{}, testConfig(t), tracker, nil)
	require.NoError(t, w.ProcessBatch(context.Background(), date, files))

	run, err := tracker.GetPipelineRunByDate(context.Background(), "lines", date)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, RunCompleted, run.Status)
	assert.Equal(t, 2, run.TotalFiles)
	assert.Equal(t, 2, run.ProcessedFiles)
	assert.Equal(t, 3, run.TotalRows)
	assert.NotNil(t, run.CompletedAt)

	jobs := tracker.Jobs(run.ID)
	require.Len(t, jobs, 2)
	for _, job := range jobs {
		assert.Equal(t, JobCompleted, job.Status)
		assert.NotNil(t, job.ProcessedAt)
	}
}

func TestWorker_FailedFileFailsRun(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeLines(t, dir, "20240105_ok.txt", "fine"),
		writeLines(t, dir, "20240105_broken.txt", "bad"),
	}
	tracker := NewMemoryTracker()
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	w := NewWorker(linePipeline{}, testConfig(t), tracker, nil)
	err := w.ProcessBatch(context.Background(), date, files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transformation failed")

	run, _ := tracker.GetPipelineRunByDate(context.Background(), "lines", date)
	require.NotNil(t, run)
	assert.Equal(t, RunFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "unreadable")

	var failed []FileJob
	for _, job := range tracker.Jobs(run.ID) {
		if job.Status == JobFailed {
			failed = append(failed, job)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].RetryCount)
	assert.Contains(t, failed[0].FilePath, "broken")
}

func TestWorker_CompletedRunStartsFresh(t *testing.T) {
	dir := t.TempDir()
	file := writeLines(t, dir, "20240105_a.txt", "one")
	tracker := NewMemoryTracker()
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	w := NewWorker(linePipeline{}, testConfig(t), tracker, nil)
	require.NoError(t, w.ProcessBatch(ctx, date, []string{file}))
	first, _ := tracker.GetPipelineRunByDate(ctx, "lines", date)

	require.NoError(t, w.ProcessBatch(ctx, date, []string{file}))
	second, _ := tracker.GetPipelineRunByDate(ctx, "lines", date)

	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, 1, second.TotalRows)
}

func TestOrchestrator_GroupsByDateOldestFirst(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeLines(t, dir, "20240210_x.txt", "late"),
		writeLines(t, dir, "20240101_y.txt", "early"),
		writeLines(t, dir, "20240101_z.txt", "early too"),
	}

	var flushed []string
	orch := NewOrchestrator(NewMemoryTracker(), testConfig(t), func(_ context.Context, path string) error {
		flushed = append(flushed, filepath.Base(path))
		return nil
	})

	require.NoError(t, orch.Run(context.Background(), linePipeline{}, files))
	assert.Equal(t, []string{"lines_20240101_part001.csv", "lines_20240210_part001.csv"}, flushed)
}

func TestOrchestrator_NoFiles(t *testing.T) {
	orch := NewOrchestrator(NewMemoryTracker(), testConfig(t), nil)
	assert.NoError(t, orch.Run(context.Background(), linePipeline{}, nil))
}

func TestWorker_RetryAfterFailureStartsNewRun(t *testing.T) {
	dir := t.TempDir()
	ok := writeLines(t, dir, "20240105_ok.txt", "fine")
	broken := writeLines(t, dir, "20240105_broken.txt", "bad")
	tracker := NewMemoryTracker()
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	w := NewWorker(linePipeline{}, testConfig(t), tracker, nil)
	require.Error(t, w.ProcessBatch(ctx, date, []string{ok, broken}))
	failed, _ := tracker.GetPipelineRunByDate(ctx, "lines", date)

	require.NoError(t, w.ProcessBatch(ctx, date, []string{ok}))
	retried, _ := tracker.GetPipelineRunByDate(ctx, "lines", date)

	assert.NotEqual(t, failed.ID, retried.ID)
	assert.Equal(t, RunCompleted, retried.Status)
	assert.Equal(t, 1, retried.ProcessedFiles)
}
