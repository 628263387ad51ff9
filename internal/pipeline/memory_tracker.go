package pipeline

import (
	"context"
	"sync"
	"time"
)

// MemoryTracker keeps run bookkeeping in process, for runs without a database.
type MemoryTracker struct {
	mu     sync.Mutex
	nextID int64
	runs   map[int64]*PipelineRun
	jobs   map[int64]*FileJob
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		runs: make(map[int64]*PipelineRun),
		jobs: make(map[int64]*FileJob),
	}
}

func (t *MemoryTracker) CreatePipelineRun(_ context.Context, run *PipelineRun) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	run.ID = t.nextID
	cp := *run
	t.runs[run.ID] = &cp
	return nil
}

func (t *MemoryTracker) UpdatePipelineRun(_ context.Context, run *PipelineRun) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	stored, ok := t.runs[run.ID]
	if !ok {
		return nil
	}
	stored.Status = run.Status
	stored.TotalFiles = run.TotalFiles
	stored.CompletedAt = run.CompletedAt
	stored.ErrorMessage = run.ErrorMessage
	return nil
}

func (t *MemoryTracker) GetPipelineRunByDate(_ context.Context, pipelineName string, date time.Time) (*PipelineRun, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var latest *PipelineRun
	for _, run := range t.runs {
		if run.PipelineName == pipelineName && run.Date.Equal(date) {
			if latest == nil || run.ID > latest.ID {
				latest = run
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (t *MemoryTracker) CreateFileJob(_ context.Context, job *FileJob) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	job.ID = t.nextID
	cp := *job
	t.jobs[job.ID] = &cp
	return nil
}

func (t *MemoryTracker) UpdateFileJob(_ context.Context, job *FileJob) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *job
	t.jobs[job.ID] = &cp
	return nil
}

func (t *MemoryTracker) IncrementProcessedFiles(_ context.Context, runID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if run, ok := t.runs[runID]; ok {
		run.ProcessedFiles++
	}
	return nil
}

func (t *MemoryTracker) AddRowCount(_ context.Context, runID int64, count int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if run, ok := t.runs[runID]; ok {
		run.TotalRows += count
	}
	return nil
}

// Run returns a copy of a tracked run.
func (t *MemoryTracker) Run(id int64) (PipelineRun, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	run, ok := t.runs[id]
	if !ok {
		return PipelineRun{}, false
	}
	return *run, true
}

// Jobs returns copies of every job of a run.
func (t *MemoryTracker) Jobs(runID int64) []FileJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []FileJob
	for _, job := range t.jobs {
		if job.PipelineRunID == runID {
			out = append(out, *job)
		}
	}
	return out
}
