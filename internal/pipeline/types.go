// Package pipeline runs a file-oriented Pipeline over batches of input files,
// grouped by snapshot date, with a bounded worker pool. Results stream into
// numbered CSV parts and every run and file job is recorded by a RunTracker.
package pipeline

import (
	"context"
	"time"
)

// Pipeline turns one input file into rows.
type Pipeline interface {
	Name() string
	// Transform parses and processes a single input file.
	Transform(ctx context.Context, inputFile string) ([]TransformedRow, error)
	// GetOutputTable is the prefix of the CSV parts written for this pipeline.
	GetOutputTable() string
	// GetSnapshotDate is the date a file belongs to; files sharing a date form one run.
	GetSnapshotDate(path string) (time.Time, error)
	// Validate rejects a file before it is transformed.
	Validate(inputFile string) error
}

// TransformedRow is one output record keyed by column name.
type TransformedRow struct {
	Data map[string]interface{}
}

// FlushFunc receives every CSV part the aggregator writes.
type FlushFunc func(ctx context.Context, csvPath string) error

// Config tunes batching and concurrency. A flush happens when any of the
// three thresholds is reached.
type Config struct {
	Name           string
	BatchSize      int
	BatchSizeBytes int64
	FlushInterval  time.Duration
	WorkerCount    int
	OutputDir      string
}

func DefaultConfig(name string) Config {
	return Config{
		Name:           name,
		BatchSize:      5,
		BatchSizeBytes: 10 << 20,
		FlushInterval:  5 * time.Minute,
		WorkerCount:    4,
		OutputDir:      "data/results/" + name,
	}
}

type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// PipelineRun is one execution of a pipeline for a snapshot date.
type PipelineRun struct {
	ID             int64
	PipelineName   string
	Date           time.Time
	Status         RunStatus
	TotalFiles     int
	ProcessedFiles int
	TotalRows      int
	StartedAt      time.Time
	CompletedAt    *time.Time
	ErrorMessage   string
}

// Finished reports whether the run reached a terminal status.
func (r *PipelineRun) Finished() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}

// FileJob is the processing record of one input file within a run.
type FileJob struct {
	ID            int64
	PipelineRunID int64
	FilePath      string
	Status        JobStatus
	ErrorMessage  string
	ProcessedAt   *time.Time
	RetryCount    int
}
