package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

// Worker processes files for a specific pipeline
type Worker struct {
	pipeline   Pipeline
	config     Config
	tracker    RunTracker
	flush      FlushFunc
	aggregator *StreamingAggregator
	log        zerolog.Logger
}

// NewWorker creates a new pipeline worker. A nil tracker keeps bookkeeping in memory.
func NewWorker(pipeline Pipeline, config Config, tracker RunTracker, flush FlushFunc) *Worker {
	if tracker == nil {
		tracker = NewMemoryTracker()
	}
	return &Worker{
		pipeline: pipeline,
		config:   config,
		tracker:  tracker,
		flush:    flush,
		log:      logger.Component("pipeline").With().Str("pipeline", pipeline.Name()).Logger(),
	}
}

// ProcessBatch processes a batch of files for a specific date
func (w *Worker) ProcessBatch(ctx context.Context, date time.Time, files []string) error {
	w.log.Info().Str("date", date.Format("2006-01-02")).Int("files", len(files)).Msg("starting batch")

	run, err := w.getOrCreatePipelineRun(ctx, date, len(files))
	if err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}

	w.aggregator = NewStreamingAggregator(w.pipeline, w.config, date, w.flush)

	fileJobs := make([]*FileJob, len(files))
	for i, file := range files {
		job := &FileJob{
			PipelineRunID: run.ID,
			FilePath:      file,
			Status:        JobQueued,
		}
		if err := w.tracker.CreateFileJob(ctx, job); err != nil {
			return fmt.Errorf("failed to create file job: %w", err)
		}
		fileJobs[i] = job
	}

	run.Status = RunProcessing
	if err := w.tracker.UpdatePipelineRun(ctx, run); err != nil {
		return fmt.Errorf("failed to update pipeline run: %w", err)
	}

	if err := w.processFilesParallel(ctx, run, fileJobs); err != nil {
		w.failRun(ctx, run, err.Error())
		return err
	}

	if err := w.aggregator.Finalize(ctx); err != nil {
		w.failRun(ctx, run, fmt.Sprintf("aggregation failed: %v", err))
		return fmt.Errorf("failed to finalize aggregation: %w", err)
	}

	run.Status = RunCompleted
	now := time.Now()
	run.CompletedAt = &now
	if err := w.tracker.UpdatePipelineRun(ctx, run); err != nil {
		return fmt.Errorf("failed to complete pipeline run: %w", err)
	}

	w.log.Info().Int64("run_id", run.ID).Int("files", len(files)).Msg("batch completed")
	return nil
}

func (w *Worker) failRun(ctx context.Context, run *PipelineRun, msg string) {
	run.Status = RunFailed
	run.ErrorMessage = msg
	now := time.Now()
	run.CompletedAt = &now
	if err := w.tracker.UpdatePipelineRun(ctx, run); err != nil {
		w.log.Error().Err(err).Int64("run_id", run.ID).Msg("failed to mark run as failed")
	}
}

// processFilesParallel runs every job on at most WorkerCount goroutines and
// returns the first failure once all jobs have finished.
func (w *Worker) processFilesParallel(ctx context.Context, run *PipelineRun, jobs []*FileJob) error {
	var g errgroup.Group
	g.SetLimit(max(1, w.config.WorkerCount))

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			if err := w.processFile(ctx, run, job); err != nil {
				w.log.Error().Err(err).Str("file", job.FilePath).Msg("failed to process file")
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// processFile processes a single file
func (w *Worker) processFile(ctx context.Context, run *PipelineRun, job *FileJob) error {
	startTime := time.Now()

	job.Status = JobProcessing
	if err := w.tracker.UpdateFileJob(ctx, job); err != nil {
		return err
	}

	if err := w.pipeline.Validate(job.FilePath); err != nil {
		return w.markJobFailed(ctx, job, fmt.Errorf("validation failed: %w", err))
	}

	rows, err := w.pipeline.Transform(ctx, job.FilePath)
	if err != nil {
		return w.markJobFailed(ctx, job, fmt.Errorf("transformation failed: %w", err))
	}

	if err := w.aggregator.AddFileData(ctx, rows); err != nil {
		return w.markJobFailed(ctx, job, fmt.Errorf("aggregation failed: %w", err))
	}

	job.Status = JobCompleted
	now := time.Now()
	job.ProcessedAt = &now
	if err := w.tracker.UpdateFileJob(ctx, job); err != nil {
		return err
	}

	if err := w.tracker.IncrementProcessedFiles(ctx, run.ID); err != nil {
		w.log.Warn().Err(err).Msg("failed to increment processed files")
	}
	if err := w.tracker.AddRowCount(ctx, run.ID, len(rows)); err != nil {
		w.log.Warn().Err(err).Msg("failed to add row count")
	}

	w.log.Debug().
		Str("file", job.FilePath).
		Dur("duration", time.Since(startTime)).
		Int("rows", len(rows)).
		Msg("file completed")

	return nil
}

// markJobFailed marks a job as failed and returns the cause
func (w *Worker) markJobFailed(ctx context.Context, job *FileJob, cause error) error {
	job.Status = JobFailed
	job.ErrorMessage = cause.Error()
	job.RetryCount++

	if err := w.tracker.UpdateFileJob(ctx, job); err != nil {
		w.log.Error().Err(err).Int64("job_id", job.ID).Msg("failed to update job status")
	}

	return cause
}

// getOrCreatePipelineRun resumes an unfinished run for the date or starts a new one
func (w *Worker) getOrCreatePipelineRun(ctx context.Context, date time.Time, totalFiles int) (*PipelineRun, error) {
	run, err := w.tracker.GetPipelineRunByDate(ctx, w.pipeline.Name(), date)
	if err != nil {
		return nil, err
	}

	if run != nil && !run.Finished() {
		if run.TotalFiles != totalFiles {
			run.TotalFiles = totalFiles
			if err := w.tracker.UpdatePipelineRun(ctx, run); err != nil {
				return nil, err
			}
		}
		return run, nil
	}

	run = &PipelineRun{
		PipelineName: w.pipeline.Name(),
		Date:         date,
		Status:       RunPending,
		TotalFiles:   totalFiles,
		StartedAt:    time.Now(),
	}

	if err := w.tracker.CreatePipelineRun(ctx, run); err != nil {
		return nil, err
	}

	return run, nil
}
