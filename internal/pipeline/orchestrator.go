package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Orchestrator coordinates running a Pipeline over a set of local files grouped by snapshot date.
type Orchestrator struct {
	tracker RunTracker
	cfg     Config
	flush   FlushFunc
	makeW   func(p Pipeline, cfg Config, tracker RunTracker, flush FlushFunc) *Worker
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(tracker RunTracker, cfg Config, flush FlushFunc) *Orchestrator {
	return &Orchestrator{
		tracker: tracker,
		cfg:     cfg,
		flush:   flush,
		makeW:   NewWorker,
	}
}

// Run groups the provided files by snapshot date (using p.GetSnapshotDate) and
// runs a Worker batch for each date, oldest first.
func (o *Orchestrator) Run(ctx context.Context, p Pipeline, files []string) error {
	if len(files) == 0 {
		return nil
	}

	byDate := make(map[time.Time][]string)
	for _, f := range files {
		date, err := p.GetSnapshotDate(f)
		if err != nil {
			return fmt.Errorf("failed to get snapshot date for %s: %w", f, err)
		}

		date = date.Truncate(24 * time.Hour)
		byDate[date] = append(byDate[date], f)
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	worker := o.makeW(p, o.cfg, o.tracker, o.flush)

	for _, date := range dates {
		if err := worker.ProcessBatch(ctx, date, byDate[date]); err != nil {
			return fmt.Errorf("failed to process batch for %s: %w", date.Format("2006-01-02"), err)
		}
	}

	return nil
}
