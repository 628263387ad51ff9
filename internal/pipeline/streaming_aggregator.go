package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

// approxFieldBytes is the per-field size estimate used against BatchSizeBytes.
const approxFieldBytes = 100

// StreamingAggregator buffers the rows of processed files for one snapshot
// date and writes them out as numbered CSV parts.
type StreamingAggregator struct {
	mu        sync.Mutex
	pipeline  Pipeline
	config    Config
	date      time.Time
	onFlush   FlushFunc
	log       zerolog.Logger
	rows      []TransformedRow
	files     int
	bytes     int64
	parts     int
	lastFlush time.Time
}

func NewStreamingAggregator(p Pipeline, cfg Config, date time.Time, onFlush FlushFunc) *StreamingAggregator {
	return &StreamingAggregator{
		pipeline:  p,
		config:    cfg,
		date:      date,
		onFlush:   onFlush,
		log:       logger.Component("aggregator").With().Str("pipeline", p.Name()).Logger(),
		lastFlush: time.Now(),
	}
}

// AddFileData buffers the rows of one file and flushes when a batch
// threshold is crossed.
func (sa *StreamingAggregator) AddFileData(ctx context.Context, rows []TransformedRow) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	sa.rows = append(sa.rows, rows...)
	sa.files++
	for _, row := range rows {
		sa.bytes += int64(len(row.Data) * approxFieldBytes)
	}

	if sa.files >= sa.config.BatchSize ||
		sa.bytes >= sa.config.BatchSizeBytes ||
		time.Since(sa.lastFlush) >= sa.config.FlushInterval {
		return sa.flushLocked(ctx)
	}
	return nil
}

// Finalize flushes whatever is still buffered.
func (sa *StreamingAggregator) Finalize(ctx context.Context) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if sa.files == 0 {
		sa.log.Debug().Msg("nothing to finalize")
		return nil
	}
	return sa.flushLocked(ctx)
}

// GetBufferStats returns the number of buffered files and their estimated size.
func (sa *StreamingAggregator) GetBufferStats() (fileCount int, byteSize int64) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return sa.files, sa.bytes
}

func (sa *StreamingAggregator) flushLocked(ctx context.Context) error {
	if sa.files == 0 {
		return nil
	}
	if err := os.MkdirAll(sa.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sa.parts++
	path := sa.partPath(sa.parts)
	if err := writeCSV(path, sa.rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	sa.log.Info().Int("files", sa.files).Int("rows", len(sa.rows)).Str("path", path).Msg("flushed part")

	if sa.onFlush != nil {
		if err := sa.onFlush(ctx, path); err != nil {
			return fmt.Errorf("flush callback failed: %w", err)
		}
	}

	sa.rows = sa.rows[:0]
	sa.files = 0
	sa.bytes = 0
	sa.lastFlush = time.Now()
	return nil
}

// partPath is <output table>_<yyyymmdd>_partNNN.csv inside OutputDir.
func (sa *StreamingAggregator) partPath(part int) string {
	name := fmt.Sprintf("%s_%s_part%03d.csv", sa.pipeline.GetOutputTable(), sa.date.Format("20060102"), part)
	return filepath.Join(sa.config.OutputDir, name)
}

// writeCSV writes rows under the sorted union of their keys. Missing and nil
// values are written as empty cells.
func writeCSV(path string, rows []TransformedRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := columns(rows)
	if len(header) > 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			record[i] = ""
			if v, ok := row.Data[col]; ok && v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func columns(rows []TransformedRow) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for key := range row.Data {
			seen[key] = struct{}{}
		}
	}
	header := make([]string, 0, len(seen))
	for key := range seen {
		header = append(header, key)
	}
	sort.Strings(header)
	return header
}
