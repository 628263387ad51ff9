package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// linePipeline emits one row per line of a text file. Files whose name
// contains "broken" fail to transform.
type linePipeline struct{}

func (linePipeline) Name() string           { return "lines" }
func (linePipeline) GetOutputTable() string { return "lines" }

func (linePipeline) GetSnapshotDate(path string) (time.Time, error) {
	return time.Parse("20060102", filepath.Base(path)[:8])
}

func (linePipeline) Validate(path string) error {
	_, err := os.Stat(path)
	return err
}

func (linePipeline) Transform(_ context.Context, path string) ([]TransformedRow, error) {
	if strings.Contains(path, "broken") {
		return nil, errors.New("unreadable")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []TransformedRow
	for i, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		rows = append(rows, TransformedRow{Data: map[string]interface{}{
			"file": filepath.Base(path),
			"line": i + 1,
			"text": line,
		}})
	}
	return rows, nil
}
