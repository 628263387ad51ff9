package upload

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// ValidationError lists every problem found in an upload.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "data validation failed: " + strings.Join(e.Messages, "; ")
}

// Validate checks that every item has an id, a warehouse and demand data.
// Rows are numbered from 1 in item order.
func Validate(items []domain.InputItem) error {
	if len(items) == 0 {
		return &ValidationError{Messages: []string{"No data found in the workbook"}}
	}

	var msgs []string
	for i, item := range items {
		row := i + 1
		if strings.TrimSpace(item.ID) == "" {
			msgs = append(msgs, fmt.Sprintf("Row %d: Missing ID", row))
		}
		if strings.TrimSpace(item.Warehouse) == "" {
			msgs = append(msgs, fmt.Sprintf("Row %d: Missing warehouse", row))
		}
		if len(item.DemandData) == 0 {
			msgs = append(msgs, fmt.Sprintf("Row %d: No demand data found", row))
		}
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}
