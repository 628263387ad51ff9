package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		items    []domain.InputItem
		expected []string
	}{
		{
			name:     "empty",
			items:    nil,
			expected: []string{"No data found in the workbook"},
		},
		{
			name: "all problems reported",
			items: []domain.InputItem{
				{ID: "ok", Warehouse: "W", DemandData: []float64{1}},
				{Warehouse: "W", DemandData: []float64{1}},
				{ID: "x", DemandData: []float64{1}},
				{ID: "y", Warehouse: "W"},
			},
			expected: []string{
				"Row 2: Missing ID",
				"Row 3: Missing warehouse",
				"Row 4: No demand data found",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.items)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.expected, verr.Messages)
		})
	}
}

func TestValidate_OK(t *testing.T) {
	err := Validate([]domain.InputItem{{ID: "a", Warehouse: "W", DemandData: []float64{0}}})
	assert.NoError(t, err)
}
