// Package upload turns planning workbooks into input items.
package upload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

// Positional layout of the input sheet, zero-based.
const (
	colID              = 0
	colDescription     = 1
	colProduct         = 2
	colWarehouse       = 3
	colCategory1       = 4
	colCategory2       = 5
	colCategory3       = 6
	colStrategy        = 7
	colTransit         = 8
	colLeadTime        = 9
	colOrderQuantity   = 13
	colServiceLevel    = 15
	colUnitCost        = 23
	colOrderCost       = 25
	colCarryingRate    = 26
	colCurrentStock    = 28
	colDemandStart     = 32
	colDemandEnd       = 43
	colInventoryStart  = 44
	colInventoryEnd    = 59
	headerRows         = 3
	defaultStrategy    = "MTS"
	inputSheetFragment = "input"
)

var (
	ErrNoInputSheet      = errors.New("no input sheet found in workbook")
	ErrUnsupportedFormat = errors.New("unsupported file type, expected .xlsx, .xls or .csv")
)

// SupportedFile reports whether name has an extension the parser accepts.
func SupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls", ".csv":
		return true
	}
	return false
}

// ParseFile picks the workbook or CSV parser from the file name.
func ParseFile(name string, r io.Reader) ([]domain.InputItem, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return ParseWorkbook(r)
	case ".csv":
		return ParseCSV(r)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

// ParseWorkbook reads the first sheet whose name contains "input".
func ParseWorkbook(r io.Reader) ([]domain.InputItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, ok := findInputSheet(f.GetSheetList())
	if !ok {
		return nil, ErrNoInputSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}

	return parseRows(rows), nil
}

// ParseCSV reads a CSV export laid out like the input sheet.
func ParseCSV(r io.Reader) ([]domain.InputItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return parseRows(rows), nil
}

func findInputSheet(sheets []string) (string, bool) {
	for _, name := range sheets {
		if strings.Contains(strings.ToLower(name), inputSheetFragment) {
			return name, true
		}
	}
	return "", false
}

func parseRows(rows [][]string) []domain.InputItem {
	if len(rows) <= headerRows {
		return []domain.InputItem{}
	}

	items := make([]domain.InputItem, 0, len(rows)-headerRows)
	for _, row := range rows[headerRows:] {
		if cell(row, colID) == "" {
			continue
		}
		items = append(items, parseRow(row))
	}
	return items
}

func parseRow(row []string) domain.InputItem {
	strategy := cell(row, colStrategy)
	if strategy == "" {
		strategy = defaultStrategy
	}

	return domain.InputItem{
		ID:                    cell(row, colID),
		Description:           cell(row, colDescription),
		Product:               cell(row, colProduct),
		Warehouse:             cell(row, colWarehouse),
		Category1:             cell(row, colCategory1),
		Category2:             cell(row, colCategory2),
		Category3:             cell(row, colCategory3),
		ReplenishmentStrategy: strategy,
		TransitIncluded:       strings.EqualFold(cell(row, colTransit), "yes"),
		DemandData:            series(row, colDemandStart, colDemandEnd),
		HistoricInventory:     series(row, colInventoryStart, colInventoryEnd),
		UnitCost:              optional(row, colUnitCost, 1),
		LeadTime:              optional(row, colLeadTime, 1),
		ServiceLevel:          optional(row, colServiceLevel, 100),
		OrderCost:             optional(row, colOrderCost, 1),
		HoldingCostRate:       optional(row, colCarryingRate, 100),
		OrderQuantity:         optional(row, colOrderQuantity, 1),
		CurrentStock:          optional(row, colCurrentStock, 1),
	}
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// series reads an inclusive column range. Empty or unparsable cells count as 0.
func series(row []string, from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		v, ok := number(cell(row, i))
		if !ok {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

// optional parses a parameter cell, dividing by scale. Empty or unparsable
// cells stay unset.
func optional(row []string, idx int, scale float64) *float64 {
	v, ok := number(cell(row, idx))
	if !ok {
		return nil
	}
	return domain.Float(v / scale)
}

func number(s string) (float64, bool) {
	s = strings.NewReplacer(",", "", " ", "", "%", "").Replace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
