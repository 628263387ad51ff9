package upload

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type rowSpec map[int]interface{}

func buildRow(spec rowSpec) []interface{} {
	row := make([]interface{}, colInventoryEnd+1)
	for i := range row {
		row[i] = ""
	}
	for idx, v := range spec {
		row[idx] = v
	}
	return row
}

func demandRow(id, warehouse string, extra rowSpec) []interface{} {
	spec := rowSpec{colID: id, colWarehouse: warehouse}
	for i := colDemandStart; i <= colDemandEnd; i++ {
		spec[i] = 100
	}
	for k, v := range extra {
		spec[k] = v
	}
	return buildRow(spec)
}

func workbook(t *testing.T, sheet string, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	header := buildRow(rowSpec{colID: "ID"})
	for i := 0; i < headerRows; i++ {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &header))
	}
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+headerRows+1), &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseWorkbook_FullRow(t *testing.T) {
	row := demandRow("SKU-1", "Berlin", rowSpec{
		colDescription:    "Bolt",
		colProduct:        "M8",
		colCategory1:      "Hardware",
		colCategory2:      "Fasteners",
		colCategory3:      "Steel",
		colStrategy:       "MTO",
		colTransit:        "Yes",
		colLeadTime:       14,
		colOrderQuantity:  250,
		colServiceLevel:   "97.5",
		colUnitCost:       "12.40",
		colOrderCost:      80,
		colCarryingRate:   "20%",
		colCurrentStock:   "1,250",
		colDemandStart:    "n/a",
		colDemandEnd:      -5,
		colInventoryStart: 300,
	})

	items, err := ParseWorkbook(workbook(t, "Input Data", row))
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "SKU-1", item.ID)
	assert.Equal(t, "Bolt", item.Description)
	assert.Equal(t, "M8", item.Product)
	assert.Equal(t, "Berlin", item.Warehouse)
	assert.Equal(t, "Hardware", item.Category1)
	assert.Equal(t, "Fasteners", item.Category2)
	assert.Equal(t, "Steel", item.Category3)
	assert.Equal(t, "MTO", item.ReplenishmentStrategy)
	assert.True(t, item.TransitIncluded)

	require.NotNil(t, item.LeadTime)
	assert.Equal(t, 14.0, *item.LeadTime)
	assert.Equal(t, 250.0, *item.OrderQuantity)
	assert.InDelta(t, 0.975, *item.ServiceLevel, 1e-12)
	assert.Equal(t, 12.4, *item.UnitCost)
	assert.Equal(t, 80.0, *item.OrderCost)
	assert.InDelta(t, 0.20, *item.HoldingCostRate, 1e-12)
	assert.Equal(t, 1250.0, *item.CurrentStock)

	require.Len(t, item.DemandData, 12)
	assert.Equal(t, 0.0, item.DemandData[0], "unparsable demand reads as 0")
	assert.Equal(t, 100.0, item.DemandData[5])
	assert.Equal(t, -5.0, item.DemandData[11], "negatives are left for the statistics step")

	require.Len(t, item.HistoricInventory, colInventoryEnd-colInventoryStart+1)
	assert.Equal(t, 300.0, item.HistoricInventory[0])
}

func TestParseWorkbook_DefaultsAndSkippedRows(t *testing.T) {
	items, err := ParseWorkbook(workbook(t, "input",
		demandRow("A", "W1", nil),
		buildRow(rowSpec{colWarehouse: "W2"}),
		demandRow("B", "", rowSpec{colTransit: "no"}),
	))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "A", items[0].ID)
	assert.Equal(t, "MTS", items[0].ReplenishmentStrategy)
	assert.False(t, items[0].TransitIncluded)
	assert.Nil(t, items[0].UnitCost)
	assert.Nil(t, items[0].LeadTime)
	assert.Nil(t, items[0].OrderCost)
	assert.Nil(t, items[0].CurrentStock)

	assert.Equal(t, "B", items[1].ID)
	assert.Empty(t, items[1].Warehouse)
}

func TestParseWorkbook_NoInputSheet(t *testing.T) {
	_, err := ParseWorkbook(workbook(t, "Summary", demandRow("A", "W", nil)))
	assert.ErrorIs(t, err, ErrNoInputSheet)
}

func TestParseWorkbook_NotAWorkbook(t *testing.T) {
	_, err := ParseWorkbook(strings.NewReader("definitely not zip"))
	assert.Error(t, err)
}

func TestParseWorkbook_OnlyHeaders(t *testing.T) {
	items, err := ParseWorkbook(workbook(t, "Input"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseCSV(t *testing.T) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for i := 0; i < headerRows; i++ {
		require.NoError(t, w.Write([]string{"header"}))
	}
	record := make([]string, colDemandEnd+1)
	record[colID] = "C-1"
	record[colWarehouse] = "Lyon"
	record[colCurrentStock] = "2,000"
	record[colDemandStart] = "7"
	require.NoError(t, w.Write(record))
	w.Flush()
	require.NoError(t, w.Error())

	items, err := ParseCSV(&buf)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "C-1", items[0].ID)
	assert.Equal(t, 2000.0, *items[0].CurrentStock)
	assert.Equal(t, 7.0, items[0].DemandData[0])
	assert.Len(t, items[0].HistoricInventory, colInventoryEnd-colInventoryStart+1)
}

func TestParseFile_Dispatch(t *testing.T) {
	_, err := ParseFile("data.txt", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	items, err := ParseFile("DATA.CSV", strings.NewReader("a\nb\nc\n"))
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = ParseFile("plan.xlsx", workbook(t, "Input", demandRow("X", "W", nil)))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSupportedFile(t *testing.T) {
	assert.True(t, SupportedFile("plan.xlsx"))
	assert.True(t, SupportedFile("plan.XLS"))
	assert.True(t, SupportedFile("plan.csv"))
	assert.False(t, SupportedFile("plan.pdf"))
	assert.False(t, SupportedFile("plan"))
}
