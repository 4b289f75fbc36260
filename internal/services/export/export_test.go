package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/listing"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/pdf"
)

func sampleAnalyses() []models.Analysis {
	return []models.Analysis{
		{
			ID:               "a-1",
			Filename:         "stored-1.pdf",
			OriginalFilename: "maple-ave.pdf",
			AnalysisDate:     time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
			ExtractedData: models.ExtractedData{
				listing.FieldPrice:   "$450,000",
				listing.FieldAddress: "12 Maple Ave",
			},
		},
		{
			ID:           "a-2",
			Filename:     "warehouse.pdf",
			AnalysisDate: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func column(name string) int {
	for i, h := range Header() {
		if h == name {
			return i
		}
	}
	return -1
}

func TestHeader(t *testing.T) {
	h := Header()
	assert.Equal(t, []string{"Filename", "Analysis Date"}, h[:2])
	assert.Equal(t, listing.FieldOrder, h[2:])
}

func TestTable(t *testing.T) {
	rows := Table(sampleAnalyses())
	require.Len(t, rows, 2)

	assert.Equal(t, "maple-ave.pdf", rows[0][0])
	assert.Equal(t, "2024-03-01 14:30:00", rows[0][1])
	assert.Equal(t, "$450,000", rows[0][column(listing.FieldPrice)])
	assert.Equal(t, "12 Maple Ave", rows[0][column(listing.FieldAddress)])
	assert.Equal(t, "", rows[0][column(listing.FieldMLS)])

	// Falls back to the stored name.
	assert.Equal(t, "warehouse.pdf", rows[1][0])
	assert.Len(t, rows[1], len(Header()))
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleAnalyses())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	if diff := cmp.Diff(Header(), records[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Table(sampleAnalyses()), records[1:]); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCSV_Empty(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleAnalyses())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Filename", rows[0][0])
	assert.Equal(t, "maple-ave.pdf", rows[1][0])

	price, err := f.GetCellValue(SheetName, mustCell(t, column(listing.FieldPrice)+1, 2))
	require.NoError(t, err)
	assert.Equal(t, "$450,000", price)
}

func mustCell(t *testing.T, col, row int) string {
	t.Helper()
	cell, err := excelize.CoordinatesToCellName(col, row)
	require.NoError(t, err)
	return cell
}

func TestPDFReport(t *testing.T) {
	data, err := PDFReport(sampleAnalyses())
	require.NoError(t, err)
	require.True(t, pdf.ValidatePDF(data))

	doc, err := pdf.LibraryConverter{}.Convert(context.Background(), data)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc.PageCount, 1)
}

func TestPDFReport_Empty(t *testing.T) {
	data, err := PDFReport(nil)
	require.NoError(t, err)
	assert.True(t, pdf.ValidatePDF(data))
}
