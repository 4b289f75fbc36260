// Package export renders a user's analyses as a spreadsheet or a printable
// report.
//
// Go Pattern: Every format starts from the same Table, so the columns in a
// CSV, an XLSX sheet and the PDF report never drift apart.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/listing"
)

// SheetName is the worksheet that holds the analyses in an XLSX export.
const SheetName = "Analyses"

// DateLayout is how analysis dates are printed in every format.
const DateLayout = "2006-01-02 15:04:05"

// Content types for each bulk format.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// Header returns the column names shared by all tabular formats.
func Header() []string {
	return append([]string{"Filename", "Analysis Date"}, listing.FieldOrder...)
}

// Table flattens analyses into rows matching Header. Missing fields are
// empty cells.
func Table(analyses []models.Analysis) [][]string {
	rows := make([][]string, 0, len(analyses))
	for _, a := range analyses {
		row := make([]string, 0, 2+len(listing.FieldOrder))
		row = append(row, displayName(a), a.AnalysisDate.UTC().Format(DateLayout))
		for _, field := range listing.FieldOrder {
			row = append(row, a.ExtractedData[field])
		}
		rows = append(rows, row)
	}
	return rows
}

// CSV renders analyses as comma-separated values with a header row.
func CSV(analyses []models.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header()); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	if err := w.WriteAll(Table(analyses)); err != nil {
		return nil, fmt.Errorf("csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX renders analyses as a workbook with a single "Analyses" sheet.
func XLSX(analyses []models.Analysis) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// A new workbook starts with "Sheet1"; rename it rather than add a second.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	header := Header()
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}
	for i, row := range Table(analyses) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		// Go Pattern: SetSheetRow wants a pointer to a slice.
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetName, "A", "A", 32) // filename
	_ = f.SetColWidth(SheetName, "B", "B", 20) // date
	_ = f.SetColWidth(SheetName, "C", "C", 40) // address
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFReport renders one section per analysis listing the fields that were
// found, in FieldOrder.
func PDFReport(analyses []models.Analysis) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "Letter", "")
	doc.SetTitle("Listing Analyses", true)
	doc.SetAutoPageBreak(true, 15)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont("Helvetica", "I", 8)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	// Core fonts are cp1252; translate UTF-8 input so accents survive.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "Listing Analyses", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("%d analyses", len(analyses)), "", 1, "L", false, 0, "")
	doc.Ln(4)

	for _, a := range analyses {
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(0, 8, tr(displayName(a)), "B", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(0, 6, "Analyzed "+a.AnalysisDate.UTC().Format(DateLayout)+" UTC", "", 1, "L", false, 0, "")

		fields := listing.Fields(a.ExtractedData).Ordered()
		if len(fields) == 0 {
			doc.SetFont("Helvetica", "I", 10)
			doc.CellFormat(0, 6, "No fields extracted", "", 1, "L", false, 0, "")
		}
		for _, kv := range fields {
			doc.SetFont("Helvetica", "B", 10)
			doc.CellFormat(45, 6, tr(kv[0]), "", 0, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 10)
			doc.MultiCell(0, 6, tr(kv[1]), "", "L", false)
		}
		doc.Ln(4)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf report: %w", err)
	}
	return buf.Bytes(), nil
}

func displayName(a models.Analysis) string {
	if a.OriginalFilename != "" {
		return a.OriginalFilename
	}
	return a.Filename
}
