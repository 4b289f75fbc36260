// Package analyzer is the listing pipeline: PDF bytes in, extracted
// listing fields out.
package analyzer

import (
	"context"
	"fmt"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/listing"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/pdf"
)

// Result is everything one analysis produces.
type Result struct {
	Text       string         // Converted document text (the "markdown content")
	Fields     listing.Fields // Extracted listing fields
	Commercial bool           // Whether the text was classified as commercial
	Source     string         // Converter that produced Text
	PageCount  int
	WordCount  int
}

// Analyzer converts a PDF and runs the field extraction over its text.
type Analyzer struct {
	converter pdf.Converter
}

// New returns an Analyzer that converts documents with conv (usually a
// *pdf.Chain).
func New(conv pdf.Converter) *Analyzer {
	return &Analyzer{converter: conv}
}

// Analyze runs the pipeline on raw PDF bytes. Conversion failures inside a
// Chain degrade to placeholder text, so the only errors are context
// cancellation and failures of a non-chain converter.
func (a *Analyzer) Analyze(ctx context.Context, data []byte) (*Result, error) {
	doc, err := a.converter.Convert(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert PDF: %w", err)
	}

	return &Result{
		Text:       doc.Text,
		Fields:     listing.Extract(doc.Text),
		Commercial: listing.IsCommercial(doc.Text),
		Source:     doc.Source,
		PageCount:  doc.PageCount,
		WordCount:  doc.WordCount,
	}, nil
}
