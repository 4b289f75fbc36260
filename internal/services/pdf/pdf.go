// Package pdf turns uploaded PDF bytes into plain text.
//
// Conversion goes through a Chain of Converters: the poppler `pdftotext`
// command when it is installed, then the pure Go ledongthuc/pdf reader.
// The first converter that produces text wins. When every converter fails
// the chain still returns a Document carrying PlaceholderText so callers can
// carry on with an empty analysis instead of failing the request.
package pdf

import (
	"context"
	"errors"
	"strings"
)

// Source values recorded on a Document.
const (
	SourceCommand = "pdftotext"
	SourceLibrary = "ledongthuc"
	SourceNone    = "none"
)

// PlaceholderText is the document text used when no converter succeeded.
const PlaceholderText = "Error extracting text from PDF"

// ErrNoText is returned by a converter that ran but found no text
// (scanned or image-only pages).
var ErrNoText = errors.New("no text found in PDF")

// Document is the result of converting a PDF.
type Document struct {
	Text      string // Extracted text content
	PageCount int    // Number of pages, 0 when unknown
	WordCount int
	Source    string // Which converter produced Text
}

// Converter extracts text from PDF bytes.
//
// Go Pattern: A small interface defined where it is consumed. The Chain
// doesn't care how text is produced, only that something can produce it.
type Converter interface {
	Name() string
	Convert(ctx context.Context, data []byte) (*Document, error)
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// countWords counts the number of words in a text string.
func countWords(text string) int {
	return len(strings.Fields(text))
}
