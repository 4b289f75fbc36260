package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LibraryConverter reads text in-process with ledongthuc/pdf.
// It's a pure Go implementation, so it works wherever the binary runs.
type LibraryConverter struct{}

// Name implements Converter.
func (LibraryConverter) Name() string { return SourceLibrary }

// Convert extracts the plain text of every page.
//
// Go Pattern: We take []byte instead of a filename because the data comes
// from an HTTP upload (in memory). bytes.Reader gives the library the
// io.ReaderAt it needs for random access to the PDF structure.
func (LibraryConverter) Convert(ctx context.Context, data []byte) (doc *Document, err error) {
	// The parser panics on some malformed files; turn that into an error.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pageCount := reader.NumPage()
	var pages []string
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		// Pages that fail (images only, odd fonts) are skipped, not fatal.
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	extracted := strings.Join(pages, "\n\n")
	if extracted == "" {
		return nil, ErrNoText
	}

	return &Document{
		Text:      extracted,
		PageCount: pageCount,
		WordCount: countWords(extracted),
		Source:    SourceLibrary,
	}, nil
}
