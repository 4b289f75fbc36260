package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/listing"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/pdf"
)

type fakeConverter struct {
	doc *pdf.Document
	err error
}

func (f fakeConverter) Name() string { return "fake" }

func (f fakeConverter) Convert(context.Context, []byte) (*pdf.Document, error) {
	return f.doc, f.err
}

func TestAnalyze(t *testing.T) {
	conv := fakeConverter{doc: &pdf.Document{
		Text:      "Retail space for lease\nPrice: $1,200,000\n3 bedrooms",
		PageCount: 2,
		WordCount: 9,
		Source:    pdf.SourceCommand,
	}}

	res, err := New(conv).Analyze(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	assert.True(t, res.Commercial)
	assert.Equal(t, "$1,200,000", res.Fields[listing.FieldPrice])
	assert.Equal(t, "Retail", res.Fields[listing.FieldPropertyType])
	assert.NotContains(t, res.Fields, listing.FieldBedrooms)
	assert.Equal(t, pdf.SourceCommand, res.Source)
	assert.Equal(t, 2, res.PageCount)
	assert.Equal(t, 9, res.WordCount)
}

func TestAnalyze_Placeholder(t *testing.T) {
	chain := pdf.NewChain(nil, fakeConverter{err: errors.New("unreadable")})

	res, err := New(chain).Analyze(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	assert.Equal(t, pdf.PlaceholderText, res.Text)
	assert.Equal(t, pdf.SourceNone, res.Source)
	assert.Empty(t, res.Fields)
}

func TestAnalyze_ConverterError(t *testing.T) {
	_, err := New(fakeConverter{err: context.Canceled}).Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
