// export_test.go contains tests for the export helpers.
//
// Go Pattern: Table-driven tests are the standard Go testing pattern.
// You define a slice of test cases (each with a name, inputs, and expected
// outputs), then loop through them.
package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/listing"
)

// TestSanitizeFilename verifies filename sanitization.
func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean filename",
			input:    "Maple Ave Listing",
			expected: "Maple Ave Listing",
		},
		{
			name:     "slashes and colons",
			input:    "Unit 1/2: Downtown",
			expected: "Unit 1-2- Downtown",
		},
		{
			name:     "special characters",
			input:    "Is it zoned? <C-2>",
			expected: "Is it zoned- -C-2-",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "long name gets truncated",
			input:    strings.Repeat("a", 200),
			expected: strings.Repeat("a", 100),
		},
	}

	for _, tt := range tests {
		// Go Pattern: t.Run creates a sub-test with its own name.
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `a \| b`, escapeCell("a | b"))
	assert.Equal(t, "line one line two", escapeCell("line one\r\nline two"))
}

func TestRenderMarkdown(t *testing.T) {
	a := &models.Analysis{
		OriginalFilename: "warehouse.pdf",
		PageCount:        3,
		AnalysisDate:     time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		MarkdownContent:  "Industrial warehouse for lease",
		ExtractedData: models.ExtractedData{
			listing.FieldSqFt:         "25,000",
			listing.FieldAddress:      "1 Dock Rd",
			listing.FieldPropertyType: "Industrial",
		},
	}

	md := renderMarkdown(a)

	assert.True(t, strings.HasPrefix(md, "# warehouse.pdf\n"))
	assert.Contains(t, md, "| Pages | 3 |")
	assert.Contains(t, md, "| Analyzed | 2024-05-06 07:08:09 UTC |")
	assert.Contains(t, md, "## Document Text\n\nIndustrial warehouse for lease\n")

	// Fields follow FieldOrder: Address, Property Type, ..., Sq Ft.
	addr := strings.Index(md, "| Address |")
	kind := strings.Index(md, "| Property Type |")
	sqft := strings.Index(md, "| Sq Ft |")
	assert.True(t, addr < kind && kind < sqft, "fields out of order:\n%s", md)
}
