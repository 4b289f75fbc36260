// export.go handles analysis export in multiple formats.
//
// Single analysis (GET /api/v1/analyses/:id/export?format=...):
//   - txt: the converted document text
//   - md: Markdown with a field table and the document text
//   - json: full JSON with all metadata
//
// All analyses (GET /api/v1/analyses/export?format=...):
//   - csv, xlsx: one row per analysis, one column per field
//   - pdf: a printable report
//
// Go Pattern: Each export format is its own function. Adding a format means
// adding a case to the switch and a new formatter function.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/middleware"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
	exportservice "github.com/Shimizu-Technology/listing-analyzer-api/internal/services/export"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/listing"
)

// ExportAnalysis exports a single analysis in the requested format.
// GET /api/v1/analyses/:id/export?format=txt|md|json
//
// Response headers are set for file download:
//   - Content-Type: appropriate MIME type
//   - Content-Disposition: attachment with filename
func (h *Handler) ExportAnalysis(c *gin.Context) {
	format := c.DefaultQuery("format", "txt")

	// Validate format before doing any database work
	validFormats := map[string]bool{"txt": true, "md": true, "json": true}
	if !validFormats[format] {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_format",
			Message: "Supported formats: txt, md, json",
			Code:    http.StatusBadRequest,
		})
		return
	}

	a, ok := h.loadAnalysis(c)
	if !ok {
		return
	}

	filename := sanitizeFilename(strings.TrimSuffix(a.OriginalFilename, filepath.Ext(a.OriginalFilename)))
	if filename == "" {
		filename = a.ID
	}

	switch format {
	case "txt":
		exportTXT(c, a, filename)
	case "md":
		exportMarkdown(c, a, filename)
	case "json":
		exportJSON(c, a, filename)
	}
}

// exportTXT returns the converted document text.
func exportTXT(c *gin.Context, a *models.Analysis, filename string) {
	attachment(c, filename+".txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(a.MarkdownContent))
}

// exportMarkdown returns the extracted fields as a table followed by the
// document text.
func exportMarkdown(c *gin.Context, a *models.Analysis, filename string) {
	attachment(c, filename+".md")
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(renderMarkdown(a)))
}

func renderMarkdown(a *models.Analysis) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", a.OriginalFilename))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	for _, kv := range listing.Fields(a.ExtractedData).Ordered() {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", kv[0], escapeCell(kv[1])))
	}
	sb.WriteString(fmt.Sprintf("| Pages | %d |\n", a.PageCount))
	sb.WriteString(fmt.Sprintf("| Analyzed | %s |\n", a.AnalysisDate.UTC().Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n---\n\n")
	sb.WriteString("## Document Text\n\n")
	sb.WriteString(a.MarkdownContent)
	sb.WriteString("\n")
	return sb.String()
}

// exportJSON returns the full analysis as JSON.
func exportJSON(c *gin.Context, a *models.Analysis, filename string) {
	// Build a clean export structure (we control what's included)
	exportData := map[string]interface{}{
		"id":                a.ID,
		"filename":          a.OriginalFilename,
		"analysis_date":     a.AnalysisDate,
		"property_type":     a.ExtractedData[listing.FieldPropertyType],
		"extracted_data":    a.ExtractedData,
		"markdown_content":  a.MarkdownContent,
		"file_size":         a.FileSize,
		"page_count":        a.PageCount,
		"conversion_source": a.Source,
	}

	jsonBytes, err := json.MarshalIndent(exportData, "", "  ")
	if err != nil {
		serverError(c, "export_error", "Failed to generate JSON export", err)
		return
	}

	attachment(c, filename+".json")
	c.Data(http.StatusOK, "application/json; charset=utf-8", jsonBytes)
}

// ExportAllAnalyses exports every analysis the caller owns.
// GET /api/v1/analyses/export?format=csv|xlsx|pdf
func (h *Handler) ExportAllAnalyses(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	type renderer struct {
		render      func([]models.Analysis) ([]byte, error)
		contentType string
	}
	renderers := map[string]renderer{
		"csv":  {exportservice.CSV, exportservice.ContentTypeCSV},
		"xlsx": {exportservice.XLSX, exportservice.ContentTypeXLSX},
		"pdf":  {exportservice.PDFReport, exportservice.ContentTypePDF},
	}
	r, ok := renderers[format]
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_format",
			Message: "Supported formats: csv, xlsx, pdf",
			Code:    http.StatusBadRequest,
		})
		return
	}

	user := middleware.GetUser(c)
	analyses, err := h.DB.AllAnalyses(c.Request.Context(), user.ID)
	if err != nil {
		serverError(c, "database_error", "Failed to load analyses", err)
		return
	}

	data, err := r.render(analyses)
	if err != nil {
		serverError(c, "export_error", "Failed to generate "+format+" export", err)
		return
	}

	attachment(c, fmt.Sprintf("listing-analyses-%s.%s", time.Now().UTC().Format("20060102"), format))
	c.Data(http.StatusOK, r.contentType, data)
}

// --- Helper Functions ---

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

// escapeCell keeps a value from breaking a Markdown table row.
func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ", "\r", "").Replace(s)
}

// sanitizeFilename removes characters that aren't safe for filenames.
// Go Pattern: Keep it simple: replace unsafe characters with hyphens
// and trim the result. This is just for the Content-Disposition header.
func sanitizeFilename(name string) string {
	// Replace common unsafe characters
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", "\n", " ", "\r", "",
	)
	name = replacer.Replace(name)

	// Collapse multiple hyphens/spaces
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	name = strings.TrimSpace(name)

	// Limit length
	if len(name) > 100 {
		name = name[:100]
	}

	return name
}
