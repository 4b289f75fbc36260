package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/analyzer"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/listing"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/pdf"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/worker"
)

// fileResult is one analyzed file as printed by the analyze command.
type fileResult struct {
	File       string            `json:"file"`
	Source     string            `json:"source"`
	Commercial bool              `json:"commercial"`
	Pages      int               `json:"pages"`
	Fields     map[string]string `json:"fields"`
	Text       string            `json:"text,omitempty"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		format      string
		concurrency int
		withText    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.pdf>...",
		Short: "Extract listing fields from PDF files",
		Long:  `Runs the same conversion and field extraction as the API on local files and prints the results.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("unknown --format %q (want json or table)", format)
			}

			cfg, log, err := env()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			chain := pdf.NewDefaultChain(log, cfg.PdftotextPath, cfg.ConversionTimeout)
			results, err := analyzeFiles(cmd.Context(), analyzer.New(chain), args, concurrency)
			if err != nil {
				return err
			}
			if !withText {
				for i := range results {
					results[i].Text = ""
				}
			}
			return printResults(cmd.OutOrStdout(), format, results)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or table")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "files analyzed at once")
	cmd.Flags().BoolVar(&withText, "text", false, "include the converted text in JSON output")
	return cmd
}

// analyzeFiles runs a over every path with at most concurrency files in
// flight. Results keep the order of paths; the first failure cancels the rest.
func analyzeFiles(ctx context.Context, a worker.Analyzer, paths []string, concurrency int) ([]fileResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if !pdf.ValidatePDF(data) {
				return fmt.Errorf("%s: not a PDF file", path)
			}

			res, err := a.Analyze(gctx, data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			// Each goroutine owns one slot, so no lock is needed.
			results[i] = fileResult{
				File:       filepath.Base(path),
				Source:     res.Source,
				Commercial: res.Commercial,
				Pages:      res.PageCount,
				Fields:     res.Fields,
				Text:       res.Text,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printResults(w io.Writer, format string, results []fileResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t(%s, %d pages)\n", r.File, r.Source, r.Pages)
		for _, kv := range listing.Fields(r.Fields).Ordered() {
			fmt.Fprintf(tw, "  %s\t%s\n", kv[0], kv[1])
		}
	}
	return tw.Flush()
}
