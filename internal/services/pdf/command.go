package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CommandConverter shells out to poppler's pdftotext. Its layout mode keeps
// table columns on one line, which suits listing sheets better than the
// in-process reader.
type CommandConverter struct {
	Path    string        // Path to the pdftotext binary
	Timeout time.Duration // Per-document limit; 0 means no limit beyond ctx
}

// Name implements Converter.
func (c *CommandConverter) Name() string { return SourceCommand }

// Convert writes data to a temp file and runs `pdftotext -layout <file> -`.
func (c *CommandConverter) Convert(ctx context.Context, data []byte) (*Document, error) {
	if c.Path == "" {
		return nil, errors.New("pdftotext is not configured")
	}

	tmp, err := os.CreateTemp("", "listing-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("pdftotext: %w", ctxErr)
		}
		return nil, fmt.Errorf("pdftotext failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	out := stdout.String()
	// pdftotext ends every page with a form feed.
	pageCount := strings.Count(out, "\f")
	text := strings.TrimSpace(strings.ReplaceAll(out, "\f", "\n"))
	if text == "" {
		return nil, ErrNoText
	}

	return &Document{
		Text:      text,
		PageCount: pageCount,
		WordCount: countWords(text),
		Source:    SourceCommand,
	}, nil
}
