package pdf

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Chain tries each converter in order and returns the first success.
type Chain struct {
	converters []Converter
	log        *zap.Logger
}

// NewChain builds a chain over the given converters. A nil logger is allowed.
func NewChain(log *zap.Logger, converters ...Converter) *Chain {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chain{converters: converters, log: log}
}

// NewDefaultChain is pdftotext (when a path is configured) followed by the
// in-process reader.
func NewDefaultChain(log *zap.Logger, pdftotextPath string, timeout time.Duration) *Chain {
	var converters []Converter
	if pdftotextPath != "" {
		converters = append(converters, &CommandConverter{Path: pdftotextPath, Timeout: timeout})
	}
	converters = append(converters, LibraryConverter{})
	return NewChain(log, converters...)
}

// Name implements Converter.
func (c *Chain) Name() string { return "chain" }

// Convert implements Converter. It only returns an error when ctx is done;
// if every converter fails the result is a placeholder Document with
// Source "none".
func (c *Chain) Convert(ctx context.Context, data []byte) (*Document, error) {
	for _, conv := range c.converters {
		doc, err := conv.Convert(ctx, data)
		if err == nil {
			return doc, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn("pdf converter failed, trying next",
			zap.String("converter", conv.Name()),
			zap.Error(err),
		)
	}

	c.log.Warn("all pdf converters failed, using placeholder text")
	return &Document{
		Text:      PlaceholderText,
		WordCount: countWords(PlaceholderText),
		Source:    SourceNone,
	}, nil
}
