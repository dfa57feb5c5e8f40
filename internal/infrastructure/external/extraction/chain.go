package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/expense"
)

// Chain tries each extractor in order and returns the first success
type Chain struct {
	extractors []port.Extractor
	logger     *zap.Logger
}

var _ port.Extractor = (*Chain)(nil)

// NewChain creates a Chain over extractors, skipping nil entries
func NewChain(logger *zap.Logger, extractors ...port.Extractor) *Chain {
	c := &Chain{logger: logger}
	for _, e := range extractors {
		if e != nil {
			c.extractors = append(c.extractors, e)
		}
	}
	return c
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.extractors))
	for _, e := range c.extractors {
		names = append(names, e.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Extract stops at the first extractor that returns a record. A cancelled
// context ends the chain early.
func (c *Chain) Extract(ctx context.Context, imageData []byte, mimeType string) (*expense.Record, error) {
	if len(c.extractors) == 0 {
		return nil, errors.New("no extractors configured")
	}

	var errs []error
	for _, e := range c.extractors {
		rec, err := e.Extract(ctx, imageData, mimeType)
		if err == nil {
			return rec, nil
		}
		c.logger.Warn("Extractor failed",
			zap.String("extractor", e.Name()),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}
