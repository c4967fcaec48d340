package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Failback tries each extractor in order and returns the first successful result.
// Context errors and domain.ErrUnrecoverable abort the chain immediately.
type Failback struct {
	extractors []ports.Extractor
}

// NewFailback builds a chain. A typical chain is an LLM extractor followed by Rules.
func NewFailback(extractors ...ports.Extractor) *Failback {
	return &Failback{extractors: extractors}
}

// Extract implements ports.Extractor.
func (f *Failback) Extract(ctx context.Context, req domain.ExtractRequest) (*domain.ExtractResult, error) {
	var lastErr error
	for _, e := range f.extractors {
		res, err := e.Extract(ctx, req)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrUnrecoverable) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		return nil, errors.New("no extractors configured")
	}
	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}
