package ports

import (
	"context"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

// SimilarityCalculator defines the interface for computing similarity between texts.
type SimilarityCalculator interface {
	Compute(ctx context.Context, a, b string) domain.Result
}
