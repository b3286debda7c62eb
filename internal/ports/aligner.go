package ports

import (
	"context"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

// Aligner defines the interface for computing a character-level alignment
// between two texts.
type Aligner interface {
	// Align returns the ordered opcode partition for the pair. The result
	// always covers both texts completely; cancellation coarsens the
	// alignment instead of failing.
	Align(ctx context.Context, a, b string) []domain.Opcode

	// MatchingBlocks returns the ordered matching blocks the alignment is
	// built from.
	MatchingBlocks(ctx context.Context, a, b string) []domain.MatchingBlock
}
