package ports

import (
	"context"
	"io"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

// StatCounter counts lines, words, and characters of a text.
type StatCounter interface {
	// Count computes statistics for an in-memory text.
	Count(text string) domain.Stats

	// CountReader computes the same statistics incrementally from a reader
	// and additionally returns the number of bytes consumed.
	CountReader(ctx context.Context, r io.Reader) (domain.Stats, int64, error)
}
