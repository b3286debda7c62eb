package normalizer

import (
	"github.com/baditaflorin/go_text_compare/internal/ports"
)

// IdentityNormalizer leaves the text untouched. It is the default for
// comparisons, where every rune and its offset are significant.
type IdentityNormalizer struct{}

// NewIdentityNormalizer creates a normalizer that returns its input as is.
func NewIdentityNormalizer() ports.Normalizer {
	return &IdentityNormalizer{}
}

// Normalize returns the input text unchanged.
func (n *IdentityNormalizer) Normalize(text string) string {
	return text
}
