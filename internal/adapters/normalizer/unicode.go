package normalizer

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/baditaflorin/go_text_compare/internal/ports"
)

// NFCNormalizer folds canonically equivalent sequences into their composed
// form, so "é" and "é" align as the same character. Offsets
// reported after normalization refer to the composed text.
type NFCNormalizer struct{}

// NewNFCNormalizer creates a normalizer that applies Unicode NFC.
func NewNFCNormalizer() ports.Normalizer {
	return &NFCNormalizer{}
}

// Normalize returns the NFC form of the text.
func (n *NFCNormalizer) Normalize(text string) string {
	if norm.NFC.IsNormalString(text) {
		return text
	}
	return norm.NFC.String(text)
}

// CaseFoldNormalizer applies Unicode case folding on top of NFC, for
// comparisons that should ignore letter case. Folding can change rune
// counts, for example the sharp s folds to "ss".
type CaseFoldNormalizer struct{}

// NewCaseFoldNormalizer creates a case-insensitive normalizer.
func NewCaseFoldNormalizer() ports.Normalizer {
	return &CaseFoldNormalizer{}
}

// Normalize returns the case-folded NFC form of the text. A fresh caser is
// built per call because cases.Caser values are stateful and must not be
// shared between goroutines.
func (n *CaseFoldNormalizer) Normalize(text string) string {
	folded := cases.Fold().String(text)
	if norm.NFC.IsNormalString(folded) {
		return folded
	}
	return norm.NFC.String(folded)
}
