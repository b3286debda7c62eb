package ports

import (
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

// Reporter renders a bounded character-by-character comparison report.
type Reporter interface {
	Report(a, b string, opcodes []domain.Opcode) domain.Report
}

// Highlighter translates a global opcode sequence into spans for one line
// of one text. Implementations hold no mutable state, so a single opcode
// sequence may be sliced repeatedly and concurrently.
type Highlighter interface {
	HighlightLine(lineText string, lineStart int, opcodes []domain.Opcode, side domain.Side) []domain.HighlightSpan
}
