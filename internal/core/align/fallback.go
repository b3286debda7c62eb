package align

import (
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

// fallbackOpcodes aligns oversized inputs with the Myers differ from
// sergi/go-diff and converts its edit script into the same opcode partition
// the exact matcher produces. The differ runs under a time budget and emits
// a coarser script when it expires, keeping worst-case inputs inside the
// latency target at the cost of alignment quality. Runs of deletions and
// insertions between equal regions coalesce into a single Replace.
func fallbackOpcodes(a, b string, timeout time.Duration) []domain.Opcode {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = timeout
	diffs := dmp.DiffCleanupMerge(dmp.DiffMain(a, b, false))

	ops := make([]domain.Opcode, 0, len(diffs))
	aPos, bPos := 0, 0
	delLen, insLen := 0, 0

	flush := func() {
		switch {
		case delLen > 0 && insLen > 0:
			ops = append(ops, domain.Opcode{Tag: domain.TagReplace,
				AStart: aPos, AEnd: aPos + delLen, BStart: bPos, BEnd: bPos + insLen})
		case delLen > 0:
			ops = append(ops, domain.Opcode{Tag: domain.TagDelete,
				AStart: aPos, AEnd: aPos + delLen, BStart: bPos, BEnd: bPos})
		case insLen > 0:
			ops = append(ops, domain.Opcode{Tag: domain.TagInsert,
				AStart: aPos, AEnd: aPos, BStart: bPos, BEnd: bPos + insLen})
		}
		aPos += delLen
		bPos += insLen
		delLen, insLen = 0, 0
	}

	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			ops = append(ops, domain.Opcode{Tag: domain.TagEqual,
				AStart: aPos, AEnd: aPos + n, BStart: bPos, BEnd: bPos + n})
			aPos += n
			bPos += n
		case diffmatchpatch.DiffDelete:
			delLen += n
		case diffmatchpatch.DiffInsert:
			insLen += n
		}
	}
	flush()

	return mergeAdjacent(ops)
}
