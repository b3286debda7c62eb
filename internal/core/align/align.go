package align

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/pool"
	"github.com/baditaflorin/go_text_compare/internal/ports"
)

// Default tuning values for the alignment engine.
const (
	// DefaultExactSizeLimit is the largest per-side rune count still served
	// by the exact block matcher. Larger inputs switch to the fallback
	// differ so the quadratic search cannot blow the latency budget.
	DefaultExactSizeLimit = 5000

	// DefaultFallbackTimeout bounds the fallback differ on oversized input.
	DefaultFallbackTimeout = 150 * time.Millisecond
)

// Config holds configuration for the aligner.
type Config struct {
	// ExactSizeLimit caps the per-side rune count handled by the exact
	// matcher. Inputs above the cap use the fallback differ transparently;
	// the output contract is identical, only the tie-break guarantee is
	// specific to the exact path.
	ExactSizeLimit int
	// FallbackTimeout is the time budget of the fallback differ.
	FallbackTimeout time.Duration
	// AutoJunk enables the popularity heuristic: in a second text of 200+
	// runes, runes occurring in more than 1% of it cannot seed a block.
	// Off by default because it breaks the identity guarantee on highly
	// repetitive texts.
	AutoJunk bool
	// IsJunk, when set, marks runes that may never seed a block.
	IsJunk func(rune) bool
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		ExactSizeLimit:  DefaultExactSizeLimit,
		FallbackTimeout: DefaultFallbackTimeout,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.ExactSizeLimit <= 0 {
		return errors.New("exact size limit must be greater than 0")
	}
	if c.FallbackTimeout <= 0 {
		return errors.New("fallback timeout must be greater than 0")
	}
	return nil
}

// Aligner implements the character-level alignment engine.
type Aligner struct {
	config     Config
	logger     ports.Logger
	normalizer ports.Normalizer
	runePool   *pool.RuneBufferPool
}

// NewAligner creates a new aligner core.
func NewAligner(config Config, logger ports.Logger, normalizer ports.Normalizer) (*Aligner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Aligner{
		config:     config,
		logger:     logger,
		normalizer: normalizer,
		runePool:   pool.NewRuneBufferPool(config.ExactSizeLimit),
	}, nil
}

// Align computes the ordered opcode partition of the pair. The result
// covers [0, lenA) and [0, lenB) completely in rune offsets. The call never
// fails: empty inputs yield an empty or one-sided partition and a canceled
// context stops block refinement early, producing a coarser partition.
func (al *Aligner) Align(ctx context.Context, a, b string) []domain.Opcode {
	a = al.normalizer.Normalize(a)
	b = al.normalizer.Normalize(b)

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)

	al.logger.Debug("Starting alignment", "len_a", la, "len_b", lb)

	// Identical inputs collapse to a single equal region.
	if a == b {
		if la == 0 {
			return []domain.Opcode{}
		}
		return []domain.Opcode{{Tag: domain.TagEqual, AStart: 0, AEnd: la, BStart: 0, BEnd: lb}}
	}

	if la > al.config.ExactSizeLimit || lb > al.config.ExactSizeLimit {
		al.logger.Debug("Input above exact size limit, using fallback differ",
			"limit", al.config.ExactSizeLimit,
			"timeout", al.config.FallbackTimeout,
		)
		return fallbackOpcodes(a, b, al.config.FallbackTimeout)
	}

	ar, br, release := al.runes(a, b)
	defer release()

	m := newSequenceMatcher(ar, br, al.config.IsJunk, al.config.AutoJunk)
	ops := opcodesFromBlocks(m.matchingBlocks(ctx), la, lb)

	al.logger.Debug("Alignment complete", "opcodes", len(ops))
	return ops
}

// MatchingBlocks returns the ordered matching blocks behind Align. On the
// fallback path the blocks are recovered from the equal regions of the
// fallback partition.
func (al *Aligner) MatchingBlocks(ctx context.Context, a, b string) []domain.MatchingBlock {
	a = al.normalizer.Normalize(a)
	b = al.normalizer.Normalize(b)

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)

	if a == b {
		if la == 0 {
			return []domain.MatchingBlock{}
		}
		return []domain.MatchingBlock{{AStart: 0, BStart: 0, Size: la}}
	}

	if la > al.config.ExactSizeLimit || lb > al.config.ExactSizeLimit {
		return blocksFromOpcodes(fallbackOpcodes(a, b, al.config.FallbackTimeout))
	}

	ar, br, release := al.runes(a, b)
	defer release()

	return newSequenceMatcher(ar, br, al.config.IsJunk, al.config.AutoJunk).matchingBlocks(ctx)
}

// Ratio computes the similarity ratio of the pair, 2*M/T with M matched
// runes and T the total rune count. An empty pair scores 1.
func (al *Aligner) Ratio(ctx context.Context, a, b string) float64 {
	matches := 0
	la, lb := 0, 0
	for _, op := range al.Align(ctx, a, b) {
		la += op.ALen()
		lb += op.BLen()
		if op.Tag == domain.TagEqual {
			matches += op.ALen()
		}
	}
	return calculateRatio(matches, la+lb)
}

// QuickRatio returns an upper bound on Ratio from rune multisets, ignoring
// order. Cheap enough to gate a full alignment behind.
func (al *Aligner) QuickRatio(a, b string) float64 {
	a = al.normalizer.Normalize(a)
	b = al.normalizer.Normalize(b)

	ar, br, release := al.runes(a, b)
	defer release()

	return newSequenceMatcher(ar, br, al.config.IsJunk, al.config.AutoJunk).quickRatio()
}

// RealQuickRatio returns a still cheaper upper bound on Ratio computed from
// the two lengths alone.
func (al *Aligner) RealQuickRatio(a, b string) float64 {
	a = al.normalizer.Normalize(a)
	b = al.normalizer.Normalize(b)
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	return calculateRatio(min(la, lb), la+lb)
}

// runes converts both texts through the rune pool. The returned release
// func hands the grown buffers back.
func (al *Aligner) runes(a, b string) ([]rune, []rune, func()) {
	aBuf := al.runePool.Get()
	bBuf := al.runePool.Get()
	ar := appendRunes(*aBuf, a)
	br := appendRunes(*bBuf, b)
	*aBuf = ar
	*bBuf = br
	return ar, br, func() {
		al.runePool.Put(aBuf)
		al.runePool.Put(bBuf)
	}
}

func appendRunes(buf []rune, s string) []rune {
	for _, r := range s {
		buf = append(buf, r)
	}
	return buf
}

// opcodesFromBlocks derives the opcode partition from ordered matching
// blocks: each gap between consecutive blocks becomes an Insert, Delete, or
// Replace, each block an Equal, and the tail gap after the last block is
// classified the same way.
func opcodesFromBlocks(blocks []domain.MatchingBlock, la, lb int) []domain.Opcode {
	ops := make([]domain.Opcode, 0, 2*len(blocks)+1)
	i, j := 0, 0
	for _, bl := range blocks {
		if i < bl.AStart || j < bl.BStart {
			ops = append(ops, domain.Opcode{Tag: gapTag(i < bl.AStart, j < bl.BStart),
				AStart: i, AEnd: bl.AStart, BStart: j, BEnd: bl.BStart})
		}
		i, j = bl.AStart+bl.Size, bl.BStart+bl.Size
		ops = append(ops, domain.Opcode{Tag: domain.TagEqual,
			AStart: bl.AStart, AEnd: i, BStart: bl.BStart, BEnd: j})
	}
	if i < la || j < lb {
		ops = append(ops, domain.Opcode{Tag: gapTag(i < la, j < lb),
			AStart: i, AEnd: la, BStart: j, BEnd: lb})
	}
	return mergeAdjacent(ops)
}

// gapTag classifies an uncovered region by which sides it spans.
func gapTag(hasA, hasB bool) domain.Tag {
	switch {
	case hasA && hasB:
		return domain.TagReplace
	case hasA:
		return domain.TagDelete
	default:
		return domain.TagInsert
	}
}

// mergeAdjacent collapses neighboring opcodes that carry the same tag.
// Block maximality should keep this from ever firing on the exact path,
// but the partition contract does not depend on it.
func mergeAdjacent(ops []domain.Opcode) []domain.Opcode {
	if len(ops) < 2 {
		return ops
	}
	out := ops[:1]
	for _, op := range ops[1:] {
		last := &out[len(out)-1]
		if op.Tag == last.Tag {
			last.AEnd = op.AEnd
			last.BEnd = op.BEnd
			continue
		}
		out = append(out, op)
	}
	return out
}

// blocksFromOpcodes recovers matching blocks from the equal regions of an
// opcode partition.
func blocksFromOpcodes(ops []domain.Opcode) []domain.MatchingBlock {
	blocks := make([]domain.MatchingBlock, 0, len(ops))
	for _, op := range ops {
		if op.Tag == domain.TagEqual {
			blocks = append(blocks, domain.MatchingBlock{AStart: op.AStart, BStart: op.BStart, Size: op.ALen()})
		}
	}
	return blocks
}
