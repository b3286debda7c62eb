package align

import (
	"context"
	"sort"

	"github.com/baditaflorin/go_text_compare/internal/core/domain"
)

// autoJunkMinSize is the second-text length from which the popularity
// heuristic starts discounting runes, and autoJunkDivisor the share (1%)
// above which a rune counts as too popular to seed a block.
const (
	autoJunkMinSize = 200
	autoJunkDivisor = 100
)

// match is one longest-match result inside an index window.
type match struct {
	a    int
	b    int
	size int
}

// sequenceMatcher finds the longest chain of matching blocks between two
// rune slices. The matching follows the Ratcliff-Obershelp family: pick the
// longest block in a window, then repeat on the windows before and after it.
// Junk and popularity filtering only restrict which runes may seed a block;
// every emitted block still consists of positions that genuinely match.
type sequenceMatcher struct {
	a, b       []rune
	b2j        map[rune][]int
	isJunk     func(rune) bool
	bJunk      map[rune]struct{}
	bPopular   map[rune]struct{}
	autoJunk   bool
	fullBCount map[rune]int
}

func newSequenceMatcher(a, b []rune, isJunk func(rune) bool, autoJunk bool) *sequenceMatcher {
	m := &sequenceMatcher{
		a:        a,
		b:        b,
		isJunk:   isJunk,
		autoJunk: autoJunk,
	}
	m.chainB()
	return m
}

// chainB indexes every rune position of b, then drops junk runes and, when
// the popularity heuristic is on, runes occurring in more than 1% of a
// large b. Dropped runes cannot seed a block but may still be absorbed by
// the extension passes in findLongestMatch.
func (m *sequenceMatcher) chainB() {
	m.b2j = make(map[rune][]int)
	for j, r := range m.b {
		m.b2j[r] = append(m.b2j[r], j)
	}

	m.bJunk = make(map[rune]struct{})
	if m.isJunk != nil {
		for r := range m.b2j {
			if m.isJunk(r) {
				m.bJunk[r] = struct{}{}
			}
		}
		for r := range m.bJunk {
			delete(m.b2j, r)
		}
	}

	m.bPopular = make(map[rune]struct{})
	n := len(m.b)
	if m.autoJunk && n >= autoJunkMinSize {
		ntest := n/autoJunkDivisor + 1
		for r, indexes := range m.b2j {
			if len(indexes) > ntest {
				m.bPopular[r] = struct{}{}
			}
		}
		for r := range m.bPopular {
			delete(m.b2j, r)
		}
	}
}

func (m *sequenceMatcher) isBJunk(r rune) bool {
	_, ok := m.bJunk[r]
	return ok
}

// findLongestMatch returns the longest block of a[alo:ahi] matching inside
// b[blo:bhi]. Among blocks of equal length the one starting earliest in a
// wins, and among those the one starting earliest in b. j2len[j] holds the
// length of the longest match ending at a[i] and b[j], carried row by row.
func (m *sequenceMatcher) findLongestMatch(alo, ahi, blo, bhi int) match {
	besti, bestj, bestsize := alo, blo, 0

	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	// Widen by matching runes the junk filter kept out of the index:
	// first the ordinary neighbors, then junk neighbors, so the block
	// boundary lands on the most informative runes.
	for besti > alo && bestj > blo && !m.isBJunk(m.b[bestj-1]) &&
		m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi &&
		!m.isBJunk(m.b[bestj+bestsize]) &&
		m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}

	for besti > alo && bestj > blo && m.isBJunk(m.b[bestj-1]) &&
		m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi &&
		m.isBJunk(m.b[bestj+bestsize]) &&
		m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}

	return match{a: besti, b: bestj, size: bestsize}
}

// window is one pending index range pair of the block decomposition.
type window struct {
	alo, ahi, blo, bhi int
}

// matchingBlocks runs the full decomposition with an explicit work stack,
// so adversarial inputs cannot exhaust the call stack. Blocks come off the
// stack out of order and are sorted afterwards; decomposition windows never
// cross, so sorting by a also sorts by b. Cancellation stops refinement
// early and returns the blocks found so far, which still yields a valid,
// merely coarser opcode partition.
func (m *sequenceMatcher) matchingBlocks(ctx context.Context) []domain.MatchingBlock {
	stack := []window{{alo: 0, ahi: len(m.a), blo: 0, bhi: len(m.b)}}
	var matched []match

	for len(stack) > 0 {
		if canceled(ctx) {
			break
		}

		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		mt := m.findLongestMatch(w.alo, w.ahi, w.blo, w.bhi)
		if mt.size == 0 {
			continue
		}
		matched = append(matched, mt)
		if w.alo < mt.a && w.blo < mt.b {
			stack = append(stack, window{alo: w.alo, ahi: mt.a, blo: w.blo, bhi: mt.b})
		}
		if mt.a+mt.size < w.ahi && mt.b+mt.size < w.bhi {
			stack = append(stack, window{alo: mt.a + mt.size, ahi: w.ahi, blo: mt.b + mt.size, bhi: w.bhi})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].a != matched[j].a {
			return matched[i].a < matched[j].a
		}
		return matched[i].b < matched[j].b
	})

	// Collapse blocks that ended up adjacent in both sequences.
	blocks := make([]domain.MatchingBlock, 0, len(matched))
	a1, b1, size1 := 0, 0, 0
	for _, mt := range matched {
		if a1+size1 == mt.a && b1+size1 == mt.b && size1 > 0 {
			size1 += mt.size
			continue
		}
		if size1 > 0 {
			blocks = append(blocks, domain.MatchingBlock{AStart: a1, BStart: b1, Size: size1})
		}
		a1, b1, size1 = mt.a, mt.b, mt.size
	}
	if size1 > 0 {
		blocks = append(blocks, domain.MatchingBlock{AStart: a1, BStart: b1, Size: size1})
	}
	return blocks
}

// ratio is 2.0*M/T where T is the total rune count of both texts and M the
// number of matched runes. Identical texts score 1, disjoint texts 0, and
// an empty pair is defined as identical.
func (m *sequenceMatcher) ratio(ctx context.Context) float64 {
	matches := 0
	for _, bl := range m.matchingBlocks(ctx) {
		matches += bl.Size
	}
	return calculateRatio(matches, len(m.a)+len(m.b))
}

// quickRatio is an upper bound on ratio computed from the rune multisets,
// ignoring order.
func (m *sequenceMatcher) quickRatio() float64 {
	if m.fullBCount == nil {
		m.fullBCount = make(map[rune]int, len(m.b))
		for _, r := range m.b {
			m.fullBCount[r]++
		}
	}

	avail := make(map[rune]int)
	matches := 0
	for _, r := range m.a {
		n, ok := avail[r]
		if !ok {
			n = m.fullBCount[r]
		}
		avail[r] = n - 1
		if n > 0 {
			matches++
		}
	}
	return calculateRatio(matches, len(m.a)+len(m.b))
}

// realQuickRatio is a still cheaper upper bound computed from lengths alone.
func (m *sequenceMatcher) realQuickRatio() float64 {
	la, lb := len(m.a), len(m.b)
	return calculateRatio(min(la, lb), la+lb)
}

func calculateRatio(matches, length int) float64 {
	if length > 0 {
		return 2.0 * float64(matches) / float64(length)
	}
	return 1.0
}

func canceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
