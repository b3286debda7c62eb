package domain

// Tag classifies one aligned region between two texts.
type Tag int

//go:generate stringer -type=Tag -trimprefix Tag
const (
	// TagEqual marks a region present in both texts.
	TagEqual Tag = iota
	// TagInsert marks a region present only in the second text.
	TagInsert
	// TagDelete marks a region present only in the first text.
	TagDelete
	// TagReplace marks a region where the two texts disagree.
	TagReplace
)

// Opcode describes one contiguous region of an alignment between two texts.
// All offsets are rune offsets, end-exclusive. The opcodes produced for a
// pair of texts partition [0, lenA) and [0, lenB) exactly, in order, with no
// gaps and no overlaps. An Insert has AStart == AEnd, a Delete has
// BStart == BEnd, and two consecutive opcodes never both carry TagEqual.
type Opcode struct {
	Tag    Tag
	AStart int
	AEnd   int
	BStart int
	BEnd   int
}

// ALen returns the width of the opcode in the first text.
func (o Opcode) ALen() int { return o.AEnd - o.AStart }

// BLen returns the width of the opcode in the second text.
func (o Opcode) BLen() int { return o.BEnd - o.BStart }

// MatchingBlock is a run of Size identical runes starting at AStart in the
// first text and BStart in the second. Size is always positive; blocks are
// ordered by AStart ascending and never overlap in either text.
type MatchingBlock struct {
	AStart int
	BStart int
	Size   int
}

// Stats holds counting statistics for one text. A whitespace-only text
// counts zero lines and zero words; Chars is always the raw rune count.
type Stats struct {
	Lines int
	Words int
	Chars int
}

// Result holds the outcome of a similarity computation.
type Result struct {
	Name          string
	Score         float64
	Passed        bool
	MatchingChars int
	LengthA       int
	LengthB       int
	Threshold     float64
	StatsA        Stats
	StatsB        Stats
	Delta         Stats
	Details       map[string]interface{}
}

// Report holds a rendered character-by-character comparison. Compared is
// the number of positional records emitted, Mismatches the number of those
// records that differ, DiffCount the number of non-equal opcodes over the
// whole pair. Truncated reports whether the positional walk was cut short.
type Report struct {
	Text       string
	Compared   int
	Mismatches int
	DiffCount  int
	Truncated  bool
}

// HighlightSpan marks a region of a single line for rendering. Offsets are
// rune offsets relative to the start of the line; End is exclusive.
type HighlightSpan struct {
	Start int
	End   int
	Kind  Tag
}

// Line is one line of a text together with its absolute rune offset.
type Line struct {
	Start int
	Text  string
}

// LineSpans pairs a line with the highlight spans that fall on it.
type LineSpans struct {
	Line  Line
	Spans []HighlightSpan
}

// Side selects which text of a pair an operation refers to.
type Side int

const (
	// SideA is the first (left) text.
	SideA Side = iota
	// SideB is the second (right) text.
	SideB
)

// String returns "A" or "B".
func (s Side) String() string {
	if s == SideB {
		return "B"
	}
	return "A"
}

// Comparison aggregates one full engine pass over a pair of texts.
type Comparison struct {
	Result    Result
	Opcodes   []Opcode
	DiffCount int
}
