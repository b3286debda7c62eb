// textcompare.go
// Package textcompare compares two texts character by character. It aligns
// the pair into an ordered partition of equal, insert, delete and replace
// regions, scores their similarity as
//
//	score = 2 * matching / (lenA + lenB)
//
// with lengths counted in runes, renders a positional comparison report,
// and slices the alignment into per-line highlight spans for editor-style
// views. An Engine bundles these operations behind one configuration,
// built with functional options.
package textcompare

import (
	"context"
	"io"
	"time"

	"github.com/baditaflorin/l"

	"github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/adapters/normalizer"
	"github.com/baditaflorin/go_text_compare/internal/core/align"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/core/report"
	"github.com/baditaflorin/go_text_compare/internal/core/similarity"
	"github.com/baditaflorin/go_text_compare/internal/core/textstat"
	"github.com/baditaflorin/go_text_compare/internal/ports"
	"github.com/baditaflorin/go_text_compare/internal/warmup"
)

// Alignment tags and sides, re-exported so callers outside the module
// can name them.
const (
	TagEqual   = domain.TagEqual
	TagInsert  = domain.TagInsert
	TagDelete  = domain.TagDelete
	TagReplace = domain.TagReplace

	SideA = domain.SideA
	SideB = domain.SideB
)

// Engine bundles alignment, similarity scoring, reporting, highlighting
// and text statistics behind one shared configuration.
type Engine struct {
	aligner    *align.Aligner
	calculator *similarity.Calculator
	reporter   *report.Reporter
	counter    ports.StatCounter
	logger     ports.Logger
	normalizer ports.Normalizer
	warmed     bool
}

// Option defines a functional option for configuring the engine.
type Option func(*engineConfig)

type engineConfig struct {
	Threshold       float64
	Precision       int
	MaxReportChars  int
	ExactSizeLimit  int
	FallbackTimeout time.Duration
	AutoJunk        bool
	IsJunk          func(rune) bool
	Logger          ports.Logger
	Normalizer      ports.Normalizer
	WarmUp          bool
	WarmUpConfig    warmup.WarmupConfig
}

// WithThreshold sets the pass/fail threshold for similarity scores.
func WithThreshold(th float64) Option {
	return func(cfg *engineConfig) {
		cfg.Threshold = th
	}
}

// WithPrecision sets the number of decimals scores are rounded to.
func WithPrecision(p int) Option {
	return func(cfg *engineConfig) {
		cfg.Precision = p
	}
}

// WithMaxReportChars caps the number of positions a report renders.
func WithMaxReportChars(n int) Option {
	return func(cfg *engineConfig) {
		cfg.MaxReportChars = n
	}
}

// WithExactSizeLimit sets the per-side rune cap of the exact matcher.
// Inputs above the cap are aligned by the approximate fallback differ.
func WithExactSizeLimit(n int) Option {
	return func(cfg *engineConfig) {
		cfg.ExactSizeLimit = n
	}
}

// WithFallbackTimeout bounds the fallback differ on oversized input.
func WithFallbackTimeout(d time.Duration) Option {
	return func(cfg *engineConfig) {
		cfg.FallbackTimeout = d
	}
}

// WithAutoJunk enables the popularity heuristic of the matcher: in a
// second text of 200 or more runes, runes occurring in more than 1% of it
// cannot seed a matching block. Speeds up large repetitive inputs at the
// cost of the identity guarantee on them.
func WithAutoJunk(enable bool) Option {
	return func(cfg *engineConfig) {
		cfg.AutoJunk = enable
	}
}

// WithJunk marks runes that may never seed a matching block, such as
// whitespace when aligning prose.
func WithJunk(isJunk func(rune) bool) Option {
	return func(cfg *engineConfig) {
		cfg.IsJunk = isJunk
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *engineConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithNormalizer sets a custom normalizer.
func WithNormalizer(n ports.Normalizer) Option {
	return func(cfg *engineConfig) {
		cfg.Normalizer = n
	}
}

// WithNFCNormalizer composes canonically equivalent sequences before
// comparing, so "é" and "é" count as the same character.
func WithNFCNormalizer() Option {
	return func(cfg *engineConfig) {
		cfg.Normalizer = normalizer.NewNFCNormalizer()
	}
}

// WithCaseFoldNormalizer makes comparisons case-insensitive through
// Unicode case folding.
func WithCaseFoldNormalizer() Option {
	return func(cfg *engineConfig) {
		cfg.Normalizer = normalizer.NewCaseFoldNormalizer()
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *engineConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) Option {
	return func(cfg *engineConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Engine with the provided functional options.
func New(opts ...Option) (*Engine, error) {
	alignDefaults := align.DefaultConfig()
	simDefaults := similarity.DefaultConfig()
	repDefaults := report.DefaultConfig()

	config := &engineConfig{
		Threshold:       simDefaults.Threshold,
		Precision:       simDefaults.Precision,
		MaxReportChars:  repDefaults.MaxChars,
		ExactSizeLimit:  alignDefaults.ExactSizeLimit,
		FallbackTimeout: alignDefaults.FallbackTimeout,
		WarmUp:          false,
		WarmUpConfig:    warmup.DefaultWarmupConfig(),
	}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	// Set up logger if not provided
	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	// Set up normalizer if not provided
	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewIdentityNormalizer()
	}

	aligner, err := align.NewAligner(align.Config{
		ExactSizeLimit:  config.ExactSizeLimit,
		FallbackTimeout: config.FallbackTimeout,
		AutoJunk:        config.AutoJunk,
		IsJunk:          config.IsJunk,
	}, config.Logger, config.Normalizer)
	if err != nil {
		return nil, err
	}

	counter := textstat.NewCounter(config.Logger)

	calculator, err := similarity.NewCalculator(similarity.Config{
		Threshold: config.Threshold,
		Precision: config.Precision,
	}, aligner, counter, config.Logger, config.Normalizer)
	if err != nil {
		return nil, err
	}

	reporter, err := report.NewReporter(report.Config{
		MaxChars: config.MaxReportChars,
	}, config.Logger)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		aligner:    aligner,
		calculator: calculator,
		reporter:   reporter,
		counter:    counter,
		logger:     config.Logger,
		normalizer: config.Normalizer,
		warmed:     false,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		e.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return e, nil
}

// Compare aligns the pair once and returns the opcode partition together
// with the similarity result derived from it.
func (e *Engine) Compare(ctx context.Context, a, b string) domain.Comparison {
	a = e.normalizer.Normalize(a)
	b = e.normalizer.Normalize(b)

	ops := e.aligner.Align(ctx, a, b)
	res := e.calculator.ComputeFromOpcodes(ctx, a, b, ops)

	diffs := 0
	for _, op := range ops {
		if op.Tag != domain.TagEqual {
			diffs++
		}
	}

	return domain.Comparison{
		Result:    res,
		Opcodes:   ops,
		DiffCount: diffs,
	}
}

// Similarity computes only the similarity result for the pair.
func (e *Engine) Similarity(ctx context.Context, a, b string) domain.Result {
	return e.calculator.Compute(ctx, a, b)
}

// Align returns the ordered opcode partition of the pair.
func (e *Engine) Align(ctx context.Context, a, b string) []domain.Opcode {
	return e.aligner.Align(ctx, a, b)
}

// MatchingBlocks returns the ordered matching blocks of the pair.
func (e *Engine) MatchingBlocks(ctx context.Context, a, b string) []domain.MatchingBlock {
	return e.aligner.MatchingBlocks(ctx, a, b)
}

// Ratio computes the similarity ratio of the pair without rounding or
// threshold evaluation.
func (e *Engine) Ratio(ctx context.Context, a, b string) float64 {
	return e.aligner.Ratio(ctx, a, b)
}

// QuickRatio returns an upper bound on Ratio from rune multisets.
func (e *Engine) QuickRatio(a, b string) float64 {
	return e.aligner.QuickRatio(a, b)
}

// RealQuickRatio returns a still cheaper upper bound on Ratio computed
// from the two lengths alone.
func (e *Engine) RealQuickRatio(a, b string) float64 {
	return e.aligner.RealQuickRatio(a, b)
}

// Report aligns the pair and renders the character-by-character view.
// With a non-identity normalizer the rendered characters and offsets
// refer to the normalized texts.
func (e *Engine) Report(ctx context.Context, a, b string) domain.Report {
	a = e.normalizer.Normalize(a)
	b = e.normalizer.Normalize(b)

	ops := e.aligner.Align(ctx, a, b)
	return e.reporter.Report(a, b, ops)
}

// CompareAndReport aligns the pair once and returns both the comparison
// and the rendered report derived from that single alignment.
func (e *Engine) CompareAndReport(ctx context.Context, a, b string) (domain.Comparison, domain.Report) {
	a = e.normalizer.Normalize(a)
	b = e.normalizer.Normalize(b)

	ops := e.aligner.Align(ctx, a, b)
	res := e.calculator.ComputeFromOpcodes(ctx, a, b, ops)
	rep := e.reporter.Report(a, b, ops)

	diffs := 0
	for _, op := range ops {
		if op.Tag != domain.TagEqual {
			diffs++
		}
	}

	return domain.Comparison{Result: res, Opcodes: ops, DiffCount: diffs}, rep
}

// Normalize converts a text into the frame of reference of the engine's
// opcodes. Callers that slice their own lines for highlighting must
// normalize them the same way the aligned texts were.
func (e *Engine) Normalize(text string) string {
	return e.normalizer.Normalize(text)
}

// HighlightLine slices a global opcode partition into spans for a single
// line of one side. Line text and offsets must be in the normalized
// frame, see Normalize.
func (e *Engine) HighlightLine(lineText string, lineStart int, opcodes []domain.Opcode, side domain.Side) []domain.HighlightSpan {
	return report.HighlightLine(lineText, lineStart, opcodes, side)
}

// SplitLines splits a text into lines annotated with their absolute rune
// offsets, ready to hand to HighlightLine.
func (e *Engine) SplitLines(text string) []domain.Line {
	return report.SplitLines(text)
}

// HighlightAll computes the spans of every line of one side's text.
func (e *Engine) HighlightAll(text string, opcodes []domain.Opcode, side domain.Side) []domain.LineSpans {
	return report.HighlightAll(text, opcodes, side)
}

// Stats counts the lines, words and characters of a text.
func (e *Engine) Stats(text string) domain.Stats {
	return e.counter.Count(text)
}

// StatsReader counts a stream without holding it in memory, returning the
// statistics and the number of bytes read.
func (e *Engine) StatsReader(ctx context.Context, r io.Reader) (domain.Stats, int64, error) {
	return e.counter.CountReader(ctx, r)
}

// StatusLine renders the one-line summary for a comparison.
func (e *Engine) StatusLine(c domain.Comparison) string {
	return report.StatusLine(c.DiffCount, c.Result.Score)
}

// WarmUp performs system warm-up to optimize performance.
func (e *Engine) WarmUp(ctx context.Context, config warmup.WarmupConfig) {
	if e.warmed {
		e.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(e.logger, config)
	warmupMgr.RegisterAligner(e.aligner)
	warmupMgr.RegisterCalculator(e.calculator)
	warmupMgr.RegisterReporter(e.reporter)
	warmupMgr.RegisterNormalizer(e.normalizer)

	warmupMgr.WarmUp(ctx)
	e.warmed = true
}
