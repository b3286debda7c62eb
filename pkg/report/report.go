package report

import (
	"context"

	"github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/adapters/normalizer"
	"github.com/baditaflorin/go_text_compare/internal/core/align"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/core/report"
	"github.com/baditaflorin/go_text_compare/internal/ports"
	"github.com/baditaflorin/go_text_compare/internal/warmup"
	"github.com/baditaflorin/l"
)

// DiffReporter renders character-by-character comparison reports and
// per-line highlight spans for a text pair.
type DiffReporter struct {
	aligner    *align.Aligner
	reporter   *report.Reporter
	logger     ports.Logger
	normalizer ports.Normalizer
	warmed     bool
}

// DiffReporterOption defines a functional option for configuring
// DiffReporter.
type DiffReporterOption func(*diffReporterConfig)

type diffReporterConfig struct {
	MaxChars     int
	Logger       ports.Logger
	Normalizer   ports.Normalizer
	WarmUp       bool
	WarmUpConfig warmup.WarmupConfig
}

// WithMaxChars caps the number of positions a report renders.
func WithMaxChars(n int) DiffReporterOption {
	return func(cfg *diffReporterConfig) {
		cfg.MaxChars = n
	}
}

// WithLogger sets a custom logger for the reporter.
func WithLogger(l l.Logger) DiffReporterOption {
	return func(cfg *diffReporterConfig) {
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithNormalizer sets a custom normalizer for the reporter.
func WithNormalizer(n ports.Normalizer) DiffReporterOption {
	return func(cfg *diffReporterConfig) {
		cfg.Normalizer = n
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) DiffReporterOption {
	return func(cfg *diffReporterConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) DiffReporterOption {
	return func(cfg *diffReporterConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// NewDiffReporter creates a new DiffReporter instance.
func NewDiffReporter(opts ...DiffReporterOption) (*DiffReporter, error) {
	// Default configuration
	defaultConfig := report.DefaultConfig()

	config := &diffReporterConfig{
		MaxChars:     defaultConfig.MaxChars,
		WarmUp:       false,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
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

	aligner, err := align.NewAligner(align.DefaultConfig(), config.Logger, config.Normalizer)
	if err != nil {
		return nil, err
	}

	// Create core reporter
	coreConfig := report.Config{
		MaxChars: config.MaxChars,
	}
	reporter, err := report.NewReporter(coreConfig, config.Logger)
	if err != nil {
		return nil, err
	}

	dr := &DiffReporter{
		aligner:    aligner,
		reporter:   reporter,
		logger:     config.Logger,
		normalizer: config.Normalizer,
		warmed:     false,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		dr.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return dr, nil
}

// Report aligns the pair and renders the character-by-character view.
func (dr *DiffReporter) Report(ctx context.Context, a, b string) domain.Report {
	a = dr.normalizer.Normalize(a)
	b = dr.normalizer.Normalize(b)

	ops := dr.aligner.Align(ctx, a, b)
	return dr.reporter.Report(a, b, ops)
}

// HighlightLine slices a global opcode partition into spans for a single
// line of one side.
func (dr *DiffReporter) HighlightLine(lineText string, lineStart int, opcodes []domain.Opcode, side domain.Side) []domain.HighlightSpan {
	return report.HighlightLine(lineText, lineStart, opcodes, side)
}

// SplitLines splits a text into lines annotated with their absolute rune
// offsets.
func (dr *DiffReporter) SplitLines(text string) []domain.Line {
	return report.SplitLines(text)
}

// HighlightAll computes the spans of every line of one side's text.
func (dr *DiffReporter) HighlightAll(text string, opcodes []domain.Opcode, side domain.Side) []domain.LineSpans {
	return report.HighlightAll(text, opcodes, side)
}

// WarmUp performs system warm-up to optimize performance.
func (dr *DiffReporter) WarmUp(ctx context.Context, config warmup.WarmupConfig) {
	if dr.warmed {
		dr.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(dr.logger, config)
	warmupMgr.RegisterAligner(dr.aligner)
	warmupMgr.RegisterReporter(dr.reporter)
	warmupMgr.RegisterNormalizer(dr.normalizer)

	warmupMgr.WarmUp(ctx)
	dr.warmed = true
}
