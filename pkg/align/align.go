package align

import (
	"context"
	"time"

	"github.com/baditaflorin/go_text_compare/internal/adapters/logger"
	"github.com/baditaflorin/go_text_compare/internal/adapters/normalizer"
	"github.com/baditaflorin/go_text_compare/internal/core/align"
	"github.com/baditaflorin/go_text_compare/internal/core/domain"
	"github.com/baditaflorin/go_text_compare/internal/ports"
	"github.com/baditaflorin/go_text_compare/internal/warmup"
	"github.com/baditaflorin/l"
)

// Aligner provides character-level alignment of two texts without the
// scoring and reporting layers on top.
type Aligner struct {
	core       *align.Aligner
	logger     ports.Logger
	normalizer ports.Normalizer
	warmed     bool
}

// AlignerOption defines a functional option for configuring the Aligner.
type AlignerOption func(*alignerConfig)

type alignerConfig struct {
	ExactSizeLimit  int
	FallbackTimeout time.Duration
	AutoJunk        bool
	IsJunk          func(rune) bool
	Logger          ports.Logger
	Normalizer      ports.Normalizer
	WarmUp          bool
	WarmUpConfig    warmup.WarmupConfig
}

// WithExactSizeLimit sets the per-side rune cap of the exact matcher.
func WithExactSizeLimit(n int) AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.ExactSizeLimit = n
	}
}

// WithFallbackTimeout bounds the fallback differ on oversized input.
func WithFallbackTimeout(d time.Duration) AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.FallbackTimeout = d
	}
}

// WithAutoJunk enables the popularity heuristic of the matcher.
func WithAutoJunk(enable bool) AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.AutoJunk = enable
	}
}

// WithJunk marks runes that may never seed a matching block.
func WithJunk(isJunk func(rune) bool) AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.IsJunk = isJunk
	}
}

// WithLogger sets a custom logger for the aligner.
func WithLogger(l l.Logger) AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithNormalizer sets a custom normalizer for the aligner.
func WithNormalizer(n ports.Normalizer) AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.Normalizer = n
	}
}

// WithNFCNormalizer composes canonically equivalent sequences before
// aligning.
func WithNFCNormalizer() AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.Normalizer = normalizer.NewNFCNormalizer()
	}
}

// WithCaseFoldNormalizer makes alignment case-insensitive through Unicode
// case folding.
func WithCaseFoldNormalizer() AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.Normalizer = normalizer.NewCaseFoldNormalizer()
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) AlignerOption {
	return func(cfg *alignerConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// NewAligner creates a new Aligner instance.
func NewAligner(opts ...AlignerOption) (*Aligner, error) {
	// Default configuration
	defaultConfig := align.DefaultConfig()

	config := &alignerConfig{
		ExactSizeLimit:  defaultConfig.ExactSizeLimit,
		FallbackTimeout: defaultConfig.FallbackTimeout,
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

	// Create core aligner
	coreConfig := align.Config{
		ExactSizeLimit:  config.ExactSizeLimit,
		FallbackTimeout: config.FallbackTimeout,
		AutoJunk:        config.AutoJunk,
		IsJunk:          config.IsJunk,
	}
	core, err := align.NewAligner(coreConfig, config.Logger, config.Normalizer)
	if err != nil {
		return nil, err
	}

	a := &Aligner{
		core:       core,
		logger:     config.Logger,
		normalizer: config.Normalizer,
		warmed:     false,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		a.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return a, nil
}

// Align computes the ordered opcode partition of the pair.
func (a *Aligner) Align(ctx context.Context, x, y string) []domain.Opcode {
	return a.core.Align(ctx, x, y)
}

// MatchingBlocks returns the ordered matching blocks of the pair.
func (a *Aligner) MatchingBlocks(ctx context.Context, x, y string) []domain.MatchingBlock {
	return a.core.MatchingBlocks(ctx, x, y)
}

// Ratio computes the similarity ratio 2*M/T of the pair.
func (a *Aligner) Ratio(ctx context.Context, x, y string) float64 {
	return a.core.Ratio(ctx, x, y)
}

// QuickRatio returns an upper bound on Ratio from rune multisets.
func (a *Aligner) QuickRatio(x, y string) float64 {
	return a.core.QuickRatio(x, y)
}

// RealQuickRatio returns an upper bound on Ratio from the lengths alone.
func (a *Aligner) RealQuickRatio(x, y string) float64 {
	return a.core.RealQuickRatio(x, y)
}

// WarmUp performs system warm-up to optimize performance.
func (a *Aligner) WarmUp(ctx context.Context, config warmup.WarmupConfig) {
	if a.warmed {
		a.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(a.logger, config)
	warmupMgr.RegisterAligner(a.core)
	warmupMgr.RegisterNormalizer(a.normalizer)

	warmupMgr.WarmUp(ctx)
	a.warmed = true
}
