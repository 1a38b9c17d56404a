package container

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/pipeline"
)

// CompleteFunc is called after a successful submission. Payload is set for
// local forms and nil after a remote submission.
type CompleteFunc func(payload map[string]any)

type config struct {
	transport   pipeline.Transport
	validator   pipeline.Validator
	notifier    pipeline.Notifier
	logger      *zap.Logger
	onComplete  CompleteFunc
	onCancel    func()
	onSearch    CompleteFunc
	showCancel  bool
	itemsPerRow int
	fuzzyLabel  string
}

// Option configures a container.
type Option func(*config)

// WithTransport sets the transport used for remote endpoints.
func WithTransport(t pipeline.Transport) Option {
	return func(cfg *config) {
		cfg.transport = t
	}
}

// WithValidator overrides the validation engine.
func WithValidator(v pipeline.Validator) Option {
	return func(cfg *config) {
		cfg.validator = v
	}
}

// WithNotifier sets the sink for transient messages.
func WithNotifier(n pipeline.Notifier) Option {
	return func(cfg *config) {
		cfg.notifier = n
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithOnComplete registers the success callback.
func WithOnComplete(fn CompleteFunc) Option {
	return func(cfg *config) {
		cfg.onComplete = fn
	}
}

// WithOnCancel registers the cancel callback.
func WithOnCancel(fn func()) Option {
	return func(cfg *config) {
		cfg.onCancel = fn
	}
}

// WithCancelButton shows a cancel button on inline forms.
func WithCancelButton(show bool) Option {
	return func(cfg *config) {
		cfg.showCancel = show
	}
}

// WithItemsPerRow sets the search grid width.
func WithItemsPerRow(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.itemsPerRow = n
		}
	}
}

// WithOnSearch registers the search callback.
func WithOnSearch(fn CompleteFunc) Option {
	return func(cfg *config) {
		cfg.onSearch = fn
	}
}

// WithFuzzyLabel overrides the caption of the built-in fuzzy checkbox.
func WithFuzzyLabel(label string) Option {
	return func(cfg *config) {
		if label != "" {
			cfg.fuzzyLabel = label
		}
	}
}

func newConfig(options []Option) config {
	cfg := config{
		logger:      zap.NewNop(),
		itemsPerRow: 3,
		fuzzyLabel:  "Fuzzy search",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.notifier == nil {
		cfg.notifier = pipeline.LogNotifier{Logger: cfg.logger}
	}
	return cfg
}
