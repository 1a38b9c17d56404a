package upload

import (
	"context"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/transport"
)

// Uploader sends one file. *transport.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, url string, file transport.FilePart, fields map[string]any, progress transport.ProgressFunc) (transport.Response, error)
}

// Progress reports streamed bytes for one file.
type Progress struct {
	File  string
	Sent  int64
	Total int64
}

type config struct {
	uploader       Uploader
	notifier       pipeline.Notifier
	logger         *zap.Logger
	sanitizer      *bluemonday.Policy
	onProgress     func(Progress)
	onComplete     func()
	networkMessage string
}

// Option configures a Session.
type Option func(*config)

// WithUploader replaces the default transport client.
func WithUploader(u Uploader) Option {
	return func(cfg *config) {
		if u != nil {
			cfg.uploader = u
		}
	}
}

// WithNotifier sets the sink for rejected files and network failures.
func WithNotifier(n pipeline.Notifier) Option {
	return func(cfg *config) {
		if n != nil {
			cfg.notifier = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithSanitizer overrides the policy applied to server messages.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.sanitizer = policy
		}
	}
}

// WithOnProgress registers a progress callback.
func WithOnProgress(fn func(Progress)) Option {
	return func(cfg *config) {
		cfg.onProgress = fn
	}
}

// WithOnComplete registers the callback invoked by Close.
func WithOnComplete(fn func()) Option {
	return func(cfg *config) {
		cfg.onComplete = fn
	}
}

// WithNetworkMessage sets the notification shown when a request fails.
func WithNetworkMessage(message string) Option {
	return func(cfg *config) {
		if message != "" {
			cfg.networkMessage = message
		}
	}
}
