package table

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/transport"
)

// Client fetches pages and posts changes. *transport.Client satisfies it.
type Client interface {
	Fetch(ctx context.Context, url string, params map[string]any) (transport.Response, error)
	Submit(ctx context.Context, url string, payload map[string]any) (transport.Response, error)
}

// DefaultButtonsDisplay shows all six built-in buttons.
var DefaultButtonsDisplay = [6]bool{true, true, true, true, true, true}

// DefaultRemovedMessage is the notification after a successful removal.
const DefaultRemovedMessage = "Deleted successfully"

type config struct {
	client         Client
	validator      pipeline.Validator
	notifier       pipeline.Notifier
	logger         *zap.Logger
	display        [6]bool
	extra          []Button
	pageSize       int
	networkMessage string
	removedMessage string
}

// Option configures a Controller.
type Option func(*config)

// WithClient sets the client used for every request.
func WithClient(client Client) Option {
	return func(cfg *config) {
		if client != nil {
			cfg.client = client
		}
	}
}

// WithValidator overrides the engine used by add and edit forms.
func WithValidator(v pipeline.Validator) Option {
	return func(cfg *config) {
		cfg.validator = v
	}
}

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

// WithButtonsDisplay masks the built-in buttons in order: parent add,
// remove, edit, then child add, remove, edit.
func WithButtonsDisplay(display [6]bool) Option {
	return func(cfg *config) {
		cfg.display = display
	}
}

// WithButtons appends caller buttons after the built-in ones.
func WithButtons(buttons ...Button) Option {
	return func(cfg *config) {
		cfg.extra = append(cfg.extra, buttons...)
	}
}

func WithPageSize(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.pageSize = size
		}
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

func WithRemovedMessage(message string) Option {
	return func(cfg *config) {
		if message != "" {
			cfg.removedMessage = message
		}
	}
}
