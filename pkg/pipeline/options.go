package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/transport"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// DefaultNetworkMessage is shown when a request fails below the envelope.
const DefaultNetworkMessage = "network error"

// Validator checks collected values. *validation.Engine satisfies it.
type Validator interface {
	Validate(fields []model.Field, values map[string]any) error
}

// Transport posts a payload. *transport.Client satisfies it.
type Transport interface {
	Submit(ctx context.Context, url string, payload map[string]any) (transport.Response, error)
}

// CompleteFunc receives the payload for local completion and nil after a
// successful remote submission.
type CompleteFunc func(payload map[string]any)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithValidator overrides the validator.
func WithValidator(validator Validator) Option {
	return func(p *Pipeline) {
		if validator != nil {
			p.validator = validator
		}
	}
}

// WithTransport sets the transport used for remote endpoints.
func WithTransport(t Transport) Option {
	return func(p *Pipeline) {
		p.transport = t
	}
}

// WithNotifier sets the transient message sink.
func WithNotifier(notifier Notifier) Option {
	return func(p *Pipeline) {
		if notifier != nil {
			p.notifier = notifier
		}
	}
}

// WithOnComplete sets the completion callback.
func WithOnComplete(fn CompleteFunc) Option {
	return func(p *Pipeline) {
		p.onComplete = fn
	}
}

// WithMachine shares a lifecycle machine with the host.
func WithMachine(machine *Machine) Option {
	return func(p *Pipeline) {
		if machine != nil {
			p.machine = machine
		}
	}
}

// WithNetworkMessage overrides the transient message for transport failures.
func WithNetworkMessage(message string) Option {
	return func(p *Pipeline) {
		if message != "" {
			p.networkMessage = message
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func defaultValidator() Validator {
	return validation.New()
}
