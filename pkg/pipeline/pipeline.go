package pipeline

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/transport"
)

// Outcome describes how a dispatch ended.
type Outcome struct {
	State    State
	Payload  map[string]any
	Message  string
	Response transport.Response
	Err      error
}

// Pipeline runs the submission flow for one form.
type Pipeline struct {
	form           model.FormModel
	validator      Validator
	transport      Transport
	notifier       Notifier
	machine        *Machine
	onComplete     CompleteFunc
	networkMessage string
	logger         *zap.Logger
}

// New constructs a pipeline for the form.
func New(form model.FormModel, options ...Option) *Pipeline {
	p := &Pipeline{
		form:           form,
		validator:      defaultValidator(),
		machine:        NewMachine(),
		networkMessage: DefaultNetworkMessage,
		logger:         zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	if p.notifier == nil {
		p.notifier = LogNotifier{Logger: p.logger}
	}
	return p
}

// Form returns the form the pipeline submits.
func (p *Pipeline) Form() model.FormModel {
	return p.form
}

// Machine exposes the lifecycle machine for observers.
func (p *Pipeline) Machine() *Machine {
	return p.machine
}

// ValidateAndCollect validates values and detects no-op submissions. It
// returns the values when they should be submitted, a *validation.Error when
// validation fails, or ErrUnchanged when values deep-equal initial. A nil
// initial map disables the no-op check.
func (p *Pipeline) ValidateAndCollect(values, initial map[string]any) (map[string]any, error) {
	if err := p.validator.Validate(p.form.Fields, values); err != nil {
		return nil, err
	}
	if initial != nil && Unchanged(values, initial) {
		return nil, ErrUnchanged
	}
	return values, nil
}

// Unchanged reports whether two value sets are deeply equal. Nil and empty
// collections compare equal.
func Unchanged(values, initial map[string]any) bool {
	return cmp.Equal(values, initial, cmpopts.EquateEmpty())
}

// TransformForSubmission applies the form's submit transforms.
func (p *Pipeline) TransformForSubmission(values map[string]any) map[string]any {
	return TransformForSubmission(values, p.form.Fields)
}

// TransformForSubmission returns a new map holding values with every field's
// Submit transform applied. The input map is never modified; keys without a
// field pass through unchanged.
func TransformForSubmission(values map[string]any, fields []model.Field) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	for _, field := range fields {
		if field.Submit == nil {
			continue
		}
		out[field.ID] = field.Submit(values[field.ID], fields, values)
	}
	return out
}

// Dispatch sends a transformed payload. Local endpoints complete immediately
// with the payload. Remote endpoints complete with nil on success; a
// non-empty server message is a business error that leaves the form open.
// Transport failures are returned and also surfaced through the notifier.
func (p *Pipeline) Dispatch(ctx context.Context, payload map[string]any) (Outcome, error) {
	if p.machine.State() == StateIdle {
		if err := p.machine.Transition(StateValidating, ""); err != nil {
			return Outcome{}, err
		}
	}
	defer p.machine.settle()

	logger := p.logger.With(zap.String("form", p.form.ID), zap.String("url", p.form.Endpoint))

	if p.form.Local() {
		if err := p.machine.Transition(StateSuccess, ""); err != nil {
			return Outcome{}, err
		}
		logger.Debug("form completed locally")
		p.complete(payload)
		return Outcome{State: StateSuccess, Payload: payload}, nil
	}

	if p.transport == nil {
		_ = p.machine.Transition(StateIdle, "")
		return Outcome{}, ErrNoTransport
	}
	if err := p.machine.Transition(StateSubmitting, ""); err != nil {
		return Outcome{}, err
	}

	resp, err := p.transport.Submit(ctx, p.form.Endpoint, payload)
	if err != nil {
		logger.Warn("form submission failed", zap.Error(err))
		_ = p.machine.Transition(StateTransportError, p.networkMessage)
		p.notifier.Error(p.networkMessage)
		return Outcome{State: StateTransportError, Payload: payload, Err: err}, fmt.Errorf("pipeline: dispatch %q: %w", p.form.ID, err)
	}

	if resp.Failed() {
		message := resp.Msg.String()
		logger.Info("form rejected", zap.String("msg", message))
		_ = p.machine.Transition(StateBusinessError, message)
		return Outcome{State: StateBusinessError, Payload: payload, Message: message, Response: resp}, nil
	}

	_ = p.machine.Transition(StateSuccess, "")
	logger.Debug("form submitted")
	p.complete(nil)
	return Outcome{State: StateSuccess, Payload: payload, Response: resp}, nil
}

// Submit runs the whole flow: validate, detect no-op, transform, dispatch.
func (p *Pipeline) Submit(ctx context.Context, values, initial map[string]any) (Outcome, error) {
	if err := p.machine.begin(); err != nil {
		return Outcome{}, err
	}

	collected, err := p.ValidateAndCollect(values, initial)
	if err != nil {
		_ = p.machine.Transition(StateIdle, err.Error())
		return Outcome{State: StateIdle}, err
	}

	return p.Dispatch(ctx, p.TransformForSubmission(collected))
}

func (p *Pipeline) complete(payload map[string]any) {
	if p.onComplete != nil {
		p.onComplete(payload)
	}
}
