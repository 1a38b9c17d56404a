// Package account provides the login and change-password forms together
// with the flow that submits them.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/transforms"
)

// Field ids used by the account forms.
const (
	FieldUserName    = "userName"
	FieldPassword    = "password"
	FieldRemember    = "remember"
	FieldNewPassword = "newPass1"
	FieldConfirm     = "newPass2"
)

// ChangePasswordDelay is how long the change-password flow waits before
// redirecting.
const ChangePasswordDelay = 3 * time.Second

// ErrRejected wraps the server message of a refused login or change.
var ErrRejected = errors.New("account: rejected")

func minLength(n string, message string) model.ValidationRule {
	return model.ValidationRule{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": n}, Message: message}
}

func required(message string) model.ValidationRule {
	return model.ValidationRule{Kind: model.ValidationRuleRequired, Message: message}
}

// LoginForm builds the sign-in form. The password is hashed with SHA-1
// before it leaves the client.
func LoginForm(endpoint string) model.FormModel {
	return model.FormModel{
		ID:       "login",
		Title:    "Sign in",
		Endpoint: endpoint,
		Method:   "POST",
		Fields: []model.Field{
			{
				ID:    FieldUserName,
				Type:  model.FieldTypeText,
				Label: "User name",
				Rules: []model.ValidationRule{required("Please enter your user name"), minLength("2", "Please enter your user name")},
				Props: map[string]string{"placeholder": "User name", "autocomplete": "username"},
			},
			{
				ID:     FieldPassword,
				Type:   model.FieldTypePassword,
				Label:  "Password",
				Rules:  []model.ValidationRule{required("Please enter a password of at least 6 characters"), minLength("6", "Please enter a password of at least 6 characters")},
				Submit: transforms.Submit(transforms.SHA1),
				Props:  map[string]string{"placeholder": "Password", "autocomplete": "current-password"},
			},
			{
				ID:           FieldRemember,
				Type:         model.FieldTypeCheckbox,
				Label:        "Remember me",
				DefaultValue: true,
			},
		},
	}
}

// ChangePasswordForm builds the change-password form. All three passwords
// are hashed on submit; the confirmation must match the new password.
func ChangePasswordForm(endpoint string) model.FormModel {
	hash := transforms.Submit(transforms.SHA1)
	return model.FormModel{
		ID:       "change-password",
		Title:    "Change password",
		Endpoint: endpoint,
		Method:   "POST",
		Fields: []model.Field{
			{
				ID:     FieldPassword,
				Type:   model.FieldTypePassword,
				Label:  "Current password",
				Rules:  []model.ValidationRule{required("Please enter your current password of at least 6 characters"), minLength("6", "Please enter your current password of at least 6 characters")},
				Submit: hash,
			},
			{
				ID:     FieldNewPassword,
				Type:   model.FieldTypePassword,
				Label:  "New password",
				Rules:  []model.ValidationRule{required("Please enter a new password of at least 6 characters"), minLength("6", "Please enter a new password of at least 6 characters")},
				Submit: hash,
			},
			{
				ID:    FieldConfirm,
				Type:  model.FieldTypePassword,
				Label: "Confirm new password",
				Rules: []model.ValidationRule{
					required("Please repeat the new password"),
					{
						Kind:    model.ValidationRuleCustom,
						Params:  map[string]string{"name": "equalTo", "field": FieldNewPassword},
						Message: "The two passwords do not match",
					},
				},
				Submit: hash,
			},
		},
	}
}

// Result tells the caller where to go after a successful submission.
type Result struct {
	Redirect string
	Delay    time.Duration
	Message  string
}

// Flow submits an account form. Unlike the modal container, a server
// refusal is transient: it goes to the notifier and the form stays usable.
type Flow struct {
	form     model.FormModel
	redirect string
	delay    time.Duration
	message  string
	notifier pipeline.Notifier
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
}

// Option configures a Flow.
type Option func(*flowConfig)

type flowConfig struct {
	transport pipeline.Transport
	notifier  pipeline.Notifier
	logger    *zap.Logger
}

// WithTransport sets the transport.
func WithTransport(t pipeline.Transport) Option {
	return func(cfg *flowConfig) {
		cfg.transport = t
	}
}

// WithNotifier sets the transient message sink.
func WithNotifier(n pipeline.Notifier) Option {
	return func(cfg *flowConfig) {
		cfg.notifier = n
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *flowConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// NewLogin returns a flow that redirects immediately after sign-in.
func NewLogin(endpoint, redirect string, options ...Option) *Flow {
	return newFlow(LoginForm(endpoint), redirect, 0, "", options)
}

// NewChangePassword returns a flow that confirms the change and redirects
// after ChangePasswordDelay.
func NewChangePassword(endpoint, redirect string, options ...Option) *Flow {
	return newFlow(ChangePasswordForm(endpoint), redirect, ChangePasswordDelay,
		"Operation succeeded, returning to the main page in 3 seconds", options)
}

func newFlow(form model.FormModel, redirect string, delay time.Duration, message string, options []Option) *Flow {
	cfg := flowConfig{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.notifier == nil {
		cfg.notifier = pipeline.LogNotifier{Logger: cfg.logger}
	}
	return &Flow{
		form:     form,
		redirect: redirect,
		delay:    delay,
		message:  message,
		notifier: cfg.notifier,
		logger:   cfg.logger,
		pipeline: pipeline.New(form,
			pipeline.WithTransport(cfg.transport),
			pipeline.WithNotifier(cfg.notifier),
			pipeline.WithLogger(cfg.logger),
		),
	}
}

// Form returns the flow's form.
func (f *Flow) Form() model.FormModel {
	return f.form
}

// Submit validates and posts values. Server refusals are reported to the
// notifier and returned wrapped in ErrRejected.
func (f *Flow) Submit(ctx context.Context, values map[string]any) (Result, error) {
	outcome, err := f.pipeline.Submit(ctx, values, nil)
	if err != nil {
		return Result{}, err
	}
	if outcome.State == pipeline.StateBusinessError {
		f.notifier.Error(outcome.Message)
		return Result{}, fmt.Errorf("%w: %s", ErrRejected, outcome.Message)
	}

	f.logger.Info("account form accepted", zap.String("form", f.form.ID))
	if f.message != "" {
		f.notifier.Success(f.message)
	}
	return Result{Redirect: f.redirect, Delay: f.delay, Message: f.message}, nil
}
