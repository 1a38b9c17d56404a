package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/internal/ui"
	"github.com/goliatone/go-formkit/pkg/account"
	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
	"github.com/goliatone/go-formkit/pkg/transport"
	"github.com/goliatone/go-formkit/pkg/validation"
)

type loginFlags struct {
	endpoint       string
	redirect       string
	changePassword bool
	maxAttempts    int
}

func newLoginCmd(_ *globalFlags) *cobra.Command {
	flags := &loginFlags{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in or change a password against an account endpoint",
		Long: `Prompt for credentials and post them to --endpoint.

Passwords are sent as SHA-1 hex digests. A refused attempt prints the
server message and prompts again.`,
		Example: `  # Sign in
  formkit login --endpoint http://localhost:8080/api/login

  # Change the current password
  formkit login --change-password --endpoint http://localhost:8080/api/password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderer, err := tui.New()
			if err != nil {
				return err
			}
			logger := logging.Logger()
			opts := []account.Option{
				account.WithTransport(transport.New(transport.WithLogger(logger))),
				account.WithNotifier(ui.Notifier{Out: cmd.OutOrStdout()}),
				account.WithLogger(logger),
			}
			var flow *account.Flow
			if flags.changePassword {
				flow = account.NewChangePassword(flags.endpoint, flags.redirect, opts...)
			} else {
				flow = account.NewLogin(flags.endpoint, flags.redirect, opts...)
			}
			return runLogin(cmd.Context(), cmd.OutOrStdout(), renderer, flow, flags.maxAttempts)
		},
	}
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "Account endpoint URL")
	cmd.Flags().StringVar(&flags.redirect, "redirect", "/", "Location reported after success")
	cmd.Flags().BoolVar(&flags.changePassword, "change-password", false, "Run the change-password form")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", DefaultMaxAttempts, "Give up after this many refused attempts")
	_ = cmd.MarkFlagRequired("endpoint")
	return cmd
}

func runLogin(ctx context.Context, out io.Writer, prompts collector, flow *account.Flow, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	form := flow.Form()
	src := binding.Source{Mode: model.ModeCreate}
	var mapping render.ErrorMapping

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		values, err := prompts.Collect(ctx, form, render.RenderOptions{
			Source: src,
			Errors: mapping.Fields,
			Alert:  firstMessage(mapping.Form),
		})
		if err != nil {
			return err
		}

		result, err := flow.Submit(ctx, values)
		if errors.Is(err, account.ErrRejected) {
			// the notifier already printed the server message
			mapping = render.ErrorMapping{}
			logging.Logger().Debug("account form refused", zap.String("form", form.ID), zap.Int("attempt", attempt))
			continue
		}
		var invalid *validation.Error
		if errors.As(err, &invalid) {
			mapping = render.MapError(form, err)
			src = binding.Source{Mode: model.ModeCreate, Initial: withoutSecrets(form, values)}
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(out, ui.SuccessTitleStyle.Render(ui.SuccessMarker+" accepted"))
		if result.Redirect != "" {
			fmt.Fprintf(out, "redirect: %s", result.Redirect)
			if result.Delay > 0 {
				fmt.Fprintf(out, " (after %s)", result.Delay)
			}
			fmt.Fprintln(out)
		}
		return nil
	}
	return fmt.Errorf("%s refused %d times", form.ID, maxAttempts)
}

func firstMessage(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[0]
}

// withoutSecrets keeps the non-password answers for the next prompt round.
func withoutSecrets(form model.FormModel, values map[string]any) map[string]any {
	kept := make(map[string]any, len(values))
	for _, field := range form.Fields {
		if field.Type == model.FieldTypePassword {
			continue
		}
		if value, ok := values[field.ID]; ok {
			kept[field.ID] = value
		}
	}
	return kept
}
