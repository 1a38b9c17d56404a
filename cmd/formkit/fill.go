package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/internal/ui"
	"github.com/goliatone/go-formkit/pkg/binding"
	"github.com/goliatone/go-formkit/pkg/container"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/tui"
	"github.com/goliatone/go-formkit/pkg/transport"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// DefaultMaxAttempts bounds how often a rejected form is prompted again.
const DefaultMaxAttempts = 5

type fillFlags struct {
	record      recordFlags
	format      string
	baseURL     string
	maxAttempts int
}

func newFillCmd(global *globalFlags) *cobra.Command {
	flags := &fillFlags{}
	cmd := &cobra.Command{
		Use:   "fill <form-id>",
		Short: "Fill a form in the terminal and submit it",
		Long: `Prompt for every visible field of a form, then validate and submit it.

Forms with a remote endpoint are posted to --base-url + endpoint. Validation
errors and business errors re-open the prompts with the messages shown.
Local forms print the transformed payload in --format.`,
		Example: `  # Fill the local showcase form and print YAML
  formkit fill showcase --format yaml

  # Create a site against a running 'formkit serve'
  formkit fill site --base-url http://localhost:8383`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(global)
			if err != nil {
				return err
			}
			form, err := lookupForm(store, args[0])
			if err != nil {
				return err
			}
			src, err := flags.record.source()
			if err != nil {
				return err
			}
			format, ok := tui.ParseOutputFormat(flags.format)
			if !ok {
				return fmt.Errorf("unknown format %q", flags.format)
			}
			form.Endpoint = resolveEndpoint(flags.baseURL, form.Endpoint)

			renderer, err := tui.New(tui.WithOutputFormat(format))
			if err != nil {
				return err
			}
			return runFill(cmd.Context(), cmd.OutOrStdout(), renderer, form, src, flags.maxAttempts)
		},
	}
	cmd.Flags().StringVar(&flags.format, "format", string(tui.OutputFormatJSON), "Payload format for local forms: json, form, pretty, yaml")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Origin prepended to relative endpoints")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", DefaultMaxAttempts, "Give up after this many rejected submissions")
	addRecordFlags(cmd, &flags.record)
	return cmd
}

// resolveEndpoint joins base and endpoint unless endpoint is local or absolute.
func resolveEndpoint(base, endpoint string) string {
	if base == "" || endpoint == "" || endpoint == "#" ||
		strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// collector prompts for values; *tui.Renderer satisfies it.
type collector interface {
	Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (map[string]any, error)
	Serialize(form model.FormModel, values map[string]any) ([]byte, error)
}

func runFill(ctx context.Context, out io.Writer, prompts collector, form model.FormModel, src binding.Source, maxAttempts int) error {
	logger := logging.Logger()
	var completed map[string]any
	inline := container.NewInline(form, src,
		container.WithTransport(transport.New(transport.WithLogger(logger))),
		container.WithValidator(validation.New()),
		container.WithNotifier(ui.Notifier{Out: out}),
		container.WithLogger(logger),
		container.WithOnComplete(func(payload map[string]any) { completed = payload }),
	)

	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	prompt := src
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		state := inline.State()
		values, err := prompts.Collect(ctx, form, render.RenderOptions{
			Source: prompt,
			Errors: state.Errors,
			Alert:  state.Alert,
		})
		if err != nil {
			return err
		}

		outcome, err := inline.Submit(ctx, values)
		var invalid *validation.Error
		switch {
		case errors.Is(err, pipeline.ErrUnchanged):
			fmt.Fprintln(out, ui.MutedStyle.Render("nothing changed"))
			return nil
		case errors.As(err, &invalid):
			logger.Debug("form invalid", zap.String("form", form.ID), zap.Int("attempt", attempt))
			prompt = retrySource(src, values)
			continue
		case err != nil:
			return err
		}

		fmt.Fprintln(out, ui.RenderOutcome(outcome))
		if outcome.State == pipeline.StateBusinessError {
			prompt = retrySource(src, values)
			continue
		}
		if form.Local() && completed != nil {
			return writePayload(out, prompts, form, completed)
		}
		return nil
	}
	return fmt.Errorf("form %s rejected %d times", form.ID, maxAttempts)
}

// retrySource prefills the next round of prompts with what was entered.
func retrySource(src binding.Source, values map[string]any) binding.Source {
	next := src
	next.Initial = values
	if next.Mode != model.ModeEdit {
		next.Mode = model.ModeCreate
	}
	return next
}

func writePayload(out io.Writer, prompts collector, form model.FormModel, payload map[string]any) error {
	data, err := prompts.Serialize(form, payload)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}
