package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/container"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/vanilla"
)

const (
	variantModal  = "modal"
	variantInline = "inline"
	variantSearch = "search"
)

type renderFlags struct {
	record      recordFlags
	output      string
	variant     string
	action      string
	itemsPerRow int
	inlineCSS   bool
	keyField    string
	csrfToken   string
}

func newRenderCmd(global *globalFlags) *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <form-id>",
		Short: "Render a form as HTML",
		Long: `Render a configured form to HTML with the vanilla renderer.

The form is hosted in a modal, inline or search container. Initial and
ancestor records are JSON objects, inline or as @file.`,
		Example: `  # Render the demo site form in a modal
  formkit render site

  # Edit an existing record
  formkit render site --initial '{"ID":"P1","Name":"North"}'

  # Render a search bar to a file
  formkit render site-search --variant search --output search.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, global, flags, args[0])
		},
	}
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().StringVar(&flags.variant, "variant", variantModal, "Container: modal, inline or search")
	cmd.Flags().StringVar(&flags.action, "action", "", "Override the form action URL")
	cmd.Flags().IntVar(&flags.itemsPerRow, "items-per-row", 0, "Arrange fields in a grid")
	cmd.Flags().BoolVar(&flags.inlineCSS, "inline-css", false, "Embed the default stylesheet")
	cmd.Flags().StringVar(&flags.keyField, "key-field", "ID", "Record key posted as a hidden field in edit mode")
	cmd.Flags().StringVar(&flags.csrfToken, "csrf-token", "", "CSRF token posted as the _csrf hidden field")
	addRecordFlags(cmd, &flags.record)
	return cmd
}

func addRecordFlags(cmd *cobra.Command, flags *recordFlags) {
	cmd.Flags().StringVar(&flags.initial, "initial", "", "Initial record as JSON or @file")
	cmd.Flags().StringVar(&flags.ancestor, "ancestor", "", "Ancestor record as JSON or @file")
	cmd.Flags().BoolVar(&flags.edit, "edit", false, "Force edit mode")
}

func runRender(cmd *cobra.Command, global *globalFlags, flags *renderFlags, id string) error {
	store, err := loadStore(global)
	if err != nil {
		return err
	}
	form, err := lookupForm(store, id)
	if err != nil {
		return err
	}
	src, err := flags.record.source()
	if err != nil {
		return err
	}
	renderer, err := vanilla.New(vanilla.WithInlineStylesheet(flags.inlineCSS))
	if err != nil {
		return err
	}

	base := render.RenderOptions{
		Source: src,
		Layout: render.Layout{Action: flags.action, ItemsPerRow: flags.itemsPerRow},
	}
	if src.Mode == model.ModeEdit {
		if key, ok := render.RecordKey(flags.keyField, src.Initial); ok {
			base.Hidden = append(base.Hidden, key)
		}
	}
	if flags.csrfToken != "" {
		base.Hidden = append(base.Hidden, render.CSRFToken("_csrf", flags.csrfToken))
	}
	logger := logging.Logger()
	logger.Debug("rendering form",
		zap.String("form", form.ID),
		zap.String("variant", flags.variant),
		zap.String("mode", src.Mode.String()),
	)

	ctx := cmd.Context()
	var out []byte
	switch flags.variant {
	case variantModal:
		modal := container.NewModal(container.WithLogger(logger), container.WithItemsPerRow(flags.itemsPerRow))
		modal.Open(form.Title, form, src)
		out, err = modal.Render(ctx, renderer, base)
	case variantInline:
		inline := container.NewInline(form, src, container.WithLogger(logger), container.WithItemsPerRow(flags.itemsPerRow))
		out, err = inline.Render(ctx, renderer, base)
	case variantSearch:
		var search *container.Search
		search, err = container.NewSearch(form.Fields, container.WithLogger(logger), container.WithItemsPerRow(flags.itemsPerRow))
		if err == nil {
			out, err = search.Render(ctx, renderer, base)
		}
	default:
		return fmt.Errorf("unknown variant %q", flags.variant)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", form.ID, err)
	}

	if flags.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(flags.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", flags.output)
	return nil
}
