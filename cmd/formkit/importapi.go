package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/pkg/formconfig"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/openapi"
)

type importFlags struct {
	operations []string
	list       bool
	endpoint   string
	noValidate bool
	output     string
	timeout    time.Duration
}

func newImportOpenAPICmd() *cobra.Command {
	flags := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import-openapi <file-or-url>",
		Short: "Generate form documents from OpenAPI operations",
		Long: `Build one form per OpenAPI operation from its request body schema and
write them as a form document that --config directories can load.

Without --operation every operation that has a request body is imported.`,
		Example: `  # List operations
  formkit import-openapi api.yaml --list

  # Import one operation into the config directory
  formkit import-openapi api.yaml --operation createSite -o forms/site.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := openapi.DetectSource(args[0])
			if err != nil {
				return err
			}
			data, err := openapi.Load(ctx, src, openapi.WithHTTPFallback(flags.timeout))
			if err != nil {
				return err
			}
			var opts []openapi.Option
			if flags.noValidate {
				opts = append(opts, openapi.WithoutValidation())
			}

			ops, err := openapi.Operations(ctx, data, opts...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.list {
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tMETHOD\tPATH\tBODY\tSUMMARY")
				for _, op := range ops {
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", op.ID, op.Method, op.Path, op.HasBody, op.Summary)
				}
				return w.Flush()
			}

			ids := flags.operations
			if len(ids) == 0 {
				for _, op := range ops {
					if op.HasBody {
						ids = append(ids, op.ID)
					}
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("no operation with a request body in %s", src.Location)
			}
			if flags.endpoint != "" {
				opts = append(opts, openapi.WithEndpoint(flags.endpoint))
			}

			forms := make([]model.FormModel, 0, len(ids))
			for _, id := range ids {
				form, err := openapi.FormFromOperation(ctx, data, id, opts...)
				if err != nil {
					return err
				}
				if skipped := form.Metadata["skipped"]; skipped != "" {
					logging.Logger().Warn("properties skipped", zap.String("form", form.ID), zap.String("fields", skipped))
				}
				forms = append(forms, form)
			}
			doc, err := formconfig.Marshal(forms...)
			if err != nil {
				return err
			}
			if flags.output == "" {
				_, err = out.Write(doc)
				return err
			}
			if err := os.WriteFile(flags.output, doc, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d form(s) written to %s\n", len(forms), flags.output)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&flags.operations, "operation", nil, "Operation id to import (repeatable)")
	cmd.Flags().BoolVar(&flags.list, "list", false, "List operations and exit")
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "Override the endpoint of imported forms")
	cmd.Flags().BoolVar(&flags.noValidate, "no-validate", false, "Skip OpenAPI document validation")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "HTTP timeout for URL sources")
	return cmd
}
