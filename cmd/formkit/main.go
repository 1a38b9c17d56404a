// Formkit renders, fills and submits declarative forms.
//
// Forms, master/detail tables and upload areas are read from YAML or JSON
// documents (see pkg/formconfig). Without --config the embedded demo
// documents are used, which target the backend started by 'formkit serve'.
//
// Usage:
//
//	formkit [command] [flags]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/internal/version"
)

func main() {
	err := newRootCmd().Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	configDir string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "formkit",
		Short: "Declarative forms for the terminal and the browser",
		Long: `Formkit renders, fills and submits declarative forms.

Forms are described in YAML or JSON documents. Without --config the embedded
demo documents are used; 'formkit serve' starts a backend they can talk to.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Initialize(flags.logLevel)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $"+logging.LogLevelEnvVar)
	root.PersistentFlags().StringVar(&flags.configDir, "config", "", "Directory of form documents (embedded demo when empty)")

	root.AddCommand(
		newRenderCmd(flags),
		newFillCmd(flags),
		newUploadCmd(flags),
		newLoginCmd(flags),
		newImportOpenAPICmd(),
		newServeCmd(flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String("formkit"))
		},
	}
}
