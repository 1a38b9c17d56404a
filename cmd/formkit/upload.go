package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formkit/internal/logging"
	"github.com/goliatone/go-formkit/internal/ui"
	"github.com/goliatone/go-formkit/pkg/upload"
)

type uploadFlags struct {
	baseURL  string
	barWidth int
}

func newUploadCmd(global *globalFlags) *cobra.Command {
	flags := &uploadFlags{}
	cmd := &cobra.Command{
		Use:   "upload <upload-id> <file>...",
		Short: "Upload files through a configured upload area",
		Long: `Check files against the accept list and size limit of an upload area,
send the accepted ones and print one alert per file.`,
		Example: `  # Import sites into a running 'formkit serve'
  formkit upload sites sites.csv --base-url http://localhost:8383`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(global)
			if err != nil {
				return err
			}
			cfg, ok := store.Upload(args[0])
			if !ok {
				return fmt.Errorf("unknown upload area %q (available: %s)", args[0], strings.Join(store.UploadIDs(), ", "))
			}
			cfg.URL = resolveEndpoint(flags.baseURL, cfg.URL)

			out := cmd.OutOrStdout()
			bar := ui.NewUploadProgress(out, flags.barWidth)
			session, err := upload.New(cfg,
				upload.WithLogger(logging.Logger()),
				upload.WithNotifier(ui.Notifier{Out: cmd.ErrOrStderr()}),
				upload.WithOnProgress(bar.Update),
			)
			if err != nil {
				return err
			}
			defer session.Close()

			mainTip, secondaryTip := cfg.Tips()
			fmt.Fprintln(out, ui.TitleStyle.Render(mainTip))
			fmt.Fprintln(out, ui.MutedStyle.Render(secondaryTip))

			files := make([]upload.File, 0, len(args)-1)
			for _, path := range args[1:] {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				info, err := f.Stat()
				if err != nil {
					return err
				}
				files = append(files, upload.File{Name: filepath.Base(path), Size: info.Size(), Reader: f})
			}

			alerts, err := session.Upload(cmd.Context(), files...)
			if len(alerts) > 0 {
				fmt.Fprintln(out, ui.RenderAlerts(alerts))
			}
			if err != nil {
				return err
			}
			for _, alert := range alerts {
				if alert.Type == upload.AlertError {
					return fmt.Errorf("upload rejected by server")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Origin prepended to a relative upload URL")
	cmd.Flags().IntVar(&flags.barWidth, "bar-width", 40, "Progress bar width")
	return cmd
}
