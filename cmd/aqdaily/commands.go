package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"aqdaily/internal/app"
	"aqdaily/internal/config"
	"aqdaily/internal/operations"
	"aqdaily/pkg/contracts"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	date       string

	// now and appOptions are replaced in tests.
	now        func() time.Time
	appOptions app.Options
}

func (o *globalOptions) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "path to the YAML configuration file (default $AQ_CONFIG or ./aqdaily.yaml)")
	fs.StringVarP(&o.date, "date", "d", "", "day to process as YYYY-MM-DD (default yesterday, UTC)")
}

// window resolves --date, defaulting to yesterday.
func (o *globalOptions) window() (operations.Window, error) {
	if o.date == "" {
		return operations.YesterdayWindow(o.now().UTC()), nil
	}
	return operations.ParseDayWindow(o.date)
}

func (o *globalOptions) build(ctx context.Context) (*app.Application, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, o.appOptions)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{now: time.Now}
	return newRootCommandWithOptions(opts, stdout, stderr)
}

func newRootCommandWithOptions(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   config.AppName,
		Short: "aqdaily - daily air-quality sensor scraping, availability and analysis",
		Long: `aqdaily downloads a day of readings from every configured air-quality
sensor, validates them into clean long-format files, reports per-device
data availability and builds resampled wide tables for analysis.

Version: ` + contracts.Version + "\n",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(rc.PersistentFlags())
	rc.SetOut(stdout)
	rc.SetErr(stderr)

	rc.AddCommand(
		newOperationCommand(opts, "scrape", "Fetch, validate and save every device, then write the availability report",
			operations.StepIDScrape, operations.StepIDReport),
		newOperationCommand(opts, "process", "Build resampled wide tables from saved clean files",
			operations.StepIDProcess),
		newOperationCommand(opts, "run", "Scrape, report and process in one go"),
		newServeCommand(opts),
		newVersionCommand(stdout),
	)
	return rc
}

// newOperationCommand runs steps (all when empty) over the selected day.
func newOperationCommand(opts *globalOptions, use, short string, steps ...string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := opts.window()
			if err != nil {
				return err
			}
			a, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(context.WithoutCancel(cmd.Context()))

			resp, err := a.RunOperation(cmd.Context(), steps, window)
			if resp != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s in %s\n",
					use, window.Day(), resp.Status, resp.Duration.Round(time.Millisecond))
			}
			return err
		},
	}
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports, health, metrics and on-demand runs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				a.Config.Server.Port = port
				a.Server.Addr = fmt.Sprintf(":%d", port)
			}
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(contracts.GetVersionInfo())
			}
			_, err := fmt.Fprintln(stdout, contracts.GetFullVersionString())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
