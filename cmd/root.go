package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/borrowreport/internal/config"
	"github.com/spf13/cobra"
)

// options are the flags shared by every subcommand
type options struct {
	cfg     config.Config
	verbose bool
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "borrowreport",
		Short: "Borrowed books reporting for the library circulation API",
		Long: `Borrowreport merges the borrowed and approved book collections from the
library circulation API, filters them to active loans in a time range, and
renders or exports the result.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			opts.applyEnv(cmd)

			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfg.APIURL, "api-url", "", "Library API base URL (env LIBRARY_API_URL)")
	flags.StringVar(&opts.cfg.ImageBaseURL, "image-base-url", "", "Base URL for relative cover image paths (env LIBRARY_IMAGE_BASE_URL)")
	flags.DurationVar(&opts.cfg.Timeout, "timeout", 0, "Per-request API timeout (env LIBRARY_API_TIMEOUT, default 30s)")
	flags.StringVar(&opts.cfg.Timezone, "timezone", "", "IANA timezone for day and month ranges (env REPORT_TIMEZONE)")
	flags.StringVar(&opts.cfg.ChromeBin, "chrome", "", "Chrome binary for PDF/PNG export (env CHROME_BIN)")
	flags.BoolVar(&opts.verbose, "verbose", false, "Verbose logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newExportCmd(opts))

	return cmd
}

// applyEnv fills in every setting not given as a flag from the environment
func (o *options) applyEnv(cmd *cobra.Command) {
	env := config.FromEnv()
	flags := cmd.Flags()

	if !flags.Changed("api-url") {
		o.cfg.APIURL = env.APIURL
	}
	if !flags.Changed("image-base-url") {
		o.cfg.ImageBaseURL = env.ImageBaseURL
	}
	if !flags.Changed("timeout") {
		o.cfg.Timeout = env.Timeout
	}
	if !flags.Changed("timezone") {
		o.cfg.Timezone = env.Timezone
	}
	if !flags.Changed("chrome") {
		o.cfg.ChromeBin = env.ChromeBin
	}
	o.cfg.APIToken = env.APIToken
}
