package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/borrowreport/internal/borrowing"
	"github.com/lehigh-university-libraries/borrowreport/internal/export"
	"github.com/lehigh-university-libraries/borrowreport/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd(opts *options) *cobra.Command {
	var bucketName string
	var format string
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the borrowed books report",
		Long: `Fetches the borrowed and approved collections, keeps active loans
borrowed within the selected range, and prints them.

Ranges: day (today), week (last 7 days), month (since the 1st), all.`,
		Example: `  # Loans made today as a table
  borrowreport report --bucket day

  # This month's loans as CSV
  borrowreport report --bucket month --format csv > month.csv

  # Report on saved payloads without calling the API
  borrowreport report --borrowed-file borrowed.json --approved-file approved.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := borrowing.ParseBucket(bucketName)
			if err != nil {
				return err
			}
			svc, err := opts.newReportService(src)
			if err != nil {
				return err
			}

			view, ok := svc.Load(cmd.Context(), bucket)
			if !ok {
				return cmd.Context().Err()
			}
			if err := report.Write(cmd.OutOrStdout(), view, format); err != nil {
				return err
			}
			if view.State == report.StateError {
				return fmt.Errorf("report could not be built")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bucketName, "bucket", "all", "Time range: day, week, month or all")
	cmd.Flags().StringVar(&format, "format", "text", "Output format ("+strings.Join(report.Formats, ", ")+")")
	cmd.Flags().StringVar(&src.borrowedFile, "borrowed-file", "", "Saved borrowed books payload (.json or .jsonl)")
	cmd.Flags().StringVar(&src.approvedFile, "approved-file", "", "Saved approved books payload (.json or .jsonl)")

	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var bucketName string
	var format string
	var outputDir string
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the borrowed books report to a file",
		Long: `Builds the report and writes it to borrowed-books-<range>.<format> in the
output directory. PDF and PNG are rendered with headless Chrome.`,
		Example: `  # Printable PDF of this week's loans
  borrowreport export --bucket week --format pdf

  # Parquet table for analysis
  borrowreport export --bucket month --format parquet --output ./exports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := borrowing.ParseBucket(bucketName)
			if err != nil {
				return err
			}
			svc, err := opts.newReportService(src)
			if err != nil {
				return err
			}

			browser := export.NewBrowser(opts.cfg.ChromeBin)
			defer func() {
				if err := browser.Close(); err != nil {
					slog.Error("Failed to close browser", "err", err)
				}
			}()

			sink, err := export.New(format, browser)
			if err != nil {
				return err
			}

			view, ok := svc.Load(cmd.Context(), bucket)
			if !ok {
				return cmd.Context().Err()
			}
			if view.State == report.StateError {
				return errors.New(view.Message)
			}

			doc, err := export.NewDocument(view)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			path := filepath.Join(outputDir, doc.FileName(sink))

			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := sink.Export(cmd.Context(), file, doc); err != nil {
				file.Close()
				_ = os.Remove(path)
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}

			absPath, _ := filepath.Abs(path)
			slog.Info("Report exported", "path", absPath, "rows", len(view.Rows))
			fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Report exported to: %s\n", absPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucketName, "bucket", "all", "Time range: day, week, month or all")
	cmd.Flags().StringVar(&format, "format", "pdf", "Export format ("+strings.Join(export.Formats, ", ")+")")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory")
	cmd.Flags().StringVar(&src.borrowedFile, "borrowed-file", "", "Saved borrowed books payload (.json or .jsonl)")
	cmd.Flags().StringVar(&src.approvedFile, "approved-file", "", "Saved approved books payload (.json or .jsonl)")

	return cmd
}
