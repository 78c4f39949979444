package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Formats lists the formats Write understands
var Formats = []string{"text", "json", "csv", "yaml", "html"}

// Write renders view to w in the named format
func Write(w io.Writer, view View, format string) error {
	switch format {
	case "text", "":
		return writeText(w, view)
	case "json":
		return writeJSON(w, view)
	case "csv":
		return writeCSV(w, view)
	case "yaml":
		return writeYAML(w, view)
	case "html":
		return RenderDocument(w, view)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeText(w io.Writer, view View) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Borrowed Books Report: %s\n", BucketLabel(view.Bucket))
	fmt.Fprintln(w, "========================================")
	if !view.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "Generated: %s\n", view.GeneratedAt.Format("Jan 2, 2006 3:04 PM"))
	}
	fmt.Fprintln(w)

	switch view.State {
	case StateLoading:
		fmt.Fprintln(w, "Loading...")
		return nil
	case StateError, StateEmpty:
		fmt.Fprintln(w, view.Message)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tBORROWER\tBORROWED\tDUE/RETURNED\tSTATUS")
	for _, row := range view.Rows {
		status := row.StatusText()
		if row.ShowOverdue() {
			status = fmt.Sprintf("%s (%d days overdue)", status, row.DaysOverdue)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			truncate(row.TitleText(), 40), row.BorrowerText(), row.BorrowDateText(), row.DueDateText(), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal: %d\n", len(view.Rows))
	return nil
}

func writeJSON(w io.Writer, view View) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}

func writeYAML(w io.Writer, view View) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(view); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

func writeCSV(w io.Writer, view View) error {
	writer := csv.NewWriter(w)

	header := []string{"ID", "Title", "Borrower", "Borrowed", "Due/Returned", "Status", "Days Overdue", "Source"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range view.Rows {
		record := []string{
			row.ID,
			row.Title,
			row.BorrowerIdentifier,
			row.BorrowDateText(),
			row.DueDateText(),
			string(row.Status),
			strconv.Itoa(row.DaysOverdue),
			string(row.SourceKind),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// truncate shortens s to maxLen runes, ending on a rune boundary
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
