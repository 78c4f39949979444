package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleView(), "text"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Last 7 days") || !strings.Contains(out, "active (3 days overdue)") || !strings.Contains(out, "Total: 2") {
		t.Errorf("Unexpected text report:\n%s", out)
	}

	buf.Reset()
	if err := Write(&buf, View{State: StateError, Message: ErrorMessage}, "text"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), ErrorMessage) || strings.Contains(buf.String(), "TITLE") {
		t.Errorf("Expected error text without table, got:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleView(), "json"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded struct {
		State string `json:"state"`
		Rows  []struct {
			ID          string `json:"id"`
			DaysOverdue int    `json:"days_overdue"`
			Source      string `json:"source"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded.State != "ready" || len(decoded.Rows) != 2 || decoded.Rows[0].DaysOverdue != 3 || decoded.Rows[1].Source != "approved" {
		t.Errorf("Unexpected JSON report: %+v", decoded)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleView(), "yaml"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}
	rows, ok := decoded["rows"].([]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %v", decoded["rows"])
	}
	first := rows[0].(map[string]any)
	if first["id"] != "r1" || first["days_overdue"] != 3 {
		t.Errorf("Expected inlined record fields, got %v", first)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleView(), "csv"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(rows))
	}
	if rows[1][3] != "Jan 5, 2025" || rows[1][6] != "3" || rows[2][3] != "N/A" {
		t.Errorf("Unexpected CSV rows: %v", rows)
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, sampleView(), "xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		maxLen   int
		expected string
	}{
		{name: "short", value: "Dune", maxLen: 10, expected: "Dune"},
		{name: "ascii", value: "The Left Hand of Darkness", maxLen: 10, expected: "The Lef..."},
		{name: "multibyte", value: strings.Repeat("é", 30), maxLen: 20, expected: strings.Repeat("é", 17) + "..."},
		{name: "multibyte fits", value: strings.Repeat("é", 20), maxLen: 20, expected: strings.Repeat("é", 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.value, tt.maxLen)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
			if !utf8.ValidString(result) {
				t.Errorf("Expected valid UTF-8, got %q", result)
			}
		})
	}
}
