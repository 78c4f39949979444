package circulation

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/borrowreport/internal/models"
)

// FileSource reads saved API payloads from disk for offline reports.
// Files may hold the payload exactly as the API serves it (.json) or one
// record per line (.jsonl).
type FileSource struct {
	BorrowedPath string
	ApprovedPath string
}

// NewFileSource creates a source over two payload files. An empty path
// stands for an empty collection.
func NewFileSource(borrowedPath, approvedPath string) *FileSource {
	return &FileSource{
		BorrowedPath: borrowedPath,
		ApprovedPath: approvedPath,
	}
}

func (s *FileSource) FetchBorrowed(ctx context.Context) ([]models.RawRegularRecord, error) {
	items, err := readItems(ctx, s.BorrowedPath, true)
	if err != nil {
		return nil, err
	}
	return decodeEach[models.RawRegularRecord](items, s.BorrowedPath), nil
}

func (s *FileSource) FetchApproved(ctx context.Context) ([]models.RawApprovedRecord, error) {
	items, err := readItems(ctx, s.ApprovedPath, false)
	if err != nil {
		return nil, err
	}
	return decodeEach[models.RawApprovedRecord](items, s.ApprovedPath), nil
}

func readItems(ctx context.Context, path string, enveloped bool) ([]json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jsonl":
		return readJSONL(path)
	case ".json":
		return readJSON(path, enveloped)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .json, .jsonl)", ext)
	}
}

func readJSON(path string, enveloped bool) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data = bytes.TrimSpace(data)
	// Accept a bare array for either collection
	if !enveloped || bytes.HasPrefix(data, []byte("[")) {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return items, nil
	}

	var envelope models.BorrowedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return envelope.Books, nil
}

func readJSONL(path string) ([]json.RawMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var items []json.RawMessage
	scanner := bufio.NewScanner(file)

	// Embedded cover images make for long lines
	const maxCapacity = 10 * 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			slog.Warn("Skipping invalid JSON line", "path", path, "line", lineNum)
			continue
		}
		items = append(items, json.RawMessage(bytes.Clone(line)))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return items, nil
}
