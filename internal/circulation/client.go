package circulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/borrowreport/internal/models"
)

const (
	BorrowedPath = "/api/books/borrowed"
	ApprovedPath = "/api/transactions/approved-books"
)

// ErrNetwork marks a fetch that failed in transport, returned a non-2xx
// status, or returned a body that is not the expected JSON payload.
var ErrNetwork = errors.New("library API request failed")

// Client talks to the library circulation API
type Client struct {
	BaseURL    string
	Token      string
	httpClient *http.Client
}

// NewClient creates a new circulation API client
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchBorrowed fetches the regular borrow collection, served wrapped as {"books": [...]}
func (c *Client) FetchBorrowed(ctx context.Context) ([]models.RawRegularRecord, error) {
	body, err := c.get(ctx, BorrowedPath)
	if err != nil {
		return nil, err
	}

	var envelope models.BorrowedEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to decode borrowed books: %v", ErrNetwork, err)
	}

	records := decodeEach[models.RawRegularRecord](envelope.Books, BorrowedPath)
	slog.Debug("Fetched borrowed books", "count", len(records))
	return records, nil
}

// FetchApproved fetches approved transactions, served as a bare array
func (c *Client) FetchApproved(ctx context.Context) ([]models.RawApprovedRecord, error) {
	body, err := c.get(ctx, ApprovedPath)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: failed to decode approved books: %v", ErrNetwork, err)
	}

	records := decodeEach[models.RawApprovedRecord](items, ApprovedPath)
	slog.Debug("Fetched approved books", "count", len(records))
	return records, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s: %w", ErrNetwork, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %s returned status %d: %s", ErrNetwork, path, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrNetwork, path, err)
	}
	return body, nil
}

// decodeEach decodes items one at a time. Record fields are lenient, so
// only elements that are not JSON objects fail; those are skipped.
func decodeEach[T any](items []json.RawMessage, source string) []T {
	records := make([]T, 0, len(items))
	for i, item := range items {
		var record T
		if err := json.Unmarshal(item, &record); err != nil {
			slog.Warn("Skipping malformed record", "source", source, "index", i, "err", err)
			continue
		}
		records = append(records, record)
	}
	return records
}
