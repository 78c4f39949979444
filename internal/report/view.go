package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/borrowreport/internal/borrowing"
	"github.com/lehigh-university-libraries/borrowreport/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrorMessage is the only failure text users see; which source failed is logged.
const ErrorMessage = "Error connecting to server, try again."

// EmptyMessage is shown when filtering leaves nothing to report
const EmptyMessage = "No records for the selected range."

// DateLayout is the short human-readable date form used in reports
const DateLayout = "Jan 2, 2006"

// NotAvailable stands in for missing values
const NotAvailable = "N/A"

// State is where a report view is in its load cycle
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

// Source provides the two raw borrow collections
type Source interface {
	FetchBorrowed(ctx context.Context) ([]models.RawRegularRecord, error)
	FetchApproved(ctx context.Context) ([]models.RawApprovedRecord, error)
}

// Row is a reportable record with its derived fields
type Row struct {
	models.BorrowRecord `yaml:",inline"`
	DaysOverdue         int `json:"days_overdue" yaml:"days_overdue"`
}

// ShowOverdue reports whether the overdue indicator belongs next to the status badge
func (r Row) ShowOverdue() bool {
	return r.IsActive() && r.DaysOverdue > 0
}

// BorrowDateText formats the borrow date or returns N/A
func (r Row) BorrowDateText() string { return formatDate(r.BorrowDate) }

// DueDateText formats the due/return date or returns N/A
func (r Row) DueDateText() string { return formatDate(r.DueOrReturnDate) }

// TitleText returns the title or N/A
func (r Row) TitleText() string { return orNotAvailable(r.Title) }

// BorrowerText returns the borrower or N/A
func (r Row) BorrowerText() string { return orNotAvailable(r.BorrowerIdentifier) }

// StatusText returns the status or N/A
func (r Row) StatusText() string { return orNotAvailable(string(r.Status)) }

func formatDate(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}
	return t.Format(DateLayout)
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// View is the state of one report for one bucket
type View struct {
	State       State            `json:"state" yaml:"state"`
	Bucket      borrowing.Bucket `json:"bucket" yaml:"bucket"`
	Rows        []Row            `json:"rows" yaml:"rows"`
	Message     string           `json:"message,omitempty" yaml:"message,omitempty"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
}

// NewView returns a view in the loading state
func NewView(bucket borrowing.Bucket) View {
	return View{State: StateLoading, Bucket: bucket}
}

// Service builds report views from a Source
type Service struct {
	source  Source
	options borrowing.Options
	clock   func() time.Time
}

// NewService creates a report service. Records are fetched on every Load.
func NewService(source Source, options borrowing.Options) *Service {
	return &Service{
		source:  source,
		options: options,
		clock:   time.Now,
	}
}

// WithClock replaces the time source, for reports as of a fixed moment
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Now returns the current time in the report's location
func (s *Service) Now() time.Time {
	loc := s.options.Location
	if loc == nil {
		loc = time.Local
	}
	return s.clock().In(loc)
}

// Load fetches both collections concurrently and builds the view once both
// have settled. Any fetch failure produces the error state with no rows.
// If ctx is cancelled before then, the returned view is still loading and
// ok is false; callers should discard it.
func (s *Service) Load(ctx context.Context, bucket borrowing.Bucket) (view View, ok bool) {
	view = NewView(bucket)

	var regular []models.RawRegularRecord
	var approved []models.RawApprovedRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regular, err = s.source.FetchBorrowed(gctx)
		if err != nil {
			slog.Error("Failed to fetch borrowed books", "err", err)
		}
		return err
	})
	g.Go(func() error {
		var err error
		approved, err = s.source.FetchApproved(gctx)
		if err != nil {
			slog.Error("Failed to fetch approved books", "err", err)
		}
		return err
	})
	err := g.Wait()

	if ctx.Err() != nil {
		slog.Debug("Report load abandoned", "bucket", bucket, "err", ctx.Err())
		return view, false
	}

	current := s.Now()
	view.GeneratedAt = current
	if err != nil {
		view.State = StateError
		view.Message = ErrorMessage
		return view, true
	}

	records := borrowing.Normalize(regular, approved, s.options)
	records = borrowing.FilterByBucket(borrowing.FilterActive(records), bucket, current)

	view.Rows = make([]Row, 0, len(records))
	for _, r := range records {
		view.Rows = append(view.Rows, Row{
			BorrowRecord: r,
			DaysOverdue:  borrowing.DaysOverdue(r.DueOrReturnDate, current),
		})
	}

	if len(view.Rows) == 0 {
		view.State = StateEmpty
		view.Message = EmptyMessage
	} else {
		view.State = StateReady
	}

	slog.Info("Report built", "bucket", bucket, "fetched", len(regular)+len(approved), "rows", len(view.Rows))
	return view, true
}
