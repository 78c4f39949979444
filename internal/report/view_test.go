package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/borrowreport/internal/borrowing"
	"github.com/lehigh-university-libraries/borrowreport/internal/models"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	regular     []models.RawRegularRecord
	approved    []models.RawApprovedRecord
	regularErr  error
	approvedErr error
	// block makes FetchApproved wait until ctx is done
	block bool
}

func (f *fakeSource) FetchBorrowed(ctx context.Context) ([]models.RawRegularRecord, error) {
	return f.regular, f.regularErr
}

func (f *fakeSource) FetchApproved(ctx context.Context) ([]models.RawApprovedRecord, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.approved, f.approvedErr
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(src Source, current time.Time) *Service {
	return NewService(src, borrowing.Options{Location: time.UTC}).WithClock(fixedClock(current))
}

func TestNewViewIsLoading(t *testing.T) {
	view := NewView(borrowing.BucketWeek)
	if view.State != StateLoading {
		t.Errorf("Expected loading, got %s", view.State)
	}
}

func TestLoadScenarioDayBucket(t *testing.T) {
	src := &fakeSource{
		regular:  []models.RawRegularRecord{{ID: "r1", BorrowedAt: "2024-01-05", BorrowedBy: "a@x.com", Status: "active"}},
		approved: []models.RawApprovedRecord{{ID: "a1", BookID: "b1", BorrowDate: "2024-01-05", UserEmail: "b@x.com", Status: "active"}},
	}
	svc := newTestService(src, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	view, ok := svc.Load(context.Background(), borrowing.BucketDay)
	if !ok {
		t.Fatal("Expected view to complete")
	}
	if view.State != StateReady {
		t.Fatalf("Expected ready, got %s", view.State)
	}
	if len(view.Rows) != 2 || view.Rows[0].ID != "r1" || view.Rows[1].ID != "b1" {
		t.Errorf("Expected rows r1, b1, got %+v", view.Rows)
	}
}

func TestLoadFiltersInactiveAndAnnotatesOverdue(t *testing.T) {
	current := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		regular: []models.RawRegularRecord{
			{ID: "late", BorrowedAt: "2024-03-01", Status: "active", DueDate: "2024-03-17T10:00:00Z"},
			{ID: "done", BorrowedAt: "2024-03-01", Status: "returned", ReturnDate: "2024-03-02"},
			{ID: "odd", BorrowedAt: "2024-03-01", Status: "lost"},
		},
		approved: []models.RawApprovedRecord{
			{ID: "a1", BorrowDate: "2024-03-18", Status: "active", DueDate: "2024-04-01"},
		},
	}

	view, _ := newTestService(src, current).Load(context.Background(), borrowing.BucketMonth)
	if len(view.Rows) != 2 {
		t.Fatalf("Expected 2 active rows, got %d", len(view.Rows))
	}
	if view.Rows[0].DaysOverdue != 4 || !view.Rows[0].ShowOverdue() {
		t.Errorf("Expected 4 days overdue, got %d", view.Rows[0].DaysOverdue)
	}
	if view.Rows[1].DaysOverdue != 0 || view.Rows[1].ShowOverdue() {
		t.Errorf("Expected not overdue, got %d", view.Rows[1].DaysOverdue)
	}
}

func TestLoadEmptySources(t *testing.T) {
	view, ok := newTestService(&fakeSource{}, time.Now()).Load(context.Background(), borrowing.BucketAll)
	if !ok {
		t.Fatal("Expected view to complete")
	}
	if view.State != StateEmpty {
		t.Errorf("Expected empty state, got %s", view.State)
	}
	if view.Message != EmptyMessage {
		t.Errorf("Expected empty message, got %q", view.Message)
	}
}

func TestLoadOneFetchFails(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{
			name: "borrowed fails",
			src: &fakeSource{
				regularErr: errors.New("connection refused"),
				approved:   []models.RawApprovedRecord{{ID: "a1", Status: "active", BorrowDate: "2024-01-01"}},
			},
		},
		{
			name: "approved fails",
			src: &fakeSource{
				regular:     []models.RawRegularRecord{{ID: "r1", Status: "active", BorrowedAt: "2024-01-01"}},
				approvedErr: errors.New("status 500"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, ok := newTestService(tt.src, time.Now()).Load(context.Background(), borrowing.BucketAll)
			if !ok {
				t.Fatal("Expected view to complete")
			}
			if view.State != StateError {
				t.Errorf("Expected error state, got %s", view.State)
			}
			if view.Message != ErrorMessage {
				t.Errorf("Expected generic error message, got %q", view.Message)
			}
			if len(view.Rows) != 0 {
				t.Errorf("Expected no partial rows, got %d", len(view.Rows))
			}
		})
	}
}

func TestLoadFailureCancelsSibling(t *testing.T) {
	src := &fakeSource{regularErr: errors.New("boom"), block: true}

	done := make(chan View)
	go func() {
		view, _ := newTestService(src, time.Now()).Load(context.Background(), borrowing.BucketAll)
		done <- view
	}()

	select {
	case view := <-done:
		if view.State != StateError {
			t.Errorf("Expected error state, got %s", view.State)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected failing fetch to cancel the pending one")
	}
}

func TestLoadCancelledCallerDiscardsView(t *testing.T) {
	src := &fakeSource{block: true}
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var view View
	var ok bool
	go func() {
		defer wg.Done()
		view, ok = newTestService(src, time.Now()).Load(ctx, borrowing.BucketAll)
	}()

	cancel()
	wg.Wait()

	if ok {
		t.Error("Expected cancelled load to report not ok")
	}
	if view.State != StateLoading {
		t.Errorf("Expected view to stay loading, got %s", view.State)
	}
}

type barrierSource struct {
	started sync.WaitGroup
}

func (b *barrierSource) wait(ctx context.Context) error {
	b.started.Done()
	ch := make(chan struct{})
	go func() {
		b.started.Wait()
		close(ch)
	}()
	select {
	case <-ch:
		return nil
	case <-time.After(5 * time.Second):
		return errors.New("fetches did not overlap")
	}
}

func (b *barrierSource) FetchBorrowed(ctx context.Context) ([]models.RawRegularRecord, error) {
	return nil, b.wait(ctx)
}

func (b *barrierSource) FetchApproved(ctx context.Context) ([]models.RawApprovedRecord, error) {
	return nil, b.wait(ctx)
}

func TestLoadFetchesConcurrently(t *testing.T) {
	src := &barrierSource{}
	src.started.Add(2)

	view, _ := newTestService(src, time.Now()).Load(context.Background(), borrowing.BucketAll)
	if view.State != StateEmpty {
		t.Errorf("Expected both fetches to run together and yield empty, got %s", view.State)
	}
}

func TestLoadDisplaysDatesInReportLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	src := &fakeSource{
		regular: []models.RawRegularRecord{{
			ID: "r1", BorrowedAt: "2024-01-05T03:00:00Z", DueDate: "2024-01-19T04:30:00Z",
			BorrowedBy: "a@x.com", Status: "active",
		}},
	}
	svc := NewService(src, borrowing.Options{Location: est}).
		WithClock(fixedClock(time.Date(2024, 1, 4, 20, 0, 0, 0, est)))

	view, ok := svc.Load(context.Background(), borrowing.BucketDay)
	if !ok {
		t.Fatal("Expected view to complete")
	}
	if view.State != StateReady || len(view.Rows) != 1 {
		t.Fatalf("Expected one ready row, got %s with %d rows", view.State, len(view.Rows))
	}

	row := view.Rows[0]
	if got := row.BorrowDateText(); got != "Jan 4, 2024" {
		t.Errorf("Expected borrow date Jan 4, 2024, got %s", got)
	}
	if got := row.DueDateText(); got != "Jan 18, 2024" {
		t.Errorf("Expected due date Jan 18, 2024, got %s", got)
	}

	var buf bytes.Buffer
	if err := RenderRegion(&buf, view); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Jan 4, 2024") || strings.Contains(buf.String(), "Jan 5, 2024") {
		t.Errorf("Expected rendered borrow date in report location, got:\n%s", buf.String())
	}
}
