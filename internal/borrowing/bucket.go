package borrowing

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/lehigh-university-libraries/borrowreport/internal/models"
)

// Bucket is a named borrow-date window relative to the current time
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
	BucketAll   Bucket = "all"
)

// Buckets lists the selectable windows in display order
var Buckets = []Bucket{BucketDay, BucketWeek, BucketMonth, BucketAll}

// ParseBucket validates a bucket name. An empty name means all.
func ParseBucket(name string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(name))); b {
	case "":
		return BucketAll, nil
	case BucketDay, BucketWeek, BucketMonth, BucketAll:
		return b, nil
	default:
		return "", fmt.Errorf("unknown bucket %q (expected day, week, month or all)", name)
	}
}

// FilterActive keeps only open loans
func FilterActive(records []models.BorrowRecord) []models.BorrowRecord {
	out := make([]models.BorrowRecord, 0, len(records))
	for _, r := range records {
		if r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}

// FilterByBucket keeps records whose borrow date falls in bucket.
//
// day is the calendar date of now, month runs from the first of now's month,
// and week is the rolling seven days ending now. None of them has an upper
// bound. Records without a borrow date only pass the all bucket.
func FilterByBucket(records []models.BorrowRecord, bucket Bucket, current time.Time) []models.BorrowRecord {
	out := make([]models.BorrowRecord, 0, len(records))
	for _, r := range records {
		if InBucket(r, bucket, current) {
			out = append(out, r)
		}
	}
	return out
}

// InBucket reports bucket membership for a single record
func InBucket(r models.BorrowRecord, bucket Bucket, current time.Time) bool {
	switch bucket {
	case BucketDay:
		if r.BorrowDate == nil {
			return false
		}
		return sameDay(r.BorrowDate.In(current.Location()), current)
	case BucketWeek:
		if r.BorrowDate == nil {
			return false
		}
		return !r.BorrowDate.Before(current.Add(-7 * 24 * time.Hour))
	case BucketMonth:
		if r.BorrowDate == nil {
			return false
		}
		return !r.BorrowDate.Before(now.With(current).BeginningOfMonth())
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
