package borrowing

import (
	"net/url"
	"time"

	"github.com/lehigh-university-libraries/borrowreport/internal/models"
)

// Options controls how raw API values are interpreted
type Options struct {
	// Location is used for timestamps that carry no zone. Defaults to time.Local.
	Location *time.Location
	// ImageBaseURL resolves relative image paths. Optional.
	ImageBaseURL *url.URL
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// Normalize maps both API collections into BorrowRecords: regular records
// first, then approved, each in source order. Records are never dropped.
func Normalize(regular []models.RawRegularRecord, approved []models.RawApprovedRecord, opts Options) []models.BorrowRecord {
	records := make([]models.BorrowRecord, 0, len(regular)+len(approved))
	for _, raw := range regular {
		records = append(records, fromRegular(raw, opts))
	}
	for _, raw := range approved {
		records = append(records, fromApproved(raw, opts))
	}
	return records
}

func fromRegular(raw models.RawRegularRecord, opts Options) models.BorrowRecord {
	loc := opts.location()
	return models.BorrowRecord{
		ID:                 raw.ID.String(),
		Title:              raw.Title.String(),
		BorrowerIdentifier: firstNonEmpty(raw.BorrowedBy, raw.UserEmail),
		BorrowDate:         ParseDate(firstNonEmpty(raw.BorrowedAt, raw.BorrowDate), loc),
		DueOrReturnDate:    ParseDate(firstNonEmpty(raw.DueDate, raw.ReturnDate), loc),
		Status:             models.Status(raw.Status),
		ImageURL:           NormalizeImageURL(firstNonEmpty(raw.ImageURL, raw.Image), opts.ImageBaseURL),
		SourceKind:         models.SourceRegular,
	}
}

func fromApproved(raw models.RawApprovedRecord, opts Options) models.BorrowRecord {
	loc := opts.location()
	return models.BorrowRecord{
		ID:                 firstNonEmpty(raw.BookID, raw.ID),
		Title:              raw.Title.String(),
		BorrowerIdentifier: raw.UserEmail.String(),
		BorrowDate:         ParseDate(raw.BorrowDate.String(), loc),
		DueOrReturnDate:    ParseDate(firstNonEmpty(raw.DueDate, raw.ReturnDate), loc),
		Status:             models.Status(raw.Status),
		ImageURL:           NormalizeImageURL(firstNonEmpty(raw.ImageURL, raw.Image), opts.ImageBaseURL),
		SourceKind:         models.SourceApproved,
	}
}

func firstNonEmpty(values ...models.Text) string {
	for _, v := range values {
		if v != "" {
			return v.String()
		}
	}
	return ""
}
