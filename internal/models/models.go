package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Status is the circulation state reported by the library API.
// Values outside the known set are kept as-is.
type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
	StatusArchived Status = "archived"
)

// SourceKind tags which API collection a record came from
type SourceKind string

const (
	SourceRegular  SourceKind = "regular"
	SourceApproved SourceKind = "approved"
)

// Text is a JSON scalar read leniently: strings, numbers and booleans
// become their text form, anything else (null, objects, arrays) is empty.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*t = ""
			return nil
		}
		*t = Text(s)
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			*t = ""
			return nil
		}
		*t = Text(strconv.FormatBool(b))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*t = Text(data)
	default:
		*t = ""
	}
	return nil
}

// String returns the text value
func (t Text) String() string { return string(t) }

// RawRegularRecord is an item of GET /api/books/borrowed
type RawRegularRecord struct {
	ID         Text `json:"_id"`
	BookID     Text `json:"bookId"`
	Title      Text `json:"title"`
	BorrowedAt Text `json:"borrowedAt"`
	BorrowDate Text `json:"borrowDate"`
	BorrowedBy Text `json:"borrowedBy"`
	UserEmail  Text `json:"userEmail"`
	DueDate    Text `json:"dueDate"`
	ReturnDate Text `json:"returnDate"`
	Status     Text `json:"status"`
	Image      Text `json:"image"`
	ImageURL   Text `json:"imageUrl"`
}

// RawApprovedRecord is an item of GET /api/transactions/approved-books
type RawApprovedRecord struct {
	ID         Text `json:"_id"`
	BookID     Text `json:"bookId"`
	Title      Text `json:"title"`
	BorrowDate Text `json:"borrowDate"`
	UserEmail  Text `json:"userEmail"`
	DueDate    Text `json:"dueDate"`
	ReturnDate Text `json:"returnDate"`
	Status     Text `json:"status"`
	Image      Text `json:"image"`
	ImageURL   Text `json:"imageUrl"`
}

// BorrowedEnvelope wraps the regular collection as the API returns it
type BorrowedEnvelope struct {
	Books []json.RawMessage `json:"books"`
}

// BorrowRecord is the unified record both collections normalize into
type BorrowRecord struct {
	ID                 string     `json:"id" yaml:"id"`
	Title              string     `json:"title" yaml:"title"`
	BorrowerIdentifier string     `json:"borrower" yaml:"borrower"`
	BorrowDate         *time.Time `json:"borrow_date,omitempty" yaml:"borrow_date,omitempty"`
	DueOrReturnDate    *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Status             Status     `json:"status" yaml:"status"`
	ImageURL           string     `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	SourceKind         SourceKind `json:"source" yaml:"source"` // traceability only
}

// Key identifies the record across both sources; ids may collide between them.
func (r BorrowRecord) Key() string {
	return string(r.SourceKind) + ":" + r.ID
}

// IsActive reports whether the record is an open loan
func (r BorrowRecord) IsActive() bool {
	return r.Status == StatusActive
}
