package borrowing

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads an API timestamp. Values without a zone are read in loc and
// zoned values are converted to it, so formatting agrees with bucketing.
// It returns nil for empty or unparseable input.
func ParseDate(value string, loc *time.Location) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			t = t.In(loc)
			return &t
		}
	}
	return nil
}
