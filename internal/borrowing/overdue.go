package borrowing

import (
	"math"
	"time"
)

// DaysOverdue is the number of days current is past due, with any partial
// day counted as a whole one. It is 0 when due is nil or not yet reached.
func DaysOverdue(due *time.Time, current time.Time) int {
	if due == nil {
		return 0
	}
	elapsed := current.Sub(*due)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}
