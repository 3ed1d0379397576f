// Package countdown renders the time left until a due date.
package countdown

import (
	"strconv"
	"time"
)

// Expired is the label for a due date less than a minute away or past.
const Expired = "expired"

const day = 24 * time.Hour

// Label describes due relative to now using the coarsest whole unit:
// days, then hours, then minutes. Examples: "in 3 days", "in 1 hour",
// "overdue by 2 days", "expired".
func Label(due, now time.Time) string {
	d := due.Sub(now)

	switch {
	case d/day != 0:
		return phrase(int(d/day), "day")
	case d/time.Hour != 0:
		return phrase(int(d/time.Hour), "hour")
	case d/time.Minute != 0:
		return phrase(int(d/time.Minute), "minute")
	default:
		return Expired
	}
}

// Overdue reports whether due is past by at least one whole minute.
func Overdue(due, now time.Time) bool {
	return due.Sub(now) <= -time.Minute
}

func phrase(n int, unit string) string {
	overdue := n < 0
	if overdue {
		n = -n
	}
	s := strconv.Itoa(n) + " " + unit
	if n != 1 {
		s += "s"
	}
	if overdue {
		return "overdue by " + s
	}
	return "in " + s
}
