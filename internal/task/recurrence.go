package task

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Recurrence frequencies.
const (
	FreqDaily   = "daily"
	FreqWeekly  = "weekly"
	FreqMonthly = "monthly"
)

const (
	daysPerWeek = 7
	maxMonthDay = 31
)

var weekdayNames = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// RecurrenceRule describes how a task repeats. Rules are stored and shown;
// nothing generates follow-up instances from them.
type RecurrenceRule struct {
	Freq      string `yaml:"freq" json:"freq"`
	Interval  int    `yaml:"interval" json:"interval"`
	WeekDays  []int  `yaml:"week_days,omitempty" json:"week_days,omitempty"`   // 0=Sun
	MonthDays []int  `yaml:"month_days,omitempty" json:"month_days,omitempty"` // 1-31
}

// ParseRecurrence parses the CLI form of a rule:
//
//	daily             every day
//	daily:3           every 3 days
//	weekly:1:mon,thu  every week on Monday and Thursday
//	monthly:1:1,15    every month on the 1st and 15th
func ParseRecurrence(s string) (*RecurrenceRule, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), ":")
	const maxParts = 3
	if len(parts) > maxParts {
		return nil, ValidateRecurrence(s, "too many ':' separated parts")
	}

	r := &RecurrenceRule{Freq: parts[0], Interval: 1}
	if len(parts) > 1 && parts[1] != "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, ValidateRecurrence(s, "interval must be a number")
		}
		r.Interval = n
	}

	if len(parts) == maxParts && parts[2] != "" {
		switch r.Freq {
		case FreqWeekly:
			days, err := parseWeekDays(parts[2])
			if err != nil {
				return nil, ValidateRecurrence(s, err.Error())
			}
			r.WeekDays = days
		case FreqMonthly:
			days, err := parseMonthDays(parts[2])
			if err != nil {
				return nil, ValidateRecurrence(s, err.Error())
			}
			r.MonthDays = days
		default:
			return nil, ValidateRecurrence(s, "day list is only valid for weekly or monthly")
		}
	}

	if err := r.Validate(); err != nil {
		return nil, ValidateRecurrence(s, err.Error())
	}
	return r, nil
}

// Validate checks the rule's fields.
func (r *RecurrenceRule) Validate() error {
	switch r.Freq {
	case FreqDaily, FreqWeekly, FreqMonthly:
	default:
		return fmt.Errorf("unknown frequency %q (expected daily, weekly or monthly)", r.Freq)
	}
	if r.Interval < 1 {
		return fmt.Errorf("interval must be >= 1, got %d", r.Interval)
	}
	for _, d := range r.WeekDays {
		if d < 0 || d >= daysPerWeek {
			return fmt.Errorf("week day %d out of range 0-6", d)
		}
	}
	for _, d := range r.MonthDays {
		if d < 1 || d > maxMonthDay {
			return fmt.Errorf("month day %d out of range 1-31", d)
		}
	}
	return nil
}

// String renders the rule for display, e.g. "every 2 weeks on mon,thu".
func (r *RecurrenceRule) String() string {
	unit := map[string]string{FreqDaily: "day", FreqWeekly: "week", FreqMonthly: "month"}[r.Freq]
	s := "every " + unit
	if r.Interval > 1 {
		s = "every " + strconv.Itoa(r.Interval) + " " + unit + "s"
	}
	if len(r.WeekDays) > 0 {
		names := make([]string, len(r.WeekDays))
		for i, d := range r.WeekDays {
			names[i] = weekdayNames[d]
		}
		s += " on " + strings.Join(names, ",")
	}
	if len(r.MonthDays) > 0 {
		days := make([]string, len(r.MonthDays))
		for i, d := range r.MonthDays {
			days[i] = strconv.Itoa(d)
		}
		s += " on day " + strings.Join(days, ",")
	}
	return s
}

func parseWeekDays(s string) ([]int, error) {
	var days []int
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		idx := slices.IndexFunc(weekdayNames, func(w string) bool { return strings.HasPrefix(name, w) })
		if idx < 0 {
			n, err := strconv.Atoi(name)
			if err != nil {
				return nil, fmt.Errorf("unknown week day %q", name)
			}
			idx = n
		}
		if !slices.Contains(days, idx) {
			days = append(days, idx)
		}
	}
	slices.Sort(days)
	return days, nil
}

func parseMonthDays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid month day %q", part)
		}
		if !slices.Contains(days, n) {
			days = append(days, n)
		}
	}
	slices.Sort(days)
	return days, nil
}
