// Package date provides Instant, a point in time stored as epoch milliseconds,
// and parsing of the due-date forms accepted on the command line.
package date

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	dayFormat      = "2006-01-02"
	dayTimeFormat  = "2006-01-02 15:04"
	clockFormat    = "15:04"
	hoursPerDay    = 24
	relativePrefix = "+"
)

// Instant is a point in time with millisecond precision, serialized as
// milliseconds since the Unix epoch.
type Instant int64

// FromTime converts t to an Instant, dropping sub-millisecond precision.
func FromTime(t time.Time) Instant {
	return Instant(t.UnixMilli())
}

// Now returns the current Instant.
func Now() Instant {
	return FromTime(time.Now())
}

// Ptr returns a pointer to a copy of i.
func (i Instant) Ptr() *Instant {
	return &i
}

// Millis returns the epoch milliseconds.
func (i Instant) Millis() int64 {
	return int64(i)
}

// Time returns the instant as a time.Time in the local zone.
func (i Instant) Time() time.Time {
	return time.UnixMilli(int64(i))
}

// Sub returns the duration i-j.
func (i Instant) Sub(j Instant) time.Duration {
	return time.Duration(int64(i)-int64(j)) * time.Millisecond
}

// String returns the instant as "YYYY-MM-DD HH:MM" in the local zone.
func (i Instant) String() string {
	return i.Time().Format(dayTimeFormat)
}

// Format renders the instant as a due date. Date-only values omit the clock.
func (i Instant) Format(includeTime bool) string {
	if includeTime {
		return i.Time().Format(dayTimeFormat)
	}
	return i.Time().Format(dayFormat)
}

// Clock returns the local time of day as "HH:MM".
func (i Instant) Clock() string {
	return i.Time().Format(clockFormat)
}

// MarshalYAML implements yaml.Marshaler.
func (i Instant) MarshalYAML() (interface{}, error) {
	return int64(i), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler. Hand-edited files may use a
// date string instead of epoch milliseconds.
func (i *Instant) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := parseStored(value.Value)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (i Instant) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(i))
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Instant) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*i = Instant(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid instant %s: expected epoch milliseconds or date string", data)
	}
	parsed, err := parseStored(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// parseStored accepts epoch milliseconds, RFC 3339, "YYYY-MM-DD HH:MM" or "YYYY-MM-DD".
func parseStored(s string) (Instant, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Instant(n), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(t), nil
	}
	if t, err := time.ParseInLocation(dayTimeFormat, s, time.Local); err == nil {
		return FromTime(t), nil
	}
	if t, err := time.ParseInLocation(dayFormat, s, time.Local); err == nil {
		return FromTime(t), nil
	}
	return 0, fmt.Errorf("invalid instant %q: expected epoch milliseconds or YYYY-MM-DD[ HH:MM]", s)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDue parses a due date relative to now. It reports whether the result
// carries a time of day; date-only results are midnight of that day.
//
// Accepted forms:
//
//	2026-10-18         date only
//	2026-10-18 14:30   date and time (also 2026-10-18T14:30)
//	14:30              today at the given time
//	today, tomorrow    date only
//	+90m, +2h, +3d     relative to now, with time
func ParseDue(s string, now time.Time) (Instant, bool, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	loc := now.Location()

	switch in {
	case "":
		return 0, false, errors.New("empty due date")
	case "today":
		return FromTime(StartOfDay(now)), false, nil
	case "tomorrow":
		return FromTime(StartOfDay(now).AddDate(0, 0, 1)), false, nil
	}

	if strings.HasPrefix(in, relativePrefix) {
		d, err := parseRelative(strings.TrimPrefix(in, relativePrefix))
		if err != nil {
			return 0, false, fmt.Errorf("invalid relative due date %q: %w", s, err)
		}
		return FromTime(now.Add(d)), true, nil
	}

	if t, err := time.ParseInLocation(dayTimeFormat, strings.Replace(in, "t", " ", 1), loc); err == nil {
		return FromTime(t), true, nil
	}
	if t, err := time.ParseInLocation(dayFormat, in, loc); err == nil {
		return FromTime(t), false, nil
	}
	if t, err := time.ParseInLocation(clockFormat, in, loc); err == nil {
		y, m, d := now.Date()
		return FromTime(time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)), true, nil
	}

	return 0, false, fmt.Errorf(
		"invalid due date %q: expected YYYY-MM-DD, YYYY-MM-DD HH:MM, HH:MM, today, tomorrow or +DURATION", s)
}

// parseRelative parses Go durations plus a "d" suffix for whole days.
func parseRelative(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day count %q", days)
		}
		return time.Duration(n) * hoursPerDay * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}
