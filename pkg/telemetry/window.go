package telemetry

import (
	"errors"
	"strings"
	"time"
)

const DefaultWindowSpan = 24 * time.Hour

var ErrMissingBound = errors.New("both start and end are required")

// Window is the closed time range readings are requested for.
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow is the trailing day ending at now.
func DefaultWindow(now time.Time) Window {
	return Window{Start: now.Add(-DefaultWindowSpan), End: now}
}

var boundLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseBound reads a date picker value. Layouts without a zone are read in loc.
func ParseBound(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range boundLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseWindow builds a window from two picker values; a missing or
// unreadable bound is ErrMissingBound. Reversed bounds are swapped.
func ParseWindow(start, end string, loc *time.Location) (Window, error) {
	s, okStart := ParseBound(start, loc)
	e, okEnd := ParseBound(end, loc)
	if !okStart || !okEnd {
		return Window{}, ErrMissingBound
	}
	if e.Before(s) {
		s, e = e, s
	}
	return Window{Start: s, End: e}, nil
}

func (w Window) Span() time.Duration {
	return w.End.Sub(w.Start)
}

// InputValue formats t for a datetime-local input.
func InputValue(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006-01-02T15:04")
}
