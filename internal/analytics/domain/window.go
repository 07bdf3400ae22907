package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a trailing time span. Years, months and days are applied as
// calendar offsets, Span as an exact duration.
type Window struct {
	Years  int
	Months int
	Days   int
	Span   time.Duration
}

// Years returns a calendar window of n years.
func Years(n int) Window { return Window{Years: n} }

// ParseWindow accepts "2y", "18mo", "90d", "2w" or any time.ParseDuration
// value such as "36h". Components may be combined: "1y6mo".
func ParseWindow(value string) (Window, error) {
	raw := strings.ToLower(strings.TrimSpace(value))
	if raw == "" {
		return Window{}, &InvalidParameterError{Field: "window", Reason: "empty"}
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return Window{Span: d}, nil
	}

	var w Window
	rest := raw
	for rest != "" {
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			return Window{}, &InvalidParameterError{Field: "window", Reason: fmt.Sprintf("invalid window %q", value)}
		}
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return Window{}, &InvalidParameterError{Field: "window", Reason: fmt.Sprintf("invalid window %q", value)}
		}
		rest = rest[i:]

		unit := rest
		for j := 0; j < len(rest); j++ {
			if rest[j] >= '0' && rest[j] <= '9' {
				unit = rest[:j]
				break
			}
		}
		rest = rest[len(unit):]

		switch unit {
		case "y":
			w.Years += n
		case "mo":
			w.Months += n
		case "w":
			w.Days += 7 * n
		case "d":
			w.Days += n
		default:
			return Window{}, &InvalidParameterError{Field: "window", Reason: fmt.Sprintf("unknown window unit %q", unit)}
		}
	}
	return w, nil
}

// IsZero reports whether no component is set.
func (w Window) IsZero() bool {
	return w == Window{}
}

// Validate requires a strictly positive window with no negative component.
func (w Window) Validate() error {
	if w.Years < 0 || w.Months < 0 || w.Days < 0 || w.Span < 0 {
		return &InvalidParameterError{Field: "window", Reason: "must not be negative"}
	}
	if w.IsZero() {
		return &InvalidParameterError{Field: "window", Reason: "must be positive"}
	}
	return nil
}

// Start returns the inclusive lower bound of the window ending at asOf.
func (w Window) Start(asOf time.Time) time.Time {
	return asOf.AddDate(-w.Years, -w.Months, -w.Days).Add(-w.Span)
}

func (w Window) String() string {
	var b strings.Builder
	if w.Years != 0 {
		fmt.Fprintf(&b, "%dy", w.Years)
	}
	if w.Months != 0 {
		fmt.Fprintf(&b, "%dmo", w.Months)
	}
	if w.Days != 0 {
		fmt.Fprintf(&b, "%dd", w.Days)
	}
	if w.Span != 0 {
		b.WriteString(w.Span.String())
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}
