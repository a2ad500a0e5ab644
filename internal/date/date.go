// Package date parses and formats reminder times.
package date

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

// Layout is the display format for reminders.
const Layout = "2006-01-02 15:04"

// DefaultHour is the time of day used when only a date is given.
const DefaultHour = 9

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	day         = 24 * time.Hour
)

var layouts = []string{
	"2006-01-02T15:04",
	Layout,
	dateLayout,
}

var relativeRe = regexp.MustCompile(`^(\d+)\s*(m|min|mins|minutes?|h|hr|hrs|hours?|d|days?|w|weeks?)$`)

// ParseReminder parses a reminder relative to now. Accepted forms:
//
//	2026-10-20 14:30, 2026-10-20T14:30, 2026-10-20 (09:00), RFC 3339
//	+90m, +1h30m, in 2h, in 3 days
//	today 17:00, tomorrow, tomorrow 08:15
//
// Wall-clock forms are interpreted in now's location.
func ParseReminder(input string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if s == "" {
		return time.Time{}, task.ValidateDate("reminder", input, errors.New("empty value"))
	}

	if rest, ok := cutRelative(s); ok {
		d, err := parseOffset(rest)
		if err != nil {
			return time.Time{}, task.ValidateDate("reminder", input, err)
		}
		t := now.Add(d)
		if !t.After(now) {
			return time.Time{}, task.ValidateDate("reminder", input, fmt.Errorf("offset %q is too large", rest))
		}
		return t, nil
	}
	if t, ok, err := parseKeyword(s, now); ok {
		if err != nil {
			return time.Time{}, task.ValidateDate("reminder", input, err)
		}
		return t, nil
	}
	abs := strings.ToUpper(s)
	if t, err := time.Parse(time.RFC3339, abs); err == nil {
		return t.In(now.Location()), nil
	}
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, abs, now.Location())
		if err != nil {
			continue
		}
		if layout == dateLayout {
			t = t.Add(DefaultHour * time.Hour)
		}
		return t, nil
	}
	return time.Time{}, task.ValidateDate("reminder", input,
		errors.New("expected YYYY-MM-DD [HH:MM], +DURATION, or tomorrow [HH:MM]"))
}

func cutRelative(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return strings.TrimSpace(rest), true
	}
	if rest, ok := strings.CutPrefix(s, "in "); ok {
		return rest, true
	}
	return "", false
}

func parseOffset(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, errors.New("offset must be positive")
		}
		return d, nil
	}
	m := relativeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unrecognized offset %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, errors.New("offset must be positive")
	}
	var unit time.Duration
	switch m[2][0] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = day
	default:
		unit = 7 * day
	}
	if int64(n) > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("offset %q is too large", s)
	}
	return time.Duration(n) * unit, nil
}

func parseKeyword(s string, now time.Time) (time.Time, bool, error) {
	word, clock, _ := strings.Cut(s, " ")
	var offset int
	switch word {
	case "today":
		if clock == "" {
			return time.Time{}, true, errors.New("today needs a time, e.g. today 17:00")
		}
	case "tomorrow":
		offset = 1
	default:
		return time.Time{}, false, nil
	}

	hour, minute := DefaultHour, 0
	if clock != "" {
		c, err := time.Parse(clockLayout, clock)
		if err != nil {
			return time.Time{}, true, fmt.Errorf("invalid time %q: expected HH:MM", clock)
		}
		hour, minute = c.Hour(), c.Minute()
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d+offset, hour, minute, 0, 0, now.Location()), true, nil
}

// Format renders a reminder for display.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatPtr renders an optional reminder, "--" when unset.
func FormatPtr(t *time.Time) string {
	if t == nil {
		return "--"
	}
	return Format(*t)
}
