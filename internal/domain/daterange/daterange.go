// Package daterange models the inclusive day range an operator searches in.
package daterange

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/huntline/phrasehound/internal/domain"
)

const dayFormat = "2006-01-02"

var (
	isoPattern    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	dottedPattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
)

// Range is an inclusive [Since, Until] day range in UTC.
type Range struct {
	since time.Time
	until time.Time
}

// New builds a Range from two instants, truncated to their UTC days.
// A range whose until day precedes its since day is rejected with
// domain.ErrBadDateRange.
func New(since, until time.Time) (Range, error) {
	s := truncateDay(since)
	u := truncateDay(until)
	if u.Before(s) {
		return Range{}, fmt.Errorf("%w: until %s before since %s",
			domain.ErrBadDateRange, u.Format(dayFormat), s.Format(dayFormat))
	}

	return Range{since: s, until: u}, nil
}

// Parse extracts a day range from free-form operator text. It accepts two
// dates in either `2025-10-22 — 2025-10-25` or `22.10.2025 - 25.10.2025`
// form, with any separator between them. Em and en dashes are tolerated.
func Parse(text string) (Range, error) {
	s := strings.NewReplacer("—", "-", "–", "-").Replace(text)

	if found := isoPattern.FindAllString(s, -1); len(found) >= 2 {
		return parsePair(dayFormat, found[0], found[1])
	}
	if found := dottedPattern.FindAllString(s, -1); len(found) >= 2 {
		return parsePair("02.01.2006", found[0], found[1])
	}

	return Range{}, fmt.Errorf("%w: no date pair in %q", domain.ErrBadDateRange, text)
}

func parsePair(layout, sinceRaw, untilRaw string) (Range, error) {
	since, err := time.ParseInLocation(layout, sinceRaw, time.UTC)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", domain.ErrBadDateRange, sinceRaw)
	}
	until, err := time.ParseInLocation(layout, untilRaw, time.UTC)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", domain.ErrBadDateRange, untilRaw)
	}

	return New(since, until)
}

// Since returns the first day of the range, midnight UTC.
func (r Range) Since() time.Time { return r.since }

// Until returns the last day of the range, midnight UTC.
func (r Range) Until() time.Time { return r.until }

// Contains reports whether t falls inside the range, both endpoint days
// included. The zero instant is never contained.
func (r Range) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	day := truncateDay(t)

	return !day.Before(r.since) && !day.After(r.until)
}

// SinceParam and UntilParam render the bounds the way the search API
// expects its date_from / date_to query parameters.
func (r Range) SinceParam() string { return r.since.Format(dayFormat) }

func (r Range) UntilParam() string { return r.until.Format(dayFormat) }

// String renders the range the way prompts show it to the operator.
func (r Range) String() string {
	return r.since.Format(dayFormat) + " — " + r.until.Format(dayFormat)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
