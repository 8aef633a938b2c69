package facility

import (
	"strings"
	"time"

	c "github.com/neeldave10/medlaunch-data-engineer/constants"
)

// ParseValidUntil parses a date-like accreditation expiry string.
// It is lenient: surrounding whitespace is trimmed and anything after the
// first 10 bytes (e.g. a time component) is ignored, so "2025-06-30",
// "2025-06-30T00:00:00Z" and " 2025-06-30 " all parse. The boolean is false
// for anything that doesn't yield a calendar date.
func ParseValidUntil(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(c.TimeFormatCalendarDate) {
		s = s[:len(c.TimeFormatCalendarDate)]
	}
	d, err := time.Parse(c.TimeFormatCalendarDate, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// HorizonCutoff returns the last calendar date considered "expiring soon"
// when evaluated at today with a look-ahead of months. This is calendar-month
// arithmetic, not fixed 30-day blocks.
func HorizonCutoff(today time.Time, months int) time.Time {
	return today.AddDate(0, months, 0)
}

// ExpiresWithin reports whether any accreditation on the record has a
// parseable valid_until on or before cutoff. Records with zero parseable
// dates never qualify. Multiple qualifying accreditations still mean one
// emission - the caller emits the record at most once.
func (r *FacilityRecord) ExpiresWithin(cutoff time.Time) bool {
	for _, a := range r.Accreditations {
		if d, ok := ParseValidUntil(a.ValidUntil); ok && !d.After(cutoff) {
			return true
		}
	}
	return false
}
