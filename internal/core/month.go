package core

import (
	"fmt"
	"strings"
	"time"
)

// MonthLayout is the textual month key format used for anchors and output.
const MonthLayout = "2006-01"

// MonthsPerYear is the number of months in a year.
const MonthsPerYear = 12

// Month is a calendar month without day or time information.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth returns the month, normalizing out-of-range month values
// (e.g. month 13 of 2024 is January 2025).
func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: time.January}.AddMonths(int(month) - 1)
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

// String formats the month as "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Validate checks that the month is representable as "YYYY-MM".
func (m Month) Validate() error {
	if m.Year < 1 || m.Year > 9999 || m.Month < time.January || m.Month > time.December {
		return ErrInvalidMonth
	}
	return nil
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	idx := m.index() + n
	year := idx / MonthsPerYear
	rem := idx % MonthsPerYear
	if rem < 0 {
		rem += MonthsPerYear
		year--
	}
	return Month{Year: year, Month: time.Month(rem + 1)}
}

// Before reports whether m precedes other.
func (m Month) Before(other Month) bool {
	return m.index() < other.index()
}

// FirstDay returns midnight UTC on the first day of the month.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) index() int {
	return m.Year*MonthsPerYear + int(m.Month) - 1
}

// MonthsSince returns the number of whole months from anchor to target;
// negative when target precedes anchor.
func MonthsSince(anchor, target Month) int {
	return (target.Year-anchor.Year)*MonthsPerYear + int(target.Month) - int(anchor.Month)
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return []byte{}, nil
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
