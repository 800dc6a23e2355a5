package client

import (
	"fmt"
	"time"
)

// Month is a calendar month used to filter a company's flyers.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the UTC month containing t.
func MonthOf(t time.Time) Month {
	t = t.UTC()
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.start().AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	return MonthOf(m.start().AddDate(0, -1, 0))
}

// Contains reports whether t falls in the month (UTC).
func (m Month) Contains(t time.Time) bool {
	return MonthOf(t) == m
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}
