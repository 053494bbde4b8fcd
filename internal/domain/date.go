package domain

import (
	"regexp"
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ParseDate parses a YYYY-MM-DD string. An empty string yields nil.
func ParseDate(s string) (*datatypes.Date, bool) {
	if s == "" {
		return nil, true
	}
	if len(s) != len(DateLayout) {
		return nil, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, false
	}
	d := datatypes.Date(t)
	return &d, true
}

// ValidPeriod reports whether s is empty or a YYYY-MM billing period.
func ValidPeriod(s string) bool {
	if s == "" {
		return true
	}
	if !periodPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01", s)
	return err == nil
}

// Today is the current calendar date in UTC.
func Today() datatypes.Date {
	y, m, d := time.Now().UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
