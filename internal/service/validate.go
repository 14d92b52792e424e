package service

import (
	"regexp"
	"strings"
)

var (
	// seatNumberPattern matches a normalized seat label: one uppercase
	// letter followed by one or two digits (A1 .. Z99).
	seatNumberPattern = regexp.MustCompile(`^[A-Z]\d{1,2}$`)
	// showtimeDatePattern matches a calendar date formatted YYYY-MM-DD.
	showtimeDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// showtimeTimePattern matches a 24h clock time formatted HH:MM.
	showtimeTimePattern = regexp.MustCompile(`^(0[0-9]|1[0-9]|2[0-3]):([0-5][0-9])$`)
)

// validSeatNumber reports whether s is an already-normalized seat label.
func validSeatNumber(s string) bool { return seatNumberPattern.MatchString(s) }

// validShowtimeDate reports whether date is formatted YYYY-MM-DD.
func validShowtimeDate(date string) bool { return showtimeDatePattern.MatchString(date) }

// validShowtimeTime reports whether timeOfDay is a 24h HH:MM string.
func validShowtimeTime(timeOfDay string) bool { return showtimeTimePattern.MatchString(timeOfDay) }

// sanitizeSeats uppercases every label and drops those that do not
// match the seat pattern. The emptiness decision is made by the caller
// on the raw input, not on the filtered result.
func sanitizeSeats(seats []string) []string {
	sanitized := make([]string, 0, len(seats))
	for _, s := range seats {
		s = strings.ToUpper(s)
		if validSeatNumber(s) {
			sanitized = append(sanitized, s)
		}
	}
	return sanitized
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
