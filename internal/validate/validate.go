package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Name validates a display name: trimmed, non-empty, at most 32 chars.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 32 {
		return s, false
	}
	return s, true
}

// Description validates an optional description: trimmed, at most 128 chars.
func Description(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 128
}

func Email(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 80 {
		return s, false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a simple resource identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Qty clamps a requested quantity into [1, 99].
func Qty(n int) int {
	if n < 1 {
		return 1
	}
	if n > 99 {
		return 99
	}
	return n
}

func Price(p float64) bool { return p >= 0 }
