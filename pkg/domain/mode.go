package domain

import (
	"fmt"
	"strings"
)

// Mode controls how many questions a conversation may ask.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeSmart Mode = "smart"
)

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	return m == ModeQuick || m == ModeSmart
}

// ParseMode normalizes a user supplied mode string.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}
