package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxRoomNameLen    = 64
	MaxDisplayNameLen = 36
)

var (
	// ErrInvalidInput rejects an operation before any state change
	// (empty room or display name, self-kick).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNameConflict means the display name is held by a live
	// connection; the caller may retry with force or rename.
	ErrNameConflict = errors.New("name already in use")
	// ErrUnauthorized means the requestor is not the room owner.
	ErrUnauthorized = errors.New("not authorized")
	// ErrNotFound means the kick target is not present.
	ErrNotFound = errors.New("not found")
)

// CleanName trims a claimed room or display name and enforces the
// length cap. Returns ErrInvalidInput when the result is empty.
func CleanName(raw string, max int) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidInput
	}
	return Truncate(s, max), nil
}

// Truncate caps s at max bytes without splitting a multi-byte rune:
// the cut backs up to the nearest rune boundary.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
