package utils

import (
	"strconv"
	"strings"
)

// ParseID parses a positive integer id from a path or query value.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// OptionalID is ParseID for optional filters. An empty value yields nil.
func OptionalID(s string) (*int64, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	id, ok := ParseID(s)
	if !ok {
		return nil, false
	}
	return &id, true
}

// Atoi parses an optional integer query value, falling back to def.
func Atoi(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
