package http

import "strconv"

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ClampLimit bounds a requested row limit to [1, max], substituting
// def when the request carries no usable value.
func ClampLimit(s string, def, max int) int {
	n := ParseIntDefault(s, def)
	if n < 1 {
		n = def
	}
	if n > max {
		n = max
	}
	return n
}
