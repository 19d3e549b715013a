package http

import "testing"

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 50); got != 50 {
		t.Fatalf("empty: got %d", got)
	}
	if got := ParseIntDefault("abc", 50); got != 50 {
		t.Fatalf("invalid: got %d", got)
	}
	if got := ParseIntDefault("7", 50); got != 7 {
		t.Fatalf("valid: got %d", got)
	}
}

func TestClampLimit(t *testing.T) {
	if got := ClampLimit("", 50, 500); got != 50 {
		t.Fatalf("default: got %d", got)
	}
	if got := ClampLimit("0", 50, 500); got != 50 {
		t.Fatalf("zero: got %d", got)
	}
	if got := ClampLimit("-3", 50, 500); got != 50 {
		t.Fatalf("negative: got %d", got)
	}
	if got := ClampLimit("100", 50, 500); got != 100 {
		t.Fatalf("in range: got %d", got)
	}
	if got := ClampLimit("9999", 50, 500); got != 500 {
		t.Fatalf("above max: got %d", got)
	}
}
