package id

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestNewID32(t *testing.T) {
	got := NewID32()
	if !IsID32(got) {
		t.Fatalf("NewID32() = %q, want 32 lowercase hex chars", got)
	}
	if raw, err := hex.DecodeString(got); err != nil || len(raw) != 16 {
		t.Fatalf("decode %q: %d bytes, err=%v", got, len(raw), err)
	}

	seen := map[string]bool{got: true}
	for i := 0; i < 500; i++ {
		next := NewID32()
		if seen[next] {
			t.Fatalf("duplicate id after %d draws: %q", i, next)
		}
		seen[next] = true
	}
}

func TestIsID32(t *testing.T) {
	cases := map[string]bool{
		"c0ffee00c0ffee00c0ffee00c0ffee00":       true,
		strings.Repeat("0", 32):                  true,
		"":                                       false,
		"c0ffee":                                 false,
		strings.ToUpper(strings.Repeat("a", 32)): false,
		"g0ffee00c0ffee00c0ffee00c0ffee00":       false,
		"c0ffee00-c0ff-ee00-c0ff-ee00c0ffee00":   false,
		strings.Repeat("a", 33):                  false,
	}
	for in, want := range cases {
		if got := IsID32(in); got != want {
			t.Errorf("IsID32(%q) = %v, want %v", in, got, want)
		}
	}
}
