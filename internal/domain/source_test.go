package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "abc", 10, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 4, "abcd"},
		{"zero", "abc", 0, ""},
		{"negative", "abc", -1, ""},
		{"empty", "", 5, ""},
		{"cyrillic", "привет мир", 6, "привет"},
		{"emoji", "🚀🚀🚀", 2, "🚀🚀"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestTruncate_IsPrefix(t *testing.T) {
	text := strings.Repeat("ab€", 500) // 1500 рун
	got := Truncate(text, 600)

	if n := utf8.RuneCountInString(got); n != 600 {
		t.Errorf("Truncate() length = %d, want 600", n)
	}
	if !strings.HasPrefix(text, got) {
		t.Error("Truncate() result is not a prefix of the input")
	}
	if !utf8.ValidString(got) {
		t.Error("Truncate() produced invalid UTF-8")
	}
}
