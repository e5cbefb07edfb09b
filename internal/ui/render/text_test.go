package render

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"clean passes through", "Take Five", "Take Five"},
		{"tab survives", "a\tb", "a\tb"},
		{"control chars dropped", "a\x00b\x1bc\rd", "abcd"},
		{"invalid utf8 dropped", "a\xffb", "ab"},
		{"nbsp becomes space", "a b", "a b"},
		{"cjk untouched", "坂本龍一", "坂本龍一"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 20); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	got := Truncate("a very long playlist name", 10)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncate = %q, want ... suffix", got)
	}
	// A newline in pasted metadata must not survive truncation.
	if got := Truncate("bad\ntitle", 20); got != "badtitle" {
		t.Errorf("Truncate = %q, want %q", got, "badtitle")
	}
}

func TestTruncateEllipsis(t *testing.T) {
	if got := TruncateEllipsis("short", 20); got != "short" {
		t.Errorf("TruncateEllipsis(short) = %q", got)
	}
	got := TruncateEllipsis("a very long track title", 10)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("TruncateEllipsis = %q, want … suffix", got)
	}
	// Multibyte runes are cut whole, never mid-sequence.
	got = TruncateEllipsis("坂本龍一 — Merry Christmas", 8)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("TruncateEllipsis = %q, want … suffix", got)
	}
	for _, r := range got {
		if r == '�' {
			t.Fatalf("TruncateEllipsis = %q contains a broken rune", got)
		}
	}
}

func TestPadWidths(t *testing.T) {
	if got := Pad("ab", 5); got != "ab   " {
		t.Errorf("Pad = %q", got)
	}
	if got := TruncateAndPad("abcdefgh", 5); len([]rune(got)) != 5 {
		t.Errorf("TruncateAndPad width = %d, want 5", len([]rune(got)))
	}
	got := TruncateAndPadEllipsis("a long title", 6)
	if !strings.Contains(got, "…") {
		t.Errorf("TruncateAndPadEllipsis = %q, want ellipsis", got)
	}
}

func TestSeparator(t *testing.T) {
	if got := Separator(4); got != "────" {
		t.Errorf("Separator(4) = %q", got)
	}
}
