package tui

import "testing"

func TestRevealedPrefix(t *testing.T) {
	text := "あきのたの"
	cases := []struct {
		count int
		want  string
	}{
		{-1, ""},
		{0, ""},
		{1, "あ"},
		{3, "あきの"},
		{5, "あきのたの"},
		{9, "あきのたの"},
	}
	for _, tc := range cases {
		if got := revealedPrefix(text, tc.count); got != tc.want {
			t.Fatalf("revealedPrefix(%q, %d) = %q, want %q", text, tc.count, got, tc.want)
		}
	}
}
