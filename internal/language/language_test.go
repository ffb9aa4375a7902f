package language_test

import (
	"testing"

	"reelpress/internal/language"
)

func TestCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"EN-us", "en-US"},
		{"fr", "fr"},
		{" de ", "de"},
		{"not a tag", "en"},
		{"", "en"},
	}
	for _, tc := range cases {
		if got := language.Canonical(tc.in); got != tc.want {
			t.Errorf("Canonical(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := language.DisplayName("fr"); got != "French" {
		t.Fatalf("DisplayName(fr) = %q, want French", got)
	}
	if got := language.DisplayName(""); got != "Unknown" {
		t.Fatalf("DisplayName(empty) = %q, want Unknown", got)
	}
}
