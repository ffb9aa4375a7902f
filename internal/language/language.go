// Package language normalizes subtitle and metadata language tags.
//
// All language handling is consolidated here so the config layer, the
// subtitle writer, and the CLI agree on canonical BCP 47 forms.
package language

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Canonical parses tag and returns its canonical BCP 47 form ("EN-us"
// becomes "en-US"). Unparseable input falls back to "en".
func Canonical(tag string) string {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "en"
	}
	return parsed.String()
}

// DisplayName returns a human-readable English name for tag, or the
// title-cased input when the tag is unrecognized.
func DisplayName(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return "Unknown"
	}
	parsed, err := language.Parse(trimmed)
	if err != nil {
		return cases.Title(language.English).String(trimmed)
	}
	if name := display.English.Tags().Name(parsed); name != "" {
		return name
	}
	return cases.Title(language.English).String(trimmed)
}
