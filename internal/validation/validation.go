// Package validation checks and normalizes subscriber input.
package validation

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Nazarious-ucu/waitlist-api/internal/models"
)

const (
	MaxEmailLength   = 254
	MaxDogNameLength = 50
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// strict strips every tag; bluemonday policies are safe for concurrent use.
	strict = bluemonday.StrictPolicy()
)

// IsValidEmail reports whether s looks like local@domain.tld and fits in 254 bytes.
func IsValidEmail(s string) bool {
	return len(s) <= MaxEmailLength && emailRegex.MatchString(s)
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeDogName trims the name and truncates it to 50 characters. The value
// is kept verbatim otherwise; templates escape it on output.
// A missing or blank name yields nil.
func SanitizeDogName(name *string) *string {
	if name == nil {
		return nil
	}

	clean := strings.TrimSpace(*name)
	if utf8.RuneCountInString(clean) > MaxDogNameLength {
		clean = string([]rune(clean)[:MaxDogNameLength])
	}
	if clean == "" {
		return nil
	}
	return &clean
}

// HasMarkup reports whether s contains HTML tags. It only inspects the value.
func HasMarkup(s string) bool {
	return html.UnescapeString(strict.Sanitize(s)) != s
}

func NormalizeSource(s string) models.Source {
	if s == string(models.SourceBeta) {
		return models.SourceBeta
	}
	return models.SourceWebsite
}
