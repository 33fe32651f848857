package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Anything that is not a word character, whitespace or hyphen. RE2's \s
	// omits \v and the \x1c-\x1f separators, so they are listed explicitly.
	nonSlugChars = regexp.MustCompile(`[^\w\s\v\x1c-\x1f-]`)
	// Runs of hyphens and whitespace collapse into one hyphen
	slugSeparators = regexp.MustCompile(`[-\s\v\x1c-\x1f]+`)
	// A valid stored slug
	slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Slugify converts a title into a URL slug: accents are folded to ASCII,
// other non-ASCII is dropped, the result is lowercased and whitespace/hyphen
// runs become single hyphens. Leading and trailing hyphens and underscores
// are stripped.
func Slugify(value string) string {
	value = toASCII(norm.NFKD.String(value))
	value = nonSlugChars.ReplaceAllString(strings.ToLower(value), "")
	value = slugSeparators.ReplaceAllString(value, "-")
	return strings.Trim(value, "-_")
}

// SlugifyMax slugifies and truncates to maxLen bytes without leaving a
// dangling separator.
func SlugifyMax(value string, maxLen int) string {
	slug := Slugify(value)
	if maxLen > 0 && len(slug) > maxLen {
		slug = strings.Trim(slug[:maxLen], "-_")
	}
	return slug
}

// IsValidSlug reports whether s only holds letters, digits, hyphens and
// underscores. The empty string is valid: books may have a blank slug.
func IsValidSlug(s string) bool {
	return s == "" || slugPattern.MatchString(s)
}

func toASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
