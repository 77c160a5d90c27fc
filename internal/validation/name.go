package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Levii22/planning-poker/internal/model"
)

// MaxNameLength is the rune limit for sanitized display names
const MaxNameLength = 20

// tagPattern matches HTML-tag-like substrings such as <script> or </b>
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// unsafeChars are stripped from names to defuse injection and markup tricks
const unsafeChars = "<>\"'`&;()[]{}"

// SanitizeName normalizes an untrusted display name. It trims whitespace,
// drops invalid UTF-8 and control characters, removes HTML-tag-like
// substrings and unsafe punctuation, and truncates to MaxNameLength runes.
// Returns model.ErrInvalidName when nothing usable remains.
func SanitizeName(raw string) (string, error) {
	name := strings.ToValidUTF8(raw, "")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	name = tagPattern.ReplaceAllString(name, "")
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if runes := []rune(name); len(runes) > MaxNameLength {
		name = strings.TrimSpace(string(runes[:MaxNameLength]))
	}

	if name == "" {
		return "", model.ErrInvalidName
	}
	return name, nil
}
