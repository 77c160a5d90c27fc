package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Levii22/planning-poker/internal/model"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain name", "Ann", "Ann"},
		{"trims whitespace", "  Ann  ", "Ann"},
		{"strips script tags", "<script>alert(1)</script>Bob", "alert1Bob"},
		{"strips trailing tag", "Bob<script>", "Bob"},
		{"strips closing tag", "Bob</b>", "Bob"},
		{"unclosed bracket keeps text", "a<b", "ab"},
		{"strips quotes and backticks", `An"n'a` + "`", "Anna"},
		{"strips brackets and semicolons", "A;n[n]{a}(x)", "Annax"},
		{"strips ampersand", "Tom&Jerry", "TomJerry"},
		{"removes control characters", "Ann\x00\x1fB", "AnnB"},
		{"keeps unicode letters", "日本語の名前", "日本語の名前"},
		{"keeps emoji", "Ann🎉", "Ann🎉"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeName(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeNameTruncates(t *testing.T) {
	got, err := SanitizeName(strings.Repeat("a", 25))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", MaxNameLength), got)

	// Rune-based, not byte-based
	got, err = SanitizeName(strings.Repeat("日", 25))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("日", MaxNameLength), got)

	// Truncation does not leave trailing whitespace
	got, err = SanitizeName(strings.Repeat("a", 19) + " z")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 19), got)
}

func TestSanitizeNameRejectsEmptyResults(t *testing.T) {
	for _, raw := range []string{"", "   ", "<>", "<script></script>", "()[]{}", "\x00\x01"} {
		_, err := SanitizeName(raw)
		assert.ErrorIs(t, err, model.ErrInvalidName, "raw: %q", raw)
	}
}

func TestSanitizeNameNeverEqualsRawScriptInput(t *testing.T) {
	raw := `<script>document.cookie</script>`
	got, err := SanitizeName(raw + "Eve")
	require.NoError(t, err)
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "script>")
	assert.NotEqual(t, raw+"Eve", got)
}
