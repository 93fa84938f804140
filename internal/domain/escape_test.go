package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdownV2_EveryReservedChar(t *testing.T) {
	escaped := EscapeMarkdownV2(markdownV2Reserved)

	for _, c := range markdownV2Reserved {
		// each reserved char must be preceded by exactly one backslash
		assert.Equal(t, 1, strings.Count(escaped, `\`+string(c)),
			"char %q escaped exactly once", string(c))
	}
	assert.Equal(t, len(markdownV2Reserved)*2, len(escaped))
}

func TestEscapeMarkdownV2_PlainTextUntouched(t *testing.T) {
	assert.Equal(t, "Доброе утро", EscapeMarkdownV2("Доброе утро"))
	assert.Equal(t, "hello world", EscapeMarkdownV2("hello world"))
}

func TestEscapeMarkdownV2_DoubleEscapeIsDetectable(t *testing.T) {
	once := EscapeMarkdownV2("a.b")
	twice := EscapeMarkdownV2(once)

	assert.Equal(t, `a\.b`, once)
	assert.NotEqual(t, once, twice)
	assert.Equal(t, 1, strings.Count(once, `\.`))
}

func TestDisplayName_Preference(t *testing.T) {
	assert.Equal(t, "Team Chat", DisplayName("Team Chat", "user", "First"))
	assert.Equal(t, "user", DisplayName("", "user", "First"))
	assert.Equal(t, "First", DisplayName("", "", "First"))
	assert.Equal(t, "Unknown", DisplayName("", "", ""))
}
