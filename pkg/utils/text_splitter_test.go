package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_Short(t *testing.T) {
	assert.Equal(t, []string{"hello"}, SplitText("hello", 10, 2))
	assert.Equal(t, []string{""}, SplitText("", 10, 2))
}

func TestSplitText_HardCut(t *testing.T) {
	chunks := SplitText("abcdefghij", 4, 1)

	assert.Equal(t, []string{"abcd", "defg", "ghij"}, chunks)
}

func TestSplitText_PrefersWhitespace(t *testing.T) {
	text := "alpha beta gamma delta epsilon"

	chunks := SplitText(text, 12, 0)

	require.NotEmpty(t, chunks)
	assert.Equal(t, "alpha beta ", chunks[0])
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitText_CountsRunes(t *testing.T) {
	text := strings.Repeat("é", 9)

	chunks := SplitText(text, 4, 0)

	require.Len(t, chunks, 3)
	for _, c := range chunks[:2] {
		assert.Equal(t, 4, utf8.RuneCountInString(c))
	}
}

func TestSplitText_OverlapNotLargerThanChunk(t *testing.T) {
	chunks := SplitText("abcdefgh", 4, 4)

	assert.Equal(t, []string{"abcd", "efgh"}, chunks)
}
