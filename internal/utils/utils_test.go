package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want uint
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseID(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Test Group":          "test-group",
		"  Cats -- and Dogs ": "cats-and-dogs",
		"Лев Толстой":         "лев-толстой",
		"snake_case!":         "snake_case",
		"":                    "",
	}
	for in, want := range tests {
		require.Equal(t, want, Slugify(in), in)
	}
	require.Len(t, []rune(Slugify(strings.Repeat("a", 80))), MaxSlugLength)

	require.True(t, ValidSlug("test-slug_1"))
	require.False(t, ValidSlug("bad slug"))
	require.False(t, ValidSlug(""))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)
	require.True(t, CheckPasswordHash("s3cret-pass", hash))
	require.False(t, CheckPasswordHash("wrong", hash))
}

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("**bold** and [link](https://example.com)\n\n<script>alert(1)</script>"))
	require.Contains(t, out, "<strong>bold</strong>")
	require.Contains(t, out, `target="_blank"`)
	require.Contains(t, out, "noopener")
	require.NotContains(t, out, "<script>")

	img := string(RenderMarkdown("![pic](https://example.com/a.png)"))
	require.Contains(t, img, `loading="lazy"`)

	require.Empty(t, string(EnhanceHTMLContent("")))
}
