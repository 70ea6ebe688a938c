//nolint:nolintlint,revive // utils is a common and acceptable package name for utility functions.
package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSanitizeFilename tests the SanitizeFilename function.
func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid filename unchanged",
			input:    "Film (2024) [id123].mp4",
			expected: "Film (2024) [id123].mp4",
		},
		{
			name:     "invalid characters replaced",
			input:    `Кин/дза:дза?`,
			expected: "Кин_дза_дза_",
		},
		{
			name:     "windows reserved name prefixed",
			input:    "CON.mp4",
			expected: "_CON.mp4",
		},
		{
			name:     "trailing dots removed",
			input:    "trailer...",
			expected: "trailer",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "only invalid characters",
			input:    "???",
			expected: "___",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

// TestSetFileExtension tests the SetFileExtension function.
func TestSetFileExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		filename            string
		extension           string
		isExtensionReplaced bool
		expected            string
	}{
		{
			name:      "extension already present",
			filename:  "trailer.mp4",
			extension: ".mp4",
			expected:  "trailer.mp4",
		},
		{
			name:      "extension appended",
			filename:  "trailer",
			extension: "mp4",
			expected:  "trailer.mp4",
		},
		{
			name:                "extension replaced",
			filename:            "trailer.ts",
			extension:           ".mp4",
			isExtensionReplaced: true,
			expected:            "trailer.mp4",
		},
		{
			name:      "extension kept when replacement is off",
			filename:  "trailer.ts",
			extension: ".mp4",
			expected:  "trailer.ts.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := SetFileExtension(tt.filename, tt.extension, tt.isExtensionReplaced)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestIsFileExist tests the IsFileExist function.
func TestIsFileExist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filePath := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	exists, err := IsFileExist(filePath)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = IsFileExist(filepath.Join(dir, "absent.txt"))
	require.NoError(t, err)
	assert.False(t, exists)

	// A directory is not a file.
	exists, err = IsFileExist(dir)
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestLastURLPathSegment tests the LastURLPathSegment function.
func TestLastURLPathSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain segment",
			input:    "https://cdn.example.org/parts/seg_0.ts",
			expected: "seg_0.ts",
		},
		{
			name:     "query parameters stripped",
			input:    "https://cdn.example.org/parts/seg_0.ts?token=abc&expires=1",
			expected: "seg_0.ts",
		},
		{
			name:     "no path",
			input:    "https://cdn.example.org",
			expected: "",
		},
		{
			name:     "trailing slash",
			input:    "https://cdn.example.org/parts/",
			expected: "parts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, LastURLPathSegment(tt.input))
		})
	}
}

// TestExtractNamedGroup tests the ExtractNamedGroup function.
func TestExtractNamedGroup(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`film/(?P<id>\d+)`)

	assert.Equal(t, "326", ExtractNamedGroup(pattern, "id", "https://www.kinopoisk.ru/film/326/"))
	assert.Empty(t, ExtractNamedGroup(pattern, "id", "https://www.kinopoisk.ru/name/12345/"))
	assert.Empty(t, ExtractNamedGroup(pattern, "missing", "https://www.kinopoisk.ru/film/326/"))
}

// TestIsTextContentType tests the IsTextContentType function.
func TestIsTextContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		expected    bool
	}{
		{
			name:        "plain text",
			contentType: "text/plain; charset=utf-8",
			expected:    true,
		},
		{
			name:        "json",
			contentType: "application/json",
			expected:    true,
		},
		{
			name:        "m3u8 playlist",
			contentType: "application/vnd.apple.mpegurl",
			expected:    true,
		},
		{
			name:        "legacy m3u8 playlist",
			contentType: "application/x-mpegurl",
			expected:    true,
		},
		{
			name:        "transport stream",
			contentType: "video/mp2t",
			expected:    false,
		},
		{
			name:        "unknown charset",
			contentType: "text/plain; charset=koi8-r",
			expected:    false,
		},
		{
			name:        "garbage",
			contentType: ";;;",
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, IsTextContentType(tt.contentType))
		})
	}
}

// TestMap tests the Map function.
func TestMap(t *testing.T) {
	t.Parallel()

	doubled := Map([]int{1, 2, 3}, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4, 6}, doubled)

	empty := Map(nil, func(v int) int { return v })
	assert.Empty(t, empty)
}

// TestRandomPause tests that the pause respects its bounds.
func TestRandomPause(t *testing.T) {
	t.Parallel()

	start := time.Now()

	RandomPause(10*time.Millisecond, 30*time.Millisecond)

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)

	// Swapped bounds are tolerated.
	RandomPause(30*time.Millisecond, 10*time.Millisecond)
}
