package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImageID(t *testing.T) {
	got, err := ImageID(nil, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709.png", got)
	assert.True(t, ValidImageID(got))
	assert.Equal(t, FormatPNG, Format(got))

	got, err = ImageID([]byte("abc"), FormatJPEG)
	require.NoError(t, err)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d.jpeg", got)

	_, err = ImageID([]byte("abc"), "gif")
	assert.Error(t, err)
}

func TestValidImageID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"a9993e364706816aba3e25717850c26c9cd0d89d.jpeg", true},
		{"a9993e364706816aba3e25717850c26c9cd0d89d.png", true},
		{"a9993e364706816aba3e25717850c26c9cd0d89d.gif", false},
		{"A9993E364706816ABA3E25717850C26C9CD0D89D.png", false},
		{"a9993e36.png", false},
		{"../etc/passwd", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidImageID(tt.input), "input: %q", tt.input)
	}
}

func TestDetectFormat(t *testing.T) {
	got, err := DetectFormat(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, got)

	got, err = DetectFormat([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"))
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, got)

	_, err = DetectFormat([]byte("plain text"))
	assert.Error(t, err)
}
