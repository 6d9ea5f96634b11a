package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00.000", FormatDuration(0))
	assert.Equal(t, "00:01:30.500", FormatDuration(90500*time.Millisecond))
	assert.Equal(t, "01:02:03.000", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0.0000", FormatSeconds(0))
	assert.Equal(t, "1.5000", FormatSeconds(1.5))
	assert.Equal(t, "0.1235", FormatSeconds(0.12345))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"5", 5 * time.Second},
		{"1.5", 1500 * time.Millisecond},
		{"01:30", 90 * time.Second},
		{"00:01:30.500", 90500 * time.Millisecond},
		{" 00:00:02.00 ", 2 * time.Second},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTimestamp("1:2:3:4")
	assert.Error(t, err)
	_, err = ParseTimestamp("abc")
	assert.Error(t, err)
}

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 30.0, ParseFrameRate("30/1"), 1e-9)
	assert.InDelta(t, 23.976, ParseFrameRate("24000/1001"), 1e-3)
	assert.Zero(t, ParseFrameRate("30"))
	assert.Zero(t, ParseFrameRate("30/0"))
	assert.Zero(t, ParseFrameRate("x/y"))
}

func TestIsImageRef(t *testing.T) {
	assert.True(t, IsImageRef("/media/photo.PNG"))
	assert.True(t, IsImageRef("https://cdn.example.com/a.jpg?token=abc"))
	assert.True(t, IsImageRef("pic.webp"))
	assert.False(t, IsImageRef("/media/clip.mp4"))
	assert.False(t, IsImageRef("noextension"))
}
