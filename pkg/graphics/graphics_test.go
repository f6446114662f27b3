package graphics

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorComponents(t *testing.T) {
	c := RGBA8(0x11, 0x22, 0x33, 0x80)
	assert.Equal(t, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}, c.NRGBA())
	assert.Equal(t, "#80112233", c.String())
	assert.InDelta(t, 0.5, c.Alpha(), 0.01)
	assert.Equal(t, Color(0xFF112233), c.WithAlpha(1))
	assert.Equal(t, Color(0x00112233), c.WithAlpha(-3))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#1E88E5", 0xFF1E88E5, true},
		{"801E88E5", 0x801E88E5, true},
		{" #ffffff ", ColorWhite, true},
		{"#fff", 0, false},
		{"#zzzzzz", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSizeIsPixelAligned(t *testing.T) {
	assert.True(t, Size{Width: 48, Height: 64}.IsPixelAligned())
	assert.False(t, Size{Width: 0, Height: 64}.IsPixelAligned())
	assert.False(t, Size{Width: 48.5, Height: 64}.IsPixelAligned())
	assert.False(t, Size{Width: -1, Height: -1}.IsPixelAligned())
}

func TestColorText(t *testing.T) {
	data, err := json.Marshal(struct {
		Fill Color `json:"fill"`
	}{RGB(0x1E, 0x88, 0xE5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fill":"#FF1E88E5"}`, string(data))

	var c Color
	require.NoError(t, c.UnmarshalText([]byte("#801E88E5")))
	assert.Equal(t, RGBA8(0x1E, 0x88, 0xE5, 0x80), c)
	assert.Error(t, c.UnmarshalText([]byte("blue")))
}
