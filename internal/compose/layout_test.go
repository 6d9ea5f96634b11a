package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfaulkner/weld/internal/fgraph"
	"github.com/kfaulkner/weld/internal/timeline"
)

func TestPixelCenter(t *testing.T) {
	assert.Equal(t, 540, PixelCenter(0, 1080))
	assert.Equal(t, 0, PixelCenter(-1, 1080))
	assert.Equal(t, 1080, PixelCenter(1, 1080))
	assert.Equal(t, 810, PixelCenter(0.5, 1080))
}

func TestTopLeft(t *testing.T) {
	x, y := TopLeft(200, 100, 0, 0, 1080, 1920)
	assert.Equal(t, 440, x)
	assert.Equal(t, 910, y)

	x, y = TopLeft(200, 100, -1, -1, 1080, 1920)
	assert.Equal(t, -100, x)
	assert.Equal(t, -50, y)
}

func TestOverlayPosition(t *testing.T) {
	x, y := overlayPosition(0, 0)
	assert.Equal(t, "W*0.5000-w/2", x)
	assert.Equal(t, "H*0.5000-h/2", y)

	x, y = overlayPosition(-1, 1)
	assert.Equal(t, "W*0.0000-w/2", x)
	assert.Equal(t, "H*1.0000-h/2", y)
}

func TestEnableWindowIsHalfOpen(t *testing.T) {
	arg := enableWindow(1, 3.5)
	assert.Equal(t, "enable", arg.Key)
	assert.Equal(t, "gte(t,1.0000)*lt(t,3.5000)", arg.Value)
}

func TestApplyTransformsIdentityEmitsNothing(t *testing.T) {
	g := fgraph.New()
	in := "in"

	out := applyTransforms(g, in, timeline.DefaultClipSettings())
	assert.Equal(t, in, out)
	assert.True(t, g.Empty())
}

func TestApplyTransformsScaleRotateOpacity(t *testing.T) {
	g := fgraph.New()
	clip := timeline.DefaultClipSettings()
	clip.ScaleX = 0.5
	clip.ScaleY = 2
	clip.Rotation = 90
	clip.Opacity = 0.3

	out := applyTransforms(g, "in", clip)
	require.NotEqual(t, "in", out)

	scales := g.Find("scale")
	require.Len(t, scales, 1)
	w, _ := scales[0].Arg("w")
	assert.Equal(t, "trunc(iw*0.5000/2)*2", w)
	h, _ := scales[0].Arg("h")
	assert.Equal(t, "trunc(ih*2.0000/2)*2", h)

	rotates := g.Find("rotate")
	require.Len(t, rotates, 1)
	a, _ := rotates[0].Arg("a")
	assert.Equal(t, "90.000000*PI/180", a)
	c, _ := rotates[0].Arg("c")
	assert.Equal(t, "none", c)

	mixers := g.Find("colorchannelmixer")
	require.Len(t, mixers, 1)
	aa, _ := mixers[0].Arg("aa")
	assert.Equal(t, "0.3000", aa)
	// the alpha plane must exist before the mixer touches it
	require.NotEmpty(t, g.Find("format"))
}

func TestRetime(t *testing.T) {
	g := fgraph.New()
	retime(g, "in", 1)
	retime(g, "in", 2)

	nodes := g.Find("setpts")
	require.Len(t, nodes, 2)
	v0, _ := nodes[0].Arg("")
	assert.Equal(t, "PTS-STARTPTS", v0)
	v1, _ := nodes[1].Arg("")
	assert.Equal(t, "(PTS-STARTPTS)/2.0000", v1)
}

func TestShiftTo(t *testing.T) {
	g := fgraph.New()
	shiftTo(g, "in", 2.5)

	nodes := g.Find("setpts")
	require.Len(t, nodes, 1)
	v, _ := nodes[0].Arg("")
	assert.Equal(t, "PTS+2.5000/TB", v)
}

func TestMapTextSize(t *testing.T) {
	// the calibration anchors at full base height
	assert.Equal(t, 60, MapTextSize(12, 1920))
	assert.Equal(t, 40, MapTextSize(8, 1920))
	// halve the output, halve the pixels
	assert.Equal(t, 30, MapTextSize(12, 960))
	// tiny sizes floor at 12px
	assert.Equal(t, 12, MapTextSize(0.5, 480))
	// unspecified size scales with the canvas
	assert.Equal(t, 96, MapTextSize(0, 1920))
}
