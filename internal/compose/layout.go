package compose

import (
	"fmt"
	"math"

	"github.com/kfaulkner/weld/internal/fgraph"
	"github.com/kfaulkner/weld/internal/timeline"
)

const epsilon = 1e-6

// PixelCenter converts one normalized coordinate in [-1, 1] (origin at
// canvas center) to a pixel offset along a dimension.
func PixelCenter(n float64, dim int) int {
	return int((n + 1.0) * float64(dim) / 2.0)
}

// TopLeft converts a clip's normalized center position to its top-left
// placement on the canvas.
func TopLeft(clipW, clipH int, nx, ny float64, canvasW, canvasH int) (int, int) {
	cx := PixelCenter(nx, canvasW)
	cy := PixelCenter(ny, canvasH)
	return cx - clipW/2, cy - clipH/2
}

// overlayPosition renders the top-left placement as overlay expressions in
// terms of the engine's own frame variables, so the placement stays correct
// whatever size the transform chain produced.
func overlayPosition(nx, ny float64) (string, string) {
	x := fmt.Sprintf("W*%.4f-w/2", (nx+1.0)/2.0)
	y := fmt.Sprintf("H*%.4f-h/2", (ny+1.0)/2.0)
	return x, y
}

// enableWindow builds the half-open [start, end) time predicate that gates a
// compositing step.
func enableWindow(start, end float64) fgraph.Arg {
	return fgraph.Expr("enable", fmt.Sprintf("gte(t,%.4f)*lt(t,%.4f)", start, end))
}

// applyTransforms appends the engine-native operations for a segment's clip
// settings to the graph: scale, rotation, opacity. Identity settings emit
// nothing, keeping the graph minimal.
func applyTransforms(g *fgraph.Graph, label string, clip timeline.ClipSettings) string {
	// scale=w:h resizes each axis independently, so anisotropic scale needs
	// no approximation on this engine
	if math.Abs(clip.ScaleX-1) > epsilon || math.Abs(clip.ScaleY-1) > epsilon {
		label = g.Add("scale", []string{label},
			fgraph.Expr("w", fmt.Sprintf("trunc(iw*%.4f/2)*2", clip.ScaleX)),
			fgraph.Expr("h", fmt.Sprintf("trunc(ih*%.4f/2)*2", clip.ScaleY)),
		).Output()
	}

	// rotation arrives in degrees; the engine wants radians
	if math.Abs(clip.Rotation) > epsilon {
		rad := fmt.Sprintf("%.6f*PI/180", clip.Rotation)
		label = g.Add("rotate", []string{label},
			fgraph.Expr("a", rad),
			fgraph.Expr("ow", fmt.Sprintf("rotw(%s)", rad)),
			fgraph.Expr("oh", fmt.Sprintf("roth(%s)", rad)),
			fgraph.Str("c", "none"),
		).Output()
	}

	// full opacity is a no-op; anything less needs an alpha plane first
	if clip.Opacity < 1.0 {
		label = g.Add("format", []string{label}, fgraph.Str("", "rgba")).Output()
		label = g.Add("colorchannelmixer", []string{label},
			fgraph.Float("aa", clip.Opacity),
		).Output()
	}

	return label
}

// retime appends the local-clock reset and playback-rate change for a visual
// stream: presentation timestamps divide by the speed factor.
func retime(g *fgraph.Graph, label string, speed float64) string {
	expr := "PTS-STARTPTS"
	if math.Abs(speed-1) > epsilon {
		expr = fmt.Sprintf("(PTS-STARTPTS)/%.4f", speed)
	}
	return g.Add("setpts", []string{label}, fgraph.Str("", expr)).Output()
}

// shiftTo re-offsets a local-time stream to its absolute timeline position
func shiftTo(g *fgraph.Graph, label string, start float64) string {
	return g.Add("setpts", []string{label},
		fgraph.Str("", fmt.Sprintf("PTS+%.4f/TB", start)),
	).Output()
}
