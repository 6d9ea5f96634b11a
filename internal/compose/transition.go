package compose

import (
	"fmt"
	"math"

	"github.com/kfaulkner/weld/internal/fgraph"
	"github.com/kfaulkner/weld/internal/timeline"
)

// buttJoinEpsilon is the largest gap (seconds) still treated as a butt-join;
// any real gap suppresses transition synthesis entirely.
const buttJoinEpsilon = 1e-4

// transitionZoom is the magnification the pull transitions swing through
const transitionZoom = 1.12

// resolvedTransition is a transition the builder has decided to synthesize
type resolvedTransition struct {
	Kind     string
	Duration float64 // seconds, already clamped
}

// resolveTransition decides whether a transition runs between two adjacent
// segments of the same track. The descriptor may sit on either neighbor; the
// effective duration clamps to what both clips can actually cover once their
// speed factors are applied.
func resolveTransition(prev, curr *timeline.CompositionSegment) (resolvedTransition, bool) {
	if prev == nil || curr == nil {
		return resolvedTransition{}, false
	}
	if math.Abs(prev.EndTime-curr.StartTime) >= buttJoinEpsilon {
		return resolvedTransition{}, false
	}

	tr := curr.Segment.Transition
	if tr == nil {
		tr = prev.Segment.Transition
	}
	if tr == nil {
		return resolvedTransition{}, false
	}

	kind := timeline.NormalizeTransitionKind(tr.Kind)
	if kind != timeline.TransitionPullIn && kind != timeline.TransitionPullOut {
		// unrecognized kinds degrade to a hard cut
		return resolvedTransition{}, false
	}

	d := tr.Duration.Seconds()
	d = math.Min(d, prev.EffectiveDuration())
	d = math.Min(d, curr.EffectiveDuration())
	if d <= 0 {
		return resolvedTransition{}, false
	}

	return resolvedTransition{Kind: kind, Duration: d}, true
}

// buildTransition overlays a zoom-dissolve between the trailing d seconds of
// the predecessor and the leading d seconds of the successor. Both sides are
// normalized to canvas size, frame rate and pixel format before blending;
// the blend's fill is keyed to transparency and the result re-offset into
// [curr.start - d, curr.start).
func (b *Builder) buildTransition(p *Plan, layer, prevTail, currHead string,
	prev, curr *timeline.CompositionSegment, tr resolvedTransition) string {

	g := p.Graph
	d := tr.Duration

	// the local stream spans the placed duration after retiming, so the
	// trailing window is measured against that, not the source footage
	tail := g.Add("trim", []string{prevTail},
		fgraph.Float("start", prev.Duration()-d),
		fgraph.Float("end", prev.Duration()),
	).Output()
	tail = g.Add("setpts", []string{tail}, fgraph.Str("", "PTS-STARTPTS")).Output()
	tail = b.normalizeForBlend(g, tail)

	if tr.Kind == timeline.TransitionPullOut {
		// predecessor shrinks outward: ride the zoom back down to 1.0
		frames := math.Max(1, d*b.fps)
		tail = g.Add("zoompan", []string{tail},
			fgraph.Expr("z", fmt.Sprintf("max(1,%.4f-%.4f*on/%.1f)", transitionZoom, transitionZoom-1, frames)),
			fgraph.Int("d", 1),
			fgraph.Str("s", b.canvasSize()),
			fgraph.Float("fps", b.fps),
		).Output()
	}

	head := g.Add("trim", []string{currHead}, fgraph.Float("end", d)).Output()
	head = g.Add("setpts", []string{head}, fgraph.Str("", "PTS-STARTPTS")).Output()
	head = b.normalizeForBlend(g, head)

	blendKind := "zoomin"
	if tr.Kind == timeline.TransitionPullOut {
		blendKind = "dissolve"
	}
	blend := g.Add("xfade", []string{tail, head},
		fgraph.Str("transition", blendKind),
		fgraph.Float("duration", d),
		fgraph.Float("offset", 0),
	).Output()

	// the dissolve fills with black outside the two clips; key it out so the
	// layers below stay visible
	blend = g.Add("colorkey", []string{blend},
		fgraph.Str("color", "black"),
		fgraph.Float("similarity", 0.01),
		fgraph.Float("blend", 0),
	).Output()

	start := curr.StartTime - d
	blend = shiftTo(g, blend, start)

	return g.Add("overlay", []string{layer, blend},
		fgraph.Int("x", 0),
		fgraph.Int("y", 0),
		enableWindow(start, curr.StartTime),
	).Output()
}

// normalizeForBlend forces canvas geometry, frame rate and an alpha-capable
// pixel format; the blend requires both inputs to agree on all three.
func (b *Builder) normalizeForBlend(g *fgraph.Graph, label string) string {
	label = g.Add("scale", []string{label},
		fgraph.Int("w", b.width),
		fgraph.Int("h", b.height),
	).Output()
	label = g.Add("fps", []string{label}, fgraph.Float("", b.fps)).Output()
	return g.Add("format", []string{label}, fgraph.Str("", "yuva420p")).Output()
}
