package compose

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kfaulkner/weld/internal/ffmpeg"
	"github.com/kfaulkner/weld/internal/fgraph"
	"github.com/kfaulkner/weld/internal/timeline"
	"github.com/kfaulkner/weld/pkg/util"
)

// Builder assembles the single-pass compositing graph: a full-duration
// background seeded first, then every segment overlaid in ascending
// (render_index, in_track_index) order behind an enable window, so one
// static graph reproduces the dynamic timeline.
type Builder struct {
	logger   zerolog.Logger
	width    int
	height   int
	fps      float64
	duration float64
}

// NewBuilder creates a builder for the given output geometry
func NewBuilder(logger zerolog.Logger, width, height int, fps, duration float64) *Builder {
	return &Builder{
		logger:   logger.With().Str("component", "builder").Logger(),
		width:    width,
		height:   height,
		fps:      fps,
		duration: duration,
	}
}

func (b *Builder) canvasSize() string {
	return fmt.Sprintf("%dx%d", b.width, b.height)
}

// Build synthesizes the monolithic plan for all segments. textClips maps text
// segments to prerendered alpha clips; absent entries render inline.
func (b *Builder) Build(segs []*timeline.CompositionSegment, textClips map[*timeline.Segment]string) (*Plan, error) {
	if len(segs) == 0 {
		return nil, ErrEmptyGraph
	}

	p := newPlan()
	layer := b.addBackground(p, false)

	for _, trackSegs := range groupByTrack(segs) {
		layer = b.composeTrack(p, layer, trackSegs, textClips)
	}

	p.VideoOut = layer
	p.AudioOut = b.buildAudioMix(p, audioOnly(segs))

	if p.VideoOut == "" || p.Graph.Empty() {
		return nil, ErrEmptyGraph
	}
	return p, nil
}

// addBackground seeds the composed layer with a full-duration, full-canvas
// field: opaque black for final output, transparent for per-track passes.
func (b *Builder) addBackground(p *Plan, transparent bool) string {
	color := "black"
	if transparent {
		color = "black@0.0"
	}
	label := p.Graph.Add("color", nil,
		fgraph.Str("c", color),
		fgraph.Str("s", b.canvasSize()),
		fgraph.Float("r", b.fps),
		fgraph.Float("d", b.duration),
	).Output()
	if transparent {
		label = p.Graph.Add("format", []string{label}, fgraph.Str("", "yuva420p")).Output()
	}
	return label
}

// trackAccum threads per-track state through one linear construction pass:
// the running layer, the previous visual segment and its local-time label
// kept aside for a possible transition.
type trackAccum struct {
	layer     string
	prev      *timeline.CompositionSegment
	prevLocal string
}

// composeTrack folds one track's segments onto the running layer
func (b *Builder) composeTrack(p *Plan, base string, segs []*timeline.CompositionSegment, textClips map[*timeline.Segment]string) string {
	acc := trackAccum{layer: base}

	// resolve every media chain up front: branch allocation below must know
	// whether a neighbor actually materializes before splitting for it, or a
	// skipped successor leaves an unconsumed split pad behind
	locals := make([]string, len(segs))
	for i, seg := range segs {
		if seg.Track.Type == timeline.TrackText || !seg.IsVisual() {
			continue
		}
		locals[i] = b.mediaChain(p, seg)
	}

	for i, seg := range segs {
		if seg.Track.Type == timeline.TrackText {
			acc = trackAccum{layer: b.addText(p, acc.layer, seg, textClips)}
			continue
		}
		if !seg.IsVisual() {
			continue
		}

		local := locals[i]
		if local == "" {
			continue // missing material: skip, never abort
		}

		tr, hasTransition := resolveTransition(acc.prev, seg)
		hasTransition = hasTransition && acc.prevLocal != ""

		// a successor transition needs this segment's trailing frames later
		needTail := false
		if i+1 < len(segs) && locals[i+1] != "" {
			if _, ok := resolveTransition(seg, segs[i+1]); ok {
				needTail = true
			}
		}

		branches := 1
		if hasTransition {
			branches++
		}
		if needTail {
			branches++
		}

		main, head, tail := local, "", ""
		if branches > 1 {
			// split defaults to two outputs, so the fan-out is always spelled out
			outs := p.Graph.AddN("split", []string{local}, branches, fgraph.Int("", branches)).Outputs
			main = outs[0]
			rest := outs[1:]
			if hasTransition {
				head, rest = rest[0], rest[1:]
			}
			if needTail {
				tail = rest[0]
			}
		}

		layer := acc.layer
		if hasTransition {
			layer = b.buildTransition(p, layer, acc.prevLocal, head, acc.prev, seg, tr)
		}

		layer = b.overlaySegment(p, layer, main, seg)
		acc = trackAccum{layer: layer, prev: seg, prevLocal: tail}
	}

	return acc.layer
}

// mediaChain builds a segment's fully-transformed stream in local time.
// Returns "" when the material cannot be resolved (non-fatal policy).
func (b *Builder) mediaChain(p *Plan, seg *timeline.CompositionSegment) string {
	mat := seg.Material
	if mat == nil || mat.Ref == "" {
		b.logger.Warn().
			Str("track", seg.Track.Name).
			Str("material_id", seg.Segment.MaterialID).
			Msg("segment material unresolvable, skipping")
		return ""
	}

	g := p.Graph
	isImage := mat.Kind == timeline.MaterialImage || util.IsImageRef(mat.Ref)

	var label string
	if isImage {
		// one frame held for the segment's rendered duration
		idx := p.addInput(ffmpeg.Input{Path: mat.Ref, Loop: true, LoopDuration: seg.Duration()})
		label = g.Add("setpts", []string{videoInput(idx)}, fgraph.Str("", "PTS-STARTPTS")).Output()
	} else {
		idx := p.addInput(ffmpeg.Input{Path: mat.Ref})
		speed := seg.Segment.SpeedFactor()
		s0, s1 := seg.Segment.SourceBounds(seg.Duration() * speed)
		label = g.Add("trim", []string{videoInput(idx)},
			fgraph.Float("start", s0),
			fgraph.Float("end", s1),
		).Output()
		label = retime(g, label, speed)
	}

	label = g.Add("fps", []string{label}, fgraph.Float("", b.fps)).Output()
	return applyTransforms(g, label, seg.Segment.Clip)
}

// overlaySegment re-offsets a local-time stream and composites it onto the
// running layer, gated by the segment's enable window.
func (b *Builder) overlaySegment(p *Plan, layer, local string, seg *timeline.CompositionSegment) string {
	g := p.Graph
	shifted := shiftTo(g, local, seg.StartTime)
	x, y := overlayPosition(seg.Segment.Clip.PositionX, seg.Segment.Clip.PositionY)
	return g.Add("overlay", []string{layer, shifted},
		fgraph.Expr("x", x),
		fgraph.Expr("y", y),
		enableWindow(seg.StartTime, seg.EndTime),
	).Output()
}

// groupByTrack splits a globally-ordered segment list into per-track runs,
// preserving the global order.
func groupByTrack(segs []*timeline.CompositionSegment) [][]*timeline.CompositionSegment {
	var groups [][]*timeline.CompositionSegment
	for _, seg := range segs {
		n := len(groups)
		if n > 0 && groups[n-1][0].Track == seg.Track {
			groups[n-1] = append(groups[n-1], seg)
			continue
		}
		groups = append(groups, []*timeline.CompositionSegment{seg})
	}
	return groups
}

// audioOnly filters the audio-track segments out of the global list
func audioOnly(segs []*timeline.CompositionSegment) []*timeline.CompositionSegment {
	var out []*timeline.CompositionSegment
	for _, seg := range segs {
		if seg.Track.Type == timeline.TrackAudio {
			out = append(out, seg)
		}
	}
	return out
}

// visualOnly filters the visual segments out of the global list
func visualOnly(segs []*timeline.CompositionSegment) []*timeline.CompositionSegment {
	var out []*timeline.CompositionSegment
	for _, seg := range segs {
		if seg.IsVisual() {
			out = append(out, seg)
		}
	}
	return out
}
