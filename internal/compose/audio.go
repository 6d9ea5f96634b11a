package compose

import (
	"math"

	"github.com/kfaulkner/weld/internal/ffmpeg"
	"github.com/kfaulkner/weld/internal/fgraph"
	"github.com/kfaulkner/weld/internal/timeline"
)

// atempo accepts tempo factors in [0.5, 2.0] only
const (
	atempoMin = 0.5
	atempoMax = 2.0
)

// AtempoSteps decomposes a playback-rate factor into a chain of legal tempo
// steps whose product equals the requested factor. Factors already in range
// yield a single step; exact unity yields none. Halving and doubling are
// exact in binary floating point, so the residual carries no drift.
func AtempoSteps(factor float64) []float64 {
	if factor <= 0 {
		return nil
	}
	var steps []float64
	for factor > atempoMax {
		steps = append(steps, atempoMax)
		factor /= atempoMax
	}
	for factor < atempoMin {
		steps = append(steps, atempoMin)
		factor /= atempoMin
	}
	if len(steps) == 0 && math.Abs(factor-1.0) < epsilon {
		return nil
	}
	return append(steps, factor)
}

// buildAudioMix assembles the per-segment audio chains and sums them into a
// single label. Downstream always receives a valid audio binding: zero
// streams produce a well-formed silent placeholder.
func (b *Builder) buildAudioMix(p *Plan, segs []*timeline.CompositionSegment) string {
	g := p.Graph

	var labels []string
	for _, seg := range segs {
		mat := seg.Material
		if mat == nil || mat.Ref == "" {
			b.logger.Warn().
				Str("track", seg.Track.Name).
				Str("material_id", seg.Segment.MaterialID).
				Msg("audio material unresolvable, skipping")
			continue
		}

		idx := p.addInput(ffmpeg.Input{Path: mat.Ref})
		speed := seg.Segment.SpeedFactor()
		s0, s1 := seg.Segment.SourceBounds(seg.Duration() * speed)

		// trim to the source subrange and reset the local clock
		label := g.Add("atrim", []string{audioInput(idx)},
			fgraph.Float("start", s0),
			fgraph.Float("end", s1),
		).Output()
		label = g.Add("asetpts", []string{label}, fgraph.Str("", "PTS-STARTPTS")).Output()

		for _, step := range AtempoSteps(speed) {
			label = g.Add("atempo", []string{label}, fgraph.Float("", step)).Output()
		}

		// gain is a simple multiplier applied after retiming
		if vol := seg.Segment.Clip.Volume; math.Abs(vol-1.0) > epsilon {
			label = g.Add("volume", []string{label}, fgraph.Float("", vol)).Output()
		}

		// delay by the absolute start so concurrent segments interleave
		delayMS := int(math.Round(seg.StartTime * 1000))
		label = g.Add("adelay", []string{label},
			fgraph.Int("delays", delayMS),
			fgraph.Int("all", 1),
		).Output()

		labels = append(labels, label)
	}

	switch len(labels) {
	case 0:
		label := g.Add("anullsrc", nil,
			fgraph.Str("channel_layout", "stereo"),
			fgraph.Int("sample_rate", 44100),
		).Output()
		return g.Add("atrim", []string{label}, fgraph.Float("duration", b.duration)).Output()
	case 1:
		return labels[0]
	default:
		// dropout-safe sum, no implicit gain compensation
		return g.Add("amix", labels,
			fgraph.Int("inputs", len(labels)),
			fgraph.Str("duration", "longest"),
			fgraph.Int("dropout_transition", 0),
			fgraph.Int("normalize", 0),
		).Output()
	}
}
