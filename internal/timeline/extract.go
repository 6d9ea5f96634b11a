package timeline

import "sort"

// CompositionSegment joins a segment with its track and resolved material,
// carrying absolute timing in seconds. Created fresh per export call.
type CompositionSegment struct {
	Track    *Track
	Segment  *Segment
	Material *Material

	// InTrackIndex is the segment's position within its track; together with
	// the track's render index it forms the global compositing order.
	InTrackIndex int

	StartTime float64
	EndTime   float64
}

// Duration returns the placed length in seconds
func (c *CompositionSegment) Duration() float64 {
	return c.EndTime - c.StartTime
}

// EffectiveDuration is the rendered duration after dividing by speed
func (c *CompositionSegment) EffectiveDuration() float64 {
	return c.Duration() / c.Segment.SpeedFactor()
}

// IsVisual reports whether the segment contributes to the video layer stack
func (c *CompositionSegment) IsVisual() bool {
	switch c.Track.Type {
	case TrackVideo, TrackText, TrackSticker:
		return true
	}
	return false
}

// ExtractSegments flattens all tracks into a single list of time-resolved
// segments sorted by (render_index, track order, in_track_index). Segments without a
// resolvable target range are skipped; an unresolvable material is left nil
// for the builder's missing-material policy to handle.
func ExtractSegments(t *Timeline) []*CompositionSegment {
	// tie-break equal render indices by snapshot order so a track's segments
	// stay contiguous; interleaving would sever butt-join adjacency
	ord := make(map[*Track]int, len(t.Tracks))
	for i, track := range t.Tracks {
		ord[track] = i
	}

	var out []*CompositionSegment
	for _, track := range t.Tracks {
		for i, seg := range track.Segments {
			if seg.Target == nil || seg.Target.Duration <= 0 {
				continue
			}

			mat := seg.Material
			if mat == nil && seg.MaterialID != "" {
				mat = t.FindMaterial(seg.MaterialID, track.Type)
			}

			out = append(out, &CompositionSegment{
				Track:        track,
				Segment:      seg,
				Material:     mat,
				InTrackIndex: i,
				StartTime:    seg.Target.StartSeconds(),
				EndTime:      seg.Target.EndSeconds(),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Track.RenderIndex != b.Track.RenderIndex {
			return a.Track.RenderIndex < b.Track.RenderIndex
		}
		if a.Track != b.Track {
			return ord[a.Track] < ord[b.Track]
		}
		return a.InTrackIndex < b.InTrackIndex
	})
	return out
}
