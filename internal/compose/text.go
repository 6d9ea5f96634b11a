package compose

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kfaulkner/weld/internal/ffmpeg"
	"github.com/kfaulkner/weld/internal/fgraph"
	"github.com/kfaulkner/weld/internal/timeline"
)

// Text sizing calibration: the editor's size units map linearly to pixels
// through (8 -> 40px, 12 -> 60px) at a 1920px base height.
const (
	textPxAtSize12 = 60.0
	textPxAtSize8  = 40.0
	textBaseHeight = 1920.0
)

// MapTextSize converts an editor font size to output pixels, scaled by the
// output height with a 12px floor.
func MapTextSize(size float64, outHeight int) int {
	if size <= 0 {
		return max(12, int(0.05*float64(outHeight)))
	}
	slope := (textPxAtSize12 - textPxAtSize8) / (12.0 - 8.0)
	intercept := textPxAtSize12 - slope*12.0
	pxAtBase := slope*size + intercept
	return max(12, int(pxAtBase*float64(outHeight)/textBaseHeight))
}

// drawtextArgs builds the drawtext arguments for a text segment. The enable
// window is omitted for prerendered clips, which span their own duration.
func (b *Builder) drawtextArgs(seg *timeline.CompositionSegment, gated bool) []fgraph.Arg {
	sd := seg.Segment

	size := 0.0
	color := "white"
	font := ""
	if sd.Style != nil {
		size = sd.Style.Size
		if sd.Style.Color != "" {
			color = sd.Style.Color
		}
		font = sd.Style.Font
	}

	args := []fgraph.Arg{
		fgraph.Str("text", sd.Text),
		fgraph.Int("fontsize", MapTextSize(size, b.height)),
		fgraph.Str("fontcolor", color),
	}
	if font != "" {
		args = append(args, fgraph.Str("font", font))
	}

	// center the rendered text box on the normalized position
	cx := (sd.Clip.PositionX + 1.0) / 2.0
	cy := (sd.Clip.PositionY + 1.0) / 2.0
	args = append(args,
		fgraph.Expr("x", fmt.Sprintf("w*%.4f-text_w/2", cx)),
		fgraph.Expr("y", fmt.Sprintf("h*%.4f-text_h/2", cy)),
	)

	if gated {
		args = append(args, enableWindow(seg.StartTime, seg.EndTime))
	}
	return args
}

// addText composites one text segment: a prerendered alpha clip when one is
// available, inline drawtext on the running layer otherwise.
func (b *Builder) addText(p *Plan, layer string, seg *timeline.CompositionSegment, textClips map[*timeline.Segment]string) string {
	if seg.Segment.Text == "" {
		return layer
	}
	g := p.Graph

	if path, ok := textClips[seg.Segment]; ok {
		idx := p.addInput(ffmpeg.Input{Path: path})
		label := g.Add("format", []string{videoInput(idx)}, fgraph.Str("", "yuva420p")).Output()
		label = shiftTo(g, label, seg.StartTime)
		return g.Add("overlay", []string{layer, label},
			fgraph.Int("x", 0),
			fgraph.Int("y", 0),
			enableWindow(seg.StartTime, seg.EndTime),
		).Output()
	}

	return g.Add("drawtext", []string{layer}, b.drawtextArgs(seg, true)...).Output()
}

// Prerenderer renders text segments to standalone alpha-preserving clips
// ahead of the main graph, bounding its size. A failed prerender is
// non-fatal: the segment simply renders inline instead.
type Prerenderer struct {
	logger  zerolog.Logger
	runner  Runner
	builder *Builder
}

// NewPrerenderer creates a prerenderer sharing the builder's geometry
func NewPrerenderer(logger zerolog.Logger, runner Runner, builder *Builder) *Prerenderer {
	return &Prerenderer{
		logger:  logger.With().Str("component", "prerender").Logger(),
		runner:  runner,
		builder: builder,
	}
}

// Render prerenders every text segment into workdir, returning the clips
// that succeeded keyed by segment.
func (pr *Prerenderer) Render(ctx context.Context, segs []*timeline.CompositionSegment, workdir string) map[*timeline.Segment]string {
	clips := make(map[*timeline.Segment]string)

	n := 0
	for _, seg := range segs {
		if seg.Track.Type != timeline.TrackText || seg.Segment.Text == "" {
			continue
		}
		out := filepath.Join(workdir, fmt.Sprintf("text_%03d.mov", n))
		n++

		if err := pr.renderOne(ctx, seg, out); err != nil {
			pr.logger.Warn().Err(err).
				Str("track", seg.Track.Name).
				Msg("text prerender failed, falling back to inline rendering")
			continue
		}
		clips[seg.Segment] = out
	}
	return clips
}

// renderOne rasterizes one text segment over a transparent field spanning
// the segment's duration.
func (pr *Prerenderer) renderOne(ctx context.Context, seg *timeline.CompositionSegment, out string) error {
	b := pr.builder
	p := newPlan()

	idx := p.addInput(ffmpeg.Input{
		Format: "lavfi",
		Path: fmt.Sprintf("color=c=black@0.0:s=%s:r=%.4f:d=%.4f",
			b.canvasSize(), b.fps, seg.Duration()),
	})

	label := p.Graph.Add("format", []string{videoInput(idx)}, fgraph.Str("", "yuva420p")).Output()
	label = p.Graph.Add("drawtext", []string{label}, b.drawtextArgs(seg, false)...).Output()
	p.VideoOut = label

	return pr.runner.Encode(ctx, ffmpeg.EncodeOptions{
		Inputs:      p.Inputs,
		FilterGraph: p.Graph.Serialize(),
		VideoLabel:  p.VideoOut,
		Output:      out,
		VideoCodec:  "qtrle",
		PixelFormat: "argb",
		FPS:         b.fps,
	})
}
