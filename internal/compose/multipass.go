package compose

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kfaulkner/weld/internal/ffmpeg"
	"github.com/kfaulkner/weld/internal/fgraph"
	"github.com/kfaulkner/weld/internal/timeline"
	"github.com/kfaulkner/weld/pkg/util"
)

// Multipass renders each visual track independently into one full-duration
// alpha-preserving clip, then performs a single shallow composite. This
// keeps any one graph small when segment and transition counts grow; the
// caller retries via the monolithic path when any stage here fails.
type Multipass struct {
	logger      zerolog.Logger
	runner      Runner
	builder     *Builder
	concurrency int
}

// NewMultipass creates the orchestrator. concurrency bounds the number of
// track passes rendering at once.
func NewMultipass(logger zerolog.Logger, runner Runner, builder *Builder, concurrency int) *Multipass {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Multipass{
		logger:      logger.With().Str("component", "multipass").Logger(),
		runner:      runner,
		builder:     builder,
		concurrency: concurrency,
	}
}

// Run renders the per-track passes and the final composite into output.
// Intermediates live in workdir, which the caller owns and removes.
func (m *Multipass) Run(ctx context.Context, segs []*timeline.CompositionSegment,
	textClips map[*timeline.Segment]string, workdir string, enc ffmpeg.EncodeOptions) error {

	tracks := groupByTrack(visualOnly(segs))
	if len(tracks) == 0 && len(audioOnly(segs)) == 0 {
		return ErrEmptyGraph
	}

	clipPaths := make([]string, len(tracks))
	// the composite consumes the pass clips synchronously, so they can go as
	// soon as Run returns; a monolithic fallback never reads them
	defer util.CleanupFiles(clipPaths...)

	// the passes share no mutable state and may run concurrently; the final
	// composite is strictly ordered after the join
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, trackSegs := range tracks {
		trackSegs := trackSegs
		out := filepath.Join(workdir, fmt.Sprintf("track_%03d.mov", i))
		clipPaths[i] = out
		g.Go(func() error {
			return m.renderTrack(gctx, trackSegs, textClips, out)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("track pass failed: %w", err)
	}

	return m.finalComposite(ctx, clipPaths, audioOnly(segs), enc)
}

// renderTrack composites one track's segments over a transparent field
// spanning the full timeline, so the final composite is a plain stack.
func (m *Multipass) renderTrack(ctx context.Context, segs []*timeline.CompositionSegment,
	textClips map[*timeline.Segment]string, out string) error {

	b := m.builder
	m.logger.Info().
		Str("track", segs[0].Track.Name).
		Int("segments", len(segs)).
		Str("output", out).
		Msg("rendering track pass")

	p := newPlan()
	base := b.addBackground(p, true)
	p.VideoOut = b.composeTrack(p, base, segs, textClips)
	if p.VideoOut == "" {
		return ErrEmptyGraph
	}

	return m.runner.Encode(ctx, ffmpeg.EncodeOptions{
		Inputs:      p.Inputs,
		FilterGraph: p.Graph.Serialize(),
		VideoLabel:  p.VideoOut,
		Output:      out,
		VideoCodec:  "qtrle",
		PixelFormat: "argb",
		FPS:         b.fps,
	})
}

// finalComposite stacks the track clips in render order over the background
// and muxes the audio mix in.
func (m *Multipass) finalComposite(ctx context.Context, clipPaths []string,
	audioSegs []*timeline.CompositionSegment, enc ffmpeg.EncodeOptions) error {

	b := m.builder
	p := newPlan()
	layer := b.addBackground(p, false)

	for _, path := range clipPaths {
		idx := p.addInput(ffmpeg.Input{Path: path})
		label := p.Graph.Add("format", []string{videoInput(idx)}, fgraph.Str("", "yuva420p")).Output()
		layer = p.Graph.Add("overlay", []string{layer, label},
			fgraph.Int("x", 0),
			fgraph.Int("y", 0),
		).Output()
	}

	p.VideoOut = layer
	p.AudioOut = b.buildAudioMix(p, audioSegs)

	enc.Inputs = p.Inputs
	enc.FilterGraph = p.Graph.Serialize()
	enc.VideoLabel = p.VideoOut
	enc.AudioLabel = p.AudioOut

	m.logger.Info().
		Int("tracks", len(clipPaths)).
		Str("output", enc.Output).
		Msg("running final composite")

	return m.runner.Encode(ctx, enc)
}
