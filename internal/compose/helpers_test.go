package compose

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/kfaulkner/weld/internal/ffmpeg"
	"github.com/kfaulkner/weld/internal/timeline"
)

func testBuilder() *Builder {
	return NewBuilder(zerolog.Nop(), 1080, 1920, 30, 10)
}

func videoTrack(name string, renderIndex int, segs ...*timeline.Segment) *timeline.Track {
	return &timeline.Track{Name: name, Type: timeline.TrackVideo, RenderIndex: renderIndex, Segments: segs}
}

func videoSeg(startUS, durUS int64) *timeline.Segment {
	return &timeline.Segment{
		Speed:    1,
		Clip:     timeline.DefaultClipSettings(),
		Target:   &timeline.TimeRange{Start: startUS, Duration: durUS},
		Material: &timeline.Material{Ref: "/media/clip.mp4", Kind: timeline.MaterialVideo},
	}
}

func audioSeg(startUS, durUS int64) *timeline.Segment {
	return &timeline.Segment{
		Speed:    1,
		Clip:     timeline.DefaultClipSettings(),
		Target:   &timeline.TimeRange{Start: startUS, Duration: durUS},
		Material: &timeline.Material{Ref: "/media/song.mp3", Kind: timeline.MaterialAudio},
	}
}

func textSeg(startUS, durUS int64, text string) *timeline.Segment {
	return &timeline.Segment{
		Speed:  1,
		Clip:   timeline.DefaultClipSettings(),
		Target: &timeline.TimeRange{Start: startUS, Duration: durUS},
		Text:   text,
	}
}

func textTrack(name string, renderIndex int, segs ...*timeline.Segment) *timeline.Track {
	return &timeline.Track{Name: name, Type: timeline.TrackText, RenderIndex: renderIndex, Segments: segs}
}

func audioTrack(name string, renderIndex int, segs ...*timeline.Segment) *timeline.Track {
	return &timeline.Track{Name: name, Type: timeline.TrackAudio, RenderIndex: renderIndex, Segments: segs}
}

func extract(tracks ...*timeline.Track) []*timeline.CompositionSegment {
	tl := &timeline.Timeline{Width: 1080, Height: 1920, FPS: 30, Duration: 10_000_000, Tracks: tracks}
	return timeline.ExtractSegments(tl)
}

// assertConnectedGraph fails on any stream label the graph produces but
// neither consumes nor exposes as a terminal output; ffmpeg rejects such
// graphs outright.
func assertConnectedGraph(t *testing.T, p *Plan) {
	t.Helper()
	consumed := map[string]bool{}
	for _, n := range p.Graph.Nodes() {
		for _, in := range n.Inputs {
			consumed[in] = true
		}
	}
	for _, n := range p.Graph.Nodes() {
		for _, out := range n.Outputs {
			if out == p.VideoOut || out == p.AudioOut {
				continue
			}
			assert.True(t, consumed[out], "%s output [%s] is never consumed", n.Name, out)
		}
	}
}

// fakeRunner records invocations instead of spawning ffmpeg
type fakeRunner struct {
	mu    sync.Mutex
	calls []ffmpeg.EncodeOptions

	err          error // returned for every call
	failWhen     func(ffmpeg.EncodeOptions) error
	createOutput bool
}

func (f *fakeRunner) Encode(_ context.Context, opts ffmpeg.EncodeOptions) error {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	if f.failWhen != nil {
		if err := f.failWhen(opts); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	if f.createOutput {
		if err := os.WriteFile(opts.Output, []byte("artifact"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRunner) callsTo(substr func(ffmpeg.EncodeOptions) bool) []ffmpeg.EncodeOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ffmpeg.EncodeOptions
	for _, c := range f.calls {
		if substr(c) {
			out = append(out, c)
		}
	}
	return out
}
