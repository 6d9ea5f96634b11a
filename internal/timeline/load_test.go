package timeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `
width: 1080
height: 1920
fps: 30
duration: 5000000
materials:
  videos:
    - id: m1
      ref: /media/clip.mp4
      kind: video
tracks:
  - name: main
    type: video
    render_index: 1
    segments:
      - material_id: m1
        target_timerange: {start: 0, duration: 5000000}
        source_timerange: {start: 1000000, duration: 5000000}
        clip_settings:
          opacity: 0.8
`

func TestParseSnapshot(t *testing.T) {
	tl, err := Parse([]byte(sampleSnapshot))
	require.NoError(t, err)

	assert.Equal(t, 1080, tl.Width)
	assert.Equal(t, 1920, tl.Height)
	require.Len(t, tl.Tracks, 1)
	require.Len(t, tl.Tracks[0].Segments, 1)

	seg := tl.Tracks[0].Segments[0]
	// absent fields fall back to the identity transform
	assert.InDelta(t, 1.0, seg.Speed, 1e-9)
	assert.InDelta(t, 1.0, seg.Clip.ScaleX, 1e-9)
	assert.InDelta(t, 1.0, seg.Clip.ScaleY, 1e-9)
	assert.InDelta(t, 1.0, seg.Clip.Volume, 1e-9)
	assert.InDelta(t, 0.8, seg.Clip.Opacity, 1e-9)
}

func TestParseSnapshotRejectsMissingCanvas(t *testing.T) {
	_, err := Parse([]byte("duration: 100\n"))
	assert.Error(t, err)
}

func TestTransitionNormalization(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantKind string
		wantDur  time.Duration
	}{
		{
			name:     "kind with seconds",
			yaml:     "kind: pull_in\nduration: 0.5",
			wantKind: TransitionPullIn,
			wantDur:  500 * time.Millisecond,
		},
		{
			name:     "display name normalized",
			yaml:     "name: Pull Out\nduration: 1",
			wantKind: TransitionPullOut,
			wantDur:  time.Second,
		},
		{
			name:     "magnitude heuristic treats large values as microseconds",
			yaml:     "kind: pull_in\nduration: 500000",
			wantKind: TransitionPullIn,
			wantDur:  500 * time.Millisecond,
		},
		{
			name:     "explicit microsecond field",
			yaml:     "type: pull_in\nduration_us: 250000",
			wantKind: TransitionPullIn,
			wantDur:  250 * time.Millisecond,
		},
		{
			name:     "explicit millisecond field",
			yaml:     "kind: pull_out\nduration_ms: 750",
			wantKind: TransitionPullOut,
			wantDur:  750 * time.Millisecond,
		},
		{
			name:     "no duration defaults to zero",
			yaml:     "kind: pull_in",
			wantKind: TransitionPullIn,
			wantDur:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, err := Parse([]byte(snapshotWithTransition(tt.yaml)))
			require.NoError(t, err)
			tr := tl.Tracks[0].Segments[0].Transition
			require.NotNil(t, tr)
			assert.Equal(t, tt.wantKind, tr.Kind)
			assert.Equal(t, tt.wantDur, tr.Duration)
		})
	}
}

func snapshotWithTransition(trYAML string) string {
	out := "width: 100\nheight: 100\nduration: 1000000\ntracks:\n  - name: t\n    type: video\n    render_index: 1\n    segments:\n      - target_timerange: {start: 0, duration: 1000000}\n        transition:\n"
	for _, line := range strings.Split(trYAML, "\n") {
		out += "          " + line + "\n"
	}
	return out
}
