// Package compose turns a resolved timeline snapshot into an executable
// compositing plan: a z-ordered filter graph, an audio mix and the ordered
// input bindings that feed them.
package compose

import (
	"context"

	"github.com/kfaulkner/weld/internal/ffmpeg"
	"github.com/kfaulkner/weld/internal/fgraph"
)

// Runner is the slice of the process executor the synthesis side needs
type Runner interface {
	Encode(ctx context.Context, opts ffmpeg.EncodeOptions) error
}

// Plan is one executable compositing invocation. The graph must terminate in
// exactly one video label and, when audio segments exist, one audio label.
type Plan struct {
	Graph    *fgraph.Graph
	Inputs   []ffmpeg.Input
	VideoOut string
	AudioOut string
}

func newPlan() *Plan {
	return &Plan{Graph: fgraph.New()}
}

// addInput appends an ordered input binding and returns its index
func (p *Plan) addInput(in ffmpeg.Input) int {
	p.Inputs = append(p.Inputs, in)
	return len(p.Inputs) - 1
}

// videoInput returns the video stream label of input idx
func videoInput(idx int) string {
	return fgraph.InputLabel(idx, "v")
}

// audioInput returns the audio stream label of input idx
func audioInput(idx int) string {
	return fgraph.InputLabel(idx, "a")
}
