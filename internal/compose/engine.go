package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kfaulkner/weld/internal/config"
	"github.com/kfaulkner/weld/internal/ffmpeg"
	"github.com/kfaulkner/weld/internal/timeline"
	"github.com/kfaulkner/weld/pkg/util"
)

// Result is the structured outcome of one export. Failures never propagate
// past this boundary as raw errors.
type Result struct {
	Success         bool    `json:"success" yaml:"success"`
	OutputPath      string  `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
	Width           int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height          int     `json:"height,omitempty" yaml:"height,omitempty"`
	FPS             float64 `json:"fps,omitempty" yaml:"fps,omitempty"`
	FileSizeBytes   int64   `json:"file_size_bytes,omitempty" yaml:"file_size_bytes,omitempty"`
	Error           string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Engine drives one export: extraction, strategy selection, synthesis,
// invocation and verification.
type Engine struct {
	logger zerolog.Logger
	cfg    *config.Config
	runner Runner
}

// NewEngine creates an export engine on top of a process executor
func NewEngine(logger zerolog.Logger, cfg *config.Config, runner Runner) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "engine").Logger(),
		cfg:    cfg,
		runner: runner,
	}
}

// Export renders the timeline snapshot to outputPath. The snapshot is never
// mutated; all intermediates are scoped to one working directory removed on
// every exit path.
func (e *Engine) Export(ctx context.Context, tl *timeline.Timeline, outputPath string, progress ffmpeg.ProgressFunc) Result {
	exp := e.cfg.Export

	width := exp.Width
	if width <= 0 {
		width = tl.Width
	}
	height := exp.Height
	if height <= 0 {
		height = tl.Height
	}
	fps := exp.FPS
	if fps <= 0 {
		fps = tl.FPS
	}
	if fps <= 0 {
		fps = 30
	}
	duration := tl.DurationSeconds()

	e.logger.Info().
		Str("output", outputPath).
		Int("width", width).
		Int("height", height).
		Float64("fps", fps).
		Float64("duration", duration).
		Msg("starting export")

	segs := timeline.ExtractSegments(tl)
	if len(segs) == 0 || duration <= 0 {
		return e.fail(ErrEmptyGraph)
	}

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := util.EnsureDir(dir); err != nil {
			return e.fail(fmt.Errorf("failed to create output directory: %w", err))
		}
	}

	workdir := filepath.Join(e.cfg.TempDir, "weld-"+uuid.NewString())
	if err := util.EnsureDir(workdir); err != nil {
		return e.fail(fmt.Errorf("failed to create working directory: %w", err))
	}
	defer os.RemoveAll(workdir)

	builder := NewBuilder(e.logger, width, height, fps, duration)

	prerenderer := NewPrerenderer(e.logger, e.runner, builder)
	textClips := prerenderer.Render(ctx, segs, workdir)

	enc := ffmpeg.EncodeOptions{
		Output:          outputPath,
		FPS:             fps,
		VideoCodec:      exp.Codec,
		VideoBitrate:    exp.VideoBitrate,
		CRF:             exp.CRF,
		Preset:          exp.Preset,
		AudioCodec:      exp.AudioCodec,
		AudioBitrate:    exp.AudioBitrate,
		AudioChannels:   exp.AudioChannels,
		AudioSampleRate: exp.AudioSampleRate,
		ProgressHandler: progress,
	}

	rendered := false
	if exp.Multipass {
		mp := NewMultipass(e.logger, e.runner, builder, e.cfg.Concurrency)
		if err := mp.Run(ctx, segs, textClips, workdir, enc); err != nil {
			e.logger.Warn().Err(err).Msg("multipass render failed, falling back to monolithic graph")
		} else {
			rendered = true
		}
	}

	if !rendered {
		plan, err := builder.Build(segs, textClips)
		if err != nil {
			return e.fail(err)
		}

		enc.Inputs = plan.Inputs
		enc.FilterGraph = plan.Graph.Serialize()
		enc.VideoLabel = plan.VideoOut
		enc.AudioLabel = plan.AudioOut

		if err := e.runner.Encode(ctx, enc); err != nil {
			if ffmpeg.IsTimeout(err) {
				e.logger.Error().Err(err).Msg("export exceeded wall-clock budget")
			}
			return e.fail(err)
		}
	}

	// a reported success with no artifact is itself a failure
	stat, err := os.Stat(outputPath)
	if err != nil {
		return e.fail(ErrOutputMissing)
	}

	e.logger.Info().
		Str("output", outputPath).
		Int64("size", stat.Size()).
		Msg("export complete")

	return Result{
		Success:         true,
		OutputPath:      outputPath,
		DurationSeconds: duration,
		Width:           width,
		Height:          height,
		FPS:             fps,
		FileSizeBytes:   stat.Size(),
	}
}

func (e *Engine) fail(err error) Result {
	e.logger.Error().Err(err).Msg("export failed")
	return Result{Success: false, Error: err.Error()}
}
