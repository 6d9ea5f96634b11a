package ffmpeg

import (
	"context"
	"fmt"
	"os"
)

// Encode runs one compositing invocation: ordered inputs, the filter graph,
// explicit output-stream mappings and encoding parameters. On any failure the
// partial output artifact is removed so no exit path leaves one behind.
func (e *Executor) Encode(ctx context.Context, opts EncodeOptions) error {
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.FilterGraph == "" || opts.VideoLabel == "" {
		return fmt.Errorf("filter graph and video label are required")
	}

	args := make([]string, 0, 16+4*len(opts.Inputs))
	for _, in := range opts.Inputs {
		if in.Format != "" {
			args = append(args, "-f", in.Format)
		}
		if in.Loop {
			args = append(args, "-loop", "1")
			if in.LoopDuration > 0 {
				args = append(args, "-t", fmt.Sprintf("%.4f", in.LoopDuration))
			}
		}
		args = append(args, "-i", in.Path)
	}

	args = append(args, "-filter_complex", opts.FilterGraph)
	args = append(args, "-map", "["+opts.VideoLabel+"]")

	codec := opts.VideoCodec
	if codec == "" {
		codec = DefaultVideoCodec
	}
	args = append(args, "-c:v", codec)

	if opts.VideoBitrate != "" {
		args = append(args, "-b:v", opts.VideoBitrate)
	}

	// rate-factor and preset are x264/x265 options, not generic ones
	if codec == "libx264" || codec == "libx265" {
		if opts.VideoBitrate == "" {
			crf := opts.CRF
			if crf == 0 {
				crf = DefaultCRF
			}
			args = append(args, "-crf", fmt.Sprintf("%d", crf))
		}
		preset := opts.Preset
		if preset == "" {
			preset = DefaultPreset
		}
		args = append(args, "-preset", preset)
	}
	if opts.PixelFormat != "" {
		args = append(args, "-pix_fmt", opts.PixelFormat)
	}
	if opts.FPS > 0 {
		args = append(args, "-r", fmt.Sprintf("%.2f", opts.FPS))
	}

	if opts.AudioLabel != "" {
		args = append(args, "-map", "["+opts.AudioLabel+"]")
		audioCodec := opts.AudioCodec
		if audioCodec == "" {
			audioCodec = DefaultAudioCodec
		}
		args = append(args, "-c:a", audioCodec)
		if opts.AudioBitrate != "" {
			args = append(args, "-b:a", opts.AudioBitrate)
		}
		if opts.AudioChannels > 0 {
			args = append(args, "-ac", fmt.Sprintf("%d", opts.AudioChannels))
		}
		if opts.AudioSampleRate > 0 {
			args = append(args, "-ar", fmt.Sprintf("%d", opts.AudioSampleRate))
		}
	} else {
		args = append(args, "-an")
	}

	args = append(args, opts.Output)

	e.logger.Info().
		Int("inputs", len(opts.Inputs)).
		Str("output", opts.Output).
		Msg("starting encode")

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressHandler,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("encode output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		_ = os.Remove(opts.Output)
		return err
	}

	e.logger.Info().Str("output", opts.Output).Msg("encode completed")
	return nil
}
