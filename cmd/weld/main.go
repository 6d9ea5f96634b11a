package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kfaulkner/weld/internal/compose"
	"github.com/kfaulkner/weld/internal/config"
	"github.com/kfaulkner/weld/internal/ffmpeg"
	"github.com/kfaulkner/weld/internal/logging"
	"github.com/kfaulkner/weld/internal/timeline"
	"github.com/kfaulkner/weld/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "weld",
	Short: "weld - timeline compositor",
	Long:  "Renders an editing-timeline snapshot into a finished video by synthesizing an ffmpeg compositing plan and invoking it.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
	SilenceUsage: true,
}

var (
	flagWidth     int
	flagHeight    int
	flagFPS       float64
	flagVBitrate  string
	flagABitrate  string
	flagCodec     string
	flagPreset    string
	flagCRF       int
	flagMultipass bool
	flagTimeout   int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./weld.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	exportCmd.Flags().IntVar(&flagWidth, "width", 0, "output width (default: canvas width)")
	exportCmd.Flags().IntVar(&flagHeight, "height", 0, "output height (default: canvas height)")
	exportCmd.Flags().Float64Var(&flagFPS, "fps", 0, "output frame rate (default: 30)")
	exportCmd.Flags().StringVar(&flagVBitrate, "video-bitrate", "", "video bitrate (e.g. 8000k)")
	exportCmd.Flags().StringVar(&flagABitrate, "audio-bitrate", "", "audio bitrate (e.g. 128k)")
	exportCmd.Flags().StringVar(&flagCodec, "codec", "", "video codec (default: libx264)")
	exportCmd.Flags().StringVar(&flagPreset, "preset", "", "encoder preset (default: medium)")
	exportCmd.Flags().IntVar(&flagCRF, "crf", 0, "constant rate factor")
	exportCmd.Flags().BoolVar(&flagMultipass, "multipass", true, "render each track separately before the final composite")
	exportCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "wall-clock budget in seconds")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(probeCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [timeline snapshot] [output video]",
	Short: "Render a timeline snapshot to a video file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		applyExportFlags(cmd, cfg)

		tl, err := timeline.Load(args[0])
		if err != nil {
			return err
		}

		exec, err := ffmpeg.New(log.Logger,
			cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads,
			time.Duration(cfg.Export.TimeoutSeconds)*time.Second)
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(int(tl.DurationSeconds()*1000),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		progress := func(p *ffmpeg.Progress) {
			if d, err := util.ParseTimestamp(p.Time); err == nil {
				_ = bar.Set(int(d.Milliseconds()))
			}
		}

		engine := compose.NewEngine(log.Logger, cfg, exec)
		result := engine.Export(cmd.Context(), tl, args[1], progress)
		_ = bar.Finish()

		if !result.Success {
			return fmt.Errorf("export failed: %s", result.Error)
		}

		fmt.Printf("Output:     %s\n", result.OutputPath)
		fmt.Printf("Duration:   %.2fs\n", result.DurationSeconds)
		fmt.Printf("Resolution: %dx%d @ %.4g fps\n", result.Width, result.Height, result.FPS)
		fmt.Printf("Size:       %s\n", humanize.Bytes(uint64(result.FileSizeBytes)))
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Print media file metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(log.Logger,
			cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads, 0)
		if err != nil {
			return err
		}

		info, err := exec.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("File:     %s\n", info.FilePath)
		fmt.Printf("Duration: %.3fs\n", info.Duration)
		if info.Width > 0 {
			fmt.Printf("Video:    %dx%d @ %.4g fps (%s)\n", info.Width, info.Height, info.FPS, info.VideoCodec)
		}
		if info.HasAudio {
			fmt.Printf("Audio:    %s, %d Hz\n", info.AudioCodec, info.SampleRate)
		}
		return nil
	},
}

// applyExportFlags overlays explicit CLI flags onto the loaded config
func applyExportFlags(cmd *cobra.Command, cfg *config.Config) {
	if flagWidth > 0 {
		cfg.Export.Width = flagWidth
	}
	if flagHeight > 0 {
		cfg.Export.Height = flagHeight
	}
	if flagFPS > 0 {
		cfg.Export.FPS = flagFPS
	}
	if flagVBitrate != "" {
		cfg.Export.VideoBitrate = flagVBitrate
	}
	if flagABitrate != "" {
		cfg.Export.AudioBitrate = flagABitrate
	}
	if flagCodec != "" {
		cfg.Export.Codec = flagCodec
	}
	if flagPreset != "" {
		cfg.Export.Preset = flagPreset
	}
	if flagCRF > 0 {
		cfg.Export.CRF = flagCRF
	}
	if cmd.Flags().Changed("multipass") {
		cfg.Export.Multipass = flagMultipass
	}
	if flagTimeout > 0 {
		cfg.Export.TimeoutSeconds = flagTimeout
	}
}
