package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kfaulkner/weld/pkg/util"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	TempDir     string `yaml:"temp_dir"`
	Concurrency int    `yaml:"concurrency"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Export settings
	Export ExportConfig `yaml:"export"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
}

// ExportConfig carries the encoding parameters for one export. Width and
// Height default to the timeline canvas when zero.
type ExportConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FPS             float64 `yaml:"fps"`
	VideoBitrate    string  `yaml:"video_bitrate"`
	AudioBitrate    string  `yaml:"audio_bitrate"`
	AudioCodec      string  `yaml:"audio_codec"`
	AudioChannels   int     `yaml:"audio_channels"`
	AudioSampleRate int     `yaml:"audio_sample_rate"`
	Codec           string  `yaml:"codec"`
	Preset          string  `yaml:"preset"`
	CRF             int     `yaml:"crf"`

	// Multipass renders each visual track to its own clip before the final
	// composite; any failure there falls back to the monolithic graph.
	Multipass      bool `yaml:"multipass"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		TempDir:     os.TempDir(),
		Concurrency: 4,
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
		Export: DefaultExport(),
	}
}

// DefaultExport returns the stock encoding parameters
func DefaultExport() ExportConfig {
	return ExportConfig{
		FPS:             30,
		VideoBitrate:    "8000k",
		AudioBitrate:    "128k",
		AudioCodec:      "aac",
		AudioChannels:   2,
		AudioSampleRate: 44100,
		Codec:           "libx264",
		Preset:          "medium",
		CRF:             23,
		Multipass:       true,
		TimeoutSeconds:  1800,
	}
}

func findConfigFile() string {
	candidates := []string{
		"./weld.yaml",
		"./weld.yml",
		filepath.Join(os.Getenv("HOME"), ".weld", "config.yaml"),
	}
	for _, path := range candidates {
		if util.FileExists(path) {
			return path
		}
	}
	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
