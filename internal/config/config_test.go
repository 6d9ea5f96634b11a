package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, os.TempDir(), cfg.TempDir)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "ffmpeg", cfg.FFmpeg.BinaryPath)
	assert.Equal(t, "libx264", cfg.Export.Codec)
	assert.True(t, cfg.Export.Multipass)
	assert.Equal(t, 1800, cfg.Export.TimeoutSeconds)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weld.yaml")
	data := []byte("concurrency: 8\nexport:\n  codec: libx265\n  multipass: false\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "libx265", cfg.Export.Codec)
	assert.False(t, cfg.Export.Multipass)
	// untouched fields keep their defaults
	assert.Equal(t, "aac", cfg.Export.AudioCodec)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weld.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weld.yaml")

	cfg := defaultConfig()
	cfg.Concurrency = 2
	cfg.Export.VideoBitrate = "4000k"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Concurrency)
	assert.Equal(t, "4000k", loaded.Export.VideoBitrate)
}

func TestContextCarriage(t *testing.T) {
	cfg := defaultConfig()
	cfg.Concurrency = 7

	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))

	// a bare context still yields usable defaults
	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	assert.Equal(t, 4, fallback.Concurrency)
}
