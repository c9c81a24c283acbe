package config

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"imagepad/imageprocessor"
	"imagepad/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imagepad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.Scale)
	assert.False(t, cfg.ForcePad)
	assert.Equal(t, imageprocessor.DefaultResampler, cfg.Resampler)
	assert.Equal(t, 95, cfg.JPEGQuality)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
scale: 0.5
force_pad: true
workers: 3
resampler: lanczos
jpeg_quality: 80
png_compression: best
journal: runs.db
log_file: imagepad.log
debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Scale)
	assert.True(t, cfg.ForcePad)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "lanczos", cfg.Resampler)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, "runs.db", cfg.Journal)
	assert.Equal(t, "imagepad.log", cfg.LogFile)
	assert.True(t, cfg.Debug)

	opts := cfg.ProcessorOptions()
	assert.Equal(t, "lanczos", opts.Resampler)
	assert.Equal(t, 80, opts.Encode.JPEGQuality)
	assert.Equal(t, png.BestCompression, opts.Encode.PNGCompression)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "force_pad: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.ForcePad)
	assert.Equal(t, 1.0, cfg.Scale)
	assert.Equal(t, 95, cfg.JPEGQuality)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "scale: [1, 2\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "scale: 2\n"))
	require.Error(t, err)
	assert.True(t, types.IsValidationError(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero scale", func(c *Config) { c.Scale = 0 }, "scale"},
		{"scale above one", func(c *Config) { c.Scale = 1.01 }, "scale"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"quality too low", func(c *Config) { c.JPEGQuality = 0 }, "jpeg_quality"},
		{"quality too high", func(c *Config) { c.JPEGQuality = 101 }, "jpeg_quality"},
		{"unknown compression", func(c *Config) { c.PNGCompression = "max" }, "png_compression"},
		{"unknown resampler", func(c *Config) { c.Resampler = "bicubic" }, "resampler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestApplyArgumentsOverridesFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scale: 0.5\nworkers: 2\njpeg_quality: 70\n"))
	require.NoError(t, err)

	err = cfg.ApplyArguments(map[string]string{
		"scale":           "0.25",
		"pad":             "true",
		"workers":         "6",
		"quality":         "90",
		"png-compression": "fast",
		"journal":         "j.db",
		"debug":           "true",
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, types.ProcessingParameters{Scale: 0.25, ForcePad: true}, cfg.Parameters())
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, 90, cfg.JPEGQuality)
	assert.Equal(t, "fast", cfg.PNGCompression)
	assert.Equal(t, "j.db", cfg.Journal)
	assert.True(t, cfg.Debug)
}

func TestApplyArgumentsRejectsBadNumbers(t *testing.T) {
	for _, args := range []map[string]string{
		{"scale": "half"},
		{"workers": "many"},
		{"quality": "high"},
	} {
		err := Default().ApplyArguments(args)
		assert.True(t, types.IsValidationError(err), "%v", args)
	}
}

func TestApplyArgumentsEmptyKeepsValues(t *testing.T) {
	cfg := Default()
	cfg.Scale = 0.3
	require.NoError(t, cfg.ApplyArguments(map[string]string{}))
	assert.Equal(t, 0.3, cfg.Scale)
	assert.False(t, cfg.ForcePad)
}
