package config

import (
	"image/png"
	"os"
	"strconv"

	"imagepad/imageprocessor"
	"imagepad/types"
	"imagepad/utils"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the processing configuration. Values come from
// Default, are overridden by an optional YAML file and then by flags.
type Config struct {
	Scale          float64 `yaml:"scale"`
	ForcePad       bool    `yaml:"force_pad"`
	Workers        int     `yaml:"workers"`
	Resampler      string  `yaml:"resampler"`
	JPEGQuality    int     `yaml:"jpeg_quality"`
	PNGCompression string  `yaml:"png_compression"`
	Journal        string  `yaml:"journal"`
	LogFile        string  `yaml:"log_file"`
	Debug          bool    `yaml:"debug"`
}

var pngCompressionLevels = map[string]png.CompressionLevel{
	"default": png.DefaultCompression,
	"none":    png.NoCompression,
	"fast":    png.BestSpeed,
	"best":    png.BestCompression,
}

// Default returns the configuration used when nothing else is given
func Default() *Config {
	return &Config{
		Scale:          1.0,
		Resampler:      imageprocessor.DefaultResampler,
		JPEGQuality:    imageprocessor.DefaultEncodeOptions().JPEGQuality,
		PNGCompression: "default",
	}
}

// Load reads a YAML file on top of Default and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if err := c.Parameters().Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return &types.ValidationError{Field: "workers", Reason: "must not be negative"}
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return &types.ValidationError{Field: "jpeg_quality", Reason: "must be between 1 and 100"}
	}
	if _, ok := pngCompressionLevels[c.PNGCompression]; !ok {
		return &types.ValidationError{
			Field:  "png_compression",
			Reason: "must be one of default, none, fast, best",
		}
	}
	if _, err := imageprocessor.GetResampler(c.Resampler); err != nil {
		return &types.ValidationError{Field: "resampler", Reason: err.Error()}
	}
	return nil
}

// ApplyArguments overrides values with the command-line flags present in
// args. Boolean flags are set by presence.
func (c *Config) ApplyArguments(args map[string]string) error {
	if v, ok := args["scale"]; ok {
		scale, err := utils.ParseScale(v)
		if err != nil {
			return err
		}
		c.Scale = scale
	}
	if v, ok := args["pad"]; ok {
		c.ForcePad = v != "false"
	}
	if v, ok := args["workers"]; ok {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return &types.ValidationError{Field: "workers", Reason: "not an integer: " + v}
		}
		c.Workers = workers
	}
	if v, ok := args["resampler"]; ok {
		c.Resampler = v
	}
	if v, ok := args["quality"]; ok {
		quality, err := strconv.Atoi(v)
		if err != nil {
			return &types.ValidationError{Field: "jpeg_quality", Reason: "not an integer: " + v}
		}
		c.JPEGQuality = quality
	}
	if v, ok := args["png-compression"]; ok {
		c.PNGCompression = v
	}
	if v, ok := args["journal"]; ok {
		c.Journal = v
	}
	if v, ok := args["logfile"]; ok {
		c.LogFile = v
	}
	if v, ok := args["debug"]; ok {
		c.Debug = v != "false"
	}
	return nil
}

// Parameters returns the per-batch processing parameters
func (c *Config) Parameters() types.ProcessingParameters {
	return types.ProcessingParameters{Scale: c.Scale, ForcePad: c.ForcePad}
}

// ProcessorOptions returns the options for the image processor.
// Call Validate first; an unknown compression name falls back to default.
func (c *Config) ProcessorOptions() imageprocessor.Options {
	opts := imageprocessor.DefaultOptions()
	opts.Resampler = c.Resampler
	opts.Encode.JPEGQuality = c.JPEGQuality
	if level, ok := pngCompressionLevels[c.PNGCompression]; ok {
		opts.Encode.PNGCompression = level
	}
	return opts
}
