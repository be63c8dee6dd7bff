// Package config handles splattool configuration loading and management.
package config

import (
	"fmt"

	"github.com/arnevik/splatstream/pkg/splat"
)

// Config holds all tool settings.
type Config struct {
	Convert  ConvertConfig  `yaml:"convert"`
	Playback PlaybackConfig `yaml:"playback"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ConvertConfig holds batch conversion settings.
type ConvertConfig struct {
	// Preset picks the format tuple; the four format fields override
	// individual streams when non-empty.
	Preset       string  `yaml:"preset"`
	PosFormat    string  `yaml:"pos_format"`
	ScaleFormat  string  `yaml:"scale_format"`
	ColorFormat  string  `yaml:"color_format"`
	SHFormat     string  `yaml:"sh_format"`
	FPS          float64 `yaml:"fps"`
	Workers      int     `yaml:"workers"` // 0 means one per CPU
	EmitSequence bool    `yaml:"emit_sequence"`
	SequenceName string  `yaml:"sequence_name"`
	CollectStats bool    `yaml:"collect_stats"`
}

// PlaybackConfig holds playback simulation settings.
type PlaybackConfig struct {
	Mode     string  `yaml:"mode"` // once, loop or pingpong
	Speed    float64 `yaml:"speed"`
	AutoPlay bool    `yaml:"auto_play"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Preset:       "medium",
			FPS:          30,
			Workers:      0,
			EmitSequence: true,
			SequenceName: "sequence.yaml",
			CollectStats: false,
		},
		Playback: PlaybackConfig{
			Mode:     "loop",
			Speed:    1,
			AutoPlay: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// EncodeOptions resolves the preset and per-stream overrides into concrete
// encoder options.
func (c *ConvertConfig) EncodeOptions() (splat.EncodeOptions, error) {
	preset, err := splat.ParsePreset(c.Preset)
	if err != nil {
		return splat.EncodeOptions{}, fmt.Errorf("convert.preset: %w", err)
	}
	opts := splat.PresetOptions(preset)
	if c.PosFormat != "" {
		if opts.Position, err = splat.ParseVectorFormat(c.PosFormat); err != nil {
			return splat.EncodeOptions{}, fmt.Errorf("convert.pos_format: %w", err)
		}
	}
	if c.ScaleFormat != "" {
		if opts.Scale, err = splat.ParseVectorFormat(c.ScaleFormat); err != nil {
			return splat.EncodeOptions{}, fmt.Errorf("convert.scale_format: %w", err)
		}
	}
	if c.ColorFormat != "" {
		if opts.Color, err = splat.ParseColorFormat(c.ColorFormat); err != nil {
			return splat.EncodeOptions{}, fmt.Errorf("convert.color_format: %w", err)
		}
	}
	if c.SHFormat != "" {
		if opts.SH, err = splat.ParseSHFormat(c.SHFormat); err != nil {
			return splat.EncodeOptions{}, fmt.Errorf("convert.sh_format: %w", err)
		}
	}
	return opts, nil
}
