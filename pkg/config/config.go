// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/gifclip/pkg/adapters/smartgif"
	"github.com/user/gifclip/pkg/orchestrator"
	"github.com/user/gifclip/pkg/pipeline"
)

// Config represents the full configuration for gifclip.
type Config struct {
	// Time window and sampling
	StartTime float64 `yaml:"start_time"`
	EndTime   float64 `yaml:"end_time"`
	FrameRate float64 `yaml:"frame_rate"`

	// Output
	Quality   string `yaml:"quality"` // low, medium, high
	MaxWidth  int    `yaml:"max_width"`
	MaxHeight int    `yaml:"max_height"`
	LoopCount int    `yaml:"loop_count"`

	// Strategies
	Strategy  string `yaml:"strategy"`  // auto, surface, decode
	Quantizer string `yaml:"quantizer"` // histogram, mediancut

	// Encoder selection
	Encoder       string `yaml:"encoder"`
	MinSpeed      int    `yaml:"min_speed"`
	MinQuality    int    `yaml:"min_quality"`
	MinMemory     int    `yaml:"min_memory"`
	AllowFallback bool   `yaml:"allow_fallback"`

	// Thumbnail
	ThumbnailSize int `yaml:"thumbnail_size"`

	// Source
	Selector          string            `yaml:"selector"`
	Headless          bool              `yaml:"headless"`
	ChromePath        string            `yaml:"chrome_path"`
	FFmpegPath        string            `yaml:"ffmpeg_path"`
	Headers           map[string]string `yaml:"headers"`
	IgnoreHTTPSErrors bool              `yaml:"ignore_https_errors"`
	ProxyServer       string            `yaml:"proxy_server"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		FrameRate: 10,
		Quality:   string(pipeline.QualityMedium),
		MaxWidth:  640,
		MaxHeight: 640,
		LoopCount: 0,
		Strategy:  string(pipeline.StrategyAuto),
		Quantizer: "histogram",
		Headless:  true,
		DebugDir:  "./debug",
	}
}

// LoadFile reads a YAML config file over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ToOrchestrator maps the flat file config onto the orchestrator's run
// configuration.
func (c Config) ToOrchestrator() orchestrator.Config {
	return orchestrator.Config{
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		FrameRate: c.FrameRate,
		Quality:   pipeline.Quality(c.Quality),
		MaxWidth:  c.MaxWidth,
		MaxHeight: c.MaxHeight,
		LoopCount: c.LoopCount,
		Strategy:  pipeline.Strategy(c.Strategy),
		Quantizer: c.Quantizer,
		Encoder:   c.Encoder,
		Criteria: smartgif.Criteria{
			MinSpeed:   c.MinSpeed,
			MinQuality: c.MinQuality,
			MinMemory:  c.MinMemory,
		},
		AllowFallback: c.AllowFallback,
		ThumbnailSize: c.ThumbnailSize,
	}
}
