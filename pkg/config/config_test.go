package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/gifclip/pkg/pipeline"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.FrameRate != 10 {
		t.Errorf("expected default frame rate 10, got %.1f", cfg.FrameRate)
	}
	if cfg.Quality != "medium" {
		t.Errorf("expected default quality medium, got %q", cfg.Quality)
	}
	if cfg.MaxWidth != 640 || cfg.MaxHeight != 640 {
		t.Errorf("expected default max box 640x640, got %dx%d", cfg.MaxWidth, cfg.MaxHeight)
	}
	if cfg.Strategy != "auto" {
		t.Errorf("expected default strategy auto, got %q", cfg.Strategy)
	}
	if cfg.Quantizer != "histogram" {
		t.Errorf("expected default quantizer histogram, got %q", cfg.Quantizer)
	}
	if !cfg.Headless {
		t.Error("expected headless by default")
	}
}

func TestLoadFile(t *testing.T) {
	content := `
start_time: 1.5
end_time: 6.5
frame_rate: 15
quality: high
loop_count: 2
strategy: decode
quantizer: mediancut
encoder: gifx
allow_fallback: true
selector: "#player video"
headers:
  Authorization: Bearer token
`
	path := filepath.Join(t.TempDir(), "gifclip.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StartTime != 1.5 || cfg.EndTime != 6.5 {
		t.Errorf("expected range [1.5, 6.5], got [%.1f, %.1f]", cfg.StartTime, cfg.EndTime)
	}
	if cfg.FrameRate != 15 {
		t.Errorf("expected frame rate 15, got %.1f", cfg.FrameRate)
	}
	if cfg.Quality != "high" {
		t.Errorf("expected quality high, got %q", cfg.Quality)
	}
	if cfg.LoopCount != 2 {
		t.Errorf("expected loop count 2, got %d", cfg.LoopCount)
	}
	if cfg.Encoder != "gifx" {
		t.Errorf("expected encoder gifx, got %q", cfg.Encoder)
	}
	if !cfg.AllowFallback {
		t.Error("expected allow_fallback true")
	}
	if cfg.Selector != "#player video" {
		t.Errorf("expected selector override, got %q", cfg.Selector)
	}
	if cfg.Headers["Authorization"] != "Bearer token" {
		t.Errorf("expected header to load, got %v", cfg.Headers)
	}

	// Unset keys keep their defaults.
	if cfg.MaxWidth != 640 {
		t.Errorf("expected default max width to survive, got %d", cfg.MaxWidth)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("quality: [not, a, string"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestToOrchestrator(t *testing.T) {
	cfg := Defaults()
	cfg.StartTime = 1
	cfg.EndTime = 5
	cfg.Quality = "low"
	cfg.Strategy = "surface"
	cfg.Encoder = "native"
	cfg.MinSpeed = 3
	cfg.AllowFallback = true
	cfg.ThumbnailSize = 200

	oc := cfg.ToOrchestrator()

	if oc.StartTime != 1 || oc.EndTime != 5 {
		t.Errorf("expected range [1, 5], got [%.1f, %.1f]", oc.StartTime, oc.EndTime)
	}
	if oc.Quality != pipeline.QualityLow {
		t.Errorf("expected quality low, got %q", oc.Quality)
	}
	if oc.Strategy != pipeline.StrategySurface {
		t.Errorf("expected strategy surface, got %q", oc.Strategy)
	}
	if oc.Encoder != "native" {
		t.Errorf("expected encoder native, got %q", oc.Encoder)
	}
	if oc.Criteria.MinSpeed != 3 {
		t.Errorf("expected criteria min speed 3, got %d", oc.Criteria.MinSpeed)
	}
	if !oc.AllowFallback {
		t.Error("expected fallback enabled")
	}
	if oc.ThumbnailSize != 200 {
		t.Errorf("expected thumbnail size 200, got %d", oc.ThumbnailSize)
	}
}
