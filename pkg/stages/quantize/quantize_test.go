package quantize

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/user/gifclip/pkg/adapters/logger"
	"github.com/user/gifclip/pkg/mocks"
	"github.com/user/gifclip/pkg/pipeline"
	"github.com/user/gifclip/pkg/ports"
)

// frameOf builds a single frame whose pixels cycle through the given colors.
func frameOf(width, height int, colors []color.RGBA) pipeline.Frame {
	buf := &ports.PixelBuffer{
		Width:  width,
		Height: height,
		Stride: width * 4,
		Pix:    make([]byte, width*height*4),
	}
	for i := 0; i < width*height; i++ {
		c := colors[i%len(colors)]
		buf.Pix[i*4] = c.R
		buf.Pix[i*4+1] = c.G
		buf.Pix[i*4+2] = c.B
		buf.Pix[i*4+3] = c.A
	}
	return pipeline.Frame{Buffer: buf}
}

func TestStage_Execute_Histogram(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	green := color.RGBA{G: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	// Red twice as frequent as green, green twice as frequent as blue.
	frames := []pipeline.Frame{
		frameOf(8, 8, []color.RGBA{red, red, red, red, green, green, blue, red}),
	}

	stage := New(logger.NewNoop())
	result, err := stage.Execute(context.Background(), pipeline.QuantizeInput{
		Frames:      frames,
		PaletteSize: 8,
		Quantizer:   QuantizerHistogram,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Palette) != 8 {
		t.Fatalf("expected palette padded to 8, got %d", len(result.Palette))
	}
	if result.DistinctColors != 3 {
		t.Errorf("expected 3 distinct colors, got %d", result.DistinctColors)
	}

	// Most frequent color first.
	if result.Palette[0] != red {
		t.Errorf("expected red first, got %v", result.Palette[0])
	}
	if result.Palette[1] != green {
		t.Errorf("expected green second, got %v", result.Palette[1])
	}
	if result.Palette[2] != blue {
		t.Errorf("expected blue third, got %v", result.Palette[2])
	}

	// Padding entries are opaque black.
	for i := 3; i < 8; i++ {
		if result.Palette[i] != (color.RGBA{A: 255}) {
			t.Errorf("entry %d: expected opaque black padding, got %v", i, result.Palette[i])
		}
	}
}

func TestStage_Execute_PadsToPowerOfTwo(t *testing.T) {
	frames := []pipeline.Frame{
		frameOf(4, 4, []color.RGBA{{R: 10, A: 255}, {R: 20, A: 255}}),
	}

	stage := New(logger.NewNoop())
	result, err := stage.Execute(context.Background(), pipeline.QuantizeInput{
		Frames:      frames,
		PaletteSize: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Palette) != 128 {
		t.Errorf("expected palette of 128 for target 100, got %d", len(result.Palette))
	}
}

func TestStage_Execute_EmptyFrames(t *testing.T) {
	stage := New(logger.NewNoop())
	_, err := stage.Execute(context.Background(), pipeline.QuantizeInput{PaletteSize: 64})
	if !errors.Is(err, pipeline.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestStage_Execute_UnknownQuantizer(t *testing.T) {
	frames := []pipeline.Frame{frameOf(2, 2, []color.RGBA{{A: 255}})}
	stage := New(logger.NewNoop())
	_, err := stage.Execute(context.Background(), pipeline.QuantizeInput{
		Frames:      frames,
		PaletteSize: 64,
		Quantizer:   "octree",
	})
	if !errors.Is(err, pipeline.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames := []pipeline.Frame{frameOf(2, 2, []color.RGBA{{A: 255}})}
	stage := New(logger.NewNoop())
	_, err := stage.Execute(ctx, pipeline.QuantizeInput{Frames: frames, PaletteSize: 64})
	if !errors.Is(err, pipeline.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestCollectSamples_Capped(t *testing.T) {
	// 200x200 = 40000 pixels, stride 4 across the run.
	frames := []pipeline.Frame{{Buffer: mocks.SolidBuffer(200, 200, 50, 60, 70)}}
	samples := collectSamples(frames)
	if len(samples) != maxSamples {
		t.Errorf("expected %d samples, got %d", maxSamples, len(samples))
	}
}

func TestCollectSamples_SmallInputTakesEveryPixel(t *testing.T) {
	frames := []pipeline.Frame{
		{Buffer: mocks.SolidBuffer(10, 10, 1, 2, 3)},
		{Buffer: mocks.SolidBuffer(10, 10, 4, 5, 6)},
	}
	samples := collectSamples(frames)
	if len(samples) != 200 {
		t.Errorf("expected 200 samples, got %d", len(samples))
	}
}

func TestNearestIndex(t *testing.T) {
	palette := color.Palette{
		color.RGBA{A: 255},                         // black
		color.RGBA{R: 255, G: 255, B: 255, A: 255}, // white
		color.RGBA{R: 255, A: 255},                 // red
	}

	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"exact black", color.RGBA{A: 255}, 0},
		{"exact white", color.RGBA{R: 255, G: 255, B: 255, A: 255}, 1},
		{"dark gray maps to black", color.RGBA{R: 100, G: 100, B: 100, A: 255}, 0},
		{"light gray maps to white", color.RGBA{R: 200, G: 200, B: 200, A: 255}, 1},
		{"dark red maps to red", color.RGBA{R: 200, G: 10, B: 10, A: 255}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nearestIndex(palette, tt.c); got != tt.want {
				t.Errorf("expected index %d, got %d", tt.want, got)
			}
		})
	}
}

func TestNearestIndex_TieBreaksToLowest(t *testing.T) {
	// Both entries are equidistant from mid gray.
	palette := color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
	}
	c := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	if got := nearestIndex(palette, c); got != 0 {
		t.Errorf("expected tie to break to index 0, got %d", got)
	}
}

func TestMapFrame_UsesCacheAcrossFrames(t *testing.T) {
	palette := color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
	cache := make(map[uint32]uint8)

	a := mocks.SolidBuffer(4, 4, 255, 255, 255)
	indices := MapFrame(a, palette, cache)
	for i, idx := range indices {
		if idx != 1 {
			t.Fatalf("pixel %d: expected index 1, got %d", i, idx)
		}
	}
	if len(cache) != 1 {
		t.Errorf("expected 1 cached color, got %d", len(cache))
	}

	b := mocks.SolidBuffer(4, 4, 0, 0, 0)
	indices = MapFrame(b, palette, cache)
	for i, idx := range indices {
		if idx != 0 {
			t.Fatalf("pixel %d: expected index 0, got %d", i, idx)
		}
	}
	if len(cache) != 2 {
		t.Errorf("expected 2 cached colors, got %d", len(cache))
	}
}

func TestHistogramPalette_DeterministicTieBreak(t *testing.T) {
	// Two colors with identical frequency order by packed value.
	a := color.RGBA{R: 1, A: 255}
	b := color.RGBA{R: 2, A: 255}
	samples := []color.RGBA{b, a, b, a}

	palette, distinct := histogramPalette(samples, 4)
	if distinct != 2 {
		t.Fatalf("expected 2 distinct colors, got %d", distinct)
	}
	if palette[0] != a || palette[1] != b {
		t.Errorf("expected deterministic order [a b], got %v", palette)
	}
}
