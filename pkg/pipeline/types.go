package pipeline

import (
	"image"
	"image/color"
	"math"

	"github.com/user/gifclip/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Quality selects a resolution scale factor and palette size.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ScaleFactor returns the resolution scale applied to source dimensions.
func (q Quality) ScaleFactor() float64 {
	switch q {
	case QualityLow:
		return 0.5
	case QualityMedium:
		return 0.75
	default:
		return 1.0
	}
}

// PaletteSize returns the target palette size for the tier.
func (q Quality) PaletteSize() int {
	switch q {
	case QualityLow:
		return 64
	case QualityMedium:
		return 128
	default:
		return 256
	}
}

// Strategy selects the frame extraction mechanism.
type Strategy string

const (
	// StrategyAuto lets the capture stage decide.
	StrategyAuto Strategy = "auto"
	// StrategySurface forces render-surface sampling (seek and read back).
	StrategySurface Strategy = "surface"
	// StrategyDecode forces the low-level bulk decode path.
	StrategyDecode Strategy = "decode"
)

// Extraction methods reported in capture results.
const (
	MethodSurface = "surface"
	MethodDecode  = "decode"
	MethodHybrid  = "hybrid"
)

// Frame is one sampled pixel buffer captured from the source. Frames are
// immutable once captured and owned by the run that captured them.
type Frame struct {
	Buffer    *ports.PixelBuffer
	Timestamp float64 // seconds, source time
	DelayCs   int     // display delay in centiseconds
}

// =============================================================================
// Capture Stage Types
// =============================================================================

// CaptureInput contains parameters for frame extraction.
type CaptureInput struct {
	StartTime float64 // seconds
	EndTime   float64 // seconds
	FrameRate float64 // frames per second, in (0, 60]
	Quality   Quality
	MaxWidth  int // 0 means unconstrained
	MaxHeight int // 0 means unconstrained
	Strategy  Strategy
}

// DefaultCaptureInput returns CaptureInput with default values.
func DefaultCaptureInput() CaptureInput {
	return CaptureInput{
		FrameRate: 10,
		Quality:   QualityMedium,
		MaxWidth:  640,
		MaxHeight: 640,
		Strategy:  StrategyAuto,
	}
}

// FrameCount returns the number of frames the input demands.
func (in CaptureInput) FrameCount() int {
	return int(math.Ceil((in.EndTime - in.StartTime) * in.FrameRate))
}

// CaptureResult contains the extracted frames and how they were obtained.
type CaptureResult struct {
	Frames          []Frame
	Width           int
	Height          int
	ActualFrameRate float64
	Method          string // surface, decode or hybrid
}

// =============================================================================
// Quantize Stage Types
// =============================================================================

// QuantizeInput contains parameters for palette construction.
type QuantizeInput struct {
	Frames      []Frame
	PaletteSize int    // target size before power-of-two padding
	Quantizer   string // histogram or mediancut; empty means histogram
}

// QuantizeResult contains the shared palette for all frames of the run.
type QuantizeResult struct {
	// Palette is padded with black to a power of two in [2, 256].
	Palette color.Palette
	// DistinctColors is the number of distinct sampled colors observed.
	DistinctColors int
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for GIF assembly.
type EncodeInput struct {
	Frames  []Frame
	Palette color.Palette
	Width   int
	Height  int

	// LoopCount: 0 loops forever, N > 0 plays N+1 times, negative omits
	// the looping extension.
	LoopCount int

	// DelayOverrides optionally replaces the per-frame delay, indexed by
	// frame position. Zero entries keep the frame's own delay.
	DelayOverrides []int
}

// EncodeResult contains the assembled GIF.
type EncodeResult struct {
	Data     []byte
	FileSize int64
}

// EncodedFrame is one palette-indexed frame ready for bitstream assembly.
type EncodedFrame struct {
	Image   *image.Paletted
	DelayCs int
}
