// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"image"
)

// PixelBuffer is a portable RGBA pixel buffer. It is the only pixel
// representation the core pipeline works with, so no package outside the
// adapters depends on a particular rendering or automation API.
type PixelBuffer struct {
	Width  int
	Height int
	Stride int    // bytes per row, >= Width*4
	Pix    []byte // RGBA, premultiplied not required
}

// RGBAAt returns the RGBA components of the pixel at (x, y).
func (b *PixelBuffer) RGBAAt(x, y int) (r, g, bl, a uint8) {
	i := y*b.Stride + x*4
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// ToRGBA wraps the buffer in a stdlib image without copying pixels.
func (b *PixelBuffer) ToRGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromRGBA adopts a stdlib image's pixel data as a PixelBuffer. The image's
// backing array is moved, not copied; callers must not mutate it afterwards.
func FromRGBA(img *image.RGBA) *PixelBuffer {
	return &PixelBuffer{
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
		Stride: img.Stride,
		Pix:    img.Pix,
	}
}

// SourceInfo describes the intrinsic properties of a frame source.
type SourceInfo struct {
	Width    int
	Height   int
	Duration float64 // seconds
}

// SourceState is a snapshot of the playback state taken before capture,
// used to restore the source afterwards.
type SourceState struct {
	Position float64 // seconds
	Paused   bool
}

// FrameSource abstracts a playable video source that can be driven to a
// timestamp and read back as pixels. Implementations own the playback cursor
// for the duration of one capture; callers must not touch it concurrently.
type FrameSource interface {
	// Info returns the source's intrinsic dimensions and duration.
	Info(ctx context.Context) (SourceInfo, error)

	// SaveState snapshots the current position and play/pause state and
	// pauses the source for stable capture.
	SaveState(ctx context.Context) (SourceState, error)

	// RestoreState restores a previously saved state, resuming playback
	// if the source was playing.
	RestoreState(ctx context.Context, state SourceState) error

	// Present drives the source to the given timestamp and returns once
	// the frame at that time is actually presented. The context bounds
	// the wait; implementations return the context error on expiry.
	Present(ctx context.Context, timestamp float64) error

	// ReadPixels reads back the currently presented frame, scaled to the
	// given output dimensions.
	ReadPixels(ctx context.Context, width, height int) (*PixelBuffer, error)

	// Close releases source resources.
	Close() error
}

// BulkDecoder is an optional capability of a FrameSource: decoding a whole
// time range in one pass without per-frame seeking. Sources that can do this
// enable the low-level extraction strategy; the capture stage type-asserts
// for it and falls back to per-frame sampling when absent or failing.
type BulkDecoder interface {
	// DecodeRange decodes frames at the given rate across [start, end),
	// scaled to width x height, in timestamp order.
	DecodeRange(ctx context.Context, start, end, frameRate float64, width, height int) ([]*PixelBuffer, error)
}
