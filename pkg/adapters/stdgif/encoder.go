// Package stdgif provides a GIF back-end on the standard library encoder.
// It buffers every frame until End, so it scores lowest on memory; it exists
// as an independent reference implementation for cross-checking the native
// writer's output.
package stdgif

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"

	"github.com/user/gifclip/pkg/ports"
)

// Encoder implements ports.GifEncoder using image/gif.
type Encoder struct {
	anim   gif.GIF
	width  int
	height int
	began  bool
}

// New creates a new stdlib-backed encoder.
func New() *Encoder {
	return &Encoder{}
}

// Info describes this back-end for the selection factory.
func Info() ports.EncoderInfo {
	return ports.EncoderInfo{
		Name:        "std",
		OutputKinds: []string{"image/gif"},
		Speed:       3,
		Quality:     4,
		Memory:      2,
	}
}

// Available reports whether the back-end can run.
func Available() bool {
	return true
}

// Begin initializes the encoder.
func (e *Encoder) Begin(width, height int, opts ports.GifOptions) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("stdgif: bad dimensions %dx%d", width, height)
	}
	e.width = width
	e.height = height
	e.anim = gif.GIF{
		// image/gif shares the loop-count convention: 0 forever,
		// -1 play once without the extension.
		LoopCount: opts.LoopCount,
		Config: image.Config{
			Width:  width,
			Height: height,
		},
	}
	e.began = true
	return nil
}

// WriteFrame buffers one palette-indexed frame.
func (e *Encoder) WriteFrame(frame *image.Paletted, delayCs int) error {
	if !e.began {
		return fmt.Errorf("stdgif: WriteFrame before Begin")
	}
	if e.anim.Config.ColorModel == nil {
		e.anim.Config.ColorModel = frame.Palette
	}
	e.anim.Image = append(e.anim.Image, frame)
	e.anim.Delay = append(e.anim.Delay, delayCs)
	e.anim.Disposal = append(e.anim.Disposal, gif.DisposalNone)
	return nil
}

// End encodes the buffered animation and returns the GIF data.
func (e *Encoder) End() ([]byte, error) {
	if !e.began || len(e.anim.Image) == 0 {
		return nil, fmt.Errorf("stdgif: no frames written")
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, &e.anim); err != nil {
		return nil, fmt.Errorf("stdgif: encode: %w", err)
	}
	e.began = false
	e.anim = gif.GIF{}
	return buf.Bytes(), nil
}

var _ ports.GifEncoder = (*Encoder)(nil)
