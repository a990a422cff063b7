// Package nativegif provides the built-in GIF back-end on top of the
// gifenc bitstream writer. It is always available and is the default
// selection.
package nativegif

import (
	"fmt"
	"image"

	"github.com/user/gifclip/pkg/gifenc"
	"github.com/user/gifclip/pkg/ports"
)

// Encoder implements ports.GifEncoder using the hand-assembled bitstream
// writer. The writer is created on the first frame because the shared
// palette travels with the frames.
type Encoder struct {
	writer *gifenc.Writer
	width  int
	height int
	opts   ports.GifOptions
	began  bool
}

// New creates a new native GIF encoder.
func New() *Encoder {
	return &Encoder{}
}

// Info describes this back-end for the selection factory.
func Info() ports.EncoderInfo {
	return ports.EncoderInfo{
		Name:        "native",
		OutputKinds: []string{"image/gif"},
		Speed:       4,
		Quality:     5,
		Memory:      4,
	}
}

// Available reports whether the back-end can run. The native writer has no
// external dependencies.
func Available() bool {
	return true
}

// Begin initializes the encoder.
func (e *Encoder) Begin(width, height int, opts ports.GifOptions) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("nativegif: bad dimensions %dx%d", width, height)
	}
	e.width = width
	e.height = height
	e.opts = opts
	e.writer = nil
	e.began = true
	return nil
}

// WriteFrame appends one palette-indexed frame.
func (e *Encoder) WriteFrame(frame *image.Paletted, delayCs int) error {
	if !e.began {
		return fmt.Errorf("nativegif: WriteFrame before Begin")
	}
	if e.writer == nil {
		w, err := gifenc.New(e.width, e.height, frame.Palette, e.opts.LoopCount)
		if err != nil {
			return fmt.Errorf("nativegif: %w", err)
		}
		e.writer = w
	}
	return e.writer.WriteFrame(frame, delayCs, e.opts.TransparentIndex)
}

// End finalizes the bitstream and returns the GIF data.
func (e *Encoder) End() ([]byte, error) {
	if e.writer == nil {
		return nil, fmt.Errorf("nativegif: no frames written")
	}
	data, err := e.writer.Close()
	e.began = false
	e.writer = nil
	return data, err
}

var _ ports.GifEncoder = (*Encoder)(nil)
