// Package gifxgif provides a GIF back-end using the streaming gifx encoder.
// Frames go to the bitstream as they arrive instead of being buffered, which
// keeps memory flat for long clips.
package gifxgif

import (
	"bytes"
	"fmt"
	"image"
	"time"

	gif "github.com/NathanBaulch/gifx"

	"github.com/user/gifclip/pkg/ports"
)

// Encoder implements ports.GifEncoder using gifx.
type Encoder struct {
	buf    bytes.Buffer
	enc    *gif.Encoder
	width  int
	height int
	opts   ports.GifOptions
	frames int
}

// New creates a new gifx-backed encoder.
func New() *Encoder {
	return &Encoder{}
}

// Info describes this back-end for the selection factory.
func Info() ports.EncoderInfo {
	return ports.EncoderInfo{
		Name:        "gifx",
		OutputKinds: []string{"image/gif"},
		Speed:       5,
		Quality:     4,
		Memory:      5,
	}
}

// Available reports whether the back-end can run.
func Available() bool {
	return true
}

// Begin initializes the encoder. The header is written on the first frame
// because the shared palette travels with the frames.
func (e *Encoder) Begin(width, height int, opts ports.GifOptions) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gifxgif: bad dimensions %dx%d", width, height)
	}
	e.buf.Reset()
	e.enc = gif.NewEncoder(&e.buf)
	e.width = width
	e.height = height
	e.opts = opts
	e.frames = 0
	return nil
}

// WriteFrame streams one palette-indexed frame into the bitstream.
func (e *Encoder) WriteFrame(frame *image.Paletted, delayCs int) error {
	if e.enc == nil {
		return fmt.Errorf("gifxgif: WriteFrame before Begin")
	}
	if e.frames == 0 {
		cfg := image.Config{
			ColorModel: frame.Palette,
			Width:      e.width,
			Height:     e.height,
		}
		if err := e.enc.WriteHeader(cfg, 0); err != nil {
			return fmt.Errorf("gifxgif: write header: %w", err)
		}
		if e.opts.LoopCount >= 0 {
			if err := e.enc.WriteApplicationNetscape(&gif.ApplicationNetscape{LoopCount: e.opts.LoopCount}); err != nil {
				return fmt.Errorf("gifxgif: write header: %w", err)
			}
		}
	}
	if err := e.enc.WriteFrame(&gif.Frame{Image: frame, DelayTime: time.Duration(delayCs) * 10 * time.Millisecond}); err != nil {
		return fmt.Errorf("gifxgif: write frame: %w", err)
	}
	e.frames++
	return nil
}

// End finalizes the bitstream and returns the GIF data.
func (e *Encoder) End() ([]byte, error) {
	if e.enc == nil || e.frames == 0 {
		return nil, fmt.Errorf("gifxgif: no frames written")
	}
	if err := e.enc.WriteTrailer(); err != nil {
		return nil, fmt.Errorf("gifxgif: write trailer: %w", err)
	}
	if err := e.enc.Flush(); err != nil {
		return nil, fmt.Errorf("gifxgif: flush: %w", err)
	}
	data := e.buf.Bytes()
	e.enc = nil
	return data, nil
}

var _ ports.GifEncoder = (*Encoder)(nil)
