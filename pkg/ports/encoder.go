package ports

import (
	"image"
)

// GifEncoder abstracts a GIF encoding back-end. Frames arrive already
// quantized against one shared palette; the back-end owns the binary
// assembly. A back-end either reaches End successfully or returns an error;
// it never hands back a partial bitstream.
type GifEncoder interface {
	// Begin initializes the encoder with canvas dimensions and options.
	Begin(width, height int, opts GifOptions) error

	// WriteFrame appends one palette-indexed frame with its display delay
	// in centiseconds.
	WriteFrame(frame *image.Paletted, delayCs int) error

	// End finalizes the bitstream and returns the complete GIF data.
	End() ([]byte, error)
}

// GifOptions configures GIF encoding parameters.
type GifOptions struct {
	// LoopCount controls the NETSCAPE2.0 looping extension:
	// 0 loops forever, N > 0 plays N+1 times, and a negative value omits
	// the extension entirely (the image plays once).
	LoopCount int

	// TransparentIndex is the palette index treated as transparent,
	// or -1 for fully opaque output.
	TransparentIndex int
}

// EncoderInfo describes a back-end's declared characteristics, used by the
// selection factory. Scores are 1 (worst) to 5 (best).
type EncoderInfo struct {
	Name        string
	OutputKinds []string // MIME types, e.g. "image/gif"
	Speed       int
	Quality     int
	Memory      int // higher means lower memory footprint
}
