package ports

import (
	"image/color"
)

// DebugSink abstracts debug output for intermediate pipeline results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRawFrame saves one captured frame as PNG data.
	SaveRawFrame(index int, data []byte) error

	// SavePalette saves the quantized palette for inspection.
	SavePalette(palette color.Palette) error

	// SaveCaptureJSON saves capture metadata as JSON.
	SaveCaptureJSON(data []byte) error

	// SaveGIF saves the assembled GIF binary.
	SaveGIF(data []byte) error
}
