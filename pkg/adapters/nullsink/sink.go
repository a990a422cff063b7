// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image/color"

	"github.com/user/gifclip/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveRawFrame does nothing.
func (s *Sink) SaveRawFrame(index int, data []byte) error {
	return nil
}

// SavePalette does nothing.
func (s *Sink) SavePalette(palette color.Palette) error {
	return nil
}

// SaveCaptureJSON does nothing.
func (s *Sink) SaveCaptureJSON(data []byte) error {
	return nil
}

// SaveGIF does nothing.
func (s *Sink) SaveGIF(data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
