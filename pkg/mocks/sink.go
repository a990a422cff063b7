package mocks

import (
	"image/color"

	"github.com/user/gifclip/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink that records what
// was saved.
type DebugSink struct {
	EnabledValue bool

	RawFrames   map[int][]byte
	Palettes    []color.Palette
	CaptureJSON [][]byte
	GIFs        [][]byte
}

// NewDebugSink creates an enabled recording sink.
func NewDebugSink() *DebugSink {
	return &DebugSink{
		EnabledValue: true,
		RawFrames:    make(map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.EnabledValue
}

func (m *DebugSink) SaveRawFrame(index int, data []byte) error {
	if m.RawFrames == nil {
		m.RawFrames = make(map[int][]byte)
	}
	m.RawFrames[index] = data
	return nil
}

func (m *DebugSink) SavePalette(palette color.Palette) error {
	m.Palettes = append(m.Palettes, palette)
	return nil
}

func (m *DebugSink) SaveCaptureJSON(data []byte) error {
	m.CaptureJSON = append(m.CaptureJSON, data)
	return nil
}

func (m *DebugSink) SaveGIF(data []byte) error {
	m.GIFs = append(m.GIFs, data)
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
