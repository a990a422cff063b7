package mocks

import (
	"image"

	"github.com/user/gifclip/pkg/ports"
)

// GifEncoder is a mock implementation of ports.GifEncoder.
type GifEncoder struct {
	BeginFunc      func(width, height int, opts ports.GifOptions) error
	WriteFrameFunc func(frame *image.Paletted, delayCs int) error
	EndFunc        func() ([]byte, error)

	// Recorded calls for verification
	BeginCalled     bool
	BeginOpts       ports.GifOptions
	WriteFrameCalls []WriteFrameCall
	EndCalled       bool
}

// WriteFrameCall records a call to WriteFrame.
type WriteFrameCall struct {
	DelayCs int
}

func (m *GifEncoder) Begin(width, height int, opts ports.GifOptions) error {
	m.BeginCalled = true
	m.BeginOpts = opts
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, opts)
	}
	return nil
}

func (m *GifEncoder) WriteFrame(frame *image.Paletted, delayCs int) error {
	m.WriteFrameCalls = append(m.WriteFrameCalls, WriteFrameCall{DelayCs: delayCs})
	if m.WriteFrameFunc != nil {
		return m.WriteFrameFunc(frame, delayCs)
	}
	return nil
}

func (m *GifEncoder) End() ([]byte, error) {
	m.EndCalled = true
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// Minimal GIF header so callers see plausible bytes.
	return []byte("GIF89a"), nil
}

var _ ports.GifEncoder = (*GifEncoder)(nil)
