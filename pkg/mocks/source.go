// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/user/gifclip/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource.
type FrameSource struct {
	InfoFunc         func(ctx context.Context) (ports.SourceInfo, error)
	SaveStateFunc    func(ctx context.Context) (ports.SourceState, error)
	RestoreStateFunc func(ctx context.Context, state ports.SourceState) error
	PresentFunc      func(ctx context.Context, timestamp float64) error
	ReadPixelsFunc   func(ctx context.Context, width, height int) (*ports.PixelBuffer, error)
	CloseFunc        func() error

	// Recorded calls for verification
	PresentCalls      []float64
	ReadPixelsCalls   int
	SaveStateCalled   bool
	RestoredStates    []ports.SourceState
	CloseCalled       bool
}

func (m *FrameSource) Info(ctx context.Context) (ports.SourceInfo, error) {
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx)
	}
	return ports.SourceInfo{Width: 320, Height: 240, Duration: 10}, nil
}

func (m *FrameSource) SaveState(ctx context.Context) (ports.SourceState, error) {
	m.SaveStateCalled = true
	if m.SaveStateFunc != nil {
		return m.SaveStateFunc(ctx)
	}
	return ports.SourceState{}, nil
}

func (m *FrameSource) RestoreState(ctx context.Context, state ports.SourceState) error {
	m.RestoredStates = append(m.RestoredStates, state)
	if m.RestoreStateFunc != nil {
		return m.RestoreStateFunc(ctx, state)
	}
	return nil
}

func (m *FrameSource) Present(ctx context.Context, timestamp float64) error {
	m.PresentCalls = append(m.PresentCalls, timestamp)
	if m.PresentFunc != nil {
		return m.PresentFunc(ctx, timestamp)
	}
	return nil
}

func (m *FrameSource) ReadPixels(ctx context.Context, width, height int) (*ports.PixelBuffer, error) {
	m.ReadPixelsCalls++
	if m.ReadPixelsFunc != nil {
		return m.ReadPixelsFunc(ctx, width, height)
	}
	return SolidBuffer(width, height, 128, 128, 128), nil
}

func (m *FrameSource) Close() error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.FrameSource = (*FrameSource)(nil)

// BulkFrameSource is a FrameSource that also implements ports.BulkDecoder.
type BulkFrameSource struct {
	FrameSource

	DecodeRangeFunc func(ctx context.Context, start, end, frameRate float64, width, height int) ([]*ports.PixelBuffer, error)

	DecodeRangeCalls int
}

func (m *BulkFrameSource) DecodeRange(ctx context.Context, start, end, frameRate float64, width, height int) ([]*ports.PixelBuffer, error) {
	m.DecodeRangeCalls++
	if m.DecodeRangeFunc != nil {
		return m.DecodeRangeFunc(ctx, start, end, frameRate, width, height)
	}
	count := int((end - start) * frameRate)
	if float64(count) < (end-start)*frameRate {
		count++
	}
	buffers := make([]*ports.PixelBuffer, count)
	for i := range buffers {
		buffers[i] = SolidBuffer(width, height, uint8(i), uint8(i), uint8(i))
	}
	return buffers, nil
}

var _ ports.BulkDecoder = (*BulkFrameSource)(nil)

// SolidBuffer builds a buffer filled with one opaque color.
func SolidBuffer(width, height int, r, g, b uint8) *ports.PixelBuffer {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = 255
	}
	return &ports.PixelBuffer{Width: width, Height: height, Stride: width * 4, Pix: pix}
}
