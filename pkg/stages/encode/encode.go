// Package encode implements the GIF assembly stage.
package encode

import (
	"context"
	"fmt"
	"image"

	"github.com/user/gifclip/pkg/pipeline"
	"github.com/user/gifclip/pkg/ports"
	"github.com/user/gifclip/pkg/stages/quantize"
)

// Stage maps frames onto the shared palette and drives a GIF back-end.
type Stage struct {
	encoder ports.GifEncoder
	logger  ports.Logger

	// Progress is invoked after each encoded frame. Set by the
	// orchestrator; nil disables reporting.
	Progress func(done, total int)
}

// NewStage creates a new encode stage.
func NewStage(encoder ports.GifEncoder, logger ports.Logger) *Stage {
	return &Stage{
		encoder: encoder,
		logger:  logger.WithComponent("encode"),
	}
}

// Execute encodes all frames into one GIF. Either the full bitstream is
// returned or an error with no output; partial assembly is discarded by the
// back-end contract.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if len(input.Frames) == 0 {
		return result, fmt.Errorf("encode: %w", pipeline.ErrEmptyInput)
	}
	if len(input.Palette) == 0 {
		return result, fmt.Errorf("encode: empty palette: %w", pipeline.ErrInvalidInput)
	}

	opts := ports.GifOptions{
		LoopCount:        input.LoopCount,
		TransparentIndex: -1,
	}
	if err := s.encoder.Begin(input.Width, input.Height, opts); err != nil {
		return result, fmt.Errorf("begin encoding: %w", err)
	}

	bounds := image.Rect(0, 0, input.Width, input.Height)
	cache := make(map[uint32]uint8)
	total := len(input.Frames)

	for i, frame := range input.Frames {
		if ctx.Err() != nil {
			return result, fmt.Errorf("encode frame %d: %w", i, pipeline.ErrCancelled)
		}

		pm := &image.Paletted{
			Pix:     quantize.MapFrame(frame.Buffer, input.Palette, cache),
			Stride:  input.Width,
			Rect:    bounds,
			Palette: input.Palette,
		}

		delay := frame.DelayCs
		if i < len(input.DelayOverrides) && input.DelayOverrides[i] > 0 {
			delay = input.DelayOverrides[i]
		}

		if err := s.encoder.WriteFrame(pm, delay); err != nil {
			return result, fmt.Errorf("encode frame %d: %w", i, err)
		}
		if s.Progress != nil {
			s.Progress(i+1, total)
		}
	}

	data, err := s.encoder.End()
	if err != nil {
		return result, fmt.Errorf("end encoding: %w", err)
	}
	s.logger.Debug("Encoded %d frames into %d bytes", total, len(data))

	result.Data = data
	result.FileSize = int64(len(data))
	return result, nil
}
