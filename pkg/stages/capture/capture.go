// Package capture implements the frame extraction stage.
//
// Given a playable source and a time window, it produces an ordered frame
// sequence sampled at a target rate. Extraction adapts to what the source
// supports: a low-level bulk decode when the source exposes one, per-frame
// render-surface sampling otherwise, and a transparent hybrid fallback when
// the bulk path fails mid-run.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"math"
	"time"

	"github.com/user/gifclip/pkg/pipeline"
	"github.com/user/gifclip/pkg/ports"
)

// seekTimeout bounds one frame's positioning confirmation. A frame whose
// seek does not confirm in time aborts the whole run; frames are never
// silently skipped.
const seekTimeout = 2 * time.Second

// Thresholds below which per-frame sampling beats the bulk path's setup cost.
const (
	shortClipSeconds = 10.0
	smallFrameCount  = 100
)

// Stage extracts frames from a source.
type Stage struct {
	source ports.FrameSource
	sink   ports.DebugSink
	logger ports.Logger

	// Progress is invoked after each captured frame. Set by the
	// orchestrator; nil disables reporting.
	Progress func(done, total int)
}

// New creates a new capture stage.
func New(source ports.FrameSource, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		source: source,
		sink:   sink,
		logger: logger.WithComponent("capture"),
	}
}

// Execute extracts the requested frame sequence. The source's playback state
// is restored on every return path, including cancellation.
func (s *Stage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	result := pipeline.CaptureResult{}

	info, err := s.source.Info(ctx)
	if err != nil {
		return result, fmt.Errorf("source info: %w: %v", pipeline.ErrSourceNotReady, err)
	}
	if info.Width <= 0 || info.Height <= 0 || info.Duration <= 0 {
		return result, fmt.Errorf("source reports %dx%d, %.2fs: %w",
			info.Width, info.Height, info.Duration, pipeline.ErrSourceNotReady)
	}

	if err := validate(input, info); err != nil {
		return result, err
	}

	width, height := OutputDimensions(info.Width, info.Height, input.Quality, input.MaxWidth, input.MaxHeight)
	total := input.FrameCount()
	duration := input.EndTime - input.StartTime
	delayCs := DelayCentiseconds(input.FrameRate)

	s.logger.Debug("Capturing %d frames at %.1f fps, %dx%d", total, input.FrameRate, width, height)

	state, err := s.source.SaveState(ctx)
	if err != nil {
		return result, fmt.Errorf("save source state: %w: %v", pipeline.ErrSourceNotReady, err)
	}
	defer func() {
		// Restore must run even when the run context is already
		// cancelled.
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rerr := s.source.RestoreState(restoreCtx, state); rerr != nil {
			s.logger.Warn("Failed to restore source state: %s", rerr)
		}
	}()

	method := pipeline.MethodSurface
	var frames []pipeline.Frame

	if s.useBulkDecode(input, info, total) {
		bulk := s.source.(ports.BulkDecoder)
		buffers, derr := bulk.DecodeRange(ctx, input.StartTime, input.EndTime, input.FrameRate, width, height)
		switch {
		case derr == nil && len(buffers) == total:
			frames = assembleFrames(buffers, input.StartTime, input.FrameRate, delayCs)
			method = pipeline.MethodDecode
		case ctx.Err() != nil:
			return result, fmt.Errorf("bulk decode: %w", pipeline.ErrCancelled)
		default:
			if derr == nil {
				derr = fmt.Errorf("decoded %d frames, want %d", len(buffers), total)
			}
			s.logger.Warn("Bulk decode failed, falling back to surface sampling: %s", derr)
			method = pipeline.MethodHybrid
		}
	}

	if frames == nil {
		frames, err = s.sampleSurface(ctx, input, width, height, total, delayCs)
		if err != nil {
			return result, err
		}
	}

	s.saveDebugFrames(frames)

	result.Frames = frames
	result.Width = width
	result.Height = height
	result.ActualFrameRate = float64(len(frames)) / duration
	result.Method = method
	return result, nil
}

// useBulkDecode applies the strategy decision: the bulk path needs the
// capability and pays off only for longer clips, unless forced.
func (s *Stage) useBulkDecode(input pipeline.CaptureInput, info ports.SourceInfo, total int) bool {
	_, capable := s.source.(ports.BulkDecoder)
	switch input.Strategy {
	case pipeline.StrategySurface:
		return false
	case pipeline.StrategyDecode:
		return capable
	}
	if !capable {
		return false
	}
	clip := input.EndTime - input.StartTime
	if clip < shortClipSeconds || total < smallFrameCount {
		return false
	}
	return true
}

// sampleSurface runs the per-frame present/await/readback loop.
func (s *Stage) sampleSurface(ctx context.Context, input pipeline.CaptureInput, width, height, total, delayCs int) ([]pipeline.Frame, error) {
	frames := make([]pipeline.Frame, 0, total)
	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("capture frame %d: %w", i, pipeline.ErrCancelled)
		}

		t := input.StartTime + float64(i)/input.FrameRate

		seekCtx, cancel := context.WithTimeout(ctx, seekTimeout)
		err := s.source.Present(seekCtx, t)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("capture frame %d: %w", i, pipeline.ErrCancelled)
			}
			return nil, fmt.Errorf("frame %d at %.3fs: %w: %v", i, t, pipeline.ErrSeekTimeout, err)
		}

		buf, err := s.source.ReadPixels(ctx, width, height)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("capture frame %d: %w", i, pipeline.ErrCancelled)
			}
			return nil, fmt.Errorf("read pixels for frame %d: %w", i, err)
		}

		frames = append(frames, pipeline.Frame{
			Buffer:    buf,
			Timestamp: t,
			DelayCs:   delayCs,
		})
		if s.Progress != nil {
			s.Progress(i+1, total)
		}
	}
	return frames, nil
}

func (s *Stage) saveDebugFrames(frames []pipeline.Frame) {
	if !s.sink.Enabled() {
		return
	}
	for i, f := range frames {
		var buf bytes.Buffer
		if err := png.Encode(&buf, f.Buffer.ToRGBA()); err != nil {
			s.logger.Warn("Failed to encode debug frame %d: %s", i, err)
			continue
		}
		s.sink.SaveRawFrame(i, buf.Bytes())
	}
}

func assembleFrames(buffers []*ports.PixelBuffer, start, rate float64, delayCs int) []pipeline.Frame {
	frames := make([]pipeline.Frame, len(buffers))
	for i, buf := range buffers {
		frames[i] = pipeline.Frame{
			Buffer:    buf,
			Timestamp: start + float64(i)/rate,
			DelayCs:   delayCs,
		}
	}
	return frames
}

func validate(input pipeline.CaptureInput, info ports.SourceInfo) error {
	if input.StartTime < 0 {
		return fmt.Errorf("start time %.3f: %w", input.StartTime, pipeline.ErrInvalidInput)
	}
	if input.EndTime <= input.StartTime {
		return fmt.Errorf("time range [%.3f, %.3f]: %w", input.StartTime, input.EndTime, pipeline.ErrInvalidInput)
	}
	if input.EndTime > info.Duration {
		return fmt.Errorf("end time %.3f exceeds duration %.3f: %w", input.EndTime, info.Duration, pipeline.ErrInvalidInput)
	}
	if input.FrameRate <= 0 || input.FrameRate > 60 {
		return fmt.Errorf("frame rate %.2f: %w", input.FrameRate, pipeline.ErrInvalidInput)
	}
	return nil
}

// OutputDimensions applies the dimension policy: scale by the quality factor,
// clamp to the max box preserving aspect ratio, then floor both dimensions to
// even integers with a minimum of 2.
func OutputDimensions(srcWidth, srcHeight int, quality pipeline.Quality, maxWidth, maxHeight int) (int, int) {
	scale := quality.ScaleFactor()
	w := float64(srcWidth) * scale
	h := float64(srcHeight) * scale

	if maxWidth > 0 && w > float64(maxWidth) {
		h = h * float64(maxWidth) / w
		w = float64(maxWidth)
	}
	if maxHeight > 0 && h > float64(maxHeight) {
		w = w * float64(maxHeight) / h
		h = float64(maxHeight)
	}

	return evenFloor(w), evenFloor(h)
}

func evenFloor(v float64) int {
	n := int(math.Floor(v))
	n -= n % 2
	if n < 2 {
		n = 2
	}
	return n
}

// DelayCentiseconds converts a frame rate to the GIF per-frame delay,
// clamped to at least one centisecond.
func DelayCentiseconds(frameRate float64) int {
	d := int(math.Round(100 / frameRate))
	if d < 1 {
		d = 1
	}
	return d
}
