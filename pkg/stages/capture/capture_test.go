package capture

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/user/gifclip/pkg/adapters/logger"
	"github.com/user/gifclip/pkg/adapters/nullsink"
	"github.com/user/gifclip/pkg/mocks"
	"github.com/user/gifclip/pkg/pipeline"
	"github.com/user/gifclip/pkg/ports"
)

func testInput() pipeline.CaptureInput {
	input := pipeline.DefaultCaptureInput()
	input.StartTime = 0
	input.EndTime = 2
	input.FrameRate = 10
	input.Quality = pipeline.QualityHigh
	return input
}

func newStage(source ports.FrameSource) *Stage {
	return New(source, nullsink.New(), logger.NewNoop())
}

func TestStage_Execute_Surface(t *testing.T) {
	source := &mocks.FrameSource{}
	stage := newStage(source)

	result, err := stage.Execute(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Frames) != 20 {
		t.Fatalf("expected 20 frames, got %d", len(result.Frames))
	}
	if result.Method != pipeline.MethodSurface {
		t.Errorf("expected method %q, got %q", pipeline.MethodSurface, result.Method)
	}
	if result.Width != 320 || result.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", result.Width, result.Height)
	}
	if result.ActualFrameRate != 10 {
		t.Errorf("expected actual frame rate 10, got %.2f", result.ActualFrameRate)
	}

	if len(source.PresentCalls) != 20 {
		t.Fatalf("expected 20 Present calls, got %d", len(source.PresentCalls))
	}
	for i, ts := range source.PresentCalls {
		want := float64(i) / 10
		if ts != want {
			t.Errorf("frame %d: expected timestamp %.2f, got %.2f", i, want, ts)
		}
	}
	if source.ReadPixelsCalls != 20 {
		t.Errorf("expected 20 ReadPixels calls, got %d", source.ReadPixelsCalls)
	}

	for i, f := range result.Frames {
		if f.DelayCs != 10 {
			t.Errorf("frame %d: expected delay 10cs, got %d", i, f.DelayCs)
		}
	}
}

func TestStage_Execute_RestoresState(t *testing.T) {
	source := &mocks.FrameSource{
		SaveStateFunc: func(ctx context.Context) (ports.SourceState, error) {
			return ports.SourceState{Position: 3.5, Paused: false}, nil
		},
	}
	stage := newStage(source)

	if _, err := stage.Execute(context.Background(), testInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !source.SaveStateCalled {
		t.Error("expected SaveState to be called")
	}
	if len(source.RestoredStates) != 1 {
		t.Fatalf("expected 1 RestoreState call, got %d", len(source.RestoredStates))
	}
	if source.RestoredStates[0].Position != 3.5 {
		t.Errorf("expected restored position 3.5, got %.2f", source.RestoredStates[0].Position)
	}
}

func TestStage_Execute_RestoresStateOnFailure(t *testing.T) {
	source := &mocks.FrameSource{
		PresentFunc: func(ctx context.Context, timestamp float64) error {
			return errors.New("seeked event never fired")
		},
	}
	stage := newStage(source)

	_, err := stage.Execute(context.Background(), testInput())
	if !errors.Is(err, pipeline.ErrSeekTimeout) {
		t.Fatalf("expected ErrSeekTimeout, got %v", err)
	}
	if len(source.RestoredStates) != 1 {
		t.Errorf("expected state restored on failure, got %d calls", len(source.RestoredStates))
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := &mocks.FrameSource{}
	source.PresentFunc = func(_ context.Context, timestamp float64) error {
		if len(source.PresentCalls) == 3 {
			cancel()
		}
		return nil
	}
	stage := newStage(source)

	_, err := stage.Execute(ctx, testInput())
	if !errors.Is(err, pipeline.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(source.PresentCalls) > 4 {
		t.Errorf("expected capture to stop promptly, saw %d Present calls", len(source.PresentCalls))
	}
	if len(source.RestoredStates) != 1 {
		t.Errorf("expected state restored after cancellation, got %d calls", len(source.RestoredStates))
	}
}

func TestStage_Execute_BulkDecode(t *testing.T) {
	source := &mocks.BulkFrameSource{}
	source.InfoFunc = func(ctx context.Context) (ports.SourceInfo, error) {
		return ports.SourceInfo{Width: 320, Height: 240, Duration: 30}, nil
	}
	stage := newStage(source)

	input := testInput()
	input.EndTime = 15 // 150 frames, enough for the bulk path

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Method != pipeline.MethodDecode {
		t.Errorf("expected method %q, got %q", pipeline.MethodDecode, result.Method)
	}
	if len(result.Frames) != 150 {
		t.Errorf("expected 150 frames, got %d", len(result.Frames))
	}
	if source.DecodeRangeCalls != 1 {
		t.Errorf("expected 1 DecodeRange call, got %d", source.DecodeRangeCalls)
	}
	if len(source.PresentCalls) != 0 {
		t.Errorf("expected no Present calls on the bulk path, got %d", len(source.PresentCalls))
	}
}

func TestStage_Execute_ShortClipPrefersSurface(t *testing.T) {
	source := &mocks.BulkFrameSource{}
	stage := newStage(source)

	// 2 seconds at 10 fps: below both bulk thresholds.
	result, err := stage.Execute(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != pipeline.MethodSurface {
		t.Errorf("expected method %q, got %q", pipeline.MethodSurface, result.Method)
	}
	if source.DecodeRangeCalls != 0 {
		t.Errorf("expected no DecodeRange calls, got %d", source.DecodeRangeCalls)
	}
}

func TestStage_Execute_ForcedDecode(t *testing.T) {
	source := &mocks.BulkFrameSource{}
	stage := newStage(source)

	input := testInput()
	input.Strategy = pipeline.StrategyDecode

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != pipeline.MethodDecode {
		t.Errorf("expected method %q, got %q", pipeline.MethodDecode, result.Method)
	}
	if source.DecodeRangeCalls != 1 {
		t.Errorf("expected 1 DecodeRange call, got %d", source.DecodeRangeCalls)
	}
}

func TestStage_Execute_ForcedSurface(t *testing.T) {
	source := &mocks.BulkFrameSource{}
	source.InfoFunc = func(ctx context.Context) (ports.SourceInfo, error) {
		return ports.SourceInfo{Width: 320, Height: 240, Duration: 30}, nil
	}
	stage := newStage(source)

	input := testInput()
	input.EndTime = 15
	input.Strategy = pipeline.StrategySurface

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != pipeline.MethodSurface {
		t.Errorf("expected method %q, got %q", pipeline.MethodSurface, result.Method)
	}
	if source.DecodeRangeCalls != 0 {
		t.Errorf("expected no DecodeRange calls, got %d", source.DecodeRangeCalls)
	}
}

func TestStage_Execute_HybridFallback(t *testing.T) {
	source := &mocks.BulkFrameSource{}
	source.InfoFunc = func(ctx context.Context) (ports.SourceInfo, error) {
		return ports.SourceInfo{Width: 320, Height: 240, Duration: 30}, nil
	}
	source.DecodeRangeFunc = func(ctx context.Context, start, end, frameRate float64, width, height int) ([]*ports.PixelBuffer, error) {
		return nil, errors.New("decoder rejected the stream")
	}
	stage := newStage(source)

	input := testInput()
	input.EndTime = 15

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != pipeline.MethodHybrid {
		t.Errorf("expected method %q, got %q", pipeline.MethodHybrid, result.Method)
	}
	if len(result.Frames) != 150 {
		t.Errorf("expected 150 frames from surface sampling, got %d", len(result.Frames))
	}
	if len(source.PresentCalls) != 150 {
		t.Errorf("expected 150 Present calls, got %d", len(source.PresentCalls))
	}
}

func TestStage_Execute_HybridFallbackOnShortfall(t *testing.T) {
	source := &mocks.BulkFrameSource{}
	source.InfoFunc = func(ctx context.Context) (ports.SourceInfo, error) {
		return ports.SourceInfo{Width: 320, Height: 240, Duration: 30}, nil
	}
	source.DecodeRangeFunc = func(ctx context.Context, start, end, frameRate float64, width, height int) ([]*ports.PixelBuffer, error) {
		// Fewer frames than requested.
		return []*ports.PixelBuffer{mocks.SolidBuffer(width, height, 0, 0, 0)}, nil
	}
	stage := newStage(source)

	input := testInput()
	input.EndTime = 15

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != pipeline.MethodHybrid {
		t.Errorf("expected method %q, got %q", pipeline.MethodHybrid, result.Method)
	}
	if len(result.Frames) != 150 {
		t.Errorf("expected 150 frames, got %d", len(result.Frames))
	}
}

func TestStage_Execute_Validation(t *testing.T) {
	tests := []struct {
		name  string
		tweak func(*pipeline.CaptureInput)
	}{
		{"negative start", func(in *pipeline.CaptureInput) { in.StartTime = -1 }},
		{"end before start", func(in *pipeline.CaptureInput) { in.StartTime = 3; in.EndTime = 2 }},
		{"end equals start", func(in *pipeline.CaptureInput) { in.StartTime = 2; in.EndTime = 2 }},
		{"end past duration", func(in *pipeline.CaptureInput) { in.EndTime = 10.5 }},
		{"zero frame rate", func(in *pipeline.CaptureInput) { in.FrameRate = 0 }},
		{"frame rate above 60", func(in *pipeline.CaptureInput) { in.FrameRate = 61 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := testInput()
			tt.tweak(&input)

			stage := newStage(&mocks.FrameSource{})
			_, err := stage.Execute(context.Background(), input)
			if !errors.Is(err, pipeline.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestStage_Execute_EndAtDurationIsValid(t *testing.T) {
	stage := newStage(&mocks.FrameSource{})

	input := testInput()
	input.EndTime = 10 // exactly the source duration

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Frames) != 100 {
		t.Errorf("expected 100 frames, got %d", len(result.Frames))
	}
}

func TestStage_Execute_SourceNotReady(t *testing.T) {
	tests := []struct {
		name string
		info ports.SourceInfo
	}{
		{"zero dimensions", ports.SourceInfo{Duration: 10}},
		{"zero duration", ports.SourceInfo{Width: 320, Height: 240}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &mocks.FrameSource{
				InfoFunc: func(ctx context.Context) (ports.SourceInfo, error) {
					return tt.info, nil
				},
			}
			stage := newStage(source)
			_, err := stage.Execute(context.Background(), testInput())
			if !errors.Is(err, pipeline.ErrSourceNotReady) {
				t.Errorf("expected ErrSourceNotReady, got %v", err)
			}
		})
	}
}

func TestStage_Execute_InfoError(t *testing.T) {
	source := &mocks.FrameSource{
		InfoFunc: func(ctx context.Context) (ports.SourceInfo, error) {
			return ports.SourceInfo{}, fmt.Errorf("element not found")
		},
	}
	stage := newStage(source)
	_, err := stage.Execute(context.Background(), testInput())
	if !errors.Is(err, pipeline.ErrSourceNotReady) {
		t.Errorf("expected ErrSourceNotReady, got %v", err)
	}
}

func TestStage_Progress(t *testing.T) {
	stage := newStage(&mocks.FrameSource{})

	var calls [][2]int
	stage.Progress = func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}

	if _, err := stage.Execute(context.Background(), testInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 20 {
		t.Fatalf("expected 20 progress calls, got %d", len(calls))
	}
	if calls[0] != [2]int{1, 20} || calls[19] != [2]int{20, 20} {
		t.Errorf("unexpected first/last progress: %v %v", calls[0], calls[19])
	}
}

func TestOutputDimensions(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		quality    pipeline.Quality
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{"high quality unconstrained", 320, 240, pipeline.QualityHigh, 0, 0, 320, 240},
		{"low quality halves", 320, 240, pipeline.QualityLow, 0, 0, 160, 120},
		{"medium quality scales", 320, 240, pipeline.QualityMedium, 0, 0, 240, 180},
		{"clamped to max width", 1920, 1080, pipeline.QualityHigh, 640, 640, 640, 360},
		{"clamped to max height", 640, 1280, pipeline.QualityHigh, 320, 320, 160, 320},
		{"odd dimensions floor to even", 101, 75, pipeline.QualityHigh, 0, 0, 100, 74},
		{"never below two", 2, 2, pipeline.QualityLow, 0, 0, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := OutputDimensions(tt.srcW, tt.srcH, tt.quality, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
		})
	}
}

func TestDelayCentiseconds(t *testing.T) {
	tests := []struct {
		frameRate float64
		want      int
	}{
		{10, 10},
		{30, 3},
		{60, 2},
		{25, 4},
		{1, 100},
		{0.5, 200},
	}
	for _, tt := range tests {
		if got := DelayCentiseconds(tt.frameRate); got != tt.want {
			t.Errorf("DelayCentiseconds(%.1f): expected %d, got %d", tt.frameRate, tt.want, got)
		}
	}
}
