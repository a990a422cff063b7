package encode

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/gifclip/pkg/adapters/logger"
	"github.com/user/gifclip/pkg/mocks"
	"github.com/user/gifclip/pkg/pipeline"
)

func testPalette() color.Palette {
	return color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

func testFrames(n int) []pipeline.Frame {
	frames := make([]pipeline.Frame, n)
	for i := range frames {
		frames[i] = pipeline.Frame{
			Buffer:    mocks.SolidBuffer(4, 4, uint8(i*50), uint8(i*50), uint8(i*50)),
			Timestamp: float64(i) / 10,
			DelayCs:   10,
		}
	}
	return frames
}

func testInput(n int) pipeline.EncodeInput {
	return pipeline.EncodeInput{
		Frames:    testFrames(n),
		Palette:   testPalette(),
		Width:     4,
		Height:    4,
		LoopCount: 0,
	}
}

func TestStage_Execute(t *testing.T) {
	mockEncoder := &mocks.GifEncoder{}
	stage := NewStage(mockEncoder, logger.NewNoop())

	result, err := stage.Execute(context.Background(), testInput(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mockEncoder.BeginCalled {
		t.Error("expected Begin to be called")
	}
	if mockEncoder.BeginOpts.LoopCount != 0 {
		t.Errorf("expected loop count 0, got %d", mockEncoder.BeginOpts.LoopCount)
	}
	if mockEncoder.BeginOpts.TransparentIndex != -1 {
		t.Errorf("expected transparency disabled, got index %d", mockEncoder.BeginOpts.TransparentIndex)
	}
	if !mockEncoder.EndCalled {
		t.Error("expected End to be called")
	}

	if len(mockEncoder.WriteFrameCalls) != 3 {
		t.Fatalf("expected 3 WriteFrame calls, got %d", len(mockEncoder.WriteFrameCalls))
	}
	for i, call := range mockEncoder.WriteFrameCalls {
		if call.DelayCs != 10 {
			t.Errorf("frame %d: expected delay 10, got %d", i, call.DelayCs)
		}
	}

	if string(result.Data) != "GIF89a" {
		t.Errorf("expected back-end data to pass through, got %q", result.Data)
	}
	if result.FileSize != int64(len(result.Data)) {
		t.Errorf("expected file size %d, got %d", len(result.Data), result.FileSize)
	}
}

func TestStage_Execute_DelayOverrides(t *testing.T) {
	mockEncoder := &mocks.GifEncoder{}
	stage := NewStage(mockEncoder, logger.NewNoop())

	input := testInput(3)
	input.DelayOverrides = []int{0, 25}

	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{10, 25, 10}
	for i, call := range mockEncoder.WriteFrameCalls {
		if call.DelayCs != want[i] {
			t.Errorf("frame %d: expected delay %d, got %d", i, want[i], call.DelayCs)
		}
	}
}

func TestStage_Execute_EmptyFrames(t *testing.T) {
	mockEncoder := &mocks.GifEncoder{}
	stage := NewStage(mockEncoder, logger.NewNoop())

	_, err := stage.Execute(context.Background(), testInput(0))
	if !errors.Is(err, pipeline.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if mockEncoder.BeginCalled {
		t.Error("expected Begin not to be called for empty input")
	}
}

func TestStage_Execute_EmptyPalette(t *testing.T) {
	stage := NewStage(&mocks.GifEncoder{}, logger.NewNoop())

	input := testInput(2)
	input.Palette = nil

	_, err := stage.Execute(context.Background(), input)
	if !errors.Is(err, pipeline.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := NewStage(&mocks.GifEncoder{}, logger.NewNoop())
	_, err := stage.Execute(ctx, testInput(2))
	if !errors.Is(err, pipeline.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestStage_Execute_WriteFrameError(t *testing.T) {
	mockEncoder := &mocks.GifEncoder{
		WriteFrameFunc: func(_ *image.Paletted, _ int) error {
			return errors.New("stream closed")
		},
	}
	stage := NewStage(mockEncoder, logger.NewNoop())

	_, err := stage.Execute(context.Background(), testInput(2))
	if err == nil {
		t.Fatal("expected error from failing back-end")
	}
}

func TestStage_Progress(t *testing.T) {
	mockEncoder := &mocks.GifEncoder{}
	stage := NewStage(mockEncoder, logger.NewNoop())

	var calls [][2]int
	stage.Progress = func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}

	if _, err := stage.Execute(context.Background(), testInput(4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 4 {
		t.Fatalf("expected 4 progress calls, got %d", len(calls))
	}
	if calls[3] != [2]int{4, 4} {
		t.Errorf("unexpected final progress: %v", calls[3])
	}
}

func TestStage_Execute_MapsPixelsToPalette(t *testing.T) {
	mockEncoder := &mocks.GifEncoder{}
	var gotPix []uint8
	mockEncoder.WriteFrameFunc = func(frame *image.Paletted, _ int) error {
		gotPix = append([]uint8(nil), frame.Pix...)
		return nil
	}
	stage := NewStage(mockEncoder, logger.NewNoop())

	input := testInput(1)
	input.Frames[0].Buffer = mocks.SolidBuffer(4, 4, 255, 255, 255)

	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, idx := range gotPix {
		if idx != 1 {
			t.Fatalf("pixel %d: expected white index 1, got %d", i, idx)
		}
	}
}
