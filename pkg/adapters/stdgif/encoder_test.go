package stdgif

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/user/gifclip/pkg/ports"
)

func testFrame(fill uint8) *image.Paletted {
	palette := color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
	pm := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
	for i := range pm.Pix {
		pm.Pix[i] = fill
	}
	return pm
}

func TestEncoder_RoundTrip(t *testing.T) {
	enc := New()
	if err := enc.Begin(4, 4, ports.GifOptions{LoopCount: 3, TransparentIndex: -1}); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	enc.WriteFrame(testFrame(0), 10)
	enc.WriteFrame(testFrame(1), 15)

	data, err := enc.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}

	decoded, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(decoded.Image) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(decoded.Image))
	}
	if decoded.Delay[0] != 10 || decoded.Delay[1] != 15 {
		t.Errorf("expected delays [10 15], got %v", decoded.Delay)
	}
	if decoded.LoopCount != 3 {
		t.Errorf("expected loop count 3, got %d", decoded.LoopCount)
	}
}

func TestEncoder_EndWithoutFrames(t *testing.T) {
	enc := New()
	enc.Begin(4, 4, ports.GifOptions{TransparentIndex: -1})
	if _, err := enc.End(); err == nil {
		t.Error("expected error ending with zero frames")
	}
}

func TestEncoder_WriteFrameBeforeBegin(t *testing.T) {
	enc := New()
	if err := enc.WriteFrame(testFrame(0), 10); err == nil {
		t.Error("expected error writing before Begin")
	}
}
