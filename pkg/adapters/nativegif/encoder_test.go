package nativegif

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/user/gifclip/pkg/ports"
)

func palette() color.Palette {
	return color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

func frame(fill uint8) *image.Paletted {
	pm := image.NewPaletted(image.Rect(0, 0, 4, 4), palette())
	for i := range pm.Pix {
		pm.Pix[i] = fill
	}
	return pm
}

func TestEncoder_RoundTrip(t *testing.T) {
	enc := New()
	opts := ports.GifOptions{LoopCount: 0, TransparentIndex: -1}
	if err := enc.Begin(4, 4, opts); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := enc.WriteFrame(frame(0), 10); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := enc.WriteFrame(frame(1), 20); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	data, err := enc.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("GIF89a")) {
		t.Fatalf("expected GIF89a prefix, got %q", data[:6])
	}

	decoded, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(decoded.Image) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(decoded.Image))
	}
	if decoded.Delay[0] != 10 || decoded.Delay[1] != 20 {
		t.Errorf("expected delays [10 20], got %v", decoded.Delay)
	}
	if decoded.LoopCount != 0 {
		t.Errorf("expected loop forever, got %d", decoded.LoopCount)
	}
}

func TestEncoder_BeginValidation(t *testing.T) {
	enc := New()
	if err := enc.Begin(0, 4, ports.GifOptions{}); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestEncoder_WriteFrameBeforeBegin(t *testing.T) {
	enc := New()
	if err := enc.WriteFrame(frame(0), 10); err == nil {
		t.Error("expected error writing before Begin")
	}
}

func TestEncoder_EndWithoutFrames(t *testing.T) {
	enc := New()
	enc.Begin(4, 4, ports.GifOptions{TransparentIndex: -1})
	if _, err := enc.End(); err == nil {
		t.Error("expected error ending with zero frames")
	}
}

func TestEncoder_Reusable(t *testing.T) {
	enc := New()
	for run := 0; run < 2; run++ {
		if err := enc.Begin(4, 4, ports.GifOptions{TransparentIndex: -1}); err != nil {
			t.Fatalf("run %d Begin: %v", run, err)
		}
		if err := enc.WriteFrame(frame(uint8(run)), 10); err != nil {
			t.Fatalf("run %d WriteFrame: %v", run, err)
		}
		data, err := enc.End()
		if err != nil {
			t.Fatalf("run %d End: %v", run, err)
		}
		if _, err := gif.DecodeAll(bytes.NewReader(data)); err != nil {
			t.Fatalf("run %d decode: %v", run, err)
		}
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	if info.Name != "native" {
		t.Errorf("expected name native, got %q", info.Name)
	}
	if !Available() {
		t.Error("expected native back-end to always be available")
	}
}
