// Package ggthumb renders pipeline thumbnails using the gg library.
package ggthumb

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/gifclip/pkg/ports"
)

// DefaultSize is the square thumbnail edge length in pixels.
const DefaultSize = 150

// Render produces a square PNG thumbnail from one frame: aspect-fit,
// centered on a black canvas.
func Render(buf *ports.PixelBuffer, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("ggthumb: empty frame")
	}

	// Fit the frame inside the square.
	scale := float64(size) / float64(buf.Width)
	if s := float64(size) / float64(buf.Height); s < scale {
		scale = s
	}
	w := int(float64(buf.Width) * scale)
	h := int(float64(buf.Height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), buf.ToRGBA(), buf.ToRGBA().Bounds(), draw.Src, nil)

	dc := gg.NewContext(size, size)
	dc.SetColor(color.Black)
	dc.Clear()
	dc.DrawImage(scaled, (size-w)/2, (size-h)/2)

	var out bytes.Buffer
	if err := png.Encode(&out, dc.Image()); err != nil {
		return nil, fmt.Errorf("ggthumb: encode: %w", err)
	}
	return out.Bytes(), nil
}
