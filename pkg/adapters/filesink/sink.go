// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"

	"github.com/user/gifclip/pkg/ports"
)

// swatchSize is the pixel size of one palette cell in the swatch image.
const swatchSize = 16

// Sink saves debug output to files under one base directory.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveRawFrame saves one captured frame as PNG data.
func (s *Sink) SaveRawFrame(index int, data []byte) error {
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

// SavePalette renders the palette as a 16-per-row swatch grid PNG.
func (s *Sink) SavePalette(palette color.Palette) error {
	cols := 16
	rows := (len(palette) + cols - 1) / cols
	img := image.NewRGBA(image.Rect(0, 0, cols*swatchSize, rows*swatchSize))
	for i, c := range palette {
		x := (i % cols) * swatchSize
		y := (i / cols) * swatchSize
		cell := image.Rect(x, y, x+swatchSize, y+swatchSize)
		draw.Draw(img, cell, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "palette.png"), buf.Bytes())
}

// SaveCaptureJSON saves capture metadata as JSON.
func (s *Sink) SaveCaptureJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "capture.json"), data)
}

// SaveGIF saves the assembled GIF binary.
func (s *Sink) SaveGIF(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "output.gif"), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
