// Package gifenc assembles GIF89a bitstreams byte by byte.
//
// The writer owns the full binary layout: header, logical screen descriptor,
// global color table, NETSCAPE2.0 looping extension, per-frame graphic
// control extension and image descriptor, LZW-compressed index data in
// 255-byte sub-blocks, and the trailer. All frames index one shared global
// palette; local color tables are never emitted.
package gifenc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

const (
	headerSignature = "GIF89a"

	extensionIntroducer   = 0x21
	graphicControlLabel   = 0xF9
	applicationLabel      = 0xFF
	imageSeparator        = 0x2C
	trailer               = 0x3B
	netscapeIdentifier    = "NETSCAPE2.0"
	flagGlobalColorTable  = 0x80
	flagTransparentPixel  = 0x01
	disposalKeep          = 1 // leave the previous frame in place
	maxColorTableEntries  = 256
	subBlockMaxLen        = 255
)

// Writer assembles one GIF89a bitstream. It is not safe for concurrent use.
type Writer struct {
	buf bytes.Buffer

	width       int
	height      int
	paletteCap  int // power of two in [2, 256]
	minCodeSize int

	frames int
	closed bool
}

// New creates a Writer and emits everything up to the first frame: header,
// logical screen descriptor, global color table and, if loopCount >= 0, the
// looping application extension (0 means loop forever).
func New(width, height int, palette color.Palette, loopCount int) (*Writer, error) {
	if width <= 0 || width > 0xFFFF || height <= 0 || height > 0xFFFF {
		return nil, fmt.Errorf("gifenc: bad canvas %dx%d", width, height)
	}
	if len(palette) == 0 || len(palette) > maxColorTableEntries {
		return nil, fmt.Errorf("gifenc: palette size %d out of range", len(palette))
	}

	w := &Writer{
		width:      width,
		height:     height,
		paletteCap: paletteCapacity(len(palette)),
	}
	w.minCodeSize = log2(w.paletteCap)
	if w.minCodeSize < 2 {
		w.minCodeSize = 2
	}

	w.writeHeader()
	w.writeLogicalScreenDescriptor()
	w.writeGlobalColorTable(palette)
	if loopCount >= 0 {
		w.writeLoopExtension(loopCount)
	}
	return w, nil
}

// WriteFrame appends one frame. The paletted image must match the canvas
// dimensions and index the palette the writer was created with. delayCs is
// the display delay in centiseconds and must be positive.
// transparentIndex < 0 disables transparency for the frame.
func (w *Writer) WriteFrame(pm *image.Paletted, delayCs, transparentIndex int) error {
	if w.closed {
		return fmt.Errorf("gifenc: writer already closed")
	}
	b := pm.Bounds()
	if b.Dx() != w.width || b.Dy() != w.height {
		return fmt.Errorf("gifenc: frame %dx%d does not match canvas %dx%d",
			b.Dx(), b.Dy(), w.width, w.height)
	}
	if delayCs <= 0 {
		return fmt.Errorf("gifenc: non-positive frame delay %d", delayCs)
	}

	w.writeGraphicControl(delayCs, transparentIndex)
	w.writeImageDescriptor()

	// Collapse the stride so the compressor sees one contiguous index
	// stream in row order.
	indices := pm.Pix
	if pm.Stride != w.width {
		indices = make([]uint8, 0, w.width*w.height)
		for y := 0; y < w.height; y++ {
			row := pm.Pix[y*pm.Stride : y*pm.Stride+w.width]
			indices = append(indices, row...)
		}
	}

	w.buf.WriteByte(byte(w.minCodeSize))
	compressed := compress(indices, w.minCodeSize)
	w.writeSubBlocks(compressed)
	w.buf.WriteByte(0x00) // block terminator

	w.frames++
	return nil
}

// Close writes the trailer and returns the complete bitstream. A writer with
// zero frames is an error; no partial binary is ever returned.
func (w *Writer) Close() ([]byte, error) {
	if w.closed {
		return nil, fmt.Errorf("gifenc: writer already closed")
	}
	if w.frames == 0 {
		return nil, fmt.Errorf("gifenc: no frames written")
	}
	w.closed = true
	w.buf.WriteByte(trailer)
	return w.buf.Bytes(), nil
}

func (w *Writer) writeHeader() {
	w.buf.WriteString(headerSignature)
}

func (w *Writer) writeLogicalScreenDescriptor() {
	w.writeUint16(uint16(w.width))
	w.writeUint16(uint16(w.height))

	sizeBits := byte(log2(w.paletteCap) - 1)
	packed := byte(flagGlobalColorTable) | sizeBits<<4 | sizeBits
	w.buf.WriteByte(packed)
	w.buf.WriteByte(0x00) // background color index
	w.buf.WriteByte(0x00) // pixel aspect ratio
}

func (w *Writer) writeGlobalColorTable(palette color.Palette) {
	for i := 0; i < w.paletteCap; i++ {
		if i < len(palette) {
			r, g, b, _ := palette[i].RGBA()
			w.buf.WriteByte(byte(r >> 8))
			w.buf.WriteByte(byte(g >> 8))
			w.buf.WriteByte(byte(b >> 8))
		} else {
			w.buf.Write([]byte{0x00, 0x00, 0x00})
		}
	}
}

func (w *Writer) writeLoopExtension(loopCount int) {
	w.buf.WriteByte(extensionIntroducer)
	w.buf.WriteByte(applicationLabel)
	w.buf.WriteByte(0x0B)
	w.buf.WriteString(netscapeIdentifier)
	w.buf.WriteByte(0x03) // sub-block size
	w.buf.WriteByte(0x01) // sub-block id
	w.writeUint16(uint16(loopCount))
	w.buf.WriteByte(0x00)
}

func (w *Writer) writeGraphicControl(delayCs, transparentIndex int) {
	w.buf.WriteByte(extensionIntroducer)
	w.buf.WriteByte(graphicControlLabel)
	w.buf.WriteByte(0x04)

	packed := byte(disposalKeep << 2)
	transIdx := byte(0)
	if transparentIndex >= 0 {
		packed |= flagTransparentPixel
		transIdx = byte(transparentIndex)
	}
	w.buf.WriteByte(packed)
	w.writeUint16(uint16(delayCs))
	w.buf.WriteByte(transIdx)
	w.buf.WriteByte(0x00)
}

func (w *Writer) writeImageDescriptor() {
	w.buf.WriteByte(imageSeparator)
	w.writeUint16(0) // left
	w.writeUint16(0) // top
	w.writeUint16(uint16(w.width))
	w.writeUint16(uint16(w.height))
	w.buf.WriteByte(0x00) // no local color table, no interlace
}

func (w *Writer) writeSubBlocks(data []byte) {
	for len(data) > 0 {
		n := len(data)
		if n > subBlockMaxLen {
			n = subBlockMaxLen
		}
		w.buf.WriteByte(byte(n))
		w.buf.Write(data[:n])
		data = data[n:]
	}
}

func (w *Writer) writeUint16(v uint16) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
}

// paletteCapacity returns the next power of two >= n, clamped to [2, 256].
func paletteCapacity(n int) int {
	c := 2
	for c < n {
		c <<= 1
	}
	return c
}

func log2(n int) int {
	b := 0
	for 1<<b < n {
		b++
	}
	return b
}
