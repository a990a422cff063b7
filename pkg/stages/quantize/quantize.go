// Package quantize implements the shared-palette construction stage.
//
// One palette is built per run from a bounded, evenly-strided sample across
// all captured frames, then every frame is index-mapped against it. The
// palette is complete before any mapping begins; there are no incremental
// palette updates mid-run.
package quantize

import (
	"context"
	"fmt"
	"image/color"
	"sort"

	"github.com/user/gifclip/pkg/pipeline"
	"github.com/user/gifclip/pkg/ports"
)

// maxSamples caps the number of pixels sampled across the whole run so long
// clips don't bias the histogram toward later frames.
const maxSamples = 10000

// Quantizer names accepted in QuantizeInput.
const (
	QuantizerHistogram = "histogram"
	QuantizerMedianCut = "mediancut"
)

// Stage builds the shared palette for a run.
type Stage struct {
	logger ports.Logger
}

// New creates a new quantize stage.
func New(logger ports.Logger) *Stage {
	return &Stage{logger: logger.WithComponent("quantize")}
}

// Execute derives the palette from the sampled frames.
func (s *Stage) Execute(ctx context.Context, input pipeline.QuantizeInput) (pipeline.QuantizeResult, error) {
	result := pipeline.QuantizeResult{}

	if len(input.Frames) == 0 {
		return result, fmt.Errorf("quantize: %w", pipeline.ErrEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("quantize: %w", pipeline.ErrCancelled)
	}

	target := input.PaletteSize
	if target <= 0 || target > 256 {
		target = 256
	}

	samples := collectSamples(input.Frames)
	s.logger.Debug("Sampled %d pixels across %d frames", len(samples), len(input.Frames))

	var palette color.Palette
	distinct := 0
	switch input.Quantizer {
	case QuantizerMedianCut:
		palette, distinct = medianCutPalette(samples, target)
	case QuantizerHistogram, "":
		palette, distinct = histogramPalette(samples, target)
	default:
		return result, fmt.Errorf("quantize: unknown quantizer %q: %w", input.Quantizer, pipeline.ErrInvalidInput)
	}

	palette = padToPowerOfTwo(palette, target)
	s.logger.Debug("Palette built: %d entries (%d distinct sampled colors)", len(palette), distinct)

	result.Palette = palette
	result.DistinctColors = distinct
	return result, nil
}

// collectSamples gathers up to maxSamples pixels with one even stride over
// the concatenated pixel data of all frames, so every frame contributes
// proportionally.
func collectSamples(frames []pipeline.Frame) []color.RGBA {
	total := 0
	for _, f := range frames {
		total += f.Buffer.Width * f.Buffer.Height
	}
	if total == 0 {
		return nil
	}

	stride := total / maxSamples
	if stride < 1 {
		stride = 1
	}

	samples := make([]color.RGBA, 0, total/stride+1)
	offset := 0 // global pixel position of the frame's first pixel
	nextPick := 0
	for _, f := range frames {
		buf := f.Buffer
		count := buf.Width * buf.Height
		for nextPick < offset+count {
			local := nextPick - offset
			x := local % buf.Width
			y := local / buf.Width
			r, g, b, a := buf.RGBAAt(x, y)
			samples = append(samples, color.RGBA{R: r, G: g, B: b, A: a})
			nextPick += stride
		}
		offset += count
	}
	return samples
}

// histogramPalette picks the N most frequent exact RGBA values. Ordering is
// deterministic: by descending frequency, then by packed RGBA value so equal
// frequencies don't depend on map iteration order.
func histogramPalette(samples []color.RGBA, target int) (color.Palette, int) {
	type entry struct {
		key   uint32
		count int
	}

	hist := make(map[uint32]int)
	for _, c := range samples {
		hist[packRGBA(c)]++
	}

	entries := make([]entry, 0, len(hist))
	for k, n := range hist {
		entries = append(entries, entry{key: k, count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})

	n := len(entries)
	if n > target {
		n = target
	}
	palette := make(color.Palette, 0, n)
	for _, e := range entries[:n] {
		palette = append(palette, unpackRGBA(e.key))
	}
	return palette, len(entries)
}

// padToPowerOfTwo pads the palette with opaque black up to the next power of
// two >= the requested size, within [2, 256]. GIF color tables must be sized
// as powers of two.
func padToPowerOfTwo(palette color.Palette, target int) color.Palette {
	want := len(palette)
	if want < target {
		want = target
	}
	size := 2
	for size < want {
		size <<= 1
	}
	for len(palette) < size {
		palette = append(palette, color.RGBA{A: 255})
	}
	return palette
}

// MapFrame maps one frame to palette indices by nearest color. The cache
// carries exact-color lookups across frames of one run; the palette is
// read-only so sharing it is safe.
func MapFrame(buf *ports.PixelBuffer, palette color.Palette, cache map[uint32]uint8) []uint8 {
	indices := make([]uint8, buf.Width*buf.Height)
	i := 0
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r, g, b, a := buf.RGBAAt(x, y)
			c := color.RGBA{R: r, G: g, B: b, A: a}
			key := packRGBA(c)
			idx, ok := cache[key]
			if !ok {
				idx = nearestIndex(palette, c)
				cache[key] = idx
			}
			indices[i] = idx
			i++
		}
	}
	return indices
}

// nearestIndex returns the palette entry minimizing squared Euclidean
// distance over (R, G, B, A). Ties break to the lowest index.
func nearestIndex(palette color.Palette, c color.RGBA) uint8 {
	best := 0
	bestDist := int64(1) << 62
	for i, p := range palette {
		pr, pg, pb, pa := p.RGBA()
		dr := int64(c.R) - int64(pr>>8)
		dg := int64(c.G) - int64(pg>>8)
		db := int64(c.B) - int64(pb>>8)
		da := int64(c.A) - int64(pa>>8)
		dist := dr*dr + dg*dg + db*db + da*da
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return uint8(best)
}

func packRGBA(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func unpackRGBA(v uint32) color.RGBA {
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
}
