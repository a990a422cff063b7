package quantize

import (
	"image"
	"image/color"

	"github.com/andybons/gogif"
)

// medianCutPalette derives the palette with gogif's median-cut quantizer,
// run over a strip image holding the same sample set the histogram strategy
// uses. Both strategies therefore see identical pixels and stay deterministic
// across runs.
func medianCutPalette(samples []color.RGBA, target int) (color.Palette, int) {
	distinct := make(map[uint32]struct{}, len(samples))
	for _, c := range samples {
		distinct[packRGBA(c)] = struct{}{}
	}

	if len(samples) == 0 {
		return color.Palette{}, 0
	}

	// Median cut on fewer colors than requested degenerates; the exact
	// histogram is both cheaper and error-free then.
	if len(distinct) <= target {
		return histogramPalette(samples, target)
	}

	strip := image.NewRGBA(image.Rect(0, 0, len(samples), 1))
	for i, c := range samples {
		strip.SetRGBA(i, 0, c)
	}

	paletted := image.NewPaletted(strip.Bounds(), nil)
	q := &gogif.MedianCutQuantizer{NumColor: target}
	q.Quantize(paletted, strip.Bounds(), strip, image.Point{})

	return paletted.Palette, len(distinct)
}
