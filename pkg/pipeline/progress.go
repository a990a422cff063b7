package pipeline

// Progress bands on the unified 0-100 scale. These are configuration
// constants for the whole pipeline, not per-call literals: extraction fills
// the first band, encoding the second, finalization the rest.
const (
	CaptureBandStart  = 0
	CaptureBandEnd    = 50
	EncodeBandStart   = 50
	EncodeBandEnd     = 95
	FinalizeBandStart = 95
	FinalizeBandEnd   = 100
)

// BandPercent maps a stage-local fraction in [0, 1] onto the unified scale
// for the band [start, end].
func BandPercent(start, end int, fraction float64) int {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return start + int(fraction*float64(end-start))
}
