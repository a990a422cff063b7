package gifenc

import (
	"bytes"
)

// GIF-variant LZW: LSB-first bit packing, a clear code at 1<<minCodeSize and
// an end-of-information code right after it, adaptive code width growing from
// minCodeSize+1 up to 12 bits, and a dictionary reset via the clear code when
// the 4096-entry table fills. This is the one compression strategy the
// package uses; output is deterministic for identical input.

const maxCodeWidth = 12

type bitWriter struct {
	out  bytes.Buffer
	bits uint32
	n    uint // bits currently buffered
}

func (bw *bitWriter) write(code uint32, width uint) {
	bw.bits |= code << bw.n
	bw.n += width
	for bw.n >= 8 {
		bw.out.WriteByte(byte(bw.bits))
		bw.bits >>= 8
		bw.n -= 8
	}
}

func (bw *bitWriter) flush() {
	if bw.n > 0 {
		bw.out.WriteByte(byte(bw.bits))
		bw.bits = 0
		bw.n = 0
	}
}

// compress LZW-compresses a palette-index stream with the given minimum code
// size. The result is raw compressed bytes, not yet chunked into sub-blocks.
func compress(indices []uint8, minCodeSize int) []byte {
	clear := uint32(1) << uint(minCodeSize)
	eoi := clear + 1

	bw := &bitWriter{}
	width := uint(minCodeSize + 1)

	// Dictionary keys pack (prefix code, next index) into one int; prefix
	// codes stay below 1<<12 so the key is collision free.
	dict := make(map[uint32]uint32)
	next := eoi + 1

	bw.write(clear, width)

	if len(indices) == 0 {
		bw.write(eoi, width)
		bw.flush()
		return bw.out.Bytes()
	}

	prefix := uint32(indices[0])
	for _, idx := range indices[1:] {
		k := uint32(idx)
		key := prefix<<8 | k
		if code, ok := dict[key]; ok {
			prefix = code
			continue
		}

		bw.write(prefix, width)
		dict[key] = next
		next++

		// Grow the code width once the next code no longer fits.
		if next > 1<<width && width < maxCodeWidth {
			width++
		}

		// Table full: reset the dictionary and start over at the
		// initial width.
		if next >= 1<<maxCodeWidth {
			bw.write(clear, width)
			dict = make(map[uint32]uint32)
			next = eoi + 1
			width = uint(minCodeSize + 1)
		}

		prefix = k
	}

	bw.write(prefix, width)
	bw.write(eoi, width)
	bw.flush()
	return bw.out.Bytes()
}
