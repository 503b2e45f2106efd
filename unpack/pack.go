package unpack

import "encoding/binary"

const (
	maxOffset      = 4095
	maxMatch       = 256
	maxShortRun    = 8
	maxLongRun     = 264
	shortRefOffset = 1 << 8
	ref3Offset     = 1 << 9
	ref4Offset     = 1 << 10
)

type bitWriter struct {
	bits []uint8
}

// put - Appends the low n bits of v, most significant first, in the order
// the decoder will consume them.
func (w *bitWriter) put(v int, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, uint8(v>>i)&1)
	}
}

// words - Control words in consumption order. The first word carries the
// leftover bits under a sentinel, every following word is fully used.
func (w *bitWriter) words() []uint32 {
	head := len(w.bits) % 32
	out := []uint32{1 << head}
	for i := 0; i < head; i++ {
		out[0] |= uint32(w.bits[i]) << i
	}
	for i := head; i < len(w.bits); i += 32 {
		var word uint32
		for b := 0; b < 32; b++ {
			word |= uint32(w.bits[i+b]) << b
		}
		out = append(out, word)
	}
	return out
}

func (w *bitWriter) literals(run []uint8) {
	for len(run) > 0 {
		n := min(len(run), maxLongRun)
		if n > maxShortRun {
			w.put(1, 1)
			w.put(3, 2)
			w.put(n-9, 8)
		} else {
			w.put(0, 2)
			w.put(n-1, 3)
		}
		for _, b := range run[:n] {
			w.put(int(b), 8)
		}
		run = run[n:]
	}
}

func encodable(length int, offset int) bool {
	return length >= 3 || (length == 2 && offset < shortRefOffset)
}

func (w *bitWriter) reference(length int, offset int) {
	switch {
	case length == 2:
		w.put(1, 2)
		w.put(offset, 8)
	case length == 3 && offset < ref3Offset:
		w.put(1, 1)
		w.put(0, 2)
		w.put(offset, 9)
	case length == 4 && offset < ref4Offset:
		w.put(1, 1)
		w.put(1, 2)
		w.put(offset, 10)
	default:
		w.put(1, 1)
		w.put(2, 2)
		w.put(length-1, 8)
		w.put(offset, 12)
	}
}

// longestMatch - Output is produced backward so a match at p copies from the
// already emitted bytes above it.
func longestMatch(data []uint8, p int) (int, int) {
	bestLen, bestOffset := 0, 0
	limit := min(maxMatch, p+1)
	for offset := 1; offset <= maxOffset && p+offset < len(data); offset++ {
		l := 0
		for l < limit && data[p-l] == data[p-l+offset] {
			l++
		}
		if l > bestLen {
			bestLen, bestOffset = l, offset
			if l == limit {
				break
			}
		}
	}
	return bestLen, bestOffset
}

// Pack - Encodes data into a stream Unpack accepts. Greedy matching, meant for
// fixtures and tooling rather than ratio.
func Pack(data []uint8) []uint8 {
	w := bitWriter{}

	if len(data) == 0 {
		w.put(0, 5)
	}

	var run []uint8
	for p := len(data) - 1; p >= 0; {
		length, offset := longestMatch(data, p)
		if encodable(length, offset) {
			w.literals(run)
			run = run[:0]
			w.reference(length, offset)
			p -= length
			continue
		}
		run = append(run, data[p])
		p--
	}
	w.literals(run)

	words := w.words()
	var crc uint32
	for _, word := range words {
		crc ^= word
	}

	out := make([]uint8, 0, 4*len(words)+8)
	for i := len(words) - 1; i >= 1; i-- {
		out = binary.BigEndian.AppendUint32(out, words[i])
	}
	out = binary.BigEndian.AppendUint32(out, words[0])
	out = binary.BigEndian.AppendUint32(out, crc)
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	return out
}
