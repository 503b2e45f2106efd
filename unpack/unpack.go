package unpack

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrSize     = errors.New("unpacked size exceeds destination")
	ErrCorrupt  = errors.New("corrupt packed stream")
	ErrChecksum = errors.New("packed stream checksum mismatch")
)

// trailerSize - initial bit word, checksum and unpacked size
const trailerSize = 12

type decoder struct {
	src  []uint8
	in   int // offset of the next control word, walks backward
	dst  []uint8
	out  int // offset of the next output byte, walks backward
	size int
	crc  uint32
	bits uint32
	err  error
}

func (d *decoder) word() uint32 {
	if d.in < 0 {
		d.err = ErrCorrupt
		return 0
	}
	w := binary.BigEndian.Uint32(d.src[d.in : d.in+4])
	d.in -= 4
	return w
}

func (d *decoder) nextBit() uint32 {
	carry := d.bits & 1
	d.bits >>= 1
	if d.bits == 0 {
		w := d.word()
		d.crc ^= w
		carry = w & 1
		d.bits = 0x80000000 | w>>1
	}
	return carry
}

// getBits - Reads n bits, most significant first.
func (d *decoder) getBits(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		v = v<<1 | int(d.nextBit())
	}
	return v
}

func (d *decoder) claim(count int) int {
	d.size -= count
	if d.size < 0 {
		count += d.size
		d.size = 0
	}
	return count
}

func (d *decoder) literal(numBits int, base int) {
	count := d.claim(d.getBits(numBits) + base + 1)
	for i := 0; i < count; i++ {
		d.dst[d.out-i] = uint8(d.getBits(8))
	}
	d.out -= count
}

func (d *decoder) reference(numBits int, count int) {
	count = d.claim(count)
	offset := d.getBits(numBits)
	for i := 0; i < count; i++ {
		from := d.out - i + offset
		if from >= len(d.dst) {
			d.err = fmt.Errorf("%w: back reference 0x%x beyond output end", ErrCorrupt, offset)
			return
		}
		d.dst[d.out-i] = d.dst[from]
	}
	d.out -= count
}

// Unpack - Decodes a bytekiller stream. The stream is consumed from its end:
// the last three big-endian words are the unpacked size, the checksum and the
// first control word. Output is built backward from dst[size-1].
//
// src and dst may overlap (the resource loader unpacks in place), the
// control stream is copied before decoding starts.
func Unpack(dst []uint8, src []uint8) (int, error) {
	if len(src) < trailerSize || len(src)%4 != 0 {
		return 0, fmt.Errorf("%w: packed length %d", ErrCorrupt, len(src))
	}

	d := decoder{
		src: append([]uint8(nil), src...),
	}
	d.in = len(d.src) - 4
	d.size = int(d.word())
	if d.size > len(dst) {
		return 0, fmt.Errorf("%w: unpacked size %d, buffer size %d", ErrSize, d.size, len(dst))
	}
	total := d.size
	d.dst = dst[:total]
	d.out = total - 1
	d.crc = d.word()
	d.bits = d.word()
	d.crc ^= d.bits

	for {
		if d.nextBit() == 0 {
			if d.nextBit() == 0 {
				d.literal(3, 0)
			} else {
				d.reference(8, 2)
			}
		} else {
			switch d.getBits(2) {
			case 3:
				d.literal(8, 8)
			case 2:
				d.reference(12, d.getBits(8)+1)
			case 1:
				d.reference(10, 4)
			case 0:
				d.reference(9, 3)
			}
		}

		if d.err != nil {
			return 0, d.err
		}
		if d.size <= 0 {
			break
		}
	}

	if d.crc != 0 {
		return total, fmt.Errorf("%w: residue 0x%08x", ErrChecksum, d.crc)
	}
	return total, nil
}

// UnpackedSize - Size recorded in the trailer of a packed stream.
func UnpackedSize(src []uint8) (int, bool) {
	if len(src) < trailerSize {
		return 0, false
	}
	return int(binary.BigEndian.Uint32(src[len(src)-4:])), true
}
