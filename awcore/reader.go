package awcore

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrOutOfRange = errors.New("read past end of buffer")

// Reader - Sequential big-endian reads over a byte buffer. Reads that run off
// the end of the buffer return zero and latch an error which stays set until
// the cursor is moved with Seek.
type Reader struct {
	buf []uint8
	pos int
	err error
}

func NewReader(buf []uint8, pos int) Reader {
	return Reader{buf: buf, pos: pos}
}

func (r *Reader) Pos() int       { return r.pos }
func (r *Reader) Len() int       { return len(r.buf) }
func (r *Reader) Bytes() []uint8 { return r.buf }
func (r *Reader) Err() error     { return r.err }

func (r *Reader) Seek(pos int) {
	r.pos = pos
	r.err = nil
}

// At - Copy of the reader positioned at pos, sharing the same buffer.
func (r Reader) At(pos int) Reader {
	return Reader{buf: r.buf, pos: pos}
}

func (r *Reader) Skip(n int) {
	r.pos += n
}

func (r *Reader) fail(n int) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %d byte(s) at 0x%x, buffer length 0x%x", ErrOutOfRange, n, r.pos, len(r.buf))
	}
}

func (r *Reader) inRange(n int) bool {
	return r.pos >= 0 && r.pos+n <= len(r.buf)
}

func (r *Reader) U8() uint8 {
	if !r.inRange(1) {
		r.fail(1)
		r.pos++
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *Reader) S8() int8 {
	return int8(r.U8())
}

func (r *Reader) U16() uint16 {
	if !r.inRange(2) {
		r.fail(2)
		r.pos += 2
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v
}

func (r *Reader) S16() int16 {
	return int16(r.U16())
}

func (r *Reader) U32() uint32 {
	if !r.inRange(4) {
		r.fail(4)
		r.pos += 4
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v
}

// Peek - Byte at the cursor without advancing, zero when out of range.
func (r *Reader) Peek() uint8 {
	if !r.inRange(1) {
		return 0
	}
	return r.buf[r.pos]
}

func U16At(buf []uint8, offset int) (uint16, bool) {
	if offset < 0 || offset+2 > len(buf) {
		return 0, false
	}
	return binary.BigEndian.Uint16(buf[offset : offset+2]), true
}

func U32At(buf []uint8, offset int) (uint32, bool) {
	if offset < 0 || offset+4 > len(buf) {
		return 0, false
	}
	return binary.BigEndian.Uint32(buf[offset : offset+4]), true
}
