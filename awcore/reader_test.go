package awcore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialReads(t *testing.T) {
	r := NewReader([]uint8{0x12, 0xff, 0x80, 0x01, 0xde, 0xad, 0xbe, 0xef}, 0)

	assert.Equal(t, uint8(0x12), r.U8())
	assert.Equal(t, int8(-1), r.S8())
	assert.Equal(t, int16(-32767), r.S16())
	assert.Equal(t, uint32(0xdeadbeef), r.U32())
	assert.Equal(t, 8, r.Pos())
	require.NoError(t, r.Err())
}

func TestReadPastEndLatchesError(t *testing.T) {
	r := NewReader([]uint8{0x01}, 0)

	assert.Equal(t, uint16(0), r.U16())
	require.Error(t, r.Err())
	assert.True(t, errors.Is(r.Err(), ErrOutOfRange))

	// Error sticks even though this read would be in range after a reseek
	assert.Equal(t, uint8(0), r.U8())
	require.Error(t, r.Err())

	r.Seek(0)
	require.NoError(t, r.Err())
	assert.Equal(t, uint8(0x01), r.U8())
}

func TestNegativePositionIsOutOfRange(t *testing.T) {
	r := NewReader([]uint8{0x01, 0x02}, -1)
	assert.Equal(t, uint8(0), r.U8())
	assert.ErrorIs(t, r.Err(), ErrOutOfRange)
}

func TestAtSharesBufferWithIndependentCursor(t *testing.T) {
	r := NewReader([]uint8{0xaa, 0xbb, 0xcc}, 0)
	r.U8()

	child := r.At(2)
	assert.Equal(t, uint8(0xcc), child.U8())
	assert.Equal(t, 1, r.Pos())
	assert.Equal(t, uint8(0xbb), r.Peek())
}

func TestWordHelpers(t *testing.T) {
	buf := []uint8{0x00, 0x01, 0x02, 0x03, 0x04}

	v, ok := U16At(buf, 3)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x0304), v)

	_, ok = U16At(buf, 4)
	assert.False(t, ok)

	w, ok := U32At(buf, 1)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x01020304), w)
}
