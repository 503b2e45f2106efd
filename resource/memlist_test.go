package resource

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemlist(t *testing.T) {
	raw := []uint8{
		0x00, 0x04, 0xde, 0xad, 0xbe, 0xef, 0x02, 0x0d, 0x00, 0x00, 0x12, 0x34, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00,
		0x01, 0x05, 0x00, 0x00, 0x00, 0x00, 0x07, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x40,
		0xff,
	}

	entries, err := ParseMemlist(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{
		Status:       Unloaded,
		Type:         Bytecode,
		Rank:         2,
		Bank:         0x0d,
		BankOffset:   0x1234,
		PackedSize:   0x100,
		UnpackedSize: 0x200,
	}, entries[0])
	assert.True(t, entries[0].Packed())

	// Status stored on disk is ignored
	assert.Equal(t, Unloaded, entries[1].Status)
	assert.Equal(t, Shape, entries[1].Type)
	assert.Equal(t, uint32(0x10000), entries[1].BankOffset)
	assert.False(t, entries[1].Packed())
}

func TestParseMemlistWithoutTerminator(t *testing.T) {
	raw := EncodeMemlist([]Entry{{Type: Sound, Bank: 1}})
	entries, err := ParseMemlist(bytes.NewReader(raw[:recordSize]))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParseMemlistTruncated(t *testing.T) {
	raw := EncodeMemlist([]Entry{{Type: Sound, Bank: 1}})
	_, err := ParseMemlist(bytes.NewReader(raw[:recordSize-3]))
	assert.Error(t, err)
}

func TestParseMemlistTooManyEntries(t *testing.T) {
	raw := EncodeMemlist(make([]Entry, MaxEntries+1))
	_, err := ParseMemlist(bytes.NewReader(raw))
	assert.Error(t, err)

	raw = EncodeMemlist(make([]Entry, MaxEntries))
	entries, err := ParseMemlist(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Len(t, entries, MaxEntries)
}

func TestBankFile(t *testing.T) {
	assert.Equal(t, "BANK01", BankFile(1))
	assert.Equal(t, "BANK0D", BankFile(0x0d))
}

func TestLookupPart(t *testing.T) {
	p, err := LookupPart(PartWater)
	require.NoError(t, err)
	assert.Equal(t, Part{Palette: 0x1A, Code: 0x1B, Video1: 0x1C, Video2: 0x11}, p)
	assert.Equal(t, []int{0x1A, 0x1B, 0x1C, 0x11}, p.assets())

	p, _ = LookupPart(PartCopyProtection)
	assert.Equal(t, []int{0x14, 0x15, 0x16}, p.assets())

	_, err = LookupPart(15999)
	assert.ErrorIs(t, err, ErrInvalidPart)
	_, err = LookupPart(16010)
	assert.ErrorIs(t, err, ErrInvalidPart)

	assert.Len(t, AllParts(), 10)
	assert.Equal(t, "Water", PartWater.Name())
}
