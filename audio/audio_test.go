package audio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWithHeader(loopStartWords, loopLenWords uint16, body int) []uint8 {
	data := make([]uint8, headerSize+body)
	binary.BigEndian.PutUint16(data[0:], loopStartWords)
	binary.BigEndian.PutUint16(data[2:], loopLenWords)
	for i := 0; i < body; i++ {
		data[headerSize+i] = uint8(i)
	}
	return data
}

var cacheTests = []struct {
	name      string
	data      []uint8
	format    Format
	length    int
	loopStart int
	loopLen   int
}{
	{"one shot", sampleWithHeader(10, 0, 40), PCMWithHeader, 20, 0, 0},
	{"looped", sampleWithHeader(4, 6, 40), PCMWithHeader, 20, 8, 12},
	{"header longer than data", sampleWithHeader(10, 10, 16), PCMWithHeader, 16, 0, 0},
	{"no header", []uint8{1, 2, 3}, RawPCM, 3, 0, 0},
	{"truncated header", []uint8{1, 2}, PCMWithHeader, 0, 0, 0},
}

func TestCacheParsesHeader(t *testing.T) {
	for _, tt := range cacheTests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache(nil)
			s := c.Cache(1, tt.data, tt.format)

			assert.Len(t, s.Data, tt.length)
			assert.Equal(t, tt.loopStart, s.LoopStart)
			assert.Equal(t, tt.loopLen, s.LoopLen)
		})
	}
}

func TestCacheReturnsExistingSound(t *testing.T) {
	c := NewCache(nil)
	first := c.Cache(7, sampleWithHeader(2, 0, 4), PCMWithHeader)
	second := c.Cache(7, []uint8{9, 9, 9}, RawPCM)

	assert.Same(t, first, second)
	assert.Same(t, first, c.Lookup(7))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Nil(t, c.Lookup(7))
	assert.Zero(t, c.Len())
}

func TestFrequencyTable(t *testing.T) {
	f, ok := Frequency(0)
	assert.True(t, ok)
	assert.Equal(t, 0x0CFF, f)

	f, ok = Frequency(39)
	assert.True(t, ok)
	assert.Equal(t, 0x7BBD, f)

	_, ok = Frequency(40)
	assert.False(t, ok)

	assert.Equal(t, 7159092/856, NoteFrequency(428))
	assert.Zero(t, NoteFrequency(0))
}

type row [Channels][2]uint16

func buildModule(delay uint16, instruments map[int][2]uint16, orders []uint8, patterns [][]row) []uint8 {
	data := make([]uint8, patternOffset+len(patterns)*patternSize)
	binary.BigEndian.PutUint16(data, delay)
	for slot, inst := range instruments {
		binary.BigEndian.PutUint16(data[2+slot*4:], inst[0])
		binary.BigEndian.PutUint16(data[4+slot*4:], inst[1])
	}
	binary.BigEndian.PutUint16(data[orderCountOffset:], uint16(len(orders)))
	copy(data[orderTableOffset:], orders)
	for p, rows := range patterns {
		for r, notes := range rows {
			for ch, n := range notes {
				at := patternOffset + p*patternSize + r*rowSize + ch*4
				binary.BigEndian.PutUint16(data[at:], n[0])
				binary.BigEndian.PutUint16(data[at+2:], n[1])
			}
		}
	}
	return data
}

func TestSequencerPlaysRows(t *testing.T) {
	rec := &Recorder{}
	cache := NewCache(nil)
	cache.Cache(0x20, sampleWithHeader(8, 0, 16), PCMWithHeader)

	var marks []int16
	seq := NewSequencer(rec, cache, nil)
	seq.OnMark(func(v int16) { marks = append(marks, v) })

	mod := buildModule(7050, map[int][2]uint16{0: {0x20, 40}}, []uint8{0}, [][]row{{
		{{428, 0x1000}, {noteMark, 3}, {0, 0}, {0, 0}},
		{{428, 0x1505}, {0, 0}, {noteStop, 0}, {0, 0}},
		{{428, 0x1632}, {0, 0}, {0, 0}, {0, 0}},
	}})
	require.NoError(t, seq.Load(mod, 0, 0))
	assert.Equal(t, 60*time.Millisecond, seq.Period())

	seq.Start()
	seq.Advance(59 * time.Millisecond)
	assert.Empty(t, rec.Calls())

	seq.Advance(121 * time.Millisecond)
	assert.Equal(t, []int16{3}, marks)
	assert.Equal(t, []Call{
		{Op: OpSetVolume, Channel: 0, Volume: 40},
		{Op: OpPlay, Channel: 0, SoundID: 0x20, Frequency: NoteFrequency(428), Volume: 40},
		{Op: OpSetVolume, Channel: 0, Volume: 45},
		{Op: OpPlay, Channel: 0, SoundID: 0x20, Frequency: NoteFrequency(428), Volume: 45},
		{Op: OpStop, Channel: 2},
		{Op: OpSetVolume, Channel: 0, Volume: 0},
		{Op: OpPlay, Channel: 0, SoundID: 0x20, Frequency: NoteFrequency(428), Volume: 0},
	}, rec.Calls())
}

func TestSequencerStopsAfterLastOrder(t *testing.T) {
	seq := NewSequencer(&Recorder{}, NewCache(nil), nil)
	mod := buildModule(118, nil, []uint8{0, 0}, [][]row{{}})
	require.NoError(t, seq.Load(mod, 0, 0))

	seq.Start()
	rows := patternSize / rowSize
	seq.Advance(time.Duration(rows) * seq.Period())
	assert.True(t, seq.Playing())
	assert.Equal(t, 1, seq.Order())

	seq.Advance(time.Duration(rows) * seq.Period())
	assert.False(t, seq.Playing())
}

func TestSequencerRejectsShortData(t *testing.T) {
	seq := NewSequencer(NullMixer{}, NewCache(nil), nil)
	assert.ErrorIs(t, seq.Load(make([]uint8, 10), 0, 0), ErrNotModule)
}

func TestSequencerUnknownInstrumentIsSilent(t *testing.T) {
	rec := &Recorder{}
	seq := NewSequencer(rec, NewCache(nil), nil)
	mod := buildModule(7050, map[int][2]uint16{0: {0x55, 63}}, []uint8{0}, [][]row{{
		{{428, 0x1000}, {0, 0}, {0, 0}, {0, 0}},
	}})
	require.NoError(t, seq.Load(mod, 0, 0))
	seq.Start()
	seq.Advance(seq.Period())

	assert.Empty(t, rec.Calls())
}
