package vm

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

const (
	NumTasks = 64

	// Task positions with special meaning
	inactive   = 0xFFFF
	deactivate = 0xFFFE

	live = 0
	next = 1
)

// Tasks - Position and paused flag of every task, live and as requested for
// the next frame. Opcodes only ever write the next-frame copy.
type Tasks struct {
	pos    [2][NumTasks]uint16
	paused [2]*bitset.BitSet
}

func newTasks() *Tasks {
	t := &Tasks{paused: [2]*bitset.BitSet{bitset.New(NumTasks), bitset.New(NumTasks)}}
	t.reset()
	return t
}

// reset - Everything inactive and running except task 0, which starts at
// the top of the code segment.
func (t *Tasks) reset() {
	for i := range t.pos {
		for j := range t.pos[i] {
			t.pos[i][j] = inactive
		}
		t.paused[i].ClearAll()
	}
	t.pos[live][0] = 0
}

// apply - Moves the requested state into the live state.
func (t *Tasks) apply() {
	t.paused[next].Copy(t.paused[live])
	for i := range t.pos[next] {
		pos := t.pos[next][i]
		if pos == inactive {
			continue
		}
		if pos == deactivate {
			pos = inactive
		}
		t.pos[live][i] = pos
		t.pos[next][i] = inactive
	}
}

func (t *Tasks) runnable(i int) bool {
	return !t.paused[live].Test(uint(i)) && t.pos[live][i] != inactive
}

func (t *Tasks) Position(i int) uint16 { return t.pos[live][i] }
func (t *Tasks) Paused(i int) bool     { return t.paused[live].Test(uint(i)) }

func (t *Tasks) pausedWords() [2][]uint64 {
	return [2][]uint64{slices.Clone(t.paused[live].Words()), slices.Clone(t.paused[next].Words())}
}

func (t *Tasks) setPausedWords(words [2][]uint64) {
	for i := range words {
		t.paused[i].ClearAll()
		t.paused[i].InPlaceUnion(bitset.From(slices.Clone(words[i])))
	}
}
