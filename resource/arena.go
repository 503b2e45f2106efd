package resource

import (
	"errors"
	"fmt"
)

const DefaultArenaSize = 1024 * 1024

var ErrArenaFull = errors.New("not enough arena headroom")

// Region - Offset/length pair into the arena. The zero Region is empty.
type Region struct {
	Offset int
	Length int
}

func (r Region) End() int { return r.Offset + r.Length }

// Arena - One buffer shared by two allocators. Code, data and sounds are
// taken from the bottom going up, shapes from the top going down. The
// forward cursor never passes the backward one.
type Arena struct {
	buf      []uint8
	forward  int
	mark     int
	backward int
}

func NewArena(size int) *Arena {
	return &Arena{
		buf:      make([]uint8, size),
		backward: size,
	}
}

func (a *Arena) Size() int     { return len(a.buf) }
func (a *Arena) Forward() int  { return a.forward }
func (a *Arena) Backward() int { return a.backward }
func (a *Arena) Headroom() int { return a.backward - a.forward }

func (a *Arena) Bytes(r Region) []uint8 {
	return a.buf[r.Offset:r.End():r.End()]
}

func (a *Arena) check() {
	if a.forward > a.backward {
		panic(fmt.Sprintf("arena cursors crossed: forward 0x%x backward 0x%x", a.forward, a.backward))
	}
}

func (a *Arena) AllocForward(n int) (Region, error) {
	if n > a.Headroom() {
		return Region{}, fmt.Errorf("%w: need 0x%x have 0x%x", ErrArenaFull, n, a.Headroom())
	}
	r := Region{Offset: a.forward, Length: n}
	a.forward += n
	a.check()
	return r, nil
}

func (a *Arena) AllocBackward(n int) (Region, error) {
	if n > a.Headroom() {
		return Region{}, fmt.Errorf("%w: need 0x%x have 0x%x", ErrArenaFull, n, a.Headroom())
	}
	a.backward -= n
	a.check()
	return Region{Offset: a.backward, Length: n}, nil
}

// Peek - Region the next allocation of n bytes from the chosen end would
// return, without moving any cursor. Used for staging data that may turn out
// to be unusable, and for bitmaps which are never kept.
func (a *Arena) Peek(n int, fromTop bool) (Region, error) {
	if n > a.Headroom() {
		return Region{}, fmt.Errorf("%w: need 0x%x have 0x%x", ErrArenaFull, n, a.Headroom())
	}
	if fromTop {
		return Region{Offset: a.backward - n, Length: n}, nil
	}
	return Region{Offset: a.forward, Length: n}, nil
}

// Mark - Records the forward cursor, RewindToMark drops everything
// allocated forward since.
func (a *Arena) Mark() { a.mark = a.forward }

func (a *Arena) RewindToMark() { a.forward = a.mark }

func (a *Arena) Reset() {
	a.forward = 0
	a.mark = 0
	a.backward = len(a.buf)
}
