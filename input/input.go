package input

import (
	"sync"
	"time"
)

type Mask uint16

const (
	Right    Mask = 0b0000_0000_0001
	Left     Mask = 0b0000_0000_0010
	Down     Mask = 0b0000_0000_0100
	Up       Mask = 0b0000_0000_1000
	Action   Mask = 0b0000_0001_0000
	Jump     Mask = 0b0000_0010_0000
	Pause    Mask = 0b0000_0100_0000
	Password Mask = 0b0000_1000_0000

	// Special - Keys acted on by the engine rather than scripts
	Special = Pause | Password
)

func (m Mask) Has(bits Mask) bool { return m&bits != 0 }

// State - One sample of the controls. Char is the last typed character, for
// the password screen.
type State struct {
	Mask Mask
	Char uint8
}

type Source interface {
	Sample() State
}

// None - Source with nothing pressed.
type None struct{}

func (None) Sample() State { return State{} }

// Edges - Filters the special keys down to the samples on which they go
// from released to pressed. Other keys pass through as held.
type Edges struct {
	prev Mask
}

func (e *Edges) Filter(m Mask) Mask {
	pressed := m &^ e.prev & Special
	e.prev = m
	return m&^Special | pressed
}

// Latch - Key state fed from a terminal, which reports presses and repeats
// but no releases. A press counts as held for the hold duration after it
// was last seen. Special keys and typed characters are reported once.
type Latch struct {
	mu      sync.Mutex
	hold    time.Duration
	now     func() time.Time
	seen    map[Mask]time.Time
	pending Mask
	char    uint8
}

func NewLatch(hold time.Duration) *Latch {
	return &Latch{hold: hold, now: time.Now, seen: map[Mask]time.Time{}}
}

func (l *Latch) Press(m Mask) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m.Has(Special) {
		l.pending |= m & Special
	}
	t := l.now()
	for bit := Right; bit <= Jump; bit <<= 1 {
		if m.Has(bit) {
			l.seen[bit] = t
		}
	}
}

// Release - Drops keys before their hold runs out, for front ends that do
// see releases.
func (l *Latch) Release(m Mask) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for bit := range l.seen {
		if m.Has(bit) {
			delete(l.seen, bit)
		}
	}
}

func (l *Latch) Type(ch uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.char = ch
}

func (l *Latch) Sample() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := State{Mask: l.pending, Char: l.char}
	l.pending = 0
	l.char = 0

	now := l.now()
	for bit, t := range l.seen {
		if now.Sub(t) < l.hold {
			s.Mask |= bit
		} else {
			delete(l.seen, bit)
		}
	}
	return s
}
