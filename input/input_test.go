package input

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEdgesReportSpecialKeysOnce(t *testing.T) {
	var e Edges

	assert.Equal(t, Left|Pause, e.Filter(Left|Pause))
	assert.Equal(t, Left, e.Filter(Left|Pause))
	assert.Equal(t, Mask(0), e.Filter(0))
	assert.Equal(t, Pause|Password, e.Filter(Pause|Password))
	assert.Equal(t, Action, e.Filter(Action|Password))
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLatch(hold time.Duration) (*Latch, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	l := NewLatch(hold)
	l.now = clock.now
	return l, clock
}

func TestLatchHoldsKeys(t *testing.T) {
	l, clock := newTestLatch(100 * time.Millisecond)

	l.Press(Right)
	assert.Equal(t, Right, l.Sample().Mask)

	clock.t = clock.t.Add(50 * time.Millisecond)
	l.Press(Up)
	assert.Equal(t, Right|Up, l.Sample().Mask)

	clock.t = clock.t.Add(60 * time.Millisecond)
	assert.Equal(t, Up, l.Sample().Mask)

	// repeats keep the key down
	l.Press(Up)
	clock.t = clock.t.Add(90 * time.Millisecond)
	assert.Equal(t, Up, l.Sample().Mask)

	l.Release(Up)
	assert.Equal(t, Mask(0), l.Sample().Mask)
}

func TestLatchReportsSpecialKeysAndCharsOnce(t *testing.T) {
	l, _ := newTestLatch(time.Second)

	l.Press(Pause | Action)
	l.Type('K')
	s := l.Sample()
	assert.Equal(t, Pause|Action, s.Mask)
	assert.Equal(t, uint8('K'), s.Char)

	s = l.Sample()
	assert.Equal(t, Action, s.Mask)
	assert.Zero(t, s.Char)
}

func TestLatchIsSafeForConcurrentUse(t *testing.T) {
	l := NewLatch(time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Press(Mask(1) << (j % 6))
				l.Type(uint8('A' + i))
				l.Sample()
			}
		}(i)
	}
	wg.Wait()
}

func TestNoneSource(t *testing.T) {
	var src Source = None{}
	assert.Equal(t, State{}, src.Sample())
}
