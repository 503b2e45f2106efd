package vm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock(0)
	assert.Equal(t, 20*time.Millisecond, c.Period())

	require.NoError(t, c.Wait(context.Background(), 3))
	require.NoError(t, c.Wait(context.Background(), -1))
	c.Advance(2)
	assert.Equal(t, int64(5), c.Ticks())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Wait(ctx, 1), context.Canceled)
	assert.Equal(t, int64(5), c.Ticks())
}

func TestRealClockWaits(t *testing.T) {
	c := NewRealClock(1000)
	assert.Equal(t, time.Millisecond, c.Period())

	before := c.Ticks()
	require.NoError(t, c.Wait(context.Background(), 2))
	assert.GreaterOrEqual(t, c.Ticks()-before, int64(2))
}

func TestRealClockWaitIsCancelled(t *testing.T) {
	c := NewRealClock(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	assert.ErrorIs(t, c.Wait(ctx, 60), context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 30*time.Second)
}

func TestCallStack(t *testing.T) {
	var s CallStack
	for i := 0; i < StackDepth; i++ {
		require.NoError(t, s.push(uint16(i)))
	}
	assert.Equal(t, StackDepth, s.Depth())
	assert.ErrorIs(t, s.push(0), ErrStackOverflow)

	pc, err := s.pop()
	require.NoError(t, err)
	assert.Equal(t, uint16(StackDepth-1), pc)

	s.reset()
	_, err = s.pop()
	assert.ErrorIs(t, err, ErrStackUnderflow)
}

func TestOpcodeNames(t *testing.T) {
	assert.Equal(t, "mov_const", OpMovConst.String())
	assert.Equal(t, "jnz", OpJnz.String())
	assert.Equal(t, "play_music", OpPlayMusic.String())
	assert.Equal(t, "draw_shape_short", Opcode(0x85).String())
	assert.Equal(t, "draw_shape", Opcode(0x4C).String())
	assert.Equal(t, "op_1b", Opcode(0x1B).String())
}
