package vm

import (
	"errors"
	"fmt"
)

const StackDepth = 64

var (
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("return with empty call stack")
)

// CallStack - Return offsets into the code segment. Each task starts its
// slice with an empty stack.
type CallStack struct {
	frames [StackDepth]uint16
	sp     int
}

func (s *CallStack) push(pc uint16) error {
	if s.sp == StackDepth {
		return fmt.Errorf("%w: %d frames", ErrStackOverflow, StackDepth)
	}
	s.frames[s.sp] = pc
	s.sp++
	return nil
}

func (s *CallStack) pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.frames[s.sp], nil
}

func (s *CallStack) reset()    { s.sp = 0 }
func (s CallStack) Depth() int { return s.sp }
