package audio

import (
	"fmt"
	"sync"
)

type Op int

const (
	OpPlay      Op = iota
	OpStop      Op = iota
	OpStopAll   Op = iota
	OpSetVolume Op = iota
)

func (o Op) String() string {
	switch o {
	case OpPlay:
		return "play"
	case OpStop:
		return "stop"
	case OpStopAll:
		return "stop-all"
	case OpSetVolume:
		return "volume"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

type Call struct {
	Op        Op
	Channel   int
	SoundID   int
	Frequency int
	Volume    int
}

// Recorder - Mixer which keeps a log of every call, for headless runs.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *Recorder) Play(channel int, s *Sound, frequency int, volume int) {
	id := -1
	if s != nil {
		id = s.ID
	}
	r.record(Call{Op: OpPlay, Channel: channel, SoundID: id, Frequency: frequency, Volume: volume})
}

func (r *Recorder) Stop(channel int) {
	r.record(Call{Op: OpStop, Channel: channel})
}

func (r *Recorder) StopAll() {
	r.record(Call{Op: OpStopAll})
}

func (r *Recorder) SetVolume(channel int, volume int) {
	r.record(Call{Op: OpSetVolume, Channel: channel, Volume: volume})
}

// Calls - Copy of the log so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
