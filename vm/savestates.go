package vm

import (
	"fmt"
	"io"

	"github.com/davetcode/goaw/resource"
	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"
)

// SaveState - Everything needed to resume a game between frames. Sounds and
// music loaded after the part was set up are not part of it, scripts reload
// them as they go.
type SaveState struct {
	Part    uint16              `cbor:"part"`
	Vars    [NumVars]int16      `cbor:"vars"`
	Pos     [2][NumTasks]uint16 `cbor:"pos"`
	Paused  [2][]uint64         `cbor:"paused"`
	Palette uint8               `cbor:"palette"`
	Frames  uint64              `cbor:"frames"`
}

func (s *SaveState) Encode(w io.Writer) error {
	return cbor.NewEncoder(w).Encode(s)
}

func DecodeSaveState(r io.Reader) (SaveState, error) {
	var s SaveState
	if err := cbor.NewDecoder(r).Decode(&s); err != nil {
		return SaveState{}, fmt.Errorf("decoding save state: %w", err)
	}
	if !resource.PartID(s.Part).Valid() {
		return SaveState{}, fmt.Errorf("save state: %w: %05d", resource.ErrInvalidPart, s.Part)
	}
	return s, nil
}

// Save - Snapshot of the engine, only meaningful between frames.
func (e *Engine) Save() SaveState {
	return SaveState{
		Part:    uint16(e.res.CurrentPart()),
		Vars:    e.vars,
		Pos:     e.tasks.pos,
		Paused:  e.tasks.pausedWords(),
		Palette: e.display.PaletteNum(),
		Frames:  e.frames,
	}
}

// Restore - Sets up the saved part if it is not the current one, then puts
// back the variables and tasks.
func (e *Engine) Restore(s SaveState) error {
	part := resource.PartID(s.Part)
	if part != e.res.CurrentPart() {
		if err := e.Restart(part); err != nil {
			return err
		}
	} else {
		e.music.Stop()
		e.mixer.StopAll()
	}

	// a part switch requested before the restore would discard it
	e.res.TakeStagedPart()

	e.vars = s.Vars
	e.tasks.pos = s.Pos
	e.tasks.setPausedWords(s.Paused)
	e.frames = s.Frames
	e.special = 0

	e.display.InvalidatePalette()
	e.display.SetPalette(s.Palette)
	e.log.WithFields(logrus.Fields{"part": s.Part, "frames": s.Frames}).Info("restored save state")
	return nil
}

// SaveStateCache - Quick save slots, last in first out.
type SaveStateCache struct {
	states []SaveState
}

func (c *SaveStateCache) Push(s SaveState) {
	c.states = append(c.states, s)
}

func (c *SaveStateCache) Pop() (SaveState, bool) {
	if len(c.states) == 0 {
		return SaveState{}, false
	}
	s := c.states[len(c.states)-1]
	c.states = c.states[:len(c.states)-1]
	return s, true
}

func (c *SaveStateCache) Len() int { return len(c.states) }
