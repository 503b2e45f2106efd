package vm

import (
	"context"
	"fmt"

	"github.com/davetcode/goaw/audio"
	"github.com/davetcode/goaw/input"
	"github.com/davetcode/goaw/resource"
	"github.com/sirupsen/logrus"
)

const (
	shapeColor = 0xFF
	shapeZoom  = 0x40
	maxY       = 199
)

// drawShapeShort - 0x80 form: the low 7 bits and the next byte are the
// shape offset in words, followed by x and y bytes. y past the bottom of
// the screen is folded into x.
func (e *Engine) drawShapeShort(op Opcode) {
	ofs := (uint16(op)<<8 | uint16(e.r.U8())) << 1
	x := int16(e.r.U8())
	y := int16(e.r.U8())
	if h := y - maxY; h > 0 {
		y = maxY
		x += h
	}
	e.display.DrawShape(e.res.Segments().Video[0], int(ofs), shapeColor, shapeZoom, x, y)
}

// drawShapeLong - 0x40 form: bits 5-4 pick how x is encoded, bits 3-2 how
// y is and bits 1-0 the zoom or the secondary shape segment.
func (e *Engine) drawShapeLong(op Opcode) {
	ofs := e.r.U16() << 1
	segment := 0

	x := int16(e.r.U8())
	switch {
	case op&0x20 == 0 && op&0x10 == 0:
		x = x<<8 | int16(e.r.U8())
	case op&0x20 == 0:
		x = e.vars[x]
	case op&0x10 != 0:
		x += 0x100
	}

	y := int16(e.r.U8())
	switch {
	case op&0x08 == 0 && op&0x04 == 0:
		y = y<<8 | int16(e.r.U8())
	case op&0x08 == 0:
		y = e.vars[y]
	}

	zoom := uint16(shapeZoom)
	if op&0x02 == 0 {
		if op&0x01 != 0 {
			zoom = uint16(e.vars[e.r.U8()])
		}
	} else if op&0x01 != 0 {
		segment = 1
	} else {
		zoom = uint16(e.r.U8())
	}

	e.display.DrawShape(e.res.Segments().Video[segment], int(ofs), shapeColor, zoom, x, y)
}

// condJump - Compares a variable against another variable, a 16 bit or an
// 8 bit immediate depending on the top bits of the condition byte.
func (e *Engine) condJump() {
	op := e.r.U8()
	b := e.vars[e.r.U8()]
	c := e.r.U8()

	var a int16
	switch {
	case op&0x80 != 0:
		a = e.vars[c]
	case op&0x40 != 0:
		a = int16(uint16(c)<<8 | uint16(e.r.U8()))
	default:
		a = int16(c)
	}
	ofs := e.r.U16()

	var taken bool
	switch op & 7 {
	case 0: // jz
		taken = b == a
	case 1: // jnz
		taken = b != a
	case 2: // jg
		taken = b > a
	case 3: // jge
		taken = b >= a
	case 4: // jl
		taken = b < a
	case 5: // jle
		taken = b <= a
	}
	if taken {
		e.jump(ofs)
	}
}

// resetTasks - Requests resume (0), pause (1) or deactivate (2) for tasks
// first..last, taking effect next frame.
func (e *Engine) resetTasks() {
	first := int(e.r.U8())
	last := int(e.r.U8() & 0x3F)
	mode := e.r.U8()

	if last < first {
		e.log.WithFields(logrus.Fields{"first": first, "last": last}).Warn("reset_tasks with empty range")
		return
	}

	for i := first; i <= last; i++ {
		switch mode {
		case 0, 1:
			e.tasks.paused[next].SetTo(uint(i), mode == 1)
		case 2:
			e.tasks.pos[next][i] = deactivate
		default:
			e.log.WithField("mode", mode).Warn("unknown reset_tasks mode")
			return
		}
	}
}

// updateDisplay - The end of frame sync point. Waits out whatever is left
// of the pause variable's ticks since the last display update then shows
// page.
func (e *Engine) updateDisplay(ctx context.Context, page uint8) error {
	if err := e.handleSpecialInput(ctx); err != nil {
		return err
	}

	if e.res.CurrentPart() == resource.PartCopyProtection && e.vars[varCopyProtectionPassed] == 1 {
		e.vars[varCopyProtectionCheck] = 0x21
	}

	elapsed := e.clock.Ticks() - e.syncTicks
	if wait := int64(e.vars[VarPauseSlices]) - elapsed; wait > 0 {
		if err := e.clock.Wait(ctx, int(wait)); err != nil {
			return err
		}
	}
	e.syncTicks = e.clock.Ticks()

	e.vars[VarDisplayUpdated] = 0
	e.display.UpdateDisplay(page)
	return nil
}

// handleSpecialInput - Pause blocks here until pause is pressed again,
// password jumps to the password screen.
func (e *Engine) handleSpecialInput(ctx context.Context) error {
	m := e.special
	e.special = 0
	part := e.res.CurrentPart()

	if m.Has(input.Pause) && part != resource.PartCopyProtection && part != resource.PartIntro {
		e.log.Info("paused")
		e.display.ShowPaused()
		for {
			if err := e.clock.Wait(ctx, 1); err != nil {
				return err
			}
			m = e.edges.Filter(e.input.Sample().Mask)
			if m.Has(input.Pause) {
				break
			}
		}
		e.log.Info("resumed")
	}

	if m.Has(input.Password) && part != resource.PartCopyProtection && part != resource.PartPassword && e.res.HasPassword() {
		e.res.StagePart(resource.PartPassword)
	}
	return nil
}

// updateInput - Maps the sampled controls into the hero variables. Special
// keys are held until the next display update consumes them.
func (e *Engine) updateInput(s input.State) {
	m := e.edges.Filter(s.Mask)
	e.special |= m & input.Special

	var lr, ud, jd, dir int16
	if m.Has(input.Right) {
		lr, dir = 1, dir|1
	}
	if m.Has(input.Left) {
		lr, dir = -1, dir|2
	}
	if m.Has(input.Down) {
		ud, jd, dir = 1, 1, dir|4
	}
	if m.Has(input.Up | input.Jump) {
		ud, jd, dir = -1, -1, dir|8
	}
	e.vars[VarHeroPosUpDown] = ud
	e.vars[VarHeroPosJumpDown] = jd
	e.vars[VarHeroPosLeftRight] = lr
	e.vars[VarHeroPosMask] = dir

	var action int16
	if m.Has(input.Action) {
		action, dir = 1, dir|0x80
	}
	e.vars[VarHeroAction] = action
	e.vars[VarHeroActionPosMask] = dir

	if s.Char != 0 {
		e.vars[VarLastKeyChar] = int16(s.Char)
	}
}

func (e *Engine) playSound() {
	id := e.r.U16()
	freq := e.r.U8()
	volume := int(e.r.U8())
	channel := int(e.r.U8() & 3)

	if volume == 0 {
		e.mixer.Stop(channel)
		return
	}
	volume = min(volume, audio.MaxVolume)

	s := e.sounds.Lookup(int(id))
	if s == nil {
		e.log.WithField("id", fmt.Sprintf("0x%04x", id)).Debug("sound not loaded")
		return
	}
	hz, ok := audio.Frequency(freq)
	if !ok {
		e.log.WithFields(logrus.Fields{"id": id, "freq": freq}).Warn("frequency index out of range")
		return
	}
	e.mixer.Play(channel, s, hz, volume)
}

// playMusic - Starts a module, changes the tempo of the playing one when id
// is zero, or stops it when the delay is zero too.
func (e *Engine) playMusic() {
	id := e.r.U16()
	delay := e.r.U16()
	pos := e.r.U8()

	switch {
	case id != 0:
		data, ok := e.res.Data(int(id))
		if !ok {
			e.log.WithField("id", fmt.Sprintf("0x%04x", id)).Warn("music not loaded")
			return
		}
		if err := e.music.Load(data, delay, pos); err != nil {
			e.log.WithError(err).WithField("id", id).Warn("cannot play music")
			return
		}
		e.music.Start()
	case delay != 0:
		e.music.SetDelay(delay)
	default:
		e.music.Stop()
	}
}

// updateMemlist - Zero drops every per-scene resource, a part id stages a
// part switch and anything else loads that entry.
func (e *Engine) updateMemlist(id uint16) error {
	if id == 0 {
		e.music.Stop()
		e.mixer.StopAll()
		e.res.InvalidateResources()
		return nil
	}
	if err := e.res.Load(int(id)); err != nil {
		return fmt.Errorf("loading resource 0x%04x: %w", id, err)
	}
	return nil
}
