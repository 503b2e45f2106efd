package vm

import (
	"context"
	"fmt"
	"time"

	"github.com/davetcode/goaw/audio"
	"github.com/davetcode/goaw/awcore"
	"github.com/davetcode/goaw/input"
	"github.com/davetcode/goaw/resource"
	"github.com/sirupsen/logrus"
)

const NumVars = 256

// Variables with a fixed meaning to the engine
const (
	VarRandomSeed           = 0x3C
	VarEdition              = 0x54
	VarLastKeyChar          = 0xDA
	VarHeroPosUpDown        = 0xE5
	VarMusicMark            = 0xF4
	VarDisplayUpdated       = 0xF7
	VarScrollY              = 0xF9
	VarHeroAction           = 0xFA
	VarHeroPosJumpDown      = 0xFB
	VarHeroPosLeftRight     = 0xFC
	VarHeroPosMask          = 0xFD
	VarHeroActionPosMask    = 0xFE
	VarPauseSlices          = 0xFF
	varCopyProtectionPassed = 0x67
	varCopyProtectionCheck  = 0xDC
)

type Edition int

const (
	AnotherWorld   Edition = iota
	OutOfThisWorld Edition = iota
)

// Resources - What the engine needs from the resource manager.
type Resources interface {
	SetupPart(id resource.PartID) error
	Load(id int) error
	InvalidateResources()
	TakeStagedPart() (resource.PartID, bool)
	StagePart(id resource.PartID)
	CurrentPart() resource.PartID
	HasPassword() bool
	Segments() resource.Segments
	Entry(id int) (resource.Entry, bool)
	Data(id int) ([]uint8, bool)
}

// Display - Pages, palettes and drawing, implemented by video.Video.
type Display interface {
	SetPaletteData(data []uint8)
	SetPalette(n uint8)
	SetNextPalette(n uint8)
	InvalidatePalette()
	PaletteNum() uint8
	SetWorkPage(page uint8)
	FillPage(page uint8, color uint8)
	CopyPage(src uint8, dst uint8, scroll int16)
	UpdateDisplay(page uint8)
	ShowPaused()
	DrawString(color uint8, x uint16, y uint16, id uint16)
	DrawShape(segment []uint8, offset int, color uint8, zoom uint16, x int16, y int16)
}

type Options struct {
	Resources Resources
	Display   Display
	Mixer     audio.Mixer
	Sounds    *audio.Cache
	Input     input.Source
	Clock     Clock
	Log       *logrus.Entry

	Edition            Edition
	KeepCopyProtection bool

	// Trace - Called before every opcode with the task, its position and the
	// opcode byte.
	Trace func(task int, pc uint16, op Opcode)
}

// Engine - Variables, tasks and the interpreter state of one game. All
// methods must be called from a single goroutine.
type Engine struct {
	vars  [NumVars]int16
	stack CallStack
	tasks *Tasks

	code []uint8
	r    awcore.Reader
	task int
	halt bool

	res     Resources
	display Display
	mixer   audio.Mixer
	sounds  *audio.Cache
	music   *audio.Sequencer
	input   input.Source
	edges   input.Edges
	special input.Mask
	clock   Clock
	trace   func(int, uint16, Opcode)
	log     *logrus.Entry

	keepCopyProtection bool
	syncTicks          int64
	musicTicks         int64
	frames             uint64
}

func New(opts Options) *Engine {
	e := &Engine{
		tasks:              newTasks(),
		res:                opts.Resources,
		display:            opts.Display,
		mixer:              opts.Mixer,
		sounds:             opts.Sounds,
		input:              opts.Input,
		clock:              opts.Clock,
		trace:              opts.Trace,
		log:                opts.Log,
		keepCopyProtection: opts.KeepCopyProtection,
	}
	if e.log == nil {
		e.log = logrus.WithField("component", "vm")
	}
	if e.mixer == nil {
		e.mixer = audio.NullMixer{}
	}
	if e.sounds == nil {
		e.sounds = audio.NewCache(e.log.WithField("component", "audio"))
	}
	if e.input == nil {
		e.input = input.None{}
	}
	if e.clock == nil {
		e.clock = NewRealClock(DefaultFrameHz)
	}

	e.music = audio.NewSequencer(e.mixer, e.sounds, e.log.WithField("component", "music"))
	e.music.OnMark(func(v int16) { e.vars[VarMusicMark] = v })

	e.vars[0xE4] = 0x14
	e.vars[VarEdition] = 0x01
	if opts.Edition == OutOfThisWorld {
		e.vars[VarEdition] = 0x81
	}
	e.vars[VarRandomSeed] = 0x1337
	if !e.keepCopyProtection {
		e.vars[0xBC] = 0x10
		e.vars[0xC6] = 0x80
		e.vars[varCopyProtectionCheck] = 0x21
		e.vars[0xF2] = 4000
	}
	return e
}

func (e *Engine) Var(i uint8) int16         { return e.vars[i] }
func (e *Engine) SetVar(i uint8, v int16)   { e.vars[i] = v }
func (e *Engine) Tasks() *Tasks             { return e.tasks }
func (e *Engine) Frames() uint64            { return e.frames }
func (e *Engine) Music() *audio.Sequencer   { return e.music }
func (e *Engine) Part() resource.PartID     { return e.res.CurrentPart() }
func (e *Engine) CallStack() CallStack      { return e.stack }
func (e *Engine) Resources() Resources      { return e.res }
func (e *Engine) Display() Display          { return e.display }
func (e *Engine) SetInput(src input.Source) { e.input = src }

// StartPart - The part a new game begins with.
func StartPart(keepCopyProtection bool) resource.PartID {
	if keepCopyProtection {
		return resource.PartCopyProtection
	}
	return resource.PartIntro
}

// Restart - Loads part and resets every task, task 0 starting at the top
// of the new code segment.
func (e *Engine) Restart(part resource.PartID) error {
	e.music.Stop()
	e.mixer.StopAll()

	if err := e.res.SetupPart(part); err != nil {
		return fmt.Errorf("setting up part %05d: %w", uint16(part), err)
	}
	seg := e.res.Segments()
	e.code = seg.Code
	e.display.SetPaletteData(seg.Palette)

	e.tasks.reset()
	e.vars[0] = 0
	e.syncTicks = e.clock.Ticks()
	e.musicTicks = e.syncTicks
	e.log.WithFields(logrus.Fields{"part": uint16(part), "name": part.Name()}).Info("restarted")
	return nil
}

// RunFrame - One pass of the scheduler: apply a staged part switch and the
// requested task state, sample input, run every runnable task until it
// yields and feed the music sequencer the time that passed. Errors are
// fatal.
func (e *Engine) RunFrame(ctx context.Context) error {
	if err := e.setupTasks(); err != nil {
		return err
	}
	e.updateInput(e.input.Sample())
	if err := e.run(ctx); err != nil {
		return err
	}
	e.advanceMusic()
	e.frames++
	return nil
}

func (e *Engine) setupTasks() error {
	if part, ok := e.res.TakeStagedPart(); ok {
		e.log.WithField("part", uint16(part)).Info("switching part")
		if err := e.Restart(part); err != nil {
			return err
		}
	}
	e.tasks.apply()
	return nil
}

func (e *Engine) run(ctx context.Context) error {
	for i := 0; i < NumTasks; i++ {
		if !e.tasks.runnable(i) {
			continue
		}
		e.task = i
		e.r = awcore.NewReader(e.code, int(e.tasks.pos[live][i]))
		e.stack.reset()
		e.halt = false

		for !e.halt {
			if err := e.step(ctx); err != nil {
				return fmt.Errorf("task %d at 0x%04x: %w", i, e.r.Pos(), err)
			}
		}
		e.tasks.pos[live][i] = uint16(e.r.Pos())
	}
	return nil
}

func (e *Engine) advanceMusic() {
	now := e.clock.Ticks()
	elapsed := time.Duration(now-e.musicTicks) * e.clock.Period()
	e.musicTicks = now
	e.music.Advance(elapsed)
}

// jump - Moves to ofs unless reading the target failed, which step then
// reports.
func (e *Engine) jump(ofs uint16) {
	if e.r.Err() != nil {
		return
	}
	e.r.Seek(int(ofs))
}

// yieldAndDeactivate - Ends the task's slice and leaves it inactive.
func (e *Engine) yieldAndDeactivate() {
	e.r.Seek(inactive)
	e.halt = true
}

// step - Executes the opcode at the cursor. Only fatal conditions return an
// error, malformed code is logged and skipped.
func (e *Engine) step(ctx context.Context) error {
	pc := uint16(e.r.Pos())
	op := Opcode(e.r.U8())
	if e.trace != nil {
		e.trace(e.task, pc, op)
	}

	var err error
	switch {
	case op&opDrawShapeShort != 0:
		e.drawShapeShort(op)

	case op&opDrawShapeLong != 0:
		e.drawShapeLong(op)

	default:
		err = e.execute(ctx, op)
	}

	if rerr := e.r.Err(); rerr != nil {
		e.log.WithFields(logrus.Fields{"task": e.task, "pc": pc, "op": op.String()}).WithError(rerr).Warn("code ran off the segment, stopping task")
		e.yieldAndDeactivate()
	}
	return err
}

func (e *Engine) execute(ctx context.Context, op Opcode) error {
	switch op {
	case OpMovConst:
		i := e.r.U8()
		e.vars[i] = e.r.S16()

	case OpMov:
		i, j := e.r.U8(), e.r.U8()
		e.vars[i] = e.vars[j]

	case OpAdd:
		i, j := e.r.U8(), e.r.U8()
		e.vars[i] += e.vars[j]

	case OpAddConst:
		i := e.r.U8()
		e.vars[i] += e.r.S16()

	case OpCall:
		ofs := e.r.U16()
		if e.r.Err() != nil {
			break
		}
		if err := e.stack.push(uint16(e.r.Pos())); err != nil {
			return err
		}
		e.jump(ofs)

	case OpRet:
		pc, err := e.stack.pop()
		if err != nil {
			return err
		}
		e.jump(pc)

	case OpBreak:
		e.halt = true

	case OpJmp:
		e.jump(e.r.U16())

	case OpSetTask:
		i, pos := e.r.U8(), e.r.U16()
		if int(i) >= NumTasks {
			e.log.WithFields(logrus.Fields{"task": i, "pos": pos}).Warn("set_task for task out of range")
			break
		}
		e.tasks.pos[next][i] = pos

	case OpJnz:
		i := e.r.U8()
		e.vars[i]--
		ofs := e.r.U16()
		if e.vars[i] != 0 {
			e.jump(ofs)
		}

	case OpCondJmp:
		e.condJump()

	case OpSetPalette:
		e.display.SetNextPalette(uint8(e.r.U16() >> 8))

	case OpResetTasks:
		e.resetTasks()

	case OpSelectPage:
		e.display.SetWorkPage(e.r.U8())

	case OpFillPage:
		page, color := e.r.U8(), e.r.U8()
		e.display.FillPage(page, color)

	case OpCopyPage:
		src, dst := e.r.U8(), e.r.U8()
		e.display.CopyPage(src, dst, e.vars[VarScrollY])

	case OpUpdateDisplay:
		return e.updateDisplay(ctx, e.r.U8())

	case OpHalt:
		e.yieldAndDeactivate()

	case OpDrawString:
		id := e.r.U16()
		x, y, color := e.r.U8(), e.r.U8(), e.r.U8()
		e.display.DrawString(color, uint16(x), uint16(y), id)

	case OpSub:
		i, j := e.r.U8(), e.r.U8()
		e.vars[i] -= e.vars[j]

	case OpAnd:
		i := e.r.U8()
		e.vars[i] = int16(uint16(e.vars[i]) & e.r.U16())

	case OpOr:
		i := e.r.U8()
		e.vars[i] = int16(uint16(e.vars[i]) | e.r.U16())

	case OpShl:
		i := e.r.U8()
		e.vars[i] = int16(uint16(e.vars[i]) << e.r.U16())

	case OpShr:
		i := e.r.U8()
		e.vars[i] = int16(uint16(e.vars[i]) >> e.r.U16())

	case OpPlaySound:
		e.playSound()

	case OpUpdateMemlist:
		return e.updateMemlist(e.r.U16())

	case OpPlayMusic:
		e.playMusic()

	default:
		e.log.WithFields(logrus.Fields{"task": e.task, "pc": e.r.Pos() - 1, "op": fmt.Sprintf("0x%02x", uint8(op))}).Warn("invalid opcode")
	}
	return nil
}
