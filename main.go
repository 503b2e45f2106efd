package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/davetcode/goaw/audio"
	"github.com/davetcode/goaw/config"
	"github.com/davetcode/goaw/input"
	"github.com/davetcode/goaw/resource"
	"github.com/davetcode/goaw/selectpartui"
	"github.com/davetcode/goaw/video"
	"github.com/davetcode/goaw/vm"
	"github.com/sirupsen/logrus"
)

// keyHold - Terminals only report presses and repeats, a direction stays
// held this long after its last repeat.
const keyHold = 120 * time.Millisecond

// player - Everything one run of the game needs, built before bubbletea
// takes over the terminal.
type player struct {
	cfg     config.Config
	log     *logrus.Logger
	res     *resource.Manager
	video   *video.Video
	engine  *vm.Engine
	latch   *input.Latch
	screen  *framePresenter
	ctx     context.Context
	cancel  context.CancelFunc
	status  chan string
	request chan func(*vm.Engine) string

	// part - Last part the engine ran, readable from the interface goroutine
	part atomic.Uint32
}

func newLogger(cfg config.Config) (*logrus.Logger, *os.File, error) {
	log := logrus.New()
	log.SetLevel(cfg.Level())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	log.SetOutput(f)
	return log, f, nil
}

func newPlayer(cfg config.Config, log *logrus.Logger) (*player, error) {
	strs, err := cfg.Strings()
	if err != nil {
		return nil, err
	}

	p := &player{
		cfg:     cfg,
		log:     log,
		latch:   input.NewLatch(keyHold),
		screen:  newFramePresenter(cfg.ScreenWidth),
		status:  make(chan string, 4),
		request: make(chan func(*vm.Engine) string, 4),
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.video = video.New(video.Options{
		Presenter: p.screen,
		Strings:   strs,
		Log:       log.WithField("component", "video"),
	})
	sounds := audio.NewCache(log.WithField("component", "audio"))

	p.res, err = resource.NewManager(os.DirFS(cfg.DataDir), resource.Options{
		Screen: p.video,
		Sounds: sounds,
		Log:    log.WithField("component", "resource"),
	})
	if err != nil {
		return nil, err
	}

	edition := vm.AnotherWorld
	if cfg.OutOfThisWorld() {
		edition = vm.OutOfThisWorld
	}
	p.engine = vm.New(vm.Options{
		Resources:          p.res,
		Display:            p.video,
		Sounds:             sounds,
		Input:              p.latch,
		Clock:              vm.NewRealClock(cfg.FrameHz),
		Log:                log.WithField("component", "vm"),
		Edition:            edition,
		KeepCopyProtection: cfg.KeepCopyProtection,
	})
	return p, nil
}

// runEngine - Drives the engine until the context ends or a frame fails.
// Requests from the interface run between frames so they never see a half
// executed task.
func (p *player) runEngine() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case req := <-p.request:
				p.status <- req(p.engine)
			default:
			}

			err := p.engine.RunFrame(p.ctx)
			p.part.Store(uint32(p.engine.Part()))
			if err != nil {
				if p.ctx.Err() != nil {
					return nil
				}
				return engineStoppedMsg{err: err}
			}
		}
	}
}

func (p *player) start(part resource.PartID) tea.Model {
	err := p.engine.Restart(part)
	p.part.Store(uint32(part))
	return newApplicationModel(p, err)
}

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:], os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, logFile, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close() // nolint:errcheck

	p, err := newPlayer(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading game data:", err)
		os.Exit(1)
	}
	defer p.cancel()

	var model tea.Model
	switch {
	case cfg.Part() != 0:
		model = p.start(cfg.Part())
	case cfg.KeepCopyProtection:
		model = p.start(vm.StartPart(true))
	default:
		model = selectpartui.New(p.res.HasPassword(), p.start)
	}

	tui := tea.NewProgram(model, tea.WithAltScreen())
	final, err := tui.Run()
	if err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
	if m, ok := final.(applicationModel); ok && m.err != nil {
		log.WithError(m.err).Error("engine stopped")
		fmt.Fprintln(os.Stderr, m.err)
		os.Exit(1)
	}
}
