package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davetcode/goaw/input"
	"github.com/davetcode/goaw/resource"
	"github.com/davetcode/goaw/vm"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

const help = "arrows move  space action  tab jump  p pause  c password  ctrl+s save  ctrl+l load  esc quit"

var (
	appStyle = lipgloss.NewStyle().Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}).
				Render

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Render
)

type frameMessage string
type statusMessage string
type engineStoppedMsg struct{ err error }

type applicationModel struct {
	player *player
	screen string
	status string
	width  int
	err    error
	saves  *vm.SaveStateCache
}

func newApplicationModel(p *player, err error) applicationModel {
	return applicationModel{
		player: p,
		width:  p.cfg.ScreenWidth,
		err:    err,
		saves:  &vm.SaveStateCache{},
	}
}

func (m applicationModel) Init() tea.Cmd {
	if m.err != nil {
		return tea.Quit
	}
	return tea.Batch(
		waitForFrame(m.player.screen.frames),
		waitForStatus(m.player.status),
		m.player.runEngine(),
		tea.SetWindowTitle("Another World"),
	)
}

func (m applicationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.player.cancel()
			return m, tea.Quit
		case "ctrl+s":
			m.send(m.quickSave)
			return m, nil
		case "ctrl+l":
			m.send(m.quickLoad)
			return m, nil
		}
		pressKey(m.player.latch, msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case frameMessage:
		m.screen = string(msg)
		return m, waitForFrame(m.player.screen.frames)

	case statusMessage:
		m.status = string(msg)
		return m, waitForStatus(m.player.status)

	case engineStoppedMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// send - Queues work for the engine goroutine, dropping it if the engine
// is not keeping up.
func (m applicationModel) send(req func(*vm.Engine) string) {
	select {
	case m.player.request <- req:
	default:
		m.player.log.Warn("engine busy, request dropped")
	}
}

func (m applicationModel) quickSave(e *vm.Engine) string {
	m.saves.Push(e.Save())
	m.player.log.WithField("saves", m.saves.Len()).Info("quick save")
	return fmt.Sprintf("saved (%d)", m.saves.Len())
}

func (m applicationModel) quickLoad(e *vm.Engine) string {
	s, ok := m.saves.Pop()
	if !ok {
		return "nothing saved"
	}
	if err := e.Restore(s); err != nil {
		m.player.log.WithError(err).Error("quick load failed")
		return "load failed: " + err.Error()
	}
	return fmt.Sprintf("loaded, %d left", m.saves.Len())
}

func (m applicationModel) View() string {
	s := strings.Builder{}

	title := fmt.Sprintf("%s  %s", resource.PartID(m.player.part.Load()).Name(), m.status)
	s.WriteString(titleStyle.Render(truncate.StringWithTail(title, uint(max(m.width-4, 1)), "…")))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle(m.err.Error()))
		return appStyle.Render(s.String())
	}

	s.WriteString(m.screen)
	s.WriteString("\n")
	s.WriteString(statusMessageStyle(wordwrap.String(help, max(m.width-2, 1))))

	return appStyle.Render(s.String())
}

func waitForFrame(sub <-chan string) tea.Cmd {
	return func() tea.Msg {
		return frameMessage(<-sub)
	}
}

func waitForStatus(sub <-chan string) tea.Cmd {
	return func() tea.Msg {
		return statusMessage(<-sub)
	}
}

// pressKey - Feeds one terminal key event into the latch.
func pressKey(l *input.Latch, msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRight:
		l.Press(input.Right)
	case tea.KeyLeft:
		l.Press(input.Left)
	case tea.KeyDown:
		l.Press(input.Down)
	case tea.KeyUp:
		l.Press(input.Up)
	case tea.KeyShiftUp:
		l.Press(input.Up | input.Jump)
	case tea.KeyShiftRight:
		l.Press(input.Right | input.Jump)
	case tea.KeyShiftLeft:
		l.Press(input.Left | input.Jump)
	case tea.KeySpace:
		l.Press(input.Action)
	case tea.KeyTab:
		l.Press(input.Jump)
	case tea.KeyEnter:
		l.Type('\r')
	case tea.KeyBackspace:
		l.Type('\b')
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return
		}
		r := msg.Runes[0]
		switch r {
		case 'p', 'P':
			l.Press(input.Pause)
		case 'c', 'C':
			l.Press(input.Password)
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if r >= 'A' && r <= 'Z' {
			l.Type(uint8(r))
		}
	}
}
