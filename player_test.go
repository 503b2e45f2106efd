package main

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davetcode/goaw/input"
	"github.com/davetcode/goaw/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})

	out := renderHalfBlocks(img)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 4, lipgloss.Width(l))
	}
}

func TestFramePresenterKeepsLatestFrame(t *testing.T) {
	p := newFramePresenter(40)
	assert.Equal(t, 26, p.height)

	frame := image.NewPaletted(image.Rect(0, 0, video.Width, video.Height), color.Palette{color.Black})
	p.Present(frame)
	p.Present(frame)

	s := <-p.frames
	assert.Len(t, strings.Split(s, "\n"), 13)
	select {
	case <-p.frames:
		t.Fatal("stale frame left queued")
	default:
	}
}

func TestKeyMapping(t *testing.T) {
	for _, tc := range []struct {
		name string
		key  tea.KeyMsg
		want input.State
	}{
		{"right", tea.KeyMsg{Type: tea.KeyRight}, input.State{Mask: input.Right}},
		{"shift up", tea.KeyMsg{Type: tea.KeyShiftUp}, input.State{Mask: input.Up | input.Jump}},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, input.State{Mask: input.Action}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, input.State{Mask: input.Jump}},
		{"letter", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, input.State{Char: 'X'}},
		{"pause", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}, input.State{Mask: input.Pause, Char: 'P'}},
		{"password", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'C'}}, input.State{Mask: input.Password, Char: 'C'}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, input.State{Char: '\b'}},
		{"digit", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'7'}}, input.State{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := input.NewLatch(time.Minute)
			pressKey(l, tc.key)
			assert.Equal(t, tc.want, l.Sample())
		})
	}
}
