package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/davetcode/goaw/video"
)

const upperHalf = "▀"

// framePresenter - Turns presented frames into terminal text on the engine
// goroutine. Frames the interface has not picked up yet are replaced.
type framePresenter struct {
	width  int
	height int
	frames chan string
}

func newFramePresenter(columns int) *framePresenter {
	// Each cell shows two pixel rows, terminal cells are about twice as tall
	// as they are wide
	h := columns * video.Height / video.Width
	h += h & 1
	return &framePresenter{width: columns, height: h, frames: make(chan string, 1)}
}

func (p *framePresenter) Present(frame *image.Paletted) {
	s := renderHalfBlocks(video.Scale(frame, p.width, p.height))
	select {
	case <-p.frames:
	default:
	}
	p.frames <- s
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8))
}

// renderHalfBlocks - One line per pair of pixel rows, the top pixel as the
// foreground of an upper half block and the bottom one as its background.
// Runs of identical cells share one style.
func renderHalfBlocks(img image.Image) string {
	b := img.Bounds()
	lines := make([]string, 0, (b.Dy()+1)/2)

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		var line strings.Builder
		var fg, bg lipgloss.Color
		run := 0
		flush := func() {
			if run > 0 {
				style := lipgloss.NewStyle().Foreground(fg).Background(bg)
				line.WriteString(style.Render(strings.Repeat(upperHalf, run)))
			}
		}

		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexColor(img.At(x, y))
			bottom := lipgloss.Color("#000000")
			if y+1 < b.Max.Y {
				bottom = hexColor(img.At(x, y+1))
			}
			if run > 0 && top == fg && bottom == bg {
				run++
				continue
			}
			flush()
			fg, bg, run = top, bottom, 1
		}
		flush()
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
