package video

import (
	"fmt"
	"image/color"

	"github.com/davetcode/goaw/awcore"
)

const (
	NumColors   = 16
	NumPalettes = 32

	paletteSize = NumColors * 2
	noPalette   = 0xFF
)

// Palette - 16 colours decoded from 0x0RGB words.
type Palette [NumColors]color.RGBA

func blackPalette() Palette {
	var p Palette
	for i := range p {
		p[i] = color.RGBA{A: 0xff}
	}
	return p
}

// DecodePalette - Palette n of a palette resource, which holds 32 of them
// back to back.
func DecodePalette(data []uint8, n int) (Palette, error) {
	var p Palette
	if n < 0 || n >= NumPalettes {
		return p, fmt.Errorf("palette %d out of range", n)
	}
	for i := range p {
		c, ok := awcore.U16At(data, n*paletteSize+i*2)
		if !ok {
			return p, fmt.Errorf("palette %d: %w", n, awcore.ErrOutOfRange)
		}
		p[i] = color.RGBA{
			R: uint8(c>>8&0xf) * 0x11,
			G: uint8(c>>4&0xf) * 0x11,
			B: uint8(c&0xf) * 0x11,
			A: 0xff,
		}
	}
	return p, nil
}

func (p Palette) Colors() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}

// Greyscale - Copy with every colour replaced by the mean of its channels,
// shown while the game is paused.
func (p Palette) Greyscale() Palette {
	for i, c := range p {
		avg := uint8((int(c.R) + int(c.G) + int(c.B)) / 3)
		p[i] = color.RGBA{R: avg, G: avg, B: avg, A: c.A}
	}
	return p
}
