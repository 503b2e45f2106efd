package video

import (
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	glyphSize  = 8
	firstGlyph = 0x20
	numGlyphs  = 0x60
)

// glyph - 8 rows of 8 pixels, most significant bit leftmost.
type glyph [glyphSize]uint8

var (
	fontOnce sync.Once
	font     [numGlyphs]glyph
)

// buildFont - Squeezes the 7x13 face into 8x8 cells, the grid strings are
// laid out on. The blank row above capitals is dropped.
func buildFont() {
	face := basicfont.Face7x13
	cell := image.NewAlpha(image.Rect(0, 0, glyphSize, glyphSize))

	for i := range font {
		dr, mask, mp, _, ok := face.Glyph(fixed.P(0, face.Ascent), rune(firstGlyph+i))
		if !ok {
			continue
		}
		src := image.Rect(mp.X, mp.Y+2, mp.X+dr.Dx(), mp.Y+dr.Dy())
		draw.Draw(cell, cell.Bounds(), image.Transparent, image.Point{}, draw.Src)
		draw.NearestNeighbor.Scale(cell, cell.Bounds(), mask, src, draw.Src, nil)

		for y := 0; y < glyphSize; y++ {
			var row uint8
			for x := 0; x < glyphSize; x++ {
				if cell.AlphaAt(x, y).A >= 0x80 {
					row |= 0x80 >> x
				}
			}
			font[i][y] = row
		}
	}
}

func glyphFor(ch byte) (glyph, bool) {
	fontOnce.Do(buildFont)
	if ch < firstGlyph || int(ch) >= firstGlyph+numGlyphs {
		return glyph{}, false
	}
	return font[ch-firstGlyph], true
}

// DrawString - Draws string id onto the work page. x is in 8 pixel columns,
// y in pixels. A newline returns to the starting column 8 pixels lower.
func (v *Video) DrawString(color uint8, x uint16, y uint16, id uint16) {
	var str string
	ok := false
	if v.strings != nil {
		str, ok = v.strings.Lookup(id)
	}
	if !ok {
		v.log.WithFields(logrus.Fields{"id": id, "x": x, "y": y, "color": color}).Warn("unknown string")
		return
	}

	v.stats.Strings++
	col, line := int(x), int(y)
	for i := 0; i < len(str); i++ {
		if str[i] == '\n' || str[i] == '\r' {
			line += glyphSize
			col = int(x)
			continue
		}
		v.drawChar(color, str[i], col*glyphSize, line)
		col++
	}
}

func (v *Video) drawChar(color uint8, ch byte, x int, y int) {
	g, ok := glyphFor(ch)
	if !ok {
		return
	}
	dst := v.pages[v.work]
	for j, row := range g {
		py := y + j
		if py < 0 || py >= Height {
			continue
		}
		for i := 0; i < glyphSize; i++ {
			px := x + i
			if row&(0x80>>i) != 0 && px >= 0 && px < Width {
				dst[py*Width+px] = color
			}
		}
	}
}
