package video

import (
	"image"

	"github.com/sirupsen/logrus"
)

const (
	Width    = 320
	Height   = 200
	PageSize = Width * Height
	NumPages = 4

	// Page selectors accepted wherever a page number is
	PageFront = 0xFE
	PageBack  = 0xFF
)

// Presenter - Receives every displayed frame. The image is reused, it is
// only valid until the next call.
type Presenter interface {
	Present(frame *image.Paletted)
}

type StringTable interface {
	Lookup(id uint16) (string, bool)
}

// Stats - Counts of the drawing operations performed, for tests and the
// headless runner.
type Stats struct {
	Fills    int
	Copies   int
	Presents int
	Polygons int
	Points   int
	Spans    int
	Strings  int
	Bitmaps  int
}

type Options struct {
	Presenter Presenter
	Strings   StringTable
	Log       *logrus.Entry
}

// Video - Four 320x200 pages of 4 bit pixels with front, back and work page
// selection, palettes and the drawing primitives scripts use.
type Video struct {
	pages [NumPages][]uint8
	front int
	back  int
	work  int

	paletteData []uint8
	palette     Palette
	palNum      uint8
	palNext     uint8

	strings   StringTable
	presenter Presenter
	frame     *image.Paletted
	stats     Stats
	log       *logrus.Entry
}

func New(opts Options) *Video {
	v := &Video{
		back:      1,
		front:     2,
		work:      0,
		palette:   blackPalette(),
		palNum:    noPalette,
		palNext:   noPalette,
		strings:   opts.Strings,
		presenter: opts.Presenter,
		frame:     image.NewPaletted(image.Rect(0, 0, Width, Height), nil),
		log:       opts.Log,
	}
	if v.log == nil {
		v.log = logrus.WithField("component", "video")
	}
	for i := range v.pages {
		v.pages[i] = make([]uint8, PageSize)
	}
	return v
}

func (v *Video) Stats() Stats       { return v.stats }
func (v *Video) ResetStats()        { v.stats = Stats{} }
func (v *Video) FrontPage() int     { return v.front }
func (v *Video) BackPage() int      { return v.back }
func (v *Video) WorkPage() int      { return v.work }
func (v *Video) Palette() Palette   { return v.palette }
func (v *Video) PaletteNum() uint8  { return v.palNum }
func (v *Video) NextPalette() uint8 { return v.palNext }

// Page - Pixels of page i, not a copy.
func (v *Video) Page(i int) []uint8 { return v.pages[i] }

func (v *Video) SetStrings(s StringTable) { v.strings = s }

// pageIndex - Resolves a page selector. Unknown selectors fall back to the
// work page.
func (v *Video) pageIndex(page uint8) int {
	switch {
	case page < NumPages:
		return int(page)
	case page == PageFront:
		return v.front
	case page == PageBack:
		return v.back
	default:
		v.log.WithField("page", page).Warn("unknown page selector, using work page")
		return v.work
	}
}

func (v *Video) SetWorkPage(page uint8) {
	v.work = v.pageIndex(page)
}

func (v *Video) FillPage(page uint8, color uint8) {
	p := v.pages[v.pageIndex(page)]
	for i := range p {
		p[i] = color
	}
	v.stats.Fills++
}

// CopyPage - Copies a whole page, or with bit 0x80 set in src a page shifted
// vertically by scroll lines. Scrolled copies onto the same page or by more
// than 199 lines do nothing.
func (v *Video) CopyPage(src uint8, dst uint8, scroll int16) {
	switch {
	case src >= PageFront:
		copy(v.pages[v.pageIndex(dst)], v.pages[v.pageIndex(src)])
	case src&0x80 == 0:
		copy(v.pages[v.pageIndex(dst)], v.pages[v.pageIndex(src&^0x40)])
	default:
		s, d := v.pageIndex(src&3), v.pageIndex(dst)
		if s == d || scroll < -(Height-1) || scroll > Height-1 {
			return
		}
		from, to := v.pages[s], v.pages[d]
		lines := int(scroll)
		if lines < 0 {
			copy(to, from[-lines*Width:])
		} else {
			copy(to[lines*Width:], from[:(Height-lines)*Width])
		}
	}
	v.stats.Copies++
}

// SetPaletteData - Palette resource of the current part.
func (v *Video) SetPaletteData(data []uint8) {
	v.paletteData = data
}

// SetPalette - Makes palette n active. Out of range numbers and the palette
// already active are ignored.
func (v *Video) SetPalette(n uint8) {
	if n >= NumPalettes || n == v.palNum {
		return
	}
	p, err := DecodePalette(v.paletteData, int(n))
	if err != nil {
		v.log.WithError(err).Warn("palette not loaded")
		return
	}
	v.palette = p
	v.palNum = n
}

// SetNextPalette - Palette to switch to at the next display update.
func (v *Video) SetNextPalette(n uint8) { v.palNext = n }

// InvalidatePalette - Forces the next SetPalette to reload even if the
// number is unchanged.
func (v *Video) InvalidatePalette() { v.palNum = noPalette }

// UpdateDisplay - Selects the front page, applies a pending palette and
// presents the front page. PageFront keeps the current front page and
// PageBack swaps front and back.
func (v *Video) UpdateDisplay(page uint8) {
	if page != PageFront {
		if page == PageBack {
			v.front, v.back = v.back, v.front
		} else {
			v.front = v.pageIndex(page)
		}
	}

	if v.palNext != noPalette {
		v.SetPalette(v.palNext)
		v.palNext = noPalette
	}

	v.present(v.palette)
}

// ShowPaused - Presents the front page again in grey.
func (v *Video) ShowPaused() {
	v.present(v.palette.Greyscale())
}

// Frame - The front page as an image with the active palette.
func (v *Video) Frame() *image.Paletted {
	frame := image.NewPaletted(image.Rect(0, 0, Width, Height), v.palette.Colors())
	fillFrame(frame, v.pages[v.front])
	return frame
}

func fillFrame(frame *image.Paletted, page []uint8) {
	for i, c := range page {
		frame.Pix[i] = c & (NumColors - 1)
	}
}

func (v *Video) present(p Palette) {
	v.stats.Presents++
	if v.presenter == nil {
		return
	}
	v.frame.Palette = p.Colors()
	fillFrame(v.frame, v.pages[v.front])
	v.presenter.Present(v.frame)
}
