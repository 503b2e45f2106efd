package video

import (
	"github.com/davetcode/goaw/awcore"
	"github.com/sirupsen/logrus"
)

type vertex struct {
	x int16
	y int16
}

// spanFunc - Writes w pixels of the work page starting at ofs.
type spanFunc func(ofs int, w int)

// spanFor - Span writer for a colour token, nil when nothing is to be drawn.
func (v *Video) spanFor(color uint8) spanFunc {
	dst := v.pages[v.work]
	switch {
	case color < ColorAlpha:
		return func(ofs int, w int) {
			for i := ofs; i < ofs+w; i++ {
				dst[i] = color
			}
		}
	case color == ColorAlpha:
		return func(ofs int, w int) {
			for i := ofs; i < ofs+w; i++ {
				dst[i] |= 8
			}
		}
	case color == ColorPage:
		// background page onto itself
		if v.work == 0 {
			return nil
		}
		src := v.pages[0]
		return func(ofs int, w int) {
			copy(dst[ofs:ofs+w], src[ofs:ofs+w])
		}
	default:
		return nil
	}
}

func (v *Video) point(color uint8, x int16, y int16) {
	ofs := int(y)*Width + int(x)
	dst := v.pages[v.work]
	switch color {
	case ColorAlpha:
		dst[ofs] |= 8
	case ColorPage:
		dst[ofs] = v.pages[0][ofs]
	default:
		dst[ofs] = color
	}
	v.stats.Points++
}

// edgeStep - 16.16 x increment per line from a to b, and the line count.
func edgeStep(a vertex, b vertex) (uint32, uint16) {
	h := uint16(b.y - a.y)
	span := int32(h)
	if h <= 1 {
		span = 1
	}
	return uint32((int32(b.x-a.x) * (0x4000 / span)) << 2), h
}

// fillPolygon - Reads a polygon at r and fills it. Vertices come as two
// chains, one running forward from the first vertex and one backward from
// the last, and each pair of edges bounds a strip filled line by line.
func (v *Video) fillPolygon(r *awcore.Reader, color uint8, zoom int, x int16, y int16) {
	bbw := uint16(int(r.U8()) * zoom >> 6)
	bbh := uint16(int(r.U8()) * zoom >> 6)
	bx1 := x - int16(bbw>>1)
	bx2 := x + int16(bbw>>1)
	by1 := y - int16(bbh>>1)
	by2 := y + int16(bbh>>1)

	if bx1 > Width-1 || bx2 < 0 || by1 > Height-1 || by2 < 0 {
		return
	}

	n := int(r.U8())
	if n&1 != 0 || n > maxVertices || n == 0 {
		v.log.WithFields(logrus.Fields{"vertices": n, "offset": r.Pos() - 1}).Warn("invalid polygon")
		return
	}
	if color > ColorPage {
		v.log.WithField("color", color).Warn("invalid fill colour")
		return
	}

	v.stats.Polygons++
	if n == 4 && bbw == 0 && bbh <= 1 {
		v.point(color, x, y)
		return
	}

	var verts [maxVertices]vertex
	for i := 0; i < n; i++ {
		verts[i] = vertex{
			x: bx1 + scale(r.U8(), zoom),
			y: by1 + scale(r.U8(), zoom),
		}
	}
	if r.Err() != nil {
		v.log.WithError(r.Err()).Warn("truncated polygon")
		return
	}

	span := v.spanFor(color)
	if span == nil {
		return
	}

	i, j := 0, n-1
	cpt1 := uint32(int32(verts[j].x) << 16)
	cpt2 := uint32(int32(verts[i].x) << 16)
	ofs := int(min(verts[i].y, verts[j].y)) * Width
	if ofs >= PageSize {
		return
	}

	// The last strip joins the two middle vertices
	for strips := n / 2; strips > 0; strips-- {
		step1, _ := edgeStep(verts[j], verts[j-1])
		step2, h := edgeStep(verts[i], verts[i+1])
		i++
		j--

		cpt1 = cpt1&0xffff0000 | 0x7fff
		cpt2 = cpt2&0xffff0000 | 0x8000

		if h == 0 {
			cpt1 += step1
			cpt2 += step2
			continue
		}

		for ; h > 0; h-- {
			if ofs >= 0 {
				x1 := int(int16(cpt1 >> 16))
				x2 := int(int16(cpt2 >> 16))
				if x1 < Width && x2 >= 0 {
					x1 = max(x1, 0)
					x2 = min(x2, Width-1)
					lo, hi := min(x1, x2), max(x1, x2)
					span(ofs+lo, hi-lo+1)
					v.stats.Spans++
				}
			}
			cpt1 += step1
			cpt2 += step2
			ofs += Width
			if ofs >= PageSize {
				return
			}
		}
	}
}
