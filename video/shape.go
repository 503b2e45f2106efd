package video

import (
	"github.com/davetcode/goaw/awcore"
	"github.com/sirupsen/logrus"
)

const (
	// ColorFromShape - Caller colour meaning "use the colour in the polygon
	// descriptor". Any colour with bit 0x80 set behaves the same.
	ColorFromShape = 0xFF
	ColorAlpha     = 0x10
	ColorPage      = 0x11

	DefaultZoom = 0x40

	shapeHierarchy = 2
	polygonMarker  = 0xC0
	maxVertices    = 50
	maxShapeDepth  = 32
	maxShapeNodes  = 4096
)

// shapeWalk - Limits of one DrawShape call. Once aborted nothing more of
// the shape is drawn.
type shapeWalk struct {
	nodes   int
	aborted bool
}

func (v *Video) abortShape(w *shapeWalk, offset int, msg string) {
	v.log.WithField("offset", offset).Warn(msg)
	w.aborted = true
}

// DrawShape - Draws the shape at offset in a shape segment onto the work
// page, centred on x, y and scaled by zoom/64.
func (v *Video) DrawShape(segment []uint8, offset int, color uint8, zoom uint16, x int16, y int16) {
	v.drawShape(&shapeWalk{}, awcore.NewReader(segment, offset), color, int(zoom), x, y, 0)
}

// drawShape - Draws the shape under the cursor r and returns the cursor
// moved past the bytes read at this level.
func (v *Video) drawShape(w *shapeWalk, r awcore.Reader, color uint8, zoom int, x int16, y int16, depth int) awcore.Reader {
	if w.aborted {
		return r
	}
	if depth > maxShapeDepth {
		v.abortShape(w, r.Pos(), "shape nesting too deep")
		return r
	}
	w.nodes++
	if w.nodes > maxShapeNodes {
		v.abortShape(w, r.Pos(), "shape has too many nodes")
		return r
	}

	kind := r.U8()
	if r.Err() != nil {
		v.log.WithError(r.Err()).Warn("shape outside segment")
		return r
	}

	if kind >= polygonMarker {
		if color&0x80 != 0 {
			color = kind & 0x3f
		}
		v.fillPolygon(&r, color, zoom, x, y)
		return r
	}

	if kind&0x3f == shapeHierarchy {
		return v.drawHierarchy(w, r, zoom, x, y, depth)
	}
	return r
}

func scale(b uint8, zoom int) int16 {
	return int16(int(b) * zoom >> 6)
}

// drawHierarchy - A group of child shapes, each positioned relative to the
// group origin. Children carrying their own colour byte are drawn in it.
func (v *Video) drawHierarchy(w *shapeWalk, r awcore.Reader, zoom int, x int16, y int16, depth int) awcore.Reader {
	x -= scale(r.U8(), zoom)
	y -= scale(r.U8(), zoom)

	for n := int(r.U8()); n >= 0; n-- {
		offset := r.U16()
		cx := x + scale(r.U8(), zoom)
		cy := y + scale(r.U8(), zoom)

		color := uint8(ColorFromShape)
		if offset&0x8000 != 0 {
			color = r.U8() & 0x7f
			r.U8()
			offset &= 0x7fff
		}

		if r.Err() != nil {
			v.log.WithFields(logrus.Fields{"offset": r.Pos()}).WithError(r.Err()).Warn("truncated shape hierarchy")
			return r
		}

		v.drawShape(w, r.At(int(offset)<<1), color, zoom, cx, cy, depth+1)
		if w.aborted {
			return r
		}
	}
	return r
}
