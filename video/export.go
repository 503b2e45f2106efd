package video

import (
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Scale - Nearest neighbour copy of frame at the given size.
func Scale(frame image.Image, width int, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return dst
}

// WritePNG - Encodes frame enlarged by an integer factor.
func WritePNG(w io.Writer, frame image.Image, factor int) error {
	if factor > 1 {
		b := frame.Bounds()
		frame = Scale(frame, b.Dx()*factor, b.Dy()*factor)
	}
	return png.Encode(w, frame)
}
