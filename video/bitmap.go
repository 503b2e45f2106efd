package video

const (
	bitmapPlaneSize = PageSize / 8

	// BitmapSize - Four bit planes covering one page
	BitmapSize = 4 * bitmapPlaneSize
)

// BlitBitmap - Decodes a planar bitmap resource into page 0, the background
// page polygons copy from.
func (v *Video) BlitBitmap(data []uint8) {
	if len(data) < BitmapSize {
		v.log.WithField("size", len(data)).Warn("bitmap too short")
		return
	}

	dst := v.pages[0]
	p := 0
	for src := 0; src < bitmapPlaneSize; src++ {
		for b := 0; b < 8; b++ {
			mask := uint8(0x80) >> b
			var c uint8
			for plane := 0; plane < 4; plane++ {
				if data[plane*bitmapPlaneSize+src]&mask != 0 {
					c |= 1 << plane
				}
			}
			dst[p] = c
			p++
		}
	}
	v.stats.Bitmaps++
}
