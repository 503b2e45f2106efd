package video_test

import (
	"image"
	"testing"
	"time"

	"github.com/davetcode/goaw/video"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square - 11x10 block with its top left corner 5 pixels up and left of
// the origin, in the colour given by the descriptor.
func square(color uint8) []uint8 {
	return []uint8{0xC0 | color, 10, 10, 4, 10, 0, 10, 10, 0, 10, 0, 0}
}

func point(color uint8) []uint8 {
	return []uint8{0xC0 | color, 0, 1, 4, 0, 0, 0, 0, 0, 0, 0, 0}
}

func TestPolygonFill(t *testing.T) {
	v, _, _ := newVideo(t)

	v.DrawShape(square(6), 0, video.ColorFromShape, video.DefaultZoom, 50, 50)

	inside, outside := countColor(v.Page(0), 6, image.Rect(45, 45, 56, 55))
	assert.Equal(t, 110, inside)
	assert.Zero(t, outside)

	stats := v.Stats()
	assert.Equal(t, 1, stats.Polygons)
	assert.Equal(t, 10, stats.Spans)
	assert.Zero(t, stats.Points)
}

func TestPolygonClosingStrip(t *testing.T) {
	v, _, _ := newVideo(t)
	// right edge ends at y 4, left edge at y 6
	shape := []uint8{0xC6, 10, 6, 4, 10, 0, 10, 4, 0, 6, 0, 0}

	v.DrawShape(shape, 0, video.ColorFromShape, video.DefaultZoom, 50, 50)

	inside, outside := countColor(v.Page(0), 6, image.Rect(45, 47, 56, 53))
	assert.Equal(t, 4*11+11+6, inside)
	assert.Zero(t, outside)
	assert.Equal(t, 6, v.Stats().Spans)
}

func TestPolygonCallerColour(t *testing.T) {
	v, _, _ := newVideo(t)
	v.DrawShape(square(6), 0, 3, video.DefaultZoom, 50, 50)

	inside, _ := countColor(v.Page(0), 3, image.Rect(45, 45, 56, 55))
	assert.Equal(t, 110, inside)
}

func TestPolygonZoom(t *testing.T) {
	v, _, _ := newVideo(t)
	v.DrawShape(square(6), 0, video.ColorFromShape, 2*video.DefaultZoom, 100, 100)

	inside, outside := countColor(v.Page(0), 6, image.Rect(90, 90, 111, 110))
	assert.Equal(t, 21*20, inside)
	assert.Zero(t, outside)
}

func TestPolygonClipsToPage(t *testing.T) {
	v, _, _ := newVideo(t)
	v.DrawShape(square(6), 0, video.ColorFromShape, video.DefaultZoom, 2, 197)

	inside, outside := countColor(v.Page(0), 6, image.Rect(0, 192, 8, 200))
	assert.Equal(t, 8*8, inside)
	assert.Zero(t, outside)
}

func TestDegeneratePolygonIsAPoint(t *testing.T) {
	v, _, _ := newVideo(t)

	v.DrawShape(point(5), 0, video.ColorFromShape, video.DefaultZoom, 10, 20)

	page := v.Page(0)
	assert.Equal(t, uint8(5), page[20*video.Width+10])
	inside, outside := countColor(page, 5, image.Rect(10, 20, 11, 21))
	assert.Equal(t, 1, inside)
	assert.Zero(t, outside)

	stats := v.Stats()
	assert.Equal(t, 1, stats.Points)
	assert.Zero(t, stats.Spans)
}

func TestOffscreenPolygonDrawsNothing(t *testing.T) {
	for _, tc := range []struct {
		name string
		x, y int16
	}{
		{"left", -20, 100},
		{"above", 100, -20},
		{"right", 340, 100},
		{"below", 100, 220},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, hook, _ := newVideo(t)
			v.DrawShape(square(6), 0, video.ColorFromShape, video.DefaultZoom, tc.x, tc.y)

			assert.Zero(t, v.Stats().Spans)
			assert.Zero(t, v.Stats().Polygons)
			assert.Empty(t, hook.AllEntries())
		})
	}
}

func TestAlphaPolygonSetsBlendBit(t *testing.T) {
	v, _, _ := newVideo(t)
	v.FillPage(0, 3)

	v.DrawShape(square(video.ColorAlpha), 0, video.ColorFromShape, video.DefaultZoom, 50, 50)

	inside, outside := countColor(v.Page(0), 0x0B, image.Rect(45, 45, 56, 55))
	assert.Equal(t, 110, inside)
	assert.Zero(t, outside)
}

func TestBackgroundCopyPolygon(t *testing.T) {
	v, _, _ := newVideo(t)
	v.FillPage(0, 9)
	v.FillPage(1, 2)

	v.SetWorkPage(1)
	v.DrawShape(square(video.ColorPage), 0, video.ColorFromShape, video.DefaultZoom, 50, 50)
	inside, outside := countColor(v.Page(1), 9, image.Rect(45, 45, 56, 55))
	assert.Equal(t, 110, inside)
	assert.Zero(t, outside)

	// onto the background page itself
	v.ResetStats()
	v.SetWorkPage(0)
	v.DrawShape(square(video.ColorPage), 0, video.ColorFromShape, video.DefaultZoom, 50, 50)
	assert.Zero(t, v.Stats().Spans)
	inside, _ = countColor(v.Page(0), 9, image.Rect(0, 0, video.Width, video.Height))
	assert.Equal(t, video.PageSize, inside)
}

func TestInvalidPolygonsAreSkipped(t *testing.T) {
	for _, tc := range []struct {
		name  string
		shape []uint8
		color uint8
	}{
		{"odd vertex count", []uint8{0xC6, 10, 10, 3, 0, 0, 10, 0, 10, 10}, video.ColorFromShape},
		{"too many vertices", []uint8{0xC6, 10, 10, 52}, video.ColorFromShape},
		{"truncated", []uint8{0xC6, 10, 10, 4, 10, 0}, video.ColorFromShape},
		{"colour token", square(6), 0x20},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v, hook, _ := newVideo(t)
			assert.NotPanics(t, func() {
				v.DrawShape(tc.shape, 0, tc.color, video.DefaultZoom, 50, 50)
			})
			assert.Zero(t, v.Stats().Spans)
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		})
	}
}

func TestHierarchy(t *testing.T) {
	v, _, _ := newVideo(t)

	// origin moved by (-4, -2), child one at +(10, 0) in its own colour,
	// child two at +(0, 10) with an explicit colour 2
	shape := []uint8{
		0x02, 4, 2, 1,
		0x00, 0x08, 10, 0,
		0x80, 0x0E, 0, 10, 0x02, 0x00,
		0, 0,
	}
	shape = append(shape, point(5)...)
	shape = append(shape, point(7)...)

	v.DrawShape(shape, 0, video.ColorFromShape, video.DefaultZoom, 100, 100)

	page := v.Page(0)
	assert.Equal(t, uint8(5), page[98*video.Width+106])
	assert.Equal(t, uint8(2), page[108*video.Width+96])
	assert.Equal(t, 2, v.Stats().Points)
}

func TestUnknownShapeTypesAreIgnored(t *testing.T) {
	v, hook, _ := newVideo(t)
	v.DrawShape([]uint8{0x05, 1, 2, 3}, 0, video.ColorFromShape, video.DefaultZoom, 50, 50)
	assert.Zero(t, v.Stats().Polygons)
	assert.Empty(t, hook.AllEntries())
}

func TestSelfReferencingHierarchyStops(t *testing.T) {
	v, hook, _ := newVideo(t)
	shape := []uint8{0x02, 0, 0, 0, 0x00, 0x00, 0, 0}

	assert.NotPanics(t, func() {
		v.DrawShape(shape, 0, video.ColorFromShape, video.DefaultZoom, 50, 50)
	})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "shape nesting too deep", hook.LastEntry().Message)
	assert.Len(t, hook.AllEntries(), 1)
}

func TestHierarchyFanOutIsBounded(t *testing.T) {
	v, hook, _ := newVideo(t)
	// two children, both the hierarchy itself
	shape := []uint8{0x02, 0, 0, 0x01, 0x00, 0x00, 0, 0, 0x00, 0x00, 0, 0}

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.DrawShape(shape, 0, video.ColorFromShape, video.DefaultZoom, 50, 50)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("drawing a self-referencing hierarchy did not finish")
	}

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "shape has too many nodes", hook.LastEntry().Message)
}

func TestShapeOutsideSegment(t *testing.T) {
	v, hook, _ := newVideo(t)
	v.DrawShape(square(1), 100, video.ColorFromShape, video.DefaultZoom, 50, 50)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
