package main

import (
	"image/png"
	"os"
	"testing"

	"github.com/davetcode/goaw/resource"
	"github.com/davetcode/goaw/resource/restest"
	"github.com/davetcode/goaw/video"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectionScreen(code []uint8) *restest.DataSet {
	return restest.New(0x17).
		Set(0x14, restest.Asset{Type: resource.Palette, Bank: 1, Data: make([]uint8, 1024)}).
		Set(0x15, restest.Asset{Type: resource.Bytecode, Bank: 1, Data: code}).
		Set(0x16, restest.Asset{Type: resource.Shape, Bank: 1, Data: make([]uint8, 64)})
}

func testOptions(t *testing.T) runOptions {
	log, _ := test.NewNullLogger()
	return runOptions{frames: 3, outputDir: t.TempDir(), log: log}
}

func TestRunPart(t *testing.T) {
	data := protectionScreen([]uint8{
		0x0E, 0x00, 0x05, // fill page 0 with colour 5
		0x10, 0x00,       // update display page 0
		0x06,             // yield
		0x07, 0x00, 0x00, // jmp 0
	})
	opts := testOptions(t)

	r := runPartTest(data.FS(), resource.PartCopyProtection, opts)
	require.True(t, r.Success, r.ErrorMessage)
	assert.Equal(t, uint64(3), r.Frames)
	assert.Equal(t, uint16(resource.PartCopyProtection), r.FinalPart)
	assert.Equal(t, video.Stats{Fills: 3, Presents: 3}, r.Drawing)

	f, err := os.Open(r.Screenshot)
	require.NoError(t, err)
	defer f.Close() // nolint:errcheck
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2*video.Width, img.Bounds().Dx())
}

func TestRunPartFailures(t *testing.T) {
	opts := testOptions(t)

	// return with nothing on the call stack
	r := runPartTest(protectionScreen([]uint8{0x05}).FS(), resource.PartCopyProtection, opts)
	assert.False(t, r.Success)
	assert.Contains(t, r.ErrorMessage, "task 0")

	// part assets missing from the directory
	r = runPartTest(protectionScreen([]uint8{0x11}).FS(), resource.PartWater, opts)
	assert.False(t, r.Success)
	assert.NotEmpty(t, r.ErrorMessage)

	r = runPartTest(protectionScreen([]uint8{0x11}).FS(), resource.PartPassword, opts)
	assert.True(t, r.Skipped)
}
