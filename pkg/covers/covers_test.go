package covers

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("cover.jpg"))
	assert.True(t, IsSupported("COVER.PNG"))
	assert.False(t, IsSupported("cover.pdf"))
	assert.False(t, IsSupported("cover"))
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	big := imaging.New(800, 1600, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	require.NoError(t, imaging.Save(big, src))

	name, err := Process(src, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	thumb, err := imaging.Open(filepath.Join(dir, "out", name))
	require.NoError(t, err)
	b := thumb.Bounds()
	assert.LessOrEqual(t, b.Dx(), 400)
	assert.LessOrEqual(t, b.Dy(), 600)
}

func TestProcessRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	_, err := Process(filepath.Join(dir, "missing.jpg"), dir)
	assert.Error(t, err)
}
