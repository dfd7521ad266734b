package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadRootPriority(t *testing.T) {
	m := NewManager(0, nil)
	m.AddRoot(fstest.MapFS{
		"img/outside.jpeg": {Data: []byte("base")},
		"img/inside.jpeg":  {Data: []byte("base-inside")},
	})
	m.AddRoot(fstest.MapFS{
		"img/outside.jpeg": {Data: []byte("override")},
	})

	data, err := m.Load("img/outside.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "override", string(data))

	data, err = m.Load("./img/inside.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "base-inside", string(data))

	_, err = m.Load("img/attic.jpeg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadUsesCache(t *testing.T) {
	m := NewManager(0, nil)
	m.AddRoot(fstest.MapFS{"a.bin": {Data: []byte("x")}})

	_, err := m.Load("a.bin")
	require.NoError(t, err)
	_, err = m.Load("a.bin")
	require.NoError(t, err)

	st := m.Stats()
	assert.Equal(t, 1, st.FileHits)
	assert.Equal(t, 1, st.FileMisses)
}

func TestLoadTexture(t *testing.T) {
	m := NewManager(0, nil)
	m.AddRoot(fstest.MapFS{
		"pano.png": {Data: encodePNG(t, 8, 4, color.RGBA{10, 20, 30, 255})},
		"bad.png":  {Data: []byte("not an image")},
	})

	tex, err := m.LoadTexture("pano.png")
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, tex.Image.RGBAAt(3, 2))

	again, err := m.LoadTexture("pano.png")
	require.NoError(t, err)
	assert.Same(t, tex, again, "decoded textures are cached")

	_, err = m.LoadTexture("bad.png")
	assert.Error(t, err)
	_, err = m.LoadTexture("missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadTextureScalesDown(t *testing.T) {
	m := NewManager(16, nil)
	m.AddRoot(fstest.MapFS{"wide.png": {Data: encodePNG(t, 64, 32, color.RGBA{255, 0, 0, 255})}})

	tex, err := m.LoadTexture("wide.png")
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{100, 50, 0, 100, 50},
		{100, 50, 200, 100, 50},
		{8192, 4096, 4096, 4096, 2048},
		{50, 100, 25, 12, 25},
		{10000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %d, %d, want %d, %d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestPreload(t *testing.T) {
	m := NewManager(0, nil)
	m.AddRoot(fstest.MapFS{
		"a.png": {Data: encodePNG(t, 2, 2, color.RGBA{A: 255})},
		"b.png": {Data: encodePNG(t, 2, 2, color.RGBA{A: 255})},
	})

	failed := m.Preload(context.Background(), []string{"a.png", "b.png", "c.png"}, 2)

	assert.Equal(t, 1, failed)
	assert.Len(t, m.textures, 2)

	// Preloaded textures are served from the cache afterwards.
	_, err := m.LoadTexture("a.png")
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Textures:      2,
		TextureHits:   1,
		TextureMisses: 3,
		FileMisses:    3,
	}, m.Stats())
}

func TestAddDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tour.bin"), []byte("ok"), 0644))

	m := NewManager(0, nil)
	require.NoError(t, m.AddDir(dir))
	data, err := m.Load("tour.bin")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))

	assert.Error(t, m.AddDir(filepath.Join(dir, "missing")))
	assert.Error(t, m.AddDir(filepath.Join(dir, "tour.bin")))
}

func TestMarkerIcon(t *testing.T) {
	tex := MarkerIcon(64)
	w, h := tex.Size()
	require.Equal(t, 64, w)
	require.Equal(t, 64, h)

	assert.Equal(t, uint8(255), tex.Image.RGBAAt(32, 40).A, "arrow body is opaque")
	assert.Equal(t, uint8(0), tex.Image.RGBAAt(2, 2).A, "corner is transparent")
}

func TestLoadIconDefault(t *testing.T) {
	m := NewManager(0, nil)
	tex, err := m.LoadIcon("")
	require.NoError(t, err)
	assert.Equal(t, "builtin:arrow", tex.Source)
}
