package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height, format
}

func TestImageService_Process(t *testing.T) {
	svc := NewImageService()
	ctx := context.Background()
	src := pngBytes(t, 400, 200)

	tests := []struct {
		name       string
		opts       ImageOptions
		wantW      int
		wantH      int
		wantExt    string
		wantFormat string
	}{
		{"keep png", ImageOptions{}, 400, 200, ".png", "png"},
		{"to jpeg", ImageOptions{JPEG: true}, 400, 200, ".jpg", "jpeg"},
		{"shrink", ImageOptions{MaxSize: 100, JPEG: true}, 100, 50, ".jpg", "jpeg"},
		{"no upscale", ImageOptions{MaxSize: 1000}, 400, 200, ".png", "png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ext, err := svc.Process(ctx, src, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)

			w, h, format := decodeSize(t, out)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, tt.wantFormat, format)
		})
	}
}

func TestImageService_ProcessInvalid(t *testing.T) {
	_, _, err := NewImageService().Process(context.Background(), []byte("not an image"), ImageOptions{})
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "rec.json")

	require.NoError(t, WriteJSON(path, map[string]any{"title": "Echoes", "songs": []string{}}))
	assert.True(t, Exists(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Echoes","songs":[]}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file cleaned up")
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir), "directories are not files")
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}
