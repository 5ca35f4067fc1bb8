package upload

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	saved, err := store.SaveImage(pngBytes(t, 1200, 900))
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if saved.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", saved.ContentType)
	}
	if !strings.HasPrefix(saved.URL, "/uploads/") {
		t.Fatalf("unexpected url %q", saved.URL)
	}
	if _, err := os.Stat(filepath.Join(dir, saved.Filename)); err != nil {
		t.Fatalf("original not written: %v", err)
	}
	thumbName := filepath.Base(saved.ThumbnailURL)
	if _, err := os.Stat(filepath.Join(dir, thumbName)); err != nil {
		t.Fatalf("thumbnail not written: %v", err)
	}
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	store, err := NewStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.SaveImage([]byte("definitely not an image"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
