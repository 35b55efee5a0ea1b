package ogimage

import (
	"bytes"
	"image/png"
	"testing"
	"time"
)

func TestGenerateDimensions(t *testing.T) {
	data, err := Generate(BannerData{LiftsOpen: 32, LiftsTotal: 47, TopPick: "Grands Montets", Condition: "Powder Day"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != Width || bounds.Dy() != Height {
		t.Errorf("dimensions = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), Width, Height)
	}
}

func TestGenerateEmptyFields(t *testing.T) {
	if _, err := Generate(BannerData{}); err != nil {
		t.Fatalf("generate with zero data: %v", err)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(50 * time.Millisecond)
	if _, ok := c.Get(); ok {
		t.Error("empty cache must miss")
	}

	c.Set([]byte("png"))
	if data, ok := c.Get(); !ok || string(data) != "png" {
		t.Errorf("expected hit, got %v %q", ok, data)
	}

	time.Sleep(80 * time.Millisecond)
	if _, ok := c.Get(); ok {
		t.Error("stale cache must miss")
	}
}
