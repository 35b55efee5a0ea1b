// Package ogimage renders the 1200x630 Open Graph share banner from the
// latest snapshot. Text is drawn with the bitmap basicfont and integer-scaled
// up, so no font files ship with the binary.
package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Standard Open Graph image dimensions.
const (
	Width  = 1200
	Height = 630
)

// BannerData is the dynamic content drawn on the banner.
type BannerData struct {
	LiftsOpen  int
	LiftsTotal int
	TopPick    string
	Condition  string
}

// Generate renders the banner as PNG bytes.
func Generate(data BannerData) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))

	// Night-sky gradient, darker at the top.
	for y := 0; y < Height; y++ {
		progress := float64(y) / float64(Height)
		c := color.RGBA{
			R: uint8(16 + progress*24),
			G: uint8(24 + progress*36),
			B: uint8(48 + progress*56),
			A: 255,
		}
		for x := 0; x < Width; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	white := color.RGBA{255, 255, 255, 255}
	lightGray := color.RGBA{200, 205, 215, 255}

	drawScaledText(img, "Chamonix Ski Status", 60, 90, 4, lightGray)
	drawScaledText(img, fmt.Sprintf("%d/%d lifts open", data.LiftsOpen, data.LiftsTotal), 60, 260, 8, white)
	if data.TopPick != "" {
		drawScaledText(img, "Today's pick: "+data.TopPick, 60, 400, 5, white)
	}
	if data.Condition != "" {
		drawScaledText(img, data.Condition, 60, 500, 4, lightGray)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode banner: %w", err)
	}
	return buf.Bytes(), nil
}

// drawScaledText renders text with basicfont into a small buffer and
// nearest-neighbour upscales it onto dst at (x, y). The 7x13 face at scale 8
// gives a 104px-tall headline.
func drawScaledText(dst *image.RGBA, text string, x, y, scale int, col color.Color) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Height

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: fixed.I(face.Ascent)},
	}
	d.DrawString(text)

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			c := small.RGBAAt(sx, sy)
			if c.A == 0 {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					px, py := x+sx*scale+dx, y+sy*scale+dy
					if px >= 0 && px < Width && py >= 0 && py < Height {
						dst.SetRGBA(px, py, c)
					}
				}
			}
		}
	}
}

// Cache holds the rendered banner for a short period so the image is not
// re-encoded on every crawler hit.
type Cache struct {
	mu        sync.RWMutex
	data      []byte
	expiresAt time.Time
	ttl       time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

func (c *Cache) Get() ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.data, true
}

func (c *Cache) Set(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expiresAt = time.Now().Add(c.ttl)
}
