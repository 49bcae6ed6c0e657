// Package display renders status text for the 128x64 monochrome panel.
package display

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Panel size in pixels.
const (
	Width  = 128
	Height = 64
)

// Font selects one of the two text sizes.
type Font int

const (
	// Small is about 5x8 pixels per character.
	Small Font = iota
	// Large is about 10x16 pixels per character.
	Large
)

func (f Font) String() string {
	if f == Large {
		return "large"
	}
	return "small"
}

// Sink is the display collaborator. Text is positioned by the top-left
// corner of its first character.
type Sink interface {
	Clear()
	DrawText(f Font, text string, x, y int)
	SendBuffer() error
}

// Framebuffer is a Sink that renders into an in-memory grayscale image.
// SendBuffer publishes a copy of the image to the registered hook, which
// is where a panel driver or a status mirror attaches.
type Framebuffer struct {
	mu     sync.Mutex
	img    *image.Gray
	faces  [2]font.Face
	last   *image.Gray
	sends  int
	onSend func(frame *image.Gray) error
}

// NewFramebuffer loads the fonts and returns a blank framebuffer.
func NewFramebuffer() (*Framebuffer, error) {
	small, err := loadFace(gomono.TTF, 8)
	if err != nil {
		return nil, errors.Wrap(err, "load small font")
	}
	large, err := loadFace(gomonobold.TTF, 16)
	if err != nil {
		return nil, errors.Wrap(err, "load large font")
	}
	return &Framebuffer{
		img:   image.NewGray(image.Rect(0, 0, Width, Height)),
		faces: [2]font.Face{Small: small, Large: large},
		last:  image.NewGray(image.Rect(0, 0, Width, Height)),
	}, nil
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// OnSend registers fn to receive every sent frame. fn must not retain the
// image past the call.
func (fb *Framebuffer) OnSend(fn func(frame *image.Gray) error) {
	fb.mu.Lock()
	fb.onSend = fn
	fb.mu.Unlock()
}

// Clear blanks the working buffer.
func (fb *Framebuffer) Clear() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	draw.Draw(fb.img, fb.img.Bounds(), image.Black, image.Point{}, draw.Src)
}

// DrawText renders text with its top-left corner at (x, y). Anything past
// the panel edge is clipped.
func (fb *Framebuffer) DrawText(f Font, text string, x, y int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	face := fb.face(f)
	d := font.Drawer{
		Dst:  fb.img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// SendBuffer publishes the working buffer.
func (fb *Framebuffer) SendBuffer() error {
	fb.mu.Lock()
	copy(fb.last.Pix, fb.img.Pix)
	fb.sends++
	fn := fb.onSend
	frame := cloneGray(fb.last)
	fb.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(frame)
}

// LastFrame returns a copy of the most recently sent frame.
func (fb *Framebuffer) LastFrame() *image.Gray {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return cloneGray(fb.last)
}

// Sends returns the number of frames sent.
func (fb *Framebuffer) Sends() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.sends
}

// PNG encodes the most recently sent frame.
func (fb *Framebuffer) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, fb.LastFrame()); err != nil {
		return nil, errors.Wrap(err, "encode frame")
	}
	return buf.Bytes(), nil
}

// TextWidth returns the rendered width of text in pixels.
func (fb *Framebuffer) TextWidth(f Font, text string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return font.MeasureString(fb.face(f), text).Ceil()
}

func (fb *Framebuffer) face(f Font) font.Face {
	if f == Large {
		return fb.faces[Large]
	}
	return fb.faces[Small]
}

func cloneGray(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
