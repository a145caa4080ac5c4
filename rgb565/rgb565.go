package rgb565

import (
	"image"
	"image/color"
)

// RGB565 is a 16-bit color: 5 bits red, 6 bits green, 5 bits blue.
type RGB565 uint16

// Common colors.
const (
	Black RGB565 = 0x0000
	White RGB565 = 0xFFFF
	Red   RGB565 = 0xF800
	Green RGB565 = 0x07E0
	Blue  RGB565 = 0x001F
)

// New packs 8-bit channels into an RGB565 value, dropping the low bits.
func New(r, g, b uint8) RGB565 {
	return RGB565(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGBA implements color.Color. Channels are widened by bit replication so
// that full intensity maps to 0xFFFF.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	r = (r5<<3 | r5>>2) * 0x101
	g = (g6<<2 | g6>>4) * 0x101
	b = (b5<<3 | b5>>2) * 0x101
	return r, g, b, 0xFFFF
}

// Bytes returns the two bytes sent to the controller, high byte first.
func (c RGB565) Bytes() [2]byte {
	return [2]byte{byte(c >> 8), byte(c)}
}

// toRGB565 converts any color.Color to RGB565. Alpha is ignored; the panel is
// opaque.
func toRGB565(c color.Color) color.Color {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB565(uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11))
}

// Model converts colors to RGB565.
var Model = color.ModelFunc(toRGB565)

// Image is an in-memory image of RGB565 pixels stored in controller byte
// order, row by row.
type Image struct {
	Pix    []byte          // 2 bytes per pixel, high byte first
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage returns a black image with bounds r.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// ColorModel returns Model.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the pixel at (x, y), or Black outside the bounds.
func (p *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Black
	}
	i := p.pixOffset(x, y)
	return RGB565(uint16(p.Pix[i])<<8 | uint16(p.Pix[i+1]))
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, Model.Convert(c).(RGB565))
}

// SetRGB565 sets the pixel at (x, y) without color conversion.
func (p *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.pixOffset(x, y)
	p.Pix[i] = byte(c >> 8)
	p.Pix[i+1] = byte(c)
}

// Fill sets every pixel to c.
func (p *Image) Fill(c RGB565) {
	hi, lo := byte(c>>8), byte(c)
	for i := 0; i+1 < len(p.Pix); i += 2 {
		p.Pix[i] = hi
		p.Pix[i+1] = lo
	}
}

// pixOffset returns the index of the high byte of the pixel at (x, y).
func (p *Image) pixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}
