package st7735s

import (
	"fmt"
	"image"
	"math"
)

// AddressSet is an inclusive range of pixel indices along one panel axis.
//
// Values can only be built through NewAddressSet, so every AddressSet held by a
// caller satisfies Start() <= End(). The zero value is the single pixel 0.
type AddressSet struct {
	start, end uint16
}

// NewAddressSet returns the inclusive range [start, end].
func NewAddressSet(start, end uint16) (AddressSet, error) {
	if start > end {
		return AddressSet{}, fmt.Errorf("%w: address set start %d > end %d", ErrInvalidArgument, start, end)
	}
	return AddressSet{start: start, end: end}, nil
}

// Start returns the first pixel index of the range.
func (a AddressSet) Start() uint16 { return a.start }

// End returns the last pixel index of the range.
func (a AddressSet) End() uint16 { return a.end }

// Len returns the number of pixels covered by the range.
func (a AddressSet) Len() uint32 {
	return uint32(a.end) - uint32(a.start) + 1
}

// Valid reports whether start <= end.
func (a AddressSet) Valid() bool {
	return a.start <= a.end
}

// encode returns the 4-byte RASET/CASET payload: start then end, high byte first.
func (a AddressSet) encode() []byte {
	return []byte{
		byte(a.start >> 8), byte(a.start),
		byte(a.end >> 8), byte(a.end),
	}
}

func (a AddressSet) String() string {
	return fmt.Sprintf("[%d,%d]", a.start, a.end)
}

// AddressWindow is the rectangular region targeted by the next memory write.
type AddressWindow struct {
	rows, cols AddressSet
}

// NewAddressWindow returns the window covering rows × cols.
func NewAddressWindow(rows, cols AddressSet) AddressWindow {
	return AddressWindow{rows: rows, cols: cols}
}

// WindowFromRect converts a half-open rectangle into an address window.
// X maps to columns and Y maps to rows.
func WindowFromRect(r image.Rectangle) (AddressWindow, error) {
	if r.Empty() {
		return AddressWindow{}, fmt.Errorf("%w: empty rectangle %v", ErrInvalidArgument, r)
	}
	if r.Min.X < 0 || r.Min.Y < 0 || r.Max.X > 0x10000 || r.Max.Y > 0x10000 {
		return AddressWindow{}, fmt.Errorf("%w: rectangle %v out of address range", ErrInvalidArgument, r)
	}
	rows, err := NewAddressSet(uint16(r.Min.Y), uint16(r.Max.Y-1))
	if err != nil {
		return AddressWindow{}, err
	}
	cols, err := NewAddressSet(uint16(r.Min.X), uint16(r.Max.X-1))
	if err != nil {
		return AddressWindow{}, err
	}
	return NewAddressWindow(rows, cols), nil
}

// Rows returns the row range.
func (w AddressWindow) Rows() AddressSet { return w.rows }

// Cols returns the column range.
func (w AddressWindow) Cols() AddressSet { return w.cols }

// Valid reports whether both axes are valid.
func (w AddressWindow) Valid() bool {
	return w.rows.Valid() && w.cols.Valid()
}

// CellCount returns the number of pixels in the window.
//
// It panics on an invalid window. Windows built by this package are always
// valid, so reaching the panic is a programming error.
func (w AddressWindow) CellCount() uint64 {
	if !w.Valid() {
		panic("st7735s: cell count of invalid window " + w.String())
	}
	return uint64(w.rows.Len()) * uint64(w.cols.Len())
}

// Rect returns the window as a half-open rectangle.
func (w AddressWindow) Rect() image.Rectangle {
	return image.Rect(int(w.cols.start), int(w.rows.start), int(w.cols.end)+1, int(w.rows.end)+1)
}

func (w AddressWindow) String() string {
	return fmt.Sprintf("rows%v×cols%v", w.rows, w.cols)
}

// ColorMode is the pixel encoding programmed with COLMOD.
type ColorMode uint8

const (
	// ColorModeNone means no mode has been programmed yet. It cannot be selected.
	ColorModeNone ColorMode = iota
	RGB444                  // 12 bits per pixel, two pixels in three bytes
	RGB565                  // 16 bits per pixel
	RGB666                  // 18 bits per pixel, one byte per channel
)

// code returns the COLMOD interface pixel format value.
func (m ColorMode) code() (byte, bool) {
	switch m {
	case RGB444:
		return 0x03, true
	case RGB565:
		return 0x05, true
	case RGB666:
		return 0x06, true
	}
	return 0, false
}

// BitsPerPixel returns the color depth of the mode, 0 for ColorModeNone.
func (m ColorMode) BitsPerPixel() int {
	switch m {
	case RGB444:
		return 12
	case RGB565:
		return 16
	case RGB666:
		return 18
	}
	return 0
}

func (m ColorMode) String() string {
	switch m {
	case ColorModeNone:
		return "None"
	case RGB444:
		return "RGB444"
	case RGB565:
		return "RGB565"
	case RGB666:
		return "RGB666"
	}
	return fmt.Sprintf("ColorMode(%d)", uint8(m))
}

// ExpectedBytes returns the exact length of a memory write filling window w in
// mode m. It is 0 for ColorModeNone.
func ExpectedBytes(w AddressWindow, m ColorMode) uint64 {
	switch m {
	case RGB444:
		// Pairs of pixels share three bytes; a trailing odd pixel takes two.
		return (3*w.CellCount() + 1) / 2
	case RGB565:
		return 2 * w.CellCount()
	case RGB666:
		return 3 * w.CellCount()
	}
	return 0
}

// maxWriteBytes bounds a single memory write so that its length fits an int
// on 32-bit targets.
const maxWriteBytes = math.MaxInt32

// fitsWrite reports whether a memory write filling w fits maxWriteBytes in
// every color mode.
func fitsWrite(w AddressWindow) bool {
	return ExpectedBytes(w, RGB666) <= maxWriteBytes
}
