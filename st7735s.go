package st7735s

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"periph.io/x/devices/v3/st7735s/rgb565"
)

// Controller commands used by the driver.
const (
	cmdSLPIN   byte = 0x10 // Sleep in
	cmdINVOFF  byte = 0x20 // Display inversion off
	cmdINVON   byte = 0x21 // Display inversion on
	cmdDISPOFF byte = 0x28 // Display off
	cmdCASET   byte = 0x2A // Column address set
	cmdRASET   byte = 0x2B // Row address set
	cmdRAMWR   byte = 0x2C // Memory write
	cmdCOLMOD  byte = 0x3A // Interface pixel format
)

const (
	defaultFrequency = 20 * physic.MegaHertz
	defaultWidth     = 128
	defaultHeight    = 160
	resetSettle      = 10 * time.Millisecond
)

// Opts is the configuration for the ST7735S controller.
type Opts struct {
	// SPI clock (default: 20MHz)
	Frequency physic.Frequency

	// Largest single SPI transaction in bytes. When zero, the connection's
	// conn.Limits is used if it implements it, otherwise 4096.
	MaxTxSize int

	// Panel dimensions in pixels (default: 128x160). Windows reaching past
	// them are rejected.
	W int
	H int

	// Optional structured logger; nil disables logging.
	Logger *slog.Logger
}

// State mirrors what has been programmed into the controller. The ST7735S
// has no read path on this wiring, so the driver is the only record of it.
type State struct {
	Window AddressWindow
	Mode   ColorMode
}

// Dev is an open handle to an ST7735S controller.
//
// All methods are safe to call from multiple goroutines: each operation holds
// the bus for its full duration. Callers interleaving SetWindow and
// WritePixels from different goroutines still need their own ordering.
type Dev struct {
	b      *bus
	rst    gpio.PinOut
	rect   image.Rectangle
	logger *slog.Logger
	sleep  func(time.Duration)

	state  State
	closed bool
}

// NewSPI claims an SPI port for the controller.
//
// dc is the data/command select line and is required. rst is the reset line
// and may be nil, in which case Reset returns ErrNoResetPin. opts can be nil
// to use defaults.
//
// NewSPI does not touch the panel: call Reset and SetColorMode before drawing.
func NewSPI(p spi.Port, dc, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if p == nil || dc == nil {
		return nil, fmt.Errorf("%w: SPI port and DC pin are required", ErrInvalidArgument)
	}
	if opts == nil {
		opts = &Opts{}
	}
	w, h := opts.W, opts.H
	if w == 0 {
		w = defaultWidth
	}
	if h == 0 {
		h = defaultHeight
	}
	if w < 0 || w > 0x10000 || h < 0 || h > 0x10000 {
		return nil, fmt.Errorf("%w: panel size %dx%d", ErrInvalidArgument, w, h)
	}
	f := opts.Frequency
	if f == 0 {
		f = defaultFrequency
	}

	b, err := newBus(p, dc, f, opts.MaxTxSize)
	if err != nil {
		return nil, err
	}
	d := &Dev{
		b:      b,
		rst:    rst,
		rect:   image.Rect(0, 0, w, h),
		logger: opts.Logger,
		sleep:  time.Sleep,
	}
	d.debug("NewSPI", slog.String("port", p.String()), slog.String("freq", f.String()), slog.Int("chunk", b.chunk))
	return d, nil
}

// Reset pulses the reset line low then high, waiting 10ms after each edge.
//
// It does not change the mirrored State. A reset puts the real controller
// back to its power-on defaults, so callers normally follow it with
// SetColorMode and SetWindow.
func (d *Dev) Reset() error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	if d.rst == nil {
		return ErrNoResetPin
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return d.fail(&BusError{Op: "reset", Err: fmt.Errorf("rst low: %w", err)})
	}
	d.sleep(resetSettle)
	if err := d.rst.Out(gpio.High); err != nil {
		return d.fail(&BusError{Op: "reset", Err: fmt.Errorf("rst high: %w", err)})
	}
	d.sleep(resetSettle)
	d.debug("Reset")
	return nil
}

// SetColorMode programs the pixel format with COLMOD.
//
// ColorModeNone is rejected with ErrInvalidArgument. The mirrored mode only
// changes once the transaction completed.
func (d *Dev) SetColorMode(m ColorMode) error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	code, ok := m.code()
	if !ok {
		return fmt.Errorf("%w: color mode %v", ErrInvalidArgument, m)
	}
	if err := d.b.run(cmdCOLMOD, []byte{code}); err != nil {
		return d.fail(err)
	}
	d.state.Mode = m
	d.debug("SetColorMode", slog.String("mode", m.String()))
	return nil
}

// SetWindow programs the row range (RASET) then the column range (CASET).
//
// Each axis is recorded as soon as its own transaction completes, so if CASET
// fails the mirrored rows already hold the new range while the columns keep
// the old one, exactly like the controller's registers.
func (d *Dev) SetWindow(w AddressWindow) error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	return d.setWindow(w)
}

func (d *Dev) setWindow(w AddressWindow) error {
	if !w.Rect().In(d.rect) {
		return fmt.Errorf("%w: window %v outside panel %v", ErrInvalidArgument, w, d.rect)
	}
	// A failed CASET leaves the new rows with the old columns, so that
	// combination has to fit as well.
	if !fitsWrite(w) || !fitsWrite(AddressWindow{rows: w.rows, cols: d.state.Window.cols}) {
		return fmt.Errorf("%w: window %v exceeds %d bytes per write", ErrInvalidArgument, w, maxWriteBytes)
	}
	if err := d.b.run(cmdRASET, w.rows.encode()); err != nil {
		return d.fail(err)
	}
	d.state.Window.rows = w.rows
	if err := d.b.run(cmdCASET, w.cols.encode()); err != nil {
		return d.fail(err)
	}
	d.state.Window.cols = w.cols
	d.debug("SetWindow", slog.String("window", w.String()))
	return nil
}

// WritePixels sends buf to the controller's memory with RAMWR.
//
// len(buf) must equal ExpectedBytes for the current window and color mode;
// otherwise a *SizeMismatchError is returned and nothing is sent, since a
// short or long write would leave the controller's write cursor out of step
// until the next SetWindow.
func (d *Dev) WritePixels(buf []byte) error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	return d.writePixels(buf)
}

func (d *Dev) writePixels(buf []byte) error {
	if d.state.Mode == ColorModeNone {
		return ErrColorModeUnset
	}
	want := ExpectedBytes(d.state.Window, d.state.Mode)
	if uint64(len(buf)) != want {
		return &SizeMismatchError{Expected: int(want), Actual: len(buf)}
	}
	if err := d.b.run(cmdRAMWR, buf); err != nil {
		return d.fail(err)
	}
	d.debug("WritePixels", slog.Int("len", len(buf)), slog.Int("chunks", d.b.chunks(len(buf))))
	return nil
}

// Draw sets the window to w then writes buf into it, holding the bus across
// both. If setting the window fails, no pixels are written.
func (d *Dev) Draw(w AddressWindow, buf []byte) error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	if err := d.setWindow(w); err != nil {
		return err
	}
	return d.writePixels(buf)
}

// Fill paints window w with a single color. The color mode must be RGB565.
func (d *Dev) Fill(w AddressWindow, c rgb565.RGB565) error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	if err := d.needRGB565("Fill"); err != nil {
		return err
	}
	if err := d.setWindow(w); err != nil {
		return err
	}
	img := rgb565.NewImage(w.Rect())
	img.Fill(c)
	return d.writePixels(img.Pix)
}

// DrawImage converts the part of src starting at sp into RGB565 and writes it
// to the dst area of the panel. dst is clipped to Bounds; nothing is sent when
// the clipped area is empty. The color mode must be RGB565.
func (d *Dev) DrawImage(dst image.Rectangle, src image.Image, sp image.Point) error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	if err := d.needRGB565("DrawImage"); err != nil {
		return err
	}
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}
	w, err := WindowFromRect(dst)
	if err != nil {
		return err
	}
	if err := d.setWindow(w); err != nil {
		return err
	}
	img := rgb565.NewImage(dst)
	draw.Draw(img, dst, src, sp, draw.Src)
	return d.writePixels(img.Pix)
}

// Drawer returns d as a display.Drawer, whose Draw is DrawImage.
func (d *Dev) Drawer() display.Drawer {
	return drawer{d}
}

type drawer struct {
	*Dev
}

func (d drawer) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	return d.DrawImage(dst, src, sp)
}

var _ display.Drawer = drawer{}

func (d *Dev) needRGB565(op string) error {
	switch d.state.Mode {
	case RGB565:
		return nil
	case ColorModeNone:
		return ErrColorModeUnset
	}
	return fmt.Errorf("%w: %s needs RGB565, color mode is %v", ErrInvalidArgument, op, d.state.Mode)
}

// Invert turns display inversion on (INVON) or off (INVOFF).
func (d *Dev) Invert(invert bool) error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	cmd := cmdINVOFF
	if invert {
		cmd = cmdINVON
	}
	if err := d.b.run(cmd, nil); err != nil {
		return d.fail(err)
	}
	d.debug("Invert", slog.Bool("invert", invert))
	return nil
}

// Halt turns the display off (DISPOFF) and puts the controller to sleep
// (SLPIN). The SPI port stays claimed; Reset and the panel's wake-up sequence
// bring it back.
func (d *Dev) Halt() error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	if err := d.b.command(cmdDISPOFF); err != nil {
		return d.fail(err)
	}
	if err := d.b.command(cmdSLPIN); err != nil {
		return d.fail(err)
	}
	d.debug("Halt")
	return nil
}

// ExpectedBytes returns the length WritePixels currently expects.
func (d *Dev) ExpectedBytes() int {
	d.b.acquire()
	defer d.b.release()
	return int(ExpectedBytes(d.state.Window, d.state.Mode))
}

// State returns a copy of the mirrored controller state.
func (d *Dev) State() State {
	d.b.acquire()
	defer d.b.release()
	return d.state
}

// Close releases the SPI port. Every later call, including a second Close,
// returns ErrClosed.
func (d *Dev) Close() error {
	d.b.acquire()
	defer d.b.release()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	d.debug("Close")
	return d.b.close()
}

// ColorModel returns the color model of RGB565 pixel buffers.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds returns the panel bounds.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7735s.Dev{%s, %s, %dx%d}", d.b.c, d.b.dc, d.rect.Dx(), d.rect.Dy())
}

// fail logs a transport failure and returns it unchanged.
func (d *Dev) fail(err error) error {
	d.logattrs(slog.LevelWarn, "bus failure", slog.String("err", err.Error()))
	return err
}

func (d *Dev) debug(msg string, attrs ...slog.Attr) {
	d.logattrs(slog.LevelDebug, msg, attrs...)
}

func (d *Dev) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if d.logger == nil {
		return
	}
	d.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
