// Package st7735s drives an ST7735S TFT controller over SPI.
//
// The ST7735S is a 132x162 RGB controller found on most small 1.8" and 1.44"
// TFT panels. This driver covers the memory-write path: selecting a pixel
// format, programming the address window and streaming pixel data. The
// controller is write-only on this wiring, so the driver keeps its own mirror
// of the programmed window and color mode and uses it to check every pixel
// buffer before it reaches the bus.
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/SCK     → SPI Clock (SCLK)
//	SDA         → SPI Data (MOSI)
//	DC / A0     → GPIO (any available pin)
//	CS          → SPI Chip Select
//	RES / RST   → Optional: GPIO for hardware reset
//
// # Basic Usage
//
//	if _, err := host.Init(); err != nil {
//		log.Fatal(err)
//	}
//	p, err := spireg.Open("")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	dev, err := st7735s.NewSPI(p, gpioreg.ByName("GPIO25"), gpioreg.ByName("GPIO26"), nil)
//	if err != nil {
//		p.Close()
//		log.Fatal(err)
//	}
//	defer dev.Close() // also closes p
//
//	if err := dev.Reset(); err != nil {
//		log.Fatal(err)
//	}
//	if err := dev.SetColorMode(st7735s.RGB565); err != nil {
//		log.Fatal(err)
//	}
//
//	rows, _ := st7735s.NewAddressSet(0, 7)
//	cols, _ := st7735s.NewAddressSet(0, 15)
//	w := st7735s.NewAddressWindow(rows, cols)
//
//	buf := make([]byte, st7735s.ExpectedBytes(w, st7735s.RGB565))
//	// ... fill buf with big-endian RGB565 pixels, or use package rgb565 ...
//	if err := dev.Draw(w, buf); err != nil {
//		log.Fatal(err)
//	}
//
// # Buffer Sizes
//
// WritePixels only accepts a buffer of exactly ExpectedBytes(window, mode)
// bytes for the window and mode last programmed:
//
//	RGB444: 3 bytes per 2 pixels (12 bits per pixel)
//	RGB565: 2 bytes per pixel
//	RGB666: 3 bytes per pixel
//
// Any other length is refused with a *SizeMismatchError before a single byte
// is sent.
//
// # Transfers
//
// Commands are sent with DC low and their parameters with DC high. Pixel data
// longer than the transport's maximum transaction size is split into chunks a
// few bytes below that ceiling; the whole payload is sent while the driver
// holds the bus, so no other command can land in the middle of it.
//
// Failed transfers are returned as *BusError and never retried.
//
// # image.Image
//
// DrawImage, and the display.Drawer returned by Drawer, convert any image
// through rgb565.Model before writing it, so the color mode must be RGB565.
//
// # Datasheet
//
// Command codes and parameter layouts follow the Sitronix ST7735S datasheet.
package st7735s
