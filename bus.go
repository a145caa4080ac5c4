package st7735s

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	// defaultMaxTxSize is used when neither Opts nor the connection report a
	// transfer ceiling.
	defaultMaxTxSize = 4096
	// txHeadroom is kept free below the ceiling for transaction framing.
	txHeadroom = 4
)

// bus owns the SPI connection and the data/command line.
//
// mu is held by the driver for the whole of each multi-transaction operation,
// so a command byte and its payload, or both axes of a window, are never
// separated by another transaction on the same device.
type bus struct {
	mu    sync.Mutex
	port  spi.Port
	c     spi.Conn
	dc    gpio.PinOut
	chunk int
}

// newBus connects to the port in half-duplex mode 0 with 8-bit words.
func newBus(p spi.Port, dc gpio.PinOut, f physic.Frequency, maxTxSize int) (*bus, error) {
	c, err := p.Connect(f, spi.Mode0|spi.HalfDuplex, 8)
	if err != nil {
		return nil, &BusError{Op: "connect", Err: err}
	}
	if maxTxSize == 0 {
		maxTxSize = defaultMaxTxSize
		if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 0 {
			maxTxSize = l.MaxTxSize()
		}
	}
	if maxTxSize <= txHeadroom {
		return nil, fmt.Errorf("%w: max transfer size %d too small", ErrInvalidArgument, maxTxSize)
	}
	return &bus{
		port:  p,
		c:     c,
		dc:    dc,
		chunk: maxTxSize - txHeadroom,
	}, nil
}

func (b *bus) acquire() { b.mu.Lock() }

func (b *bus) release() { b.mu.Unlock() }

// command sends a single command byte with DC low.
func (b *bus) command(cmd byte) error {
	if err := b.dc.Out(gpio.Low); err != nil {
		return &BusError{Op: "command", Err: fmt.Errorf("dc low: %w", err)}
	}
	if err := b.c.Tx([]byte{cmd}, nil); err != nil {
		return &BusError{Op: "command", Err: fmt.Errorf("0x%02X: %w", cmd, err)}
	}
	return nil
}

// data sends p with DC high, one transaction per chunk.
func (b *bus) data(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := b.dc.Out(gpio.High); err != nil {
		return &BusError{Op: "data", Err: fmt.Errorf("dc high: %w", err)}
	}
	for off := 0; off < len(p); off += b.chunk {
		end := off + b.chunk
		if end > len(p) {
			end = len(p)
		}
		if err := b.c.Tx(p[off:end], nil); err != nil {
			return &BusError{Op: "data", Err: fmt.Errorf("bytes %d-%d of %d: %w", off, end, len(p), err)}
		}
	}
	return nil
}

// run sends cmd followed by its payload. The caller holds the bus.
func (b *bus) run(cmd byte, payload []byte) error {
	if err := b.command(cmd); err != nil {
		return err
	}
	return b.data(payload)
}

// chunks returns the number of data transactions needed for n bytes.
func (b *bus) chunks(n int) int {
	return (n + b.chunk - 1) / b.chunk
}

// close releases the port when the driver was handed a closable one.
func (b *bus) close() error {
	if c, ok := b.port.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return &BusError{Op: "close", Err: err}
		}
	}
	return nil
}
