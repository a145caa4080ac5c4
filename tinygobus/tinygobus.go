// Package tinygobus adapts TinyGo buses and pins to periph.io interfaces so
// that st7735s can run on microcontrollers.
//
// The caller configures the peripheral (clock, pins, mode) with TinyGo's
// machine package first; the adapters only move bytes and levels.
package tinygobus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

// Port wraps a configured TinyGo SPI bus. It implements spi.Port and, once
// connected, spi.Conn and conn.Limits.
type Port struct {
	Bus drivers.SPI
	// CS drives chip select. It is nil when the peripheral drives CS itself
	// or CS is tied low.
	CS func(high bool)
	// Name is returned by String.
	Name string
	// MaxTx is the largest transfer the bus accepts, 0 when unknown.
	MaxTx int

	connected bool
	mode      spi.Mode
}

// String implements spi.Port.
func (p *Port) String() string {
	if p.Name == "" {
		return "tinygobus.Port"
	}
	return p.Name
}

// Connect implements spi.Port. The bus clock was fixed by the caller's
// machine.SPIConfig, so f is only checked for sign. Only mode 0 with 8-bit
// words is supported.
func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if p.Bus == nil {
		return nil, errors.New("tinygobus: nil SPI bus")
	}
	if p.connected {
		return nil, errors.New("tinygobus: already connected")
	}
	if f < 0 {
		return nil, fmt.Errorf("tinygobus: invalid frequency %s", f)
	}
	if mode&spi.Mode3 != spi.Mode0 {
		return nil, fmt.Errorf("tinygobus: unsupported mode %v", mode)
	}
	if bits != 8 {
		return nil, fmt.Errorf("tinygobus: unsupported word size %d", bits)
	}
	p.connected = true
	p.mode = mode
	p.setCS(true)
	return p, nil
}

// Halt implements conn.Resource. It releases chip select.
func (p *Port) Halt() error {
	p.setCS(true)
	return nil
}

// Close implements io.Closer and releases the connection.
func (p *Port) Close() error {
	p.setCS(true)
	p.connected = false
	return nil
}

// Tx implements conn.Conn. CS is asserted for the duration of the transfer.
func (p *Port) Tx(w, r []byte) error {
	p.setCS(false)
	err := p.Bus.Tx(w, r)
	p.setCS(true)
	return err
}

// TxPackets implements spi.Conn. CS stays asserted between packets that set
// KeepCS and is always released on return.
func (p *Port) TxPackets(pkts []spi.Packet) error {
	defer p.setCS(true)
	for _, pkt := range pkts {
		if pkt.BitsPerWord != 0 && pkt.BitsPerWord != 8 {
			return fmt.Errorf("tinygobus: unsupported word size %d", pkt.BitsPerWord)
		}
		p.setCS(false)
		if err := p.Bus.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
		if !pkt.KeepCS {
			p.setCS(true)
		}
	}
	return nil
}

// Duplex implements conn.Conn. It reports the duplex requested in Connect.
func (p *Port) Duplex() conn.Duplex {
	if p.mode&spi.HalfDuplex != 0 {
		return conn.Half
	}
	return conn.Full
}

// MaxTxSize implements conn.Limits.
func (p *Port) MaxTxSize() int {
	return p.MaxTx
}

func (p *Port) setCS(high bool) {
	if p.CS != nil {
		p.CS(high)
	}
}

// Pin wraps a TinyGo output pin setter, typically machine.Pin.Set, as a
// gpio.PinOut.
type Pin struct {
	N   string
	Set func(high bool)
}

// String implements conn.Resource.
func (p *Pin) String() string { return p.N }

// Halt implements conn.Resource.
func (p *Pin) Halt() error { return nil }

// Name implements pin.Pin.
func (p *Pin) Name() string { return p.N }

// Number implements pin.Pin.
func (p *Pin) Number() int { return -1 }

// Function implements pin.Pin.
func (p *Pin) Function() string { return "Out" }

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	if p.Set == nil {
		return fmt.Errorf("tinygobus: pin %s has no setter", p.N)
	}
	p.Set(bool(l))
	return nil
}

// PWM implements gpio.PinOut. It is not supported.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("tinygobus: PWM not supported")
}

var (
	_ spi.Port    = &Port{}
	_ spi.Conn    = &Port{}
	_ conn.Limits = &Port{}
	_ gpio.PinOut = &Pin{}
)
