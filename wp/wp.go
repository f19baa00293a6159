// Package wp drives the write-protect (WP) pin of a 24-series EEPROM from
// a Raspberry Pi GPIO.
//
// The EEPROM ignores writes while WP is high. A Pin keeps the line high
// and only pulls it low while the memory package writes a request, which
// protects the contents from bus glitches and stray transactions.
package wp

import (
	"fmt"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

type output interface {
	Output()
	High()
	Low()
}

// Pin is a write-protect line. It implements memory.Guard.
type Pin struct {
	out      output
	inverted bool
	opened   bool
}

// Open maps the GPIO registers and configures BCM pin bcm as the
// write-protect output, initially protected. Set inverted when the line
// passes through an inverting buffer, so that low means protected.
func Open(bcm uint8, inverted bool) (*Pin, error) {
	err := rpio.Open()
	if err != nil {
		return nil, fmt.Errorf("wp: %w", err)
	}
	p := newPin(rpio.Pin(bcm), inverted)
	p.opened = true
	return p, nil
}

func newPin(out output, inverted bool) *Pin {
	p := &Pin{out: out, inverted: inverted}
	out.Output()
	p.Lock()
	return p
}

func (p *Pin) set(protect bool) {
	if protect != p.inverted {
		p.out.High()
	} else {
		p.out.Low()
	}
}

// Unlock allows writes.
func (p *Pin) Unlock() error {
	p.set(false)
	return nil
}

// Lock protects the memory from writes.
func (p *Pin) Lock() error {
	p.set(true)
	return nil
}

// Close leaves the memory protected and unmaps the GPIO registers.
func (p *Pin) Close() error {
	p.Lock()
	if p.opened {
		p.opened = false
		return rpio.Close()
	}
	return nil
}
