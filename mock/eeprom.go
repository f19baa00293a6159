// Package mock provides in-memory stand-ins for the hardware used by the
// memory package, for tests and for running without a device attached.
package mock

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInjected is the default error for FailWrites and FailReads.
	ErrInjected = errors.New("mock: injected bus failure")
	// ErrNoAck is returned for transactions addressed to another device.
	ErrNoAck = errors.New("mock: no acknowledge from device")
)

// Op is a recorded bus transaction.
type Op struct {
	Write   bool
	Device  uint16
	Address uint16
	Len     int
	Timeout time.Duration
}

func (op Op) String() string {
	dir := "read"
	if op.Write {
		dir = "write"
	}
	return fmt.Sprintf("%s %#02x:%#04x+%d", dir, op.Device, op.Address, op.Len)
}

// EEPROM simulates a page-organised 24-series EEPROM on an I2C bus.
// The zero value is a 64 KiB part with 128 byte pages at address 0xA0
// whose cells read as 0xFF.
//
// Like the real part, bytes written past the end of a page wrap around
// to the start of the same page, and reads wrap at the end of the array.
type EEPROM struct {
	Device   uint16 // 8-bit device address, 0xA0 if zero
	PageSize int    // bytes per page, 128 if zero
	Size     int    // total bytes, 65536 if zero

	// FailWrites and FailReads make the next n transactions of that kind
	// fail with Err (ErrInjected if nil). Failed writes change nothing.
	FailWrites int
	FailReads  int
	Err        error

	Ops []Op // every transaction, including failed ones

	mem []byte
}

func (e *EEPROM) init() {
	if e.Device == 0 {
		e.Device = 0xA0
	}
	if e.PageSize == 0 {
		e.PageSize = 128
	}
	if e.Size == 0 {
		e.Size = 1 << 16
	}
	if e.mem == nil {
		e.mem = make([]byte, e.Size)
		for i := range e.mem {
			e.mem[i] = 0xFF
		}
	}
}

func (e *EEPROM) fail() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInjected
}

// MemWrite writes data starting at register address reg.
func (e *EEPROM) MemWrite(dev, reg uint16, data []byte, timeout time.Duration) error {
	e.init()
	e.Ops = append(e.Ops, Op{Write: true, Device: dev, Address: reg, Len: len(data), Timeout: timeout})
	if dev != e.Device {
		return ErrNoAck
	}
	if e.FailWrites > 0 {
		e.FailWrites--
		return e.fail()
	}

	base := int(reg) - int(reg)%e.PageSize
	offset := int(reg) % e.PageSize
	for i, b := range data {
		e.mem[(base+(offset+i)%e.PageSize)%e.Size] = b
	}
	return nil
}

// MemRead fills data from register address reg onwards.
func (e *EEPROM) MemRead(dev, reg uint16, data []byte, timeout time.Duration) error {
	e.init()
	e.Ops = append(e.Ops, Op{Write: false, Device: dev, Address: reg, Len: len(data), Timeout: timeout})
	if dev != e.Device {
		return ErrNoAck
	}
	if e.FailReads > 0 {
		e.FailReads--
		return e.fail()
	}

	for i := range data {
		data[i] = e.mem[(int(reg)+i)%e.Size]
	}
	return nil
}

// Bytes returns the memory array. It is not a copy.
func (e *EEPROM) Bytes() []byte {
	e.init()
	return e.mem
}

// Writes returns the recorded write transactions.
func (e *EEPROM) Writes() []Op {
	var ops []Op
	for _, op := range e.Ops {
		if op.Write {
			ops = append(ops, op)
		}
	}
	return ops
}

// Reads returns the recorded read transactions.
func (e *EEPROM) Reads() []Op {
	var ops []Op
	for _, op := range e.Ops {
		if !op.Write {
			ops = append(ops, op)
		}
	}
	return ops
}
