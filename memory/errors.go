package memory

import (
	"fmt"
)

// MemoryError is returned for failures that do not come from the bus.
type MemoryError int

const (
	// ErrOutOfSync means the payload buffer held fewer bytes than the
	// request at the head of the backlog. The backlog is discarded.
	ErrOutOfSync MemoryError = 1
	// ErrWriteDisabled is returned by Drain while writes are disabled.
	ErrWriteDisabled MemoryError = 2
	// ErrOutOfRange is returned for offsets outside the device.
	ErrOutOfRange MemoryError = 3
)

func (e MemoryError) Error() string {
	return fmt.Sprintf("eeprom: %v", e.name())
}

func (e MemoryError) name() string {
	switch e {
	case ErrOutOfSync:
		return "write requests and buffered data out of sync"
	case ErrWriteDisabled:
		return "writes disabled"
	case ErrOutOfRange:
		return "offset out of range"
	default:
		return fmt.Sprintf("unknown error code: %v", int(e))
	}
}

// BusError records a failed bus transaction and the page access it belonged to.
type BusError struct {
	Op      string // "read" or "write"
	Device  uint16
	Address uint16
	Len     int
	Err     error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("eeprom: %s %d bytes at %#02x:%#04x: %v", e.Op, e.Len, e.Device, e.Address, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }
