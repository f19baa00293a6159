// Package i2c talks to devices on a Linux i2c-dev bus (/dev/i2c-N).
//
// It provides the register-addressed transactions used by the memory
// package: a write of a 16-bit register address followed by data, and a
// write of the register address followed by a repeated start and a read.
//
// Only linux is supported. On other platforms Open returns ErrNotSupported.
package i2c

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrNotSupported is returned on platforms without i2c-dev.
var ErrNotSupported = errors.New("i2c: not supported on this platform")

// ErrTooLong is returned for transfers that do not fit in one i2c message.
var ErrTooLong = errors.New("i2c: transfer too long")

const maxMsgLen = 1<<16 - 1

// Open opens bus number n, e.g. 1 for /dev/i2c-1 on a Raspberry Pi.
func Open(n int) (*Bus, error) {
	return OpenDevice(fmt.Sprintf("/dev/i2c-%d", n))
}

// addr7 converts an 8-bit (shifted) device address, as used in datasheets
// and by the memory package, to the 7-bit address the kernel expects.
func addr7(dev uint16) uint16 {
	return dev >> 1
}

// writeFrame prefixes data with the big endian register address.
func writeFrame(reg uint16, data []byte) []byte {
	frame := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(frame, reg)
	copy(frame[2:], data)
	return frame
}

// timeoutUnits converts d to the 10ms units of the I2C_TIMEOUT ioctl,
// rounding up. Non-positive durations select the minimum.
func timeoutUnits(d time.Duration) int {
	const unit = 10 * time.Millisecond
	if d <= 0 {
		return 1
	}
	return int((d + unit - 1) / unit)
}
