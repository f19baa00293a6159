//go:build !linux

package i2c

import "time"

// Bus is an open i2c-dev character device.
type Bus struct{}

// OpenDevice returns ErrNotSupported.
func OpenDevice(path string) (*Bus, error) {
	return nil, ErrNotSupported
}

func (*Bus) MemWrite(dev, reg uint16, data []byte, timeout time.Duration) error {
	return ErrNotSupported
}

func (*Bus) MemRead(dev, reg uint16, data []byte, timeout time.Duration) error {
	return ErrNotSupported
}

func (*Bus) Close() error {
	return nil
}
