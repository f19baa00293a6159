//go:build linux

package i2c

import (
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// from linux/i2c-dev.h and linux/i2c.h
const (
	ioctlTimeout = 0x0702
	ioctlRdwr    = 0x0707

	flagRead = 0x0001
)

// i2c_msg
type message struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   unsafe.Pointer
}

// i2c_rdwr_ioctl_data
type rdwrData struct {
	msgs  unsafe.Pointer
	nmsgs uint32
}

// Bus is an open i2c-dev character device. It is safe for concurrent use.
type Bus struct {
	path string

	mtx     sync.Mutex
	fd      int
	timeout int // current I2C_TIMEOUT, 0 if never set
}

// OpenDevice opens the i2c-dev device at path.
func OpenDevice(path string) (*Bus, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %v: %w", path, err)
	}
	return &Bus{path: path, fd: fd}, nil
}

// MemWrite writes data to register reg of device dev.
func (b *Bus) MemWrite(dev, reg uint16, data []byte, timeout time.Duration) error {
	frame := writeFrame(reg, data)
	if len(frame) > maxMsgLen {
		return ErrTooLong
	}

	msgs := []message{
		{addr: addr7(dev), len: uint16(len(frame)), buf: unsafe.Pointer(&frame[0])},
	}
	err := b.transfer(msgs, timeout)
	runtime.KeepAlive(frame)
	if err != nil {
		return fmt.Errorf("i2c: write %#02x: %w", dev, err)
	}
	return nil
}

// MemRead reads len(data) bytes from register reg of device dev.
func (b *Bus) MemRead(dev, reg uint16, data []byte, timeout time.Duration) error {
	if len(data) == 0 {
		return nil
	}
	if len(data) > maxMsgLen {
		return ErrTooLong
	}

	regAddr := writeFrame(reg, nil)
	msgs := []message{
		{addr: addr7(dev), len: uint16(len(regAddr)), buf: unsafe.Pointer(&regAddr[0])},
		{addr: addr7(dev), flags: flagRead, len: uint16(len(data)), buf: unsafe.Pointer(&data[0])},
	}
	err := b.transfer(msgs, timeout)
	runtime.KeepAlive(regAddr)
	runtime.KeepAlive(data)
	if err != nil {
		return fmt.Errorf("i2c: read %#02x: %w", dev, err)
	}
	return nil
}

func (b *Bus) transfer(msgs []message, timeout time.Duration) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.fd < 0 {
		return unix.EBADF
	}
	if t := timeoutUnits(timeout); t != b.timeout {
		if err := unix.IoctlSetInt(b.fd, ioctlTimeout, t); err != nil {
			return err
		}
		b.timeout = t
	}

	data := rdwrData{msgs: unsafe.Pointer(&msgs[0]), nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), ioctlRdwr, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(msgs)
	if errno != 0 {
		return errno
	}
	return nil
}

// Close releases the device.
func (b *Bus) Close() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	return err
}

func (b *Bus) String() string {
	return b.path
}
