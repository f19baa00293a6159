// Package memory queues writes to a page-organised I2C EEPROM and drains
// them from the application's main loop.
//
// Writes are requested with [Memory.WriteRequest] and friends, which only
// buffer the data. Each call to [Memory.Service] then performs at most one
// request, split into one bus transaction per page with a settling delay
// after each, so the time a single call blocks stays bounded:
//
//	mem := memory.New(bus, memory.Config{})
//	mem.WriteRequest(0x0100, settings)
//	for {
//		if err := mem.Service(); err != nil {
//			log.Print(err)
//		}
//		// ... other work
//	}
//
// Reads bypass the queue and are performed immediately.
package memory

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/rabidaudio/eeprom-queue/debug"
	"github.com/rabidaudio/eeprom-queue/paging"
	"github.com/rabidaudio/eeprom-queue/queue"
)

// Bus performs register-addressed transactions with a device. Register
// addresses are 16 bits wide and sent most significant byte first.
// Device addresses are in the 8-bit (shifted) form, e.g. 0xA0.
type Bus interface {
	MemWrite(dev, reg uint16, data []byte, timeout time.Duration) error
	MemRead(dev, reg uint16, data []byte, timeout time.Duration) error
}

// Guard controls a hardware write-protect line. Unlock is called before a
// request is written and Lock once it completes.
type Guard interface {
	Unlock() error
	Lock() error
}

// LogMode configures the destination for debug logs.
type LogMode int

const (
	LogModeSilent LogMode = 0 // disable logs
	LogModeStdErr LogMode = 1 // log to stderr
	LogModeLogger LogMode = 2 // log to the supplied log.Logger instance
)

const (
	DefaultDeviceAddress = 0xA0
	DefaultWriteTimeout  = 2 * time.Second
	DefaultReadTimeout   = 1 * time.Second
	DefaultWriteDelay    = 5 * time.Millisecond
)

// Config describes the device and how to talk to it. Zero values are
// replaced with the defaults for an AT24C512.
type Config struct {
	DeviceAddress uint16          // 8-bit device address, DefaultDeviceAddress if 0
	Geometry      paging.Geometry // page layout, paging.AT24C512 if PageSize is 0
	WriteTimeout  time.Duration   // per page write, DefaultWriteTimeout if 0
	ReadTimeout   time.Duration   // per page read, DefaultReadTimeout if 0
	WriteDelay    time.Duration   // write cycle time after each page, DefaultWriteDelay if 0. Set negative to disable
	Sleep         func(time.Duration)
	WriteProtect  Guard       // optional
	LogMode       LogMode     // direct the library logs
	Logger        *log.Logger // if LogMode == LogModeLogger, the log.Logger to use
}

func (c Config) withDefaults() Config {
	if c.DeviceAddress == 0 {
		c.DeviceAddress = DefaultDeviceAddress
	}
	if c.Geometry.PageSize == 0 {
		c.Geometry = paging.AT24C512
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteDelay == 0 {
		c.WriteDelay = DefaultWriteDelay
	} else if c.WriteDelay < 0 {
		c.WriteDelay = 0
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
	return c
}

// Request is a pending write.
type Request struct {
	Address uint16
	Size    int
}

func (r Request) String() string {
	return fmt.Sprintf("%d bytes at %#04x", r.Size, r.Address)
}

// Memory is an EEPROM with a queue of pending writes.
//
// Requests are serviced strictly in the order they were made. The request
// list and the buffer holding their data are only changed together, under
// one lock, so Memory may be shared between goroutines. Bus access
// (Service and the read methods) is serialized separately, so requesting
// a write never waits for the bus.
type Memory struct {
	conf   Config
	bus    Bus
	logger *log.Logger

	busMtx sync.Mutex // held for any bus access and for removing requests

	mtx      sync.Mutex // guards the fields below
	requests []Request
	buf      queue.Queue
	disabled bool
}

// New returns a Memory using bus. It panics if the configured page size is
// not a power of two.
func New(bus Bus, conf Config) *Memory {
	conf = conf.withDefaults()
	if err := conf.Geometry.Validate(); err != nil {
		panic(err)
	}

	m := &Memory{conf: conf, bus: bus}
	switch conf.LogMode {
	case LogModeStdErr:
		m.logger = log.New(os.Stderr, "eeprom: ", log.LstdFlags)
	case LogModeLogger:
		m.logger = conf.Logger
	}
	return m
}

func (m *Memory) logf(format string, v ...any) {
	if m.logger != nil {
		m.logger.Printf(format, v...)
	}
}

// Geometry returns the page layout in use.
func (m *Memory) Geometry() paging.Geometry {
	return m.conf.Geometry
}

// WriteRequest queues a write of data at addr. The data is copied.
func (m *Memory) WriteRequest(addr uint16, data []byte) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.buf.Append(data)
	m.requests = append(m.requests, Request{Address: addr, Size: len(data)})
	m.checkBacklog()
}

// WritePageRequest queues a write of data at offset within page.
func (m *Memory) WritePageRequest(page, offset uint16, data []byte) {
	m.WriteRequest(m.conf.Geometry.Address(page, offset), data)
}

// ErasePageRequest queues a write filling page with 0xFF.
func (m *Memory) ErasePageRequest(page uint16) {
	blank := bytes.Repeat([]byte{0xFF}, int(m.conf.Geometry.PageSize))
	m.WritePageRequest(page, 0, blank)
}

// SetWriteEnable pauses (false) or resumes (true) servicing of requests.
// Requests made while disabled are kept. Writes are enabled initially.
func (m *Memory) SetWriteEnable(enable bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.disabled = !enable
}

// WriteEnabled reports whether Service will perform requests.
func (m *Memory) WriteEnabled() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return !m.disabled
}

// Pending returns the number of queued requests.
func (m *Memory) Pending() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.requests)
}

// Buffered returns the number of bytes waiting to be written.
func (m *Memory) Buffered() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.buf.Len()
}

// Requests returns the queued requests, next to be serviced first.
func (m *Memory) Requests() []Request {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return append([]Request(nil), m.requests...)
}

// Service writes the oldest queued request to the device. It does nothing
// if writes are disabled or nothing is queued.
//
// The request is written one page at a time, waiting for the write cycle
// after each page, and Service blocks until all pages are written.
// If a page write fails the request stays queued and the returned
// *BusError describes the failed page; the next call starts the request
// over from its first page.
//
// A request of zero bytes is removed without touching the bus or the
// write-protect line.
func (m *Memory) Service() (err error) {
	m.busMtx.Lock()
	defer m.busMtx.Unlock()

	m.mtx.Lock()
	if m.disabled || len(m.requests) == 0 {
		m.mtx.Unlock()
		return nil
	}
	req := m.requests[0]
	p, err := m.buf.Peek(req.Size)
	if err != nil {
		pending, buffered := len(m.requests), m.buf.Len()
		m.reset()
		m.mtx.Unlock()
		m.logf("backlog out of sync, discarded %d requests and %d bytes", pending, buffered)
		return fmt.Errorf("%w: request of %v with %d bytes buffered: %w", ErrOutOfSync, req, buffered, err)
	}
	// Appends may move the buffer contents, so write from a copy.
	data := bytes.Clone(p)
	m.mtx.Unlock()

	if g := m.conf.WriteProtect; g != nil && req.Size > 0 {
		if err := g.Unlock(); err != nil {
			return fmt.Errorf("eeprom: write protect: %w", err)
		}
		defer func() {
			if lerr := g.Lock(); lerr != nil && err == nil {
				err = fmt.Errorf("eeprom: write protect: %w", lerr)
			}
		}()
	}

	if err := m.write(req.Address, data); err != nil {
		m.logf("%v failed, will retry: %v", req, err)
		return err
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.requests = m.requests[1:]
	if len(m.requests) == 0 {
		m.requests = nil
	}
	err = m.buf.Drop(req.Size)
	debug.Assert(err == nil, "request data removed while servicing")
	m.checkBacklog()
	m.logf("wrote %v", req)
	return nil
}

// Drain services requests until none are left or one fails.
// It returns ErrWriteDisabled if writes are disabled and requests remain.
func (m *Memory) Drain() error {
	for m.Pending() > 0 {
		if !m.WriteEnabled() {
			return ErrWriteDisabled
		}
		if err := m.Service(); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops the oldest queued request without writing it and reports
// whether there was one. It is the way out of a request that keeps failing.
func (m *Memory) Discard() bool {
	m.busMtx.Lock()
	defer m.busMtx.Unlock()
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.requests) == 0 {
		return false
	}
	req := m.requests[0]
	m.requests = m.requests[1:]
	if err := m.buf.Drop(req.Size); err != nil {
		m.reset()
	}
	m.checkBacklog()
	m.logf("discarded %v", req)
	return true
}

// Flush drops all queued requests.
func (m *Memory) Flush() {
	m.busMtx.Lock()
	defer m.busMtx.Unlock()
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.reset()
}

// caller must hold mtx
func (m *Memory) reset() {
	m.requests = nil
	m.buf.Clear()
}

// caller must hold mtx
func (m *Memory) checkBacklog() {
	if debug.Enabled {
		n := 0
		for _, r := range m.requests {
			n += r.Size
		}
		debug.Assert(n == m.buf.Len(), "buffered data does not match requests")
	}
}

func (m *Memory) write(addr uint16, p []byte) error {
	for _, t := range m.conf.Geometry.Split(addr, len(p)) {
		err := m.bus.MemWrite(m.conf.DeviceAddress, t.Address, p[t.Pos:t.Pos+t.Len], m.conf.WriteTimeout)
		if err != nil {
			return &BusError{Op: "write", Device: m.conf.DeviceAddress, Address: t.Address, Len: t.Len, Err: err}
		}
		if m.conf.WriteDelay > 0 {
			m.conf.Sleep(m.conf.WriteDelay)
		}
	}
	return nil
}

// Read fills p with the contents of the device starting at addr, one page
// at a time. Queued writes are not taken into account.
func (m *Memory) Read(addr uint16, p []byte) error {
	m.busMtx.Lock()
	defer m.busMtx.Unlock()

	for _, t := range m.conf.Geometry.Split(addr, len(p)) {
		err := m.bus.MemRead(m.conf.DeviceAddress, t.Address, p[t.Pos:t.Pos+t.Len], m.conf.ReadTimeout)
		if err != nil {
			return &BusError{Op: "read", Device: m.conf.DeviceAddress, Address: t.Address, Len: t.Len, Err: err}
		}
	}
	return nil
}

// ReadPage is like Read with the start given as page and offset.
func (m *Memory) ReadPage(page, offset uint16, p []byte) error {
	return m.Read(m.conf.Geometry.Address(page, offset), p)
}
