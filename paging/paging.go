// Package paging splits memory accesses into transfers that never cross
// a page boundary of the device.
//
// Page-organised EEPROMs latch a single page per write cycle: bytes sent
// past the end of a page wrap around to its start. Every write (and, for
// symmetry, every read) is therefore issued as one bus transaction per page.
package paging

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrPageSize is returned by Validate for page sizes that are not a power of two.
var ErrPageSize = errors.New("paging: page size must be a power of two")

// Geometry describes the page layout of a device. PageSize must be a power
// of two. PageCount is informational and may be zero when unknown.
type Geometry struct {
	PageSize  uint16 // bytes per page
	PageCount uint16 // number of pages
}

// Page layouts of common 24-series parts.
var (
	AT24C512 = Geometry{PageSize: 128, PageCount: 512}
	AT24C256 = Geometry{PageSize: 64, PageCount: 512}
	AT24C32  = Geometry{PageSize: 32, PageCount: 128}
)

// NewGeometry returns a Geometry and panics if pageSize is not a power of two.
func NewGeometry(pageSize, pageCount uint16) Geometry {
	g := Geometry{PageSize: pageSize, PageCount: pageCount}
	if err := g.Validate(); err != nil {
		panic(err)
	}
	return g
}

// Validate reports whether the page size is usable.
func (g Geometry) Validate() error {
	if g.PageSize == 0 || g.PageSize&(g.PageSize-1) != 0 {
		return fmt.Errorf("%w: %d", ErrPageSize, g.PageSize)
	}
	return nil
}

func (g Geometry) mustValidate() {
	if err := g.Validate(); err != nil {
		panic(err)
	}
}

// AddressBits is the bit position at which the page number starts within
// a device address.
func (g Geometry) AddressBits() uint {
	g.mustValidate()
	return uint(bits.TrailingZeros16(g.PageSize))
}

// Capacity is the device size in bytes, or 0 if PageCount is unknown.
func (g Geometry) Capacity() int {
	return int(g.PageSize) * int(g.PageCount)
}

// Address returns the absolute address of offset within page. Offsets
// beyond the page size carry into the following pages.
func (g Geometry) Address(page, offset uint16) uint16 {
	g.mustValidate()
	return uint16(int(page)*int(g.PageSize) + int(offset))
}

// Locate splits an absolute address into page and offset.
func (g Geometry) Locate(addr uint16) (page, offset uint16) {
	g.mustValidate()
	return addr / g.PageSize, addr % g.PageSize
}

// Transfer is a single bus access confined to one page.
type Transfer struct {
	Address uint16 // device address of the first byte
	Pos     int    // position of the first byte in the caller's buffer
	Len     int    // number of bytes
}

func (t Transfer) String() string {
	return fmt.Sprintf("%#04x+%d", t.Address, t.Len)
}

// Split returns the transfers needed to access size bytes starting at addr,
// in address order. The first transfer runs up to the end of the starting
// page, the following ones cover whole pages and the last one the remainder.
// A size of zero yields no transfers.
//
// Addresses are 16 bits wide and wrap around at the end of the address space.
func (g Geometry) Split(addr uint16, size int) []Transfer {
	if size < 0 {
		panic("paging: negative size")
	}
	shift := g.AddressBits()
	if size == 0 {
		return nil
	}

	ps := int(g.PageSize)
	page, offset := int(addr)/ps, int(addr)%ps

	out := make([]Transfer, 0, g.Pages(addr, size))
	pos := 0
	for size > 0 {
		n := ps - offset
		if size+offset < ps {
			n = size
		}
		out = append(out, Transfer{
			Address: uint16(page<<shift | offset),
			Pos:     pos,
			Len:     n,
		})
		page++
		offset = 0
		size -= n
		pos += n
	}
	return out
}

// SplitPage is like Split with the start given as page and offset.
func (g Geometry) SplitPage(page, offset uint16, size int) []Transfer {
	return g.Split(g.Address(page, offset), size)
}

// Pages returns the number of transfers Split produces for the same arguments.
func (g Geometry) Pages(addr uint16, size int) int {
	g.mustValidate()
	if size <= 0 {
		return 0
	}
	ps := int(g.PageSize)
	offset := int(addr) % ps
	return (offset + size + ps - 1) / ps
}
