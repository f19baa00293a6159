// Command eeprom-loop exercises an AT24C512 on a Raspberry Pi.
//
// It queues a test pattern, drains the queue from a main loop the way
// firmware would, reads the pattern back and compares it.
//
//	eeprom-loop -bus 1 -page 4 -len 300 -wp 17
package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabidaudio/eeprom-queue/i2c"
	"github.com/rabidaudio/eeprom-queue/memory"
	"github.com/rabidaudio/eeprom-queue/wp"
)

func main() {
	var (
		busNum  = flag.Int("bus", 1, "i2c bus number")
		devAddr = flag.Uint("addr", memory.DefaultDeviceAddress, "8-bit device address")
		wpPin   = flag.Int("wp", -1, "BCM pin wired to WP, -1 if not connected")
		page    = flag.Uint("page", 0, "first page to write")
		offset  = flag.Uint("offset", 0, "offset within the first page")
		length  = flag.Int("len", 256, "bytes to write")
		erase   = flag.Bool("erase", false, "erase the pages afterwards")
		period  = flag.Duration("period", 10*time.Millisecond, "main loop period")
		verbose = flag.Bool("v", false, "log every request")
	)
	flag.Parse()

	bus, err := i2c.Open(*busNum)
	if err != nil {
		panic(err)
	}
	defer bus.Close()

	conf := memory.Config{DeviceAddress: uint16(*devAddr)}
	if *verbose {
		conf.LogMode = memory.LogModeStdErr
	}
	if *wpPin >= 0 {
		pin, err := wp.Open(uint8(*wpPin), false)
		if err != nil {
			panic(err)
		}
		defer pin.Close()
		conf.WriteProtect = pin
	}
	mem := memory.New(bus, conf)

	want := make([]byte, *length)
	for i := range want {
		want[i] = byte(i*7 + 3)
	}
	addr := mem.Geometry().Address(uint16(*page), uint16(*offset))
	mem.WriteRequest(addr, want)
	pages := mem.Geometry().Pages(addr, len(want))
	if *erase {
		first, _ := mem.Geometry().Locate(addr)
		for p := range pages {
			mem.ErasePageRequest(first + uint16(p))
		}
	}
	log.Printf("queued %d bytes at %#04x (%d pages)", len(want), addr, pages)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	tick := time.NewTicker(*period)
	defer tick.Stop()

	start := time.Now()
	verified := false
	for {
		select {
		case <-sigs:
			log.Printf("interrupted with %d requests pending", mem.Pending())
			return
		case <-tick.C:
		}

		if err := mem.Service(); err != nil {
			log.Printf("service: %v", err)
			continue
		}

		// verify as soon as the pattern itself is on the chip
		if !verified && mem.Pending() <= pages*btoi(*erase) {
			got := make([]byte, len(want))
			if err := mem.Read(addr, got); err != nil {
				log.Printf("read back: %v", err)
				continue
			}
			if !bytes.Equal(got, want) {
				log.Printf("read back mismatch at %#04x", addr)
				return
			}
			log.Printf("verified %d bytes in %v", len(want), time.Since(start))
			verified = true
		}
		if mem.Pending() == 0 {
			log.Printf("done in %v", time.Since(start))
			return
		}
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
