package memory_test

import (
	"fmt"

	"github.com/rabidaudio/eeprom-queue/memory"
	"github.com/rabidaudio/eeprom-queue/mock"
)

func ExampleMemory_Service() {
	chip := &mock.EEPROM{}
	mem := memory.New(chip, memory.Config{WriteDelay: -1})

	mem.WriteRequest(0x007E, []byte("hello"))
	mem.ErasePageRequest(3)
	for mem.Pending() > 0 {
		if err := mem.Service(); err != nil {
			fmt.Println(err)
			return
		}
	}

	got := make([]byte, 5)
	if err := mem.Read(0x007E, got); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s\n", got)
	for _, op := range chip.Writes() {
		fmt.Println(op.Address, op.Len)
	}
	// Output:
	// hello
	// 126 2
	// 128 3
	// 384 128
}
