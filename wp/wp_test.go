package wp

import (
	"testing"

	"github.com/rabidaudio/eeprom-queue/memory"
	rpio "github.com/stianeikeland/go-rpio/v4"
	"github.com/stretchr/testify/assert"
)

// ensure interface conformation
var (
	_ memory.Guard = (*Pin)(nil)
	_ output       = rpio.Pin(0)
)

type fakeOutput struct {
	output bool
	levels []bool
}

func (f *fakeOutput) Output() { f.output = true }
func (f *fakeOutput) High()   { f.levels = append(f.levels, true) }
func (f *fakeOutput) Low()    { f.levels = append(f.levels, false) }

func TestPinStartsProtected(t *testing.T) {
	f := &fakeOutput{}
	newPin(f, false)
	assert.True(t, f.output)
	assert.Equal(t, []bool{true}, f.levels)
}

func TestPinUnlockLock(t *testing.T) {
	f := &fakeOutput{}
	p := newPin(f, false)

	assert.NoError(t, p.Unlock())
	assert.NoError(t, p.Lock())
	assert.NoError(t, p.Close())
	assert.Equal(t, []bool{true, false, true, true}, f.levels)
}

func TestPinInverted(t *testing.T) {
	f := &fakeOutput{}
	p := newPin(f, true)

	assert.NoError(t, p.Unlock())
	assert.Equal(t, []bool{false, true}, f.levels)
}
