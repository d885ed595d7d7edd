package gpio

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestAddressing(t *testing.T) {
	tt := []struct {
		name        string
		pin         Pin
		selOffset   uint32
		selShift    uint32
		setOffset   uint32
		clearOffset uint32
		mask        uint32
	}{
		{"pin 0", 0, 0x00, 0, 0x1C, 0x28, 1 << 0},
		{"pin 5", 5, 0x00, 15, 0x1C, 0x28, 1 << 5},
		{"pin 9", 9, 0x00, 27, 0x1C, 0x28, 1 << 9},
		{"pin 10", 10, 0x04, 0, 0x1C, 0x28, 1 << 10},
		{"pin 17", 17, 0x04, 21, 0x1C, 0x28, 1 << 17},
		{"pin 23", 23, 0x08, 9, 0x1C, 0x28, 1 << 23},
		{"pin 31", 31, 0x0C, 3, 0x1C, 0x28, 1 << 31},
		{"pin 32", 32, 0x0C, 6, 0x20, 0x2C, 1 << 0},
		{"pin 53", 53, 0x14, 9, 0x20, 0x2C, 1 << 21},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			off, shift := selectAddress(tc.pin)
			assert.Equal(t, tc.selOffset, off)
			assert.Equal(t, tc.selShift, shift)

			off, mask := setAddress(tc.pin)
			assert.Equal(t, tc.setOffset, off)
			assert.Equal(t, tc.mask, mask)

			off, mask = clearAddress(tc.pin)
			assert.Equal(t, tc.clearOffset, off)
			assert.Equal(t, tc.mask, mask)
		})
	}
}

func TestAssertWritesSingleBit(t *testing.T) {
	for p := Pin(0); p < 64; p++ {
		regs := NewSimRegisters()
		c := NewController(regs)

		c.Assert(p)
		c.Deassert(p)

		w := regs.Writes()
		require.Len(t, w, 2)

		bank := uint32(p / 32)
		assert.Equal(t, Write{Offset: 0x1C + bank*4, Value: 1 << (uint32(p) % 32)}, w[0], "pin %d", p)
		assert.Equal(t, Write{Offset: 0x28 + bank*4, Value: 1 << (uint32(p) % 32)}, w[1], "pin %d", p)
	}
}

func TestAssertLeavesOtherPins(t *testing.T) {
	regs := NewSimRegisters()
	c := NewController(regs)

	c.Assert(3)
	c.Assert(35)
	c.Assert(4)
	c.Deassert(3)

	assert.False(t, regs.Level(3))
	assert.True(t, regs.Level(4))
	assert.True(t, regs.Level(35))
	for p := Pin(0); p < 64; p++ {
		if p == 4 || p == 35 {
			continue
		}
		assert.False(t, regs.Level(p), "pin %d", p)
	}
}

func TestConfigureAsOutput(t *testing.T) {
	regs := NewSimRegisters()
	// GPIO14/15 in alt function 0 (UART), GPIO17 as input
	regs.Write32(0x04, 0b100<<12|0b100<<15)
	c := NewController(regs)

	c.ConfigureAsOutput(17)
	assert.Equal(t, uint32(0b001), regs.Function(17))
	assert.Equal(t, uint32(0b100), regs.Function(14))
	assert.Equal(t, uint32(0b100), regs.Function(15))

	before := regs.Read32(0x04)
	c.ConfigureAsOutput(17)
	assert.Equal(t, before, regs.Read32(0x04))
}

func TestConfigureAsOutputClearsField(t *testing.T) {
	regs := NewSimRegisters()
	regs.Write32(0x08, 0xFFFFFFFF)
	c := NewController(regs)

	c.ConfigureAsOutput(23)
	assert.Equal(t, uint32(0b001), regs.Function(23))
	assert.Equal(t, uint32(0xFFFFFFFF&^(0b110<<9)), regs.Read32(0x08))
}

func TestSetAndClearAreWriteOnly(t *testing.T) {
	regs := NewSimRegisters()
	c := NewController(regs)
	c.Assert(2)

	assert.Zero(t, regs.Read32(0x1C))
	assert.Zero(t, regs.Read32(0x28))
	assert.Equal(t, uint32(1<<2), regs.Read32(0x34))
}

func TestUnmappedRegisters(t *testing.T) {
	m := &MappedRegisters{}
	c := NewController(m)

	assert.NotPanics(t, func() {
		c.ConfigureAsOutput(17)
		c.Assert(17)
		c.Deassert(17)
	})
	assert.Zero(t, m.Read32(0x04))
}
