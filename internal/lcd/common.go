package lcd

import (
	"github.com/callebjorkell/lcd-chardev/internal/gpio"
	"time"
)

type Line byte

func (l Line) String() string {
	switch l {
	case Line1:
		return "L1"
	case Line2:
		return "L2"
	}
	return "N/A"
}

const (
	Line1 Line = 0x80
	Line2 Line = 0xC0

	// DefaultColumns is the width of the display in characters.
	DefaultColumns = 16
)

// PinDriver asserts and deasserts digital output lines.
type PinDriver interface {
	ConfigureAsOutput(p gpio.Pin)
	Assert(p gpio.Pin)
	Deassert(p gpio.Pin)
}

// Bus is the wiring of the controller. Data[i] carries bit i of every nibble (D4..D7).
type Bus struct {
	Data [4]gpio.Pin
	RS   gpio.Pin
	EN   gpio.Pin
	// RW is optional and held in write state.
	RW *gpio.Pin
}

// Pins returns every pin of the bus.
func (b Bus) Pins() []gpio.Pin {
	pins := []gpio.Pin{b.RS, b.EN}
	if b.RW != nil {
		pins = append(pins, *b.RW)
	}
	return append(pins, b.Data[:]...)
}

// Timing holds the settle times the controller needs.
type Timing struct {
	// Pulse is the wait after every edge of the enable pulse.
	Pulse time.Duration
	// Command is the settle time of ordinary commands.
	Command time.Duration
	// Clear is the settle time of the clear display command.
	Clear time.Duration
	// PowerOn is the wait after the first two interface select nibbles.
	PowerOn time.Duration
	// InitShort is the wait after the third interface select nibble.
	InitShort time.Duration
}

// DefaultBus is the wiring used on the Raspberry Pi 2B.
func DefaultBus() Bus {
	return Bus{
		Data: [4]gpio.Pin{17, 27, 22, 5},
		RS:   24,
		EN:   23,
	}
}

func DefaultTiming() Timing {
	return Timing{
		Pulse:     500 * time.Microsecond,
		Command:   time.Millisecond,
		Clear:     2 * time.Millisecond,
		PowerOn:   5 * time.Millisecond,
		InitShort: time.Millisecond,
	}
}
