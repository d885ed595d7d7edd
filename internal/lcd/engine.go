package lcd

import (
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

const (
	nibbleInterface byte = 0x3
	nibbleFourBit   byte = 0x2
	nibbleFunction  byte = 0x8
	nibbleMask      byte = 0xF
)

// Engine speaks the 4 bit protocol of the controller over a PinDriver. Each exported
// operation is one transaction and runs to completion under the engine lock.
type Engine struct {
	mu         sync.Mutex
	pins       PinDriver
	bus        Bus
	timing     Timing
	sleep      func(time.Duration)
	configured bool
	released   bool
}

func NewEngine(pins PinDriver, bus Bus, timing Timing) *Engine {
	return &Engine{
		pins:   pins,
		bus:    bus,
		timing: timing,
		sleep:  time.Sleep,
	}
}

// Setup configures every bus pin as an output. It must run before any other
// operation and only has an effect the first time it is called.
func (e *Engine) Setup() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.configured || e.released {
		return
	}
	log.Debug("Configuring LCD pins as outputs")
	for _, p := range e.bus.Pins() {
		e.pins.ConfigureAsOutput(p)
	}
	if e.bus.RW != nil {
		e.pins.Deassert(*e.bus.RW)
	}
	e.configured = true
}

// Initialize runs the power-up sequence that puts the controller in 4 bit mode with
// a cleared display and the cursor at the start of the first line. An interrupted
// sequence can only be recovered by running it again from the start.
func (e *Engine) Initialize() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		log.Debug("LCD released, ignoring initialize")
		return
	}

	log.Info("Initializing LCD")

	// interface select, repeated to sync up regardless of the current mode
	e.command(nibbleInterface)
	e.sleep(e.timing.PowerOn)
	e.command(nibbleInterface)
	e.sleep(e.timing.PowerOn)
	e.command(nibbleInterface)
	e.sleep(e.timing.InitShort)

	// 4 bit mode
	e.command(nibbleFourBit)
	e.command(nibbleFourBit)

	// function set: 2 lines
	e.command(nibbleFunction)

	// display on, cursor on, blinking
	e.command(0x0)
	e.command(0xF)

	e.command(0x0)
	e.command(0x1)
	e.sleep(e.timing.Clear)

	// entry mode: increment, no shift
	e.command(0x0)
	e.command(0x6)
	e.sleep(e.timing.Command)

	e.command(byte(Line1) >> 4)
	e.command(byte(Line1) & nibbleMask)
	e.sleep(e.timing.Command)
}

// WriteCommand sends the low nibble of code as a command.
func (e *Engine) WriteCommand(code byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		log.Debug("LCD released, ignoring command")
		return
	}

	e.command(code)
}

// WriteCommands sends several command nibbles as a single transaction followed by settle.
func (e *Engine) WriteCommands(settle time.Duration, codes ...byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		log.Debug("LCD released, ignoring command")
		return
	}

	for _, c := range codes {
		e.command(c)
	}
	e.sleep(settle)
}

// WriteData sends value as a character, high nibble first.
func (e *Engine) WriteData(value byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		log.Debug("LCD released, ignoring data")
		return
	}

	log.Debugf("Writing %q", value)
	e.pins.Assert(e.bus.RS)

	e.busUpdate(value >> 4)
	e.pulseEnable()
	e.busUpdate(value & nibbleMask)
	e.pulseEnable()
}

func (e *Engine) command(code byte) {
	e.pins.Deassert(e.bus.RS)
	e.busUpdate(code & nibbleMask)
	e.pulseEnable()
}

func (e *Engine) pulseEnable() {
	e.pins.Deassert(e.bus.EN)
	e.sleep(e.timing.Pulse)
	e.pins.Assert(e.bus.EN)
	e.sleep(e.timing.Pulse)
	e.pins.Deassert(e.bus.EN)
	e.sleep(e.timing.Pulse)
}

// busUpdate puts the nibble on the data lines, bit i on Data[i].
func (e *Engine) busUpdate(nibble byte) {
	for _, p := range e.bus.Data {
		if nibble&0x1 != 0 {
			e.pins.Assert(p)
		} else {
			e.pins.Deassert(p)
		}
		nibble >>= 1
	}
}

// Release drives every bus pin low. The engine ignores every operation afterwards.
func (e *Engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released {
		return
	}
	e.released = true

	log.Debug("Releasing LCD pins")
	for _, p := range e.bus.Pins() {
		e.pins.Deassert(p)
	}
}
