// Package driver attaches an LCD to its GPIO lines and exposes it as a stream device.
package driver

import (
	"errors"
	"fmt"
	"github.com/callebjorkell/lcd-chardev/internal/chardev"
	"github.com/callebjorkell/lcd-chardev/internal/gpio"
	"github.com/callebjorkell/lcd-chardev/internal/lcd"
	log "github.com/sirupsen/logrus"
	"sync"
)

var ErrDetached = errors.New("driver already detached")

type Backend string

const (
	// BackendSim drives a simulated register block.
	BackendSim Backend = "sim"
	// BackendMem maps the GPIO registers through /dev/mem.
	BackendMem Backend = "mem"
	// BackendGPIOMem maps the GPIO registers through /dev/gpiomem.
	BackendGPIOMem Backend = "gpiomem"
	// BackendPeriph drives the pins through the periph.io GPIO drivers.
	BackendPeriph Backend = "periph"
)

// Backends lists every supported backend.
var Backends = []Backend{BackendSim, BackendMem, BackendGPIOMem, BackendPeriph}

type Config struct {
	Backend Backend
	// RegisterBase is the physical address of the GPIO block for BackendMem.
	RegisterBase uint64
	// Registers replaces the simulated block of BackendSim when set.
	Registers gpio.Registers

	Bus      lcd.Bus
	Timing   lcd.Timing
	Geometry chardev.Geometry
	Message  string
}

// Driver is an attached display. It is only handed out once every attach step succeeded.
type Driver struct {
	pins    lcd.PinDriver
	engine  *lcd.Engine
	device  *chardev.Device
	display *lcd.Display

	mu       sync.Mutex
	teardown []func() error
	detached bool
}

// step is one stage of Attach. A step that needs undoing pushes its teardown.
type step struct {
	name string
	run  func(d *Driver, c Config) error
}

var attachSteps = []step{
	{"open registers", openPins},
	{"configure pins", setupPins},
	{"initialize controller", initialize},
	{"create device", createDevice},
}

// Attach maps the registers, configures the pins, initializes the controller and creates
// the stream device, in that order. If a step fails, the completed ones are undone.
func Attach(c Config) (*Driver, error) {
	return attach(c, attachSteps)
}

func attach(c Config, steps []step) (*Driver, error) {
	d := &Driver{}

	log.WithField("backend", c.Backend).Info("Attaching LCD")
	for _, s := range steps {
		if err := s.run(d, c); err != nil {
			if uerr := d.unwind(); uerr != nil {
				log.Warn("Unable to undo attach: ", uerr)
			}
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	log.Info("LCD attached")
	return d, nil
}

func openPins(d *Driver, c Config) error {
	switch c.Backend {
	case BackendSim:
		regs := c.Registers
		if regs == nil {
			regs = gpio.NewSimRegisters()
		}
		d.pins = gpio.NewController(regs)
	case BackendMem:
		regs, err := gpio.MapRegisters(c.RegisterBase)
		if err != nil {
			return err
		}
		d.push(regs.Close)
		d.pins = gpio.NewController(regs)
	case BackendGPIOMem:
		regs, err := gpio.MapGPIOMem()
		if err != nil {
			return err
		}
		d.push(regs.Close)
		d.pins = gpio.NewController(regs)
	case BackendPeriph:
		pins, err := gpio.NewPeriphDriver(c.Bus.Pins()...)
		if err != nil {
			return err
		}
		d.pins = pins
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

func setupPins(d *Driver, c Config) error {
	d.engine = lcd.NewEngine(d.pins, c.Bus, c.Timing)
	d.engine.Setup()
	d.push(func() error {
		d.engine.Release()
		return nil
	})
	return nil
}

func initialize(d *Driver, c Config) error {
	d.engine.Initialize()
	d.display = lcd.NewDisplay(d.engine, c.Geometry.Columns)
	return nil
}

func createDevice(d *Driver, c Config) error {
	d.device = chardev.NewDevice(d.display, c.Geometry, c.Message)
	d.push(func() error {
		d.device.Detach()
		return nil
	})
	return nil
}

func (d *Driver) push(f func() error) {
	d.teardown = append(d.teardown, f)
}

// unwind runs the teardown steps in reverse order.
func (d *Driver) unwind() error {
	var errs []error
	for i := len(d.teardown) - 1; i >= 0; i-- {
		if err := d.teardown[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.teardown = nil
	return errors.Join(errs...)
}

// Detach undoes Attach in reverse order. It can only be called once. Streams still open
// fail with chardev.ErrDetached and the display ignores further operations.
func (d *Driver) Detach() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.detached {
		return ErrDetached
	}
	d.detached = true

	log.Info("Detaching LCD")
	return d.unwind()
}

func (d *Driver) Device() *chardev.Device {
	return d.device
}

func (d *Driver) Display() *lcd.Display {
	return d.display
}
