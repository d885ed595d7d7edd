package gpio

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"sync"
)

var ErrUnknownPin = errors.New("unknown GPIO pin")

// PeriphDriver drives pins through the periph.io GPIO registry instead of raw registers.
// It offers the same operations as Controller.
type PeriphDriver struct {
	mu   sync.Mutex
	pins map[Pin]gpio.PinIO
}

// NewPeriphDriver initializes the periph host drivers and resolves every given pin.
func NewPeriphDriver(pins ...Pin) (*PeriphDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("unable to initialize periph: %w", err)
	}

	d := &PeriphDriver{pins: make(map[Pin]gpio.PinIO, len(pins))}
	for _, p := range pins {
		io := gpioreg.ByName(fmt.Sprintf("GPIO%d", p))
		if io == nil {
			return nil, fmt.Errorf("%w: GPIO%d", ErrUnknownPin, p)
		}
		d.pins[p] = io
	}
	return d, nil
}

func (d *PeriphDriver) pin(p Pin) gpio.PinIO {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pins[p]
}

func (d *PeriphDriver) ConfigureAsOutput(p Pin) {
	d.out(p, gpio.Low)
}

func (d *PeriphDriver) Assert(p Pin) {
	d.out(p, gpio.High)
}

func (d *PeriphDriver) Deassert(p Pin) {
	d.out(p, gpio.Low)
}

func (d *PeriphDriver) out(p Pin, l gpio.Level) {
	io := d.pin(p)
	if io == nil {
		log.Warnf("GPIO%d was not resolved, ignoring", p)
		return
	}
	if err := io.Out(l); err != nil {
		log.WithField("pin", io.Name()).Warn("Unable to drive pin: ", err)
	}
}
