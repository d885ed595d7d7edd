package main

import (
	"errors"
	"fmt"
	"github.com/callebjorkell/lcd-chardev/internal/button"
	"github.com/callebjorkell/lcd-chardev/internal/chardev"
	"github.com/callebjorkell/lcd-chardev/internal/driver"
	"github.com/callebjorkell/lcd-chardev/internal/gpio"
	"github.com/callebjorkell/lcd-chardev/internal/lcd"
	"gopkg.in/yaml.v3"
	"io/fs"
	"os"
	"time"
)

const (
	defaultConfigFile = "lcdchardev.yaml"
	defaultAddr       = ":8090"
	defaultInstance   = "lcdchardev"
)

type Config struct {
	Backend   driver.Backend `yaml:"backend"`
	Registers struct {
		Base uint64 `yaml:"base"`
	} `yaml:"registers"`
	Pins struct {
		Data []uint32 `yaml:"data"`
		RS   *uint32  `yaml:"rs"`
		EN   *uint32  `yaml:"en"`
		RW   *uint32  `yaml:"rw"`
	} `yaml:"pins"`
	Display struct {
		Columns int `yaml:"columns"`
		Lines   int `yaml:"lines"`
	} `yaml:"display"`
	Timing struct {
		Pulse     time.Duration `yaml:"pulse"`
		Command   time.Duration `yaml:"command"`
		Clear     time.Duration `yaml:"clear"`
		PowerOn   time.Duration `yaml:"powerOn"`
		InitShort time.Duration `yaml:"initShort"`
	} `yaml:"timing"`
	Message *string `yaml:"message"`
	Button  string  `yaml:"button"`
	HTTP    struct {
		Addr     string `yaml:"addr"`
		MDNS     bool   `yaml:"mdns"`
		Instance string `yaml:"instance"`
	} `yaml:"http"`
}

// readConfig reads the configuration file. A missing default file means all defaults.
func readConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigFile {
		return parseConfig(nil)
	}
	if err != nil {
		return nil, err
	}
	return parseConfig(content)
}

func parseConfig(content []byte) (*Config, error) {
	c := &Config{}
	err := yaml.Unmarshal(content, c)
	if err != nil {
		return nil, err
	}

	if c.Backend == "" {
		c.Backend = driver.DefaultBackend
	}
	if !knownBackend(c.Backend) {
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Registers.Base == 0 {
		c.Registers.Base = gpio.BaseAddress
	}

	bus := lcd.DefaultBus()
	if len(c.Pins.Data) == 0 {
		for _, p := range bus.Data {
			c.Pins.Data = append(c.Pins.Data, uint32(p))
		}
	}
	if len(c.Pins.Data) != 4 {
		return nil, fmt.Errorf("exactly 4 data pins must be specified, got %d", len(c.Pins.Data))
	}
	if c.Pins.RS == nil {
		rs := uint32(bus.RS)
		c.Pins.RS = &rs
	}
	if c.Pins.EN == nil {
		en := uint32(bus.EN)
		c.Pins.EN = &en
	}
	seen := make(map[uint32]bool)
	for _, p := range c.pins() {
		if gpio.Pin(p) > gpio.MaxPin {
			return nil, fmt.Errorf("pin %d is out of range", p)
		}
		if seen[p] {
			return nil, fmt.Errorf("pin %d is used more than once", p)
		}
		seen[p] = true
	}

	if c.Display.Columns < 0 || c.Display.Lines < 0 {
		return nil, fmt.Errorf("display size cannot be negative")
	}
	if c.Display.Columns == 0 {
		c.Display.Columns = chardev.DefaultGeometry.Columns
	}
	if c.Display.Lines == 0 {
		c.Display.Lines = chardev.DefaultGeometry.Lines
	}
	if c.Display.Lines > chardev.MaxLines {
		return nil, fmt.Errorf("at most %d display lines are supported, got %d", chardev.MaxLines, c.Display.Lines)
	}

	t := lcd.DefaultTiming()
	if c.Timing.Pulse <= 0 {
		c.Timing.Pulse = t.Pulse
	}
	if c.Timing.Command <= 0 {
		c.Timing.Command = t.Command
	}
	if c.Timing.Clear <= 0 {
		c.Timing.Clear = t.Clear
	}
	if c.Timing.PowerOn <= 0 {
		c.Timing.PowerOn = t.PowerOn
	}
	if c.Timing.InitShort <= 0 {
		c.Timing.InitShort = t.InitShort
	}

	if c.Message == nil {
		m := chardev.DefaultMessage
		c.Message = &m
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultAddr
	}
	if c.HTTP.Instance == "" {
		c.HTTP.Instance = defaultInstance
	}
	if c.Button == "-" {
		c.Button = ""
	} else if c.Button == "" {
		c.Button = button.DefaultPin
	}

	return c, nil
}

func knownBackend(b driver.Backend) bool {
	for _, k := range driver.Backends {
		if k == b {
			return true
		}
	}
	return false
}

func (c Config) pins() []uint32 {
	pins := append([]uint32{*c.Pins.RS, *c.Pins.EN}, c.Pins.Data...)
	if c.Pins.RW != nil {
		pins = append(pins, *c.Pins.RW)
	}
	return pins
}

func (c Config) Bus() lcd.Bus {
	b := lcd.Bus{
		RS: gpio.Pin(*c.Pins.RS),
		EN: gpio.Pin(*c.Pins.EN),
	}
	for i, p := range c.Pins.Data {
		b.Data[i] = gpio.Pin(p)
	}
	if c.Pins.RW != nil {
		rw := gpio.Pin(*c.Pins.RW)
		b.RW = &rw
	}
	return b
}

func (c Config) DriverConfig() driver.Config {
	return driver.Config{
		Backend:      c.Backend,
		RegisterBase: c.Registers.Base,
		Bus:          c.Bus(),
		Timing: lcd.Timing{
			Pulse:     c.Timing.Pulse,
			Command:   c.Timing.Command,
			Clear:     c.Timing.Clear,
			PowerOn:   c.Timing.PowerOn,
			InitShort: c.Timing.InitShort,
		},
		Geometry: chardev.Geometry{Columns: c.Display.Columns, Lines: c.Display.Lines},
		Message:  *c.Message,
	}
}
