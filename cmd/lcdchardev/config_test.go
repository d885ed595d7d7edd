package main

import (
	"github.com/callebjorkell/lcd-chardev/internal/chardev"
	"github.com/callebjorkell/lcd-chardev/internal/driver"
	"github.com/callebjorkell/lcd-chardev/internal/gpio"
	"github.com/callebjorkell/lcd-chardev/internal/lcd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	c, err := parseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, driver.DefaultBackend, c.Backend)
	assert.Equal(t, gpio.BaseAddress, c.Registers.Base)
	assert.Equal(t, lcd.DefaultBus(), c.Bus())
	assert.Equal(t, chardev.DefaultMessage, *c.Message)
	assert.Equal(t, ":8090", c.HTTP.Addr)
	assert.Equal(t, "GPIO20", c.Button)

	dc := c.DriverConfig()
	assert.Equal(t, lcd.DefaultTiming(), dc.Timing)
	assert.Equal(t, chardev.DefaultGeometry, dc.Geometry)
}

func TestConfig(t *testing.T) {
	c, err := parseConfig([]byte(`
backend: gpiomem
pins:
  data: [6, 13, 19, 26]
  rs: 0
  en: 1
  rw: 7
display:
  columns: 20
  lines: 1
timing:
  pulse: 1us
  clear: 3ms
message: "hi\n"
button: "-"
http:
  addr: ":9000"
  mdns: true
`))
	require.NoError(t, err)

	assert.Equal(t, driver.BackendGPIOMem, c.Backend)
	b := c.Bus()
	assert.Equal(t, [4]gpio.Pin{6, 13, 19, 26}, b.Data)
	assert.Equal(t, gpio.Pin(0), b.RS)
	assert.Equal(t, gpio.Pin(1), b.EN)
	require.NotNil(t, b.RW)
	assert.Equal(t, gpio.Pin(7), *b.RW)

	dc := c.DriverConfig()
	assert.Equal(t, chardev.Geometry{Columns: 20, Lines: 1}, dc.Geometry)
	assert.Equal(t, time.Microsecond, dc.Timing.Pulse)
	assert.Equal(t, 3*time.Millisecond, dc.Timing.Clear)
	assert.Equal(t, time.Millisecond, dc.Timing.Command)
	assert.Equal(t, "hi\n", dc.Message)
	assert.Empty(t, c.Button)
	assert.True(t, c.HTTP.MDNS)
	assert.Equal(t, "lcdchardev", c.HTTP.Instance)
}

func TestConfigValidation(t *testing.T) {
	tt := []struct {
		name    string
		content string
	}{
		{"unknown backend", "backend: spi"},
		{"three data pins", "pins: {data: [1, 2, 3]}"},
		{"pin out of range", "pins: {data: [1, 2, 3, 54]}"},
		{"duplicate pin", "pins: {data: [17, 27, 22, 24]}"},
		{"negative columns", "display: {columns: -1}"},
		{"four lines", "display: {columns: 20, lines: 4}"},
		{"broken yaml", "pins: ["},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseConfig([]byte(tc.content))
			assert.Error(t, err)
		})
	}
}

func TestReadConfigMissingDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := readConfig(defaultConfigFile)
	require.NoError(t, err)
	assert.Equal(t, driver.DefaultBackend, c.Backend)

	_, err = readConfig("other.yaml")
	assert.Error(t, err)
}

func TestListenPort(t *testing.T) {
	p, err := listenPort(":8090")
	assert.NoError(t, err)
	assert.Equal(t, 8090, p)

	_, err = listenPort(":http")
	assert.Error(t, err)
	_, err = listenPort("8090")
	assert.Error(t, err)
}
