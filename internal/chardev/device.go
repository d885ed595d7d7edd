// Package chardev exposes a display as a byte stream device: writes render on the
// LCD, reads replay a fixed advisory message.
package chardev

import (
	"errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"sync"
)

var (
	// ErrBusy is returned by Open while another stream is open.
	ErrBusy = errors.New("device busy")
	// ErrClosed is returned when a closed stream is used.
	ErrClosed = errors.New("stream closed")
	// ErrDetached is returned by Open after the device has been detached.
	ErrDetached = errors.New("device detached")
)

// DefaultMessage is what a read of the device returns.
const DefaultMessage = "You're reading!\n"

// Display is the part of the LCD the write path needs.
type Display interface {
	SecondLine()
	WriteChar(value byte)
}

// Geometry is the size of the display in characters.
type Geometry struct {
	Columns int
	Lines   int
}

// DefaultGeometry is a 16x2 display.
var DefaultGeometry = Geometry{Columns: 16, Lines: 2}

// MaxLines is the number of lines a write can reach; the cursor only moves down once.
const MaxLines = 2

// Capacity is the number of characters a single write can render.
func (g Geometry) Capacity() int {
	lines := g.Lines
	if lines > MaxLines {
		lines = MaxLines
	}
	return g.Columns * lines
}

// Device hands out at most one open stream at a time for a single display.
type Device struct {
	display  Display
	geometry Geometry
	message  []byte

	// token holds a value while a stream is open
	token chan struct{}

	mu       sync.Mutex
	detached bool
}

func NewDevice(d Display, g Geometry, message string) *Device {
	if g.Columns <= 0 || g.Lines <= 0 {
		g = DefaultGeometry
	}
	return &Device{
		display:  d,
		geometry: g,
		message:  []byte(message),
		token:    make(chan struct{}, 1),
	}
}

// Open acquires the device. It fails with ErrBusy instead of waiting when a stream is open.
func (d *Device) Open() (*Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.detached {
		return nil, ErrDetached
	}

	select {
	case d.token <- struct{}{}:
	default:
		log.Debug("LCD CHARDEV: open refused, device busy")
		return nil, ErrBusy
	}

	s := &Stream{id: uuid.NewString(), dev: d}
	log.WithField("stream", s.id).Info("LCD CHARDEV: opened")
	return s, nil
}

// Detach stops the device from handing out new streams. A stream that is still open
// fails with ErrDetached until it is closed.
func (d *Device) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.detached = true
}

func (d *Device) isDetached() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.detached
}

func (d *Device) release() {
	<-d.token
}
