//go:build pi

package button

import (
	"context"
	"fmt"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"time"
)

const debounce = 15 * time.Millisecond

// Watch initializes the button pin and fetches a button event channel. The channel is
// closed when ctx is done.
func Watch(ctx context.Context, name string) (<-chan Event, error) {
	log.Infof("Initializing button handler on %v", name)
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("unable to initialize periph: %w", err)
	}

	b := gpioreg.ByName(name)
	if b == nil {
		return nil, fmt.Errorf("no such pin %v", name)
	}
	if err := b.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return nil, err
	}

	c := make(chan Event, 5)
	go handleButton(ctx, b, c)
	return c, nil
}

func handleButton(ctx context.Context, b gpio.PinIO, c chan<- Event) {
	defer close(c)

	last := b.Read()
	for ctx.Err() == nil {
		// wait for the edge
		if !b.WaitForEdge(time.Second) {
			continue
		}

		// debounce
		l := b.Read()
		if l == last {
			continue
		}

		time.Sleep(debounce)
		if l == b.Read() {
			last = l
			select {
			case c <- Event{Pressed: l == gpio.Low}:
			case <-ctx.Done():
			}
		}
	}
}
