//go:build !pi

package button

import (
	"context"
	log "github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"syscall"
)

// Watch simulates the button: every SIGHUP is a press. The channel is closed when ctx is done.
func Watch(ctx context.Context, name string) (<-chan Event, error) {
	log.Infof("Simulating button %v, send SIGHUP to press", name)

	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, syscall.SIGHUP)

	c := make(chan Event, 5)
	go simulateButton(ctx, hupChan, c)
	return c, nil
}

func simulateButton(ctx context.Context, hupChan chan os.Signal, c chan<- Event) {
	defer signal.Stop(hupChan)
	defer close(c)

	for {
		select {
		case <-hupChan:
			select {
			case c <- Event{Pressed: true}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
