// Package button reports presses of the push button that resets the display.
package button

import "fmt"

// DefaultPin is the button line used when none is configured.
const DefaultPin = "GPIO20"

type Event struct {
	Pressed bool
}

func (b Event) String() string {
	action := "pressed"
	if !b.Pressed {
		action = "released"
	}
	return fmt.Sprintf("Button was %v", action)
}
