package lcd

import (
	"fmt"
	log "github.com/sirupsen/logrus"
)

// Display is an initialized LCD. It is valid between attach and detach of the driver.
type Display struct {
	engine  *Engine
	timing  Timing
	columns int
}

func NewDisplay(e *Engine, columns int) *Display {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return &Display{engine: e, timing: e.timing, columns: columns}
}

// Clear blanks the display and moves the cursor to the start of the first line.
func (d *Display) Clear() {
	log.Debug("Clearing display")
	d.engine.WriteCommands(d.timing.Clear, 0x0, 0x1)
}

// Home moves the cursor to the start of the first line.
func (d *Display) Home() {
	d.engine.WriteCommands(d.timing.Command, 0x0, 0x2)
}

// SecondLine moves the cursor to the start of the second line.
func (d *Display) SecondLine() {
	d.engine.WriteCommands(d.timing.Command, byte(Line2)>>4, byte(Line2)&nibbleMask)
}

// WriteChar writes value at the cursor. The controller advances the cursor itself.
func (d *Display) WriteChar(value byte) {
	d.engine.WriteData(value)
}

// Reset clears the display and homes the cursor.
func (d *Display) Reset() {
	d.Clear()
	d.Home()
}

// Print writes msg on the given line, padded or cut to the width of the display.
func (d *Display) Print(l Line, msg string) {
	switch l {
	case Line1:
		d.Home()
	case Line2:
		d.SecondLine()
	default:
		log.Warnf("Unknown line %v", l)
		return
	}

	m := fmt.Sprintf("%-*s", d.columns, msg)
	for i := 0; i < d.columns; i++ {
		d.WriteChar(m[i])
	}
}

// Columns returns the width of the display.
func (d *Display) Columns() int {
	return d.columns
}
