package gpio

import (
	log "github.com/sirupsen/logrus"
)

// Controller drives GPIO lines through a register block. It keeps no state of its own, so
// concurrent Assert/Deassert calls must be serialized by the caller.
type Controller struct {
	regs Registers
}

func NewController(regs Registers) *Controller {
	return &Controller{regs: regs}
}

// ConfigureAsOutput puts the pin in output mode, leaving every other pin in the word untouched.
func (c *Controller) ConfigureAsOutput(p Pin) {
	offset, shift := selectAddress(p)

	log.WithFields(log.Fields{"register": offset, "shift": shift}).Debug("Set select register")
	v := c.regs.Read32(offset)
	v &^= selectMask << shift
	v |= selectOutput << shift
	c.regs.Write32(offset, v)
}

// Assert drives the pin high.
func (c *Controller) Assert(p Pin) {
	offset, mask := setAddress(p)
	log.WithFields(log.Fields{"register": offset, "bit": uint32(p) % pinsPerLevelWord}).Trace("Set register")
	c.regs.Write32(offset, mask)
}

// Deassert drives the pin low.
func (c *Controller) Deassert(p Pin) {
	offset, mask := clearAddress(p)
	log.WithFields(log.Fields{"register": offset, "bit": uint32(p) % pinsPerLevelWord}).Trace("Clear register")
	c.regs.Write32(offset, mask)
}
