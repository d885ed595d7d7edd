package gpio

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"periph.io/x/host/v3/pmem"
)

// MappedRegisters is the GPIO block mapped from physical memory into this process.
type MappedRegisters struct {
	view  *pmem.View
	words []uint32
}

// MapRegisters maps the GPIO block at base through /dev/mem.
func MapRegisters(base uint64) (*MappedRegisters, error) {
	v, err := pmem.Map(base, BlockSize)
	if err != nil {
		return nil, fmt.Errorf("unable to map GPIO registers at 0x%x: %w", base, err)
	}
	log.Infof("Mapped GPIO registers at 0x%x", base)
	return newMapped(v), nil
}

// MapGPIOMem maps the GPIO block through /dev/gpiomem, which does not require root.
func MapGPIOMem() (*MappedRegisters, error) {
	v, err := pmem.MapGPIO()
	if err != nil {
		return nil, fmt.Errorf("unable to map /dev/gpiomem: %w", err)
	}
	log.Info("Mapped GPIO registers through /dev/gpiomem")
	return newMapped(v), nil
}

func newMapped(v *pmem.View) *MappedRegisters {
	return &MappedRegisters{view: v, words: v.Uint32()}
}

// Read32 returns 0 once the block is unmapped.
func (m *MappedRegisters) Read32(offset uint32) uint32 {
	if m.words == nil {
		return 0
	}
	return m.words[offset/wordSize]
}

// Write32 does nothing once the block is unmapped.
func (m *MappedRegisters) Write32(offset, value uint32) {
	if m.words == nil {
		log.Warnf("Write to unmapped GPIO register 0x%02x dropped", offset)
		return
	}
	m.words[offset/wordSize] = value
}

// Close unmaps the register block. The registers must not be used afterwards.
func (m *MappedRegisters) Close() error {
	log.Info("Unmapping GPIO registers")
	m.words = nil
	return m.view.Close()
}
