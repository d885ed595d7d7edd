package gpio

import (
	log "github.com/sirupsen/logrus"
	"sync"
)

const levelOffset uint32 = 0x34

// Write is a single recorded register write.
type Write struct {
	Offset uint32
	Value  uint32
}

// SimRegisters is an in-memory register block. It behaves like the real set/clear/level
// registers and records every write, so it can stand in for the hardware.
type SimRegisters struct {
	mu      sync.Mutex
	words   [BlockSize / wordSize]uint32
	writes  []Write
	onWrite func(Write)
}

func NewSimRegisters() *SimRegisters {
	return &SimRegisters{}
}

// OnWrite registers a hook called after every write, with the block already updated.
func (s *SimRegisters) OnWrite(f func(Write)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onWrite = f
}

func (s *SimRegisters) Read32(offset uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isSetOrClear(offset) {
		// write only
		return 0
	}
	return s.words[offset/wordSize]
}

func (s *SimRegisters) Write32(offset, value uint32) {
	s.mu.Lock()
	w := Write{Offset: offset, Value: value}
	s.writes = append(s.writes, w)

	switch {
	case offset >= setOffset && offset < clearOffset:
		s.words[(levelOffset+offset-setOffset)/wordSize] |= value
	case isSetOrClear(offset):
		s.words[(levelOffset+offset-clearOffset)/wordSize] &^= value
	default:
		s.words[offset/wordSize] = value
	}
	hook := s.onWrite
	s.mu.Unlock()

	log.Tracef("sim: write 0x%08x to 0x%02x", value, offset)
	if hook != nil {
		hook(w)
	}
}

// Writes returns a copy of all writes recorded so far.
func (s *SimRegisters) Writes() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Write(nil), s.writes...)
}

// Level reports whether the pin is currently driven high.
func (s *SimRegisters) Level(p Pin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.words[(levelOffset+uint32(p/pinsPerLevelWord)*wordSize)/wordSize]
	return w&(1<<(uint32(p)%pinsPerLevelWord)) != 0
}

// Function returns the 3 bit function select field of the pin.
func (s *SimRegisters) Function(p Pin) uint32 {
	offset, shift := selectAddress(p)
	return (s.Read32(offset) >> shift) & selectMask
}

func isSetOrClear(offset uint32) bool {
	return offset >= setOffset && offset < clearOffset+2*wordSize
}
