package gpio

// Register layout of the BCM2836/2837 GPIO block.
const (
	// BaseAddress is the physical address of the GPIO block on a Raspberry Pi 2B/3.
	BaseAddress uint64 = 0x3F200000
	// BlockSize is the size of the GPIO register block in bytes.
	BlockSize = 0xB0

	functionSelectOffset uint32 = 0x00
	setOffset            uint32 = 0x1C
	clearOffset          uint32 = 0x28

	wordSize = 4

	pinsPerSelectWord = 10
	bitsPerSelect     = 3
	pinsPerLevelWord  = 32

	selectMask   uint32 = 0x7
	selectOutput uint32 = 0x1

	// MaxPin is the highest pin number the block addresses.
	MaxPin Pin = 53
)

// Registers is a block of 32 bit registers addressed by byte offset.
type Registers interface {
	Read32(offset uint32) uint32
	Write32(offset, value uint32)
}

// Pin is a BCM GPIO line number.
type Pin uint32

// selectAddress returns the function select word offset and the shift of the pin's 3 bit field.
func selectAddress(p Pin) (offset uint32, shift uint32) {
	offset = functionSelectOffset + uint32(p/pinsPerSelectWord)*wordSize
	shift = uint32(p%pinsPerSelectWord) * bitsPerSelect
	return offset, shift
}

// setAddress returns the set register offset and the bit mask for the pin.
func setAddress(p Pin) (offset uint32, mask uint32) {
	return setOffset + uint32(p/pinsPerLevelWord)*wordSize, 1 << (uint32(p) % pinsPerLevelWord)
}

// clearAddress returns the clear register offset and the bit mask for the pin.
func clearAddress(p Pin) (offset uint32, mask uint32) {
	return clearOffset + uint32(p/pinsPerLevelWord)*wordSize, 1 << (uint32(p) % pinsPerLevelWord)
}
