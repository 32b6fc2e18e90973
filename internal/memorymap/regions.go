// Package memorymap decodes GBA bus addresses into the nine fixed regions
// and applies each region's mirroring rule.
package memorymap

// Region identifies which of the nine fixed address ranges an address
// belongs to.
type Region uint8

const (
	RegionBIOS Region = iota
	RegionEWRAM
	RegionIWRAM
	RegionIO
	RegionPalette
	RegionVRAM
	RegionOAM
	RegionROM
	RegionSRAM
	RegionUnmapped
)

// Sizes of each backing store.
const (
	BIOSSize    = 16 * 1024
	EWRAMSize   = 256 * 1024
	IWRAMSize   = 32 * 1024
	IOSize      = 1024
	PaletteSize = 1024
	VRAMSize    = 96 * 1024
	OAMSize     = 1024
	ROMMaxSize  = 32 * 1024 * 1024
	SRAMSize    = 64 * 1024
)

// Base addresses, selected by bits 27:24 of the address.
const (
	BIOSBase    = 0x00000000
	EWRAMBase   = 0x02000000
	IWRAMBase   = 0x03000000
	IOBase      = 0x04000000
	PaletteBase = 0x05000000
	VRAMBase    = 0x06000000
	OAMBase     = 0x07000000
	ROMBase     = 0x08000000
	ROMBaseWS1  = 0x0A000000
	ROMBaseWS2  = 0x0C000000
	SRAMBase    = 0x0E000000
)

// Decode classifies addr and returns the region plus the mirrored offset
// within that region's backing store.
func Decode(addr uint32) (Region, uint32) {
	hi := (addr >> 24) & 0xFF
	switch {
	case hi == 0x00 || hi == 0x01:
		if addr < BIOSSize {
			return RegionBIOS, addr
		}
		return RegionUnmapped, 0
	case hi == 0x02:
		return RegionEWRAM, addr % EWRAMSize
	case hi == 0x03:
		return RegionIWRAM, addr%IWRAMSize
	case hi == 0x04:
		off := addr - IOBase
		if off >= IOSize {
			// GBATEK: I/O mirrors weakly past 0x4000400; treat as unmapped
			// beyond the documented register block rather than wrapping,
			// matching how undocumented GBA I/O reads behave (open bus).
			return RegionUnmapped, 0
		}
		return RegionIO, off
	case hi == 0x05:
		return RegionPalette, (addr - PaletteBase) % PaletteSize
	case hi == 0x06:
		return RegionVRAM, vramMirror(addr - VRAMBase)
	case hi == 0x07:
		return RegionOAM, (addr - OAMBase) % OAMSize
	case hi >= 0x08 && hi <= 0x0D:
		base := uint32(ROMBase)
		switch {
		case hi >= 0x0C:
			base = ROMBaseWS2
		case hi >= 0x0A:
			base = ROMBaseWS1
		}
		return RegionROM, addr - base
	case hi == 0x0E || hi == 0x0F:
		return RegionSRAM, (addr - SRAMBase) % SRAMSize
	default:
		return RegionUnmapped, 0
	}
}

// vramMirror applies VRAM's odd sizing quirk: the 96 KiB (0x18000) backing
// store doesn't divide the 128 KiB (0x20000) address stride evenly, so
// addresses 0x10000-0x17FFF repeat in the next 0x8000 before the stride
// wraps back to offset 0.
func vramMirror(off uint32) uint32 {
	off %= 0x20000
	if off >= 0x18000 {
		off -= 0x8000
	}
	return off
}
