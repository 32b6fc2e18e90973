// Package bus implements the GBA's memory-mapped address space: region
// decode, mirroring, open-bus fill, and separate CPU/system capability
// views onto the same backing stores.
//
// The bus is the sole owner of every backing store (BIOS, EWRAM, IWRAM,
// palette, VRAM, OAM, the raw I/O block) plus the cartridge. Components
// that need to read or write memory (CPU, PPU, DMA, timers) are handed a
// view onto this bus rather than owning their own storage.
package bus

import (
	"math/bits"

	"github.com/LJS360d/goba-core/internal/cartridge"
	"github.com/LJS360d/goba-core/internal/interfaces"
	"github.com/LJS360d/goba-core/internal/memorymap"
	"github.com/LJS360d/goba-core/util/dbg"
)

// Bus connects the CPU to every memory-mapped component.
type Bus struct {
	bios    []byte
	ewram   []byte
	iwram   []byte
	palette []byte
	vram    []byte
	oam     []byte
	ioRegs  [memorymap.IOSize]byte

	cart *cartridge.Cartridge

	// ioComponents are tried in order for every I/O read/write; the first
	// one that HandlesIO the offset wins. Unclaimed offsets fall back to
	// the raw ioRegs backing store.
	ioComponents []interfaces.IOComponent

	// pcProvider lets the bus answer "is PC currently inside BIOS", for
	// reads of the BIOS region once execution has left it. Wired after CPU
	// construction via AttachPC.
	pcProvider func() uint32

	// vramObjBaseProvider answers the bitmap/tile split for VRAM's
	// single-byte write rule: it returns the VRAM offset at which the OBJ
	// character area begins for the PPU's current background mode
	// (0x10000 in tile modes 0-2, 0x14000 in bitmap modes 3-5).
	vramObjBaseProvider func() uint32

	lastFetchWord   uint32
	lastFetchRegion memorymap.Region
	lastBIOSFetch   uint32
}

// New creates a bus with all backing stores allocated. Components are
// attached afterward via RegisterIOComponent because most of them need a
// reference to the bus themselves (constructed with a SystemView).
func New(bios []byte, cart *cartridge.Cartridge) *Bus {
	b := &Bus{
		bios:    bios,
		ewram:   make([]byte, memorymap.EWRAMSize),
		iwram:   make([]byte, memorymap.IWRAMSize),
		palette: make([]byte, memorymap.PaletteSize),
		vram:    make([]byte, memorymap.VRAMSize),
		oam:     make([]byte, memorymap.OAMSize),
		cart:    cart,
	}
	return b
}

// CartridgeHeader exposes the loaded ROM's parsed header, for hosts that
// want to display it without reaching around the bus.
func (b *Bus) CartridgeHeader() cartridge.Header { return b.cart.Header() }

// RegisterIOComponent adds a component to the I/O dispatch chain.
func (b *Bus) RegisterIOComponent(c interfaces.IOComponent) {
	b.ioComponents = append(b.ioComponents, c)
}

// AttachPC wires the "is PC inside BIOS" query used by the BIOS open-bus
// latch rule.
func (b *Bus) AttachPC(pc func() uint32) { b.pcProvider = pc }

// AttachVRAMObjBase wires the bitmap/tile split query used by the VRAM
// single-byte write rule.
func (b *Bus) AttachVRAMObjBase(fn func() uint32) { b.vramObjBaseProvider = fn }

// System returns the lock-free, no-halt-trap view used by the PPU, DMA
// engine, and timers — they own the memory they touch, so the CPU's
// write-protect and halt-trap rules don't apply to their accesses.
func (b *Bus) System() interfaces.SystemView { return systemPort{b} }

// --- CPU view (interfaces.CPUView) ---

// Read8 performs region decode, the read-lock check, mirroring, and the
// open-bus/BIOS-latch rules for a single byte.
func (b *Bus) Read8(addr uint32) uint8 {
	return b.read8(addr, true)
}

// Read16 returns the aligned halfword at addr, rotated right by 8 bits if
// addr is odd.
func (b *Bus) Read16(addr uint32) uint16 {
	aligned := addr &^ 1
	lo := uint16(b.read8(aligned, true))
	hi := uint16(b.read8(aligned+1, true))
	word := lo | hi<<8
	if addr&1 != 0 {
		word = bits.RotateLeft16(word, -8)
	}
	return word
}

// Read32Rotated returns the aligned word at addr, rotated right by
// (addr&3)*8 bits — the behavior LDR uses for unaligned addresses.
func (b *Bus) Read32Rotated(addr uint32) uint32 {
	word := b.read32Aligned(addr, true)
	rot := int(addr&3) * 8
	return bits.RotateLeft32(word, -rot)
}

// Read32Unrotated returns the aligned word at addr with no rotation, used
// for instruction fetch (always aligned in practice).
func (b *Bus) Read32Unrotated(addr uint32) uint32 {
	return b.read32Aligned(addr, true)
}

// FetchARM reads a 32-bit opcode and updates the open-bus/BIOS latches.
func (b *Bus) FetchARM(addr uint32) uint32 {
	w := b.read32Aligned(addr&^3, true)
	b.latchFetch(addr, w)
	return w
}

// FetchThumb reads a 16-bit opcode and updates the open-bus/BIOS latches.
func (b *Bus) FetchThumb(addr uint32) uint16 {
	aligned := addr &^ 1
	lo := uint32(b.read8(aligned, true))
	hi := uint32(b.read8(aligned+1, true))
	w := lo | hi<<8
	b.latchFetch(addr, w)
	return uint16(w)
}

func (b *Bus) latchFetch(addr uint32, halfOrWord uint32) {
	region, _ := memorymap.Decode(addr)
	b.lastFetchWord = halfOrWord
	b.lastFetchRegion = region
	if region == memorymap.RegionBIOS {
		b.lastBIOSFetch = halfOrWord
	}
}

// Write8 applies the write-lock check and the palette/VRAM byte-widening
// rule before storing.
func (b *Bus) Write8(addr uint32, v uint8) {
	region, off := memorymap.Decode(addr)
	switch region {
	case memorymap.RegionBIOS:
		dbg.Printf("bus: attempted write 0x%02X to read-only BIOS at 0x%08X\n", v, addr)
	case memorymap.RegionEWRAM:
		b.ewram[off] = v
	case memorymap.RegionIWRAM:
		b.iwram[off] = v
	case memorymap.RegionIO:
		if !writeLocked(off) {
			b.ioWrite8(off, v)
		}
	case memorymap.RegionPalette:
		putLE16(b.palette, off&^1, uint16(v)|uint16(v)<<8)
	case memorymap.RegionVRAM:
		objBase := uint32(0x10000)
		if b.vramObjBaseProvider != nil {
			objBase = b.vramObjBaseProvider()
		}
		if off >= objBase {
			return // OBJ character data ignores single-byte writes
		}
		putLE16(b.vram, off&^1, uint16(v)|uint16(v)<<8)
	case memorymap.RegionOAM:
		// OAM never accepts single-byte writes.
	case memorymap.RegionROM:
		dbg.Printf("bus: attempted write 0x%02X to read-only ROM at 0x%08X\n", v, addr)
	case memorymap.RegionSRAM:
		b.cart.WriteSRAM8(off, v)
	}
}

func (b *Bus) Write16(addr uint32, v uint16) {
	region, off := memorymap.Decode(addr)
	off &^= 1
	switch region {
	case memorymap.RegionBIOS:
		dbg.Printf("bus: attempted write 0x%04X to read-only BIOS at 0x%08X\n", v, addr)
	case memorymap.RegionEWRAM:
		putLE16(b.ewram, off, v)
	case memorymap.RegionIWRAM:
		putLE16(b.iwram, off, v)
	case memorymap.RegionIO:
		if !writeLocked(off) {
			b.ioWrite8(off, uint8(v))
		}
		if !writeLocked(off + 1) {
			b.ioWrite8(off+1, uint8(v>>8))
		}
	case memorymap.RegionPalette:
		putLE16(b.palette, off, v)
	case memorymap.RegionVRAM:
		putLE16(b.vram, off, v)
	case memorymap.RegionOAM:
		putLE16(b.oam, off, v)
	case memorymap.RegionROM:
		dbg.Printf("bus: attempted write 0x%04X to read-only ROM at 0x%08X\n", v, addr)
	case memorymap.RegionSRAM:
		b.cart.WriteSRAM8(off, uint8(v))
	}
}

func (b *Bus) Write32(addr uint32, v uint32) {
	region, off := memorymap.Decode(addr)
	off &^= 3
	switch region {
	case memorymap.RegionBIOS:
		dbg.Printf("bus: attempted write 0x%08X to read-only BIOS at 0x%08X\n", v, addr)
	case memorymap.RegionEWRAM:
		putLE32(b.ewram, off, v)
	case memorymap.RegionIWRAM:
		putLE32(b.iwram, off, v)
	case memorymap.RegionIO:
		for i := uint32(0); i < 4; i++ {
			if !writeLocked(off + i) {
				b.ioWrite8(off+i, uint8(v>>(8*i)))
			}
		}
	case memorymap.RegionPalette:
		putLE32(b.palette, off, v)
	case memorymap.RegionVRAM:
		putLE32(b.vram, off, v)
	case memorymap.RegionOAM:
		putLE32(b.oam, off, v)
	case memorymap.RegionROM:
		dbg.Printf("bus: attempted write 0x%08X to read-only ROM at 0x%08X\n", v, addr)
	case memorymap.RegionSRAM:
		b.cart.WriteSRAM8(off, uint8(v))
	}
}

// --- shared read path (used by both CPU and system views) ---

func (b *Bus) read8(addr uint32, cpuView bool) uint8 {
	region, off := memorymap.Decode(addr)
	switch region {
	case memorymap.RegionBIOS:
		pc := uint32(0)
		if b.pcProvider != nil {
			pc = b.pcProvider()
		}
		if !cpuView || pc < memorymap.BIOSSize {
			return b.bios[off]
		}
		// PC has left BIOS: return the latched last BIOS fetch, rotated
		// by the requested byte lane.
		return byte(b.lastBIOSFetch >> ((off & 3) * 8))
	case memorymap.RegionEWRAM:
		return b.ewram[off]
	case memorymap.RegionIWRAM:
		return b.iwram[off]
	case memorymap.RegionIO:
		if cpuView && readLocked(off) {
			return b.openBusByte(addr)
		}
		return b.ioRead8(off)
	case memorymap.RegionPalette:
		return b.palette[off]
	case memorymap.RegionVRAM:
		return b.vram[off]
	case memorymap.RegionOAM:
		return b.oam[off]
	case memorymap.RegionROM:
		return b.cart.ReadROM8(off)
	case memorymap.RegionSRAM:
		return b.cart.ReadSRAM8(off)
	default:
		return b.openBusByte(addr)
	}
}

func (b *Bus) read32Aligned(addr uint32, cpuView bool) uint32 {
	aligned := addr &^ 3
	b0 := uint32(b.read8(aligned, cpuView))
	b1 := uint32(b.read8(aligned+1, cpuView))
	b2 := uint32(b.read8(aligned+2, cpuView))
	b3 := uint32(b.read8(aligned+3, cpuView))
	return b0 | b1<<8 | b2<<16 | b3<<24
}

// openBusByte returns the most recently fetched opcode word, rotated by
// the requested byte's offset within its natural alignment.
func (b *Bus) openBusByte(addr uint32) uint8 {
	rot := (addr & 3) * 8
	return byte(bits.RotateLeft32(b.lastFetchWord, -int(rot)))
}

func (b *Bus) ioRead8(offset uint32) uint8 {
	for _, c := range b.ioComponents {
		if c.HandlesIO(offset) {
			return c.ReadIO8(offset)
		}
	}
	return b.ioRegs[offset]
}

func (b *Bus) ioWrite8(offset uint32, v uint8) {
	for _, c := range b.ioComponents {
		if c.HandlesIO(offset) {
			c.WriteIO8(offset, v)
			return
		}
	}
	b.ioRegs[offset] = v
}

func putLE16(data []byte, off uint32, v uint16) {
	data[off] = byte(v)
	data[off+1] = byte(v >> 8)
}

func putLE32(data []byte, off uint32, v uint32) {
	data[off] = byte(v)
	data[off+1] = byte(v >> 8)
	data[off+2] = byte(v >> 16)
	data[off+3] = byte(v >> 24)
}

// systemPort adapts Bus to interfaces.SystemView: identical decoding, no
// write locks, no HALTCNT trap, no BIOS-outside-BIOS latch substitution.
type systemPort struct{ b *Bus }

func (s systemPort) Read8(addr uint32) uint8  { return s.b.read8(addr, false) }
func (s systemPort) Read16(addr uint32) uint16 {
	aligned := addr &^ 1
	lo := uint16(s.b.read8(aligned, false))
	hi := uint16(s.b.read8(aligned+1, false))
	return lo | hi<<8
}
func (s systemPort) Read32(addr uint32) uint32 { return s.b.read32Aligned(addr, false) }

// ioWrite8 dispatches like the CPU view's I/O store, except that a write
// to HALTCNT (offset 0x301) is dropped, so no halt is signalled.
func (s systemPort) ioWrite8(off uint32, v uint8) {
	if off == 0x301 {
		return
	}
	s.b.ioWrite8(off, v)
}

func (s systemPort) Write8(addr uint32, v uint8) {
	region, off := memorymap.Decode(addr)
	switch region {
	case memorymap.RegionEWRAM:
		s.b.ewram[off] = v
	case memorymap.RegionIWRAM:
		s.b.iwram[off] = v
	case memorymap.RegionIO:
		s.ioWrite8(off, v)
	case memorymap.RegionPalette:
		s.b.palette[off] = v
	case memorymap.RegionVRAM:
		s.b.vram[off] = v
	case memorymap.RegionOAM:
		s.b.oam[off] = v
	case memorymap.RegionSRAM:
		s.b.cart.WriteSRAM8(off, v)
	}
}

func (s systemPort) Write16(addr uint32, v uint16) {
	region, off := memorymap.Decode(addr)
	off &^= 1
	switch region {
	case memorymap.RegionEWRAM:
		putLE16(s.b.ewram, off, v)
	case memorymap.RegionIWRAM:
		putLE16(s.b.iwram, off, v)
	case memorymap.RegionIO:
		s.ioWrite8(off, uint8(v))
		s.ioWrite8(off+1, uint8(v>>8))
	case memorymap.RegionPalette:
		putLE16(s.b.palette, off, v)
	case memorymap.RegionVRAM:
		putLE16(s.b.vram, off, v)
	case memorymap.RegionOAM:
		putLE16(s.b.oam, off, v)
	case memorymap.RegionSRAM:
		s.b.cart.WriteSRAM8(off, uint8(v))
	}
}

func (s systemPort) Write32(addr uint32, v uint32) {
	region, off := memorymap.Decode(addr)
	off &^= 3
	switch region {
	case memorymap.RegionEWRAM:
		putLE32(s.b.ewram, off, v)
	case memorymap.RegionIWRAM:
		putLE32(s.b.iwram, off, v)
	case memorymap.RegionIO:
		for i := uint32(0); i < 4; i++ {
			s.ioWrite8(off+i, uint8(v>>(8*i)))
		}
	case memorymap.RegionPalette:
		putLE32(s.b.palette, off, v)
	case memorymap.RegionVRAM:
		putLE32(s.b.vram, off, v)
	case memorymap.RegionOAM:
		putLE32(s.b.oam, off, v)
	case memorymap.RegionSRAM:
		s.b.cart.WriteSRAM8(off, uint8(v))
	}
}

var _ interfaces.CPUView = (*Bus)(nil)
var _ interfaces.SystemView = systemPort{}
