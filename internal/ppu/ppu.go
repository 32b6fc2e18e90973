// Package ppu implements the GBA's picture processing unit: a dot-stepped
// scanline renderer dispatching by DISPCNT background mode, composited
// against an OAM sprite layer into a 240x160 frame.
package ppu

import (
	"image"

	"github.com/LJS360d/goba-core/internal/interfaces"
	"github.com/LJS360d/goba-core/internal/memorymap"
)

const (
	screenWidth  = 240
	screenHeight = 160
	totalWidth   = screenWidth + 68
	totalHeight  = screenHeight + 68
	totalDots    = totalWidth * totalHeight
)

// I/O register byte offsets within the 0x4000000 block.
const (
	regDISPCNT  = 0x00
	regDISPSTAT = 0x04
	regVCOUNT   = 0x06
	regBG0CNT   = 0x08
	regBG1CNT   = 0x0A
	regBG2CNT   = 0x0C
	regBG3CNT   = 0x0E
	regBG0HOFS  = 0x10
	regBG0VOFS  = 0x12
	regBG1HOFS  = 0x14
	regBG1VOFS  = 0x16
	regBG2HOFS  = 0x18
	regBG2VOFS  = 0x1A
	regBG3HOFS  = 0x1C
	regBG3VOFS  = 0x1E
	regBG2PA    = 0x20
	regBG2PB    = 0x22
	regBG2PC    = 0x24
	regBG2PD    = 0x26
	regBG2X     = 0x28
	regBG2Y     = 0x2C
	regBG3PA    = 0x30
	regBG3PB    = 0x32
	regBG3PC    = 0x34
	regBG3PD    = 0x36
	regBG3X     = 0x38
	regBG3Y     = 0x3C
	regWIN0H    = 0x40
	regWIN1H    = 0x42
	regWIN0V    = 0x44
	regWIN1V    = 0x46
	regWININ    = 0x48
	regWINOUT   = 0x4A
	regMOSAIC   = 0x4C
	regBLDCNT   = 0x50
	regBLDALPHA = 0x52
	regBLDY     = 0x54

	ioBase = regDISPCNT
	ioEnd  = regBLDY + 2
)

// DISPSTAT bits.
const (
	dispstatVBlank      = 1 << 0
	dispstatHBlank      = 1 << 1
	dispstatVCountMatch = 1 << 2
	dispstatVBlankIRQ   = 1 << 3
	dispstatHBlankIRQ   = 1 << 4
	dispstatVCountIRQ   = 1 << 5
)

// DISPCNT bits.
const (
	dispcntModeMask  = 0x7
	dispcntFrame1    = 1 << 4
	dispcntObj1D     = 1 << 6
	dispcntForceBlank = 1 << 7
	dispcntBG0Enable = 1 << 8
	dispcntBG1Enable = 1 << 9
	dispcntBG2Enable = 1 << 10
	dispcntBG3Enable = 1 << 11
	dispcntObjEnable = 1 << 12
)

// PPU owns the display registers and drives scanline synthesis. It holds no
// backing memory of its own: VRAM, OAM, and palette live on the bus, which
// the PPU reaches through interfaces.SystemView since it logically owns
// what it reads (no CPU write-lock applies to the renderer's own access).
type PPU struct {
	bus interfaces.SystemView
	irq interfaces.InterruptRequester

	regs [ioEnd]byte

	elapsedDots int
	line        int

	frame       *image.RGBA
	frameReady  bool

	bgLine  [4][screenWidth]uint16 // palette index per pixel; 0xFFFF = transparent
	objLine [screenWidth]objPixel

	affine [2]affineState // internal reference-point accumulator, BG2/BG3

	bgDirect   [screenWidth]uint16 // BGR555 color, modes 3-5 only
	bgIsDirect bool
}

type objPixel struct {
	color     uint16
	priority  uint8
	opaque    bool
}

// New constructs a PPU wired to the shared bus and interrupt line.
func New(bus interfaces.SystemView, irq interfaces.InterruptRequester) *PPU {
	return &PPU{
		bus:   bus,
		irq:   irq,
		frame: image.NewRGBA(image.Rect(0, 0, screenWidth, screenHeight)),
	}
}

// ObjVRAMBase reports the current sprite-tile VRAM base, which differs
// between bitmap (modes 3-5, base 0x14000) and tile (modes 0-2, base
// 0x10000) backgrounds. The bus calls this through AttachVRAMObjBase when
// resolving an object-tile fetch window.
func (p *PPU) ObjVRAMBase() uint32 {
	if p.bgMode() >= 3 {
		return 0x14000
	}
	return 0x10000
}

func (p *PPU) bgMode() int { return int(p.dispcnt() & dispcntModeMask) }

func (p *PPU) dispcnt() uint16  { return p.get16(regDISPCNT) }
func (p *PPU) dispstat() uint16 { return p.get16(regDISPSTAT) }

// Frame returns the most recently completed frame buffer. The caller must
// not mutate it; a new Tick may still be writing the next frame's scanlines
// into it.
func (p *PPU) Frame() *image.RGBA { return p.frame }

// IsFrameReady reports whether a full frame has been synthesized since the
// last ResetFrameReady call.
func (p *PPU) IsFrameReady() bool { return p.frameReady }
func (p *PPU) ResetFrameReady()   { p.frameReady = false }

func (p *PPU) VCount() int { return p.line }

// Tick advances the renderer by exactly one dot: updates DISPSTAT's
// blank/match bits, requests the corresponding interrupts, and synthesizes
// a scanline the moment a new visible line begins. Returns true on the dot
// where the frame wraps back to line 0 (frame complete).
func (p *PPU) Tick() bool {
	lineBefore := p.elapsedDots / totalWidth

	p.elapsedDots++
	if p.elapsedDots >= totalDots {
		p.elapsedDots = 0
	}

	lineAfter := p.elapsedDots / totalWidth
	frameWrapped := lineAfter == 0 && lineBefore == totalHeight-1

	p.line = lineAfter

	dispstat := p.dispstat()
	dispstat &^= dispstatVBlank | dispstatHBlank | dispstatVCountMatch

	inVBlank := p.line >= screenHeight
	inHBlank := (p.elapsedDots % totalWidth) >= screenWidth
	if inVBlank {
		dispstat |= dispstatVBlank
	}
	if inHBlank {
		dispstat |= dispstatHBlank
	}
	vcountSetting := p.regs[regDISPSTAT+1]
	if uint8(p.line) == vcountSetting {
		dispstat |= dispstatVCountMatch
	}
	p.set16(regDISPSTAT, dispstat)
	p.regs[regVCOUNT] = uint8(p.line)
	p.regs[regVCOUNT+1] = 0

	if frameWrapped {
		if dispstat&dispstatVBlankIRQ != 0 {
			p.irq.RequestIRQ(uint16(interfaces.IRQVBlank))
		}
	}
	if inHBlank && (p.elapsedDots%totalWidth) == screenWidth {
		if dispstat&dispstatHBlankIRQ != 0 {
			p.irq.RequestIRQ(uint16(interfaces.IRQHBlank))
		}
	}
	if dispstat&dispstatVCountIRQ != 0 && dispstat&dispstatVCountMatch != 0 && (p.elapsedDots%totalWidth) == 0 {
		p.irq.RequestIRQ(uint16(interfaces.IRQVCount))
	}

	if lineAfter != lineBefore && lineAfter < screenHeight {
		p.synthesizeScanline(lineAfter)
	}
	if frameWrapped {
		p.frameReady = true
	}
	return frameWrapped
}

// VBlankStarted reports whether this tick is the first dot of V-blank, for
// the core's DMA V-blank trigger.
func (p *PPU) VBlankStarted() bool {
	return p.line == screenHeight && (p.elapsedDots%totalWidth) == 0
}

// HBlankStarted reports whether this tick is the first dot of the current
// line's H-blank period, for the core's DMA H-blank trigger.
func (p *PPU) HBlankStarted() bool {
	return (p.elapsedDots%totalWidth) == screenWidth
}

func (p *PPU) synthesizeScanline(line int) {
	if p.dispcnt()&dispcntForceBlank != 0 {
		for x := 0; x < screenWidth; x++ {
			p.frame.Set(x, line, blackPixel)
		}
		return
	}

	p.bgIsDirect = false

	switch p.bgMode() {
	case 0:
		for bg := 0; bg < 4; bg++ {
			if p.bgEnabled(bg) {
				p.renderTextLine(bg, line)
			} else {
				p.clearBGLine(bg)
			}
		}
	case 1:
		for bg := 0; bg < 2; bg++ {
			if p.bgEnabled(bg) {
				p.renderTextLine(bg, line)
			} else {
				p.clearBGLine(bg)
			}
		}
		p.clearBGLine(3)
		if p.bgEnabled(2) {
			p.renderAffineLine(2, line)
		} else {
			p.clearBGLine(2)
		}
	case 2:
		p.clearBGLine(0)
		p.clearBGLine(1)
		for _, bg := range []int{2, 3} {
			if p.bgEnabled(bg) {
				p.renderAffineLine(bg, line)
			} else {
				p.clearBGLine(bg)
			}
		}
	case 3, 4, 5:
		p.renderBitmapLine(p.bgMode(), line)
	}

	if p.objEnabled() {
		p.scanSprites(line)
	} else {
		for x := range p.objLine {
			p.objLine[x] = objPixel{}
		}
	}

	p.compose(line)
}

func (p *PPU) bgEnabled(bg int) bool {
	switch bg {
	case 0:
		return p.dispcnt()&dispcntBG0Enable != 0
	case 1:
		return p.dispcnt()&dispcntBG1Enable != 0
	case 2:
		return p.dispcnt()&dispcntBG2Enable != 0
	case 3:
		return p.dispcnt()&dispcntBG3Enable != 0
	}
	return false
}

func (p *PPU) objEnabled() bool { return p.dispcnt()&dispcntObjEnable != 0 }

func (p *PPU) clearBGLine(bg int) {
	for x := range p.bgLine[bg] {
		p.bgLine[bg][x] = transparent
	}
}

const transparent = 0xFFFF

var blackPixel = toRGBA(0)

func (p *PPU) bgcnt(bg int) uint16 {
	switch bg {
	case 0:
		return p.get16(regBG0CNT)
	case 1:
		return p.get16(regBG1CNT)
	case 2:
		return p.get16(regBG2CNT)
	default:
		return p.get16(regBG3CNT)
	}
}

func (p *PPU) bgPriority(bg int) uint8 { return uint8(p.bgcnt(bg) & 0x3) }

func (p *PPU) readVRAM8(off uint32) uint8   { return p.bus.Read8(memorymap.VRAMBase + off) }
func (p *PPU) readVRAM16(off uint32) uint16 { return p.bus.Read16(memorymap.VRAMBase + off) }
func (p *PPU) readPalette16(idx uint32) uint16 {
	return p.bus.Read16(memorymap.PaletteBase + idx*2)
}
func (p *PPU) readOAM16(off uint32) uint16 { return p.bus.Read16(memorymap.OAMBase + off) }

func (p *PPU) get16(off int) uint16 {
	return uint16(p.regs[off]) | uint16(p.regs[off+1])<<8
}
func (p *PPU) set16(off int, v uint16) {
	p.regs[off] = uint8(v)
	p.regs[off+1] = uint8(v >> 8)
}
func (p *PPU) get32(off int) uint32 {
	return uint32(p.get16(off)) | uint32(p.get16(off+2))<<16
}
func (p *PPU) set32(off int, v uint32) {
	p.set16(off, uint16(v))
	p.set16(off+2, uint16(v>>16))
}

func (p *PPU) HandlesIO(offset uint32) bool {
	return offset >= ioBase && offset < ioEnd
}

func (p *PPU) ReadIO8(offset uint32) uint8 {
	off := int(offset)
	if off == regVCOUNT {
		return uint8(p.line)
	}
	if off == regVCOUNT+1 {
		return 0
	}
	return p.regs[off]
}

func (p *PPU) WriteIO8(offset uint32, v uint8) {
	off := int(offset)
	switch off {
	case regVCOUNT, regVCOUNT + 1:
		return // read-only
	case regDISPSTAT:
		// Bottom 3 bits (VBlank/HBlank/V-match flags) are read-only; only
		// the IRQ-enable and V-count-setting bits are writable from here.
		p.regs[off] = (p.regs[off] & 0x7) | (v &^ 0x7)
		return
	}
	p.regs[off] = v

	switch {
	case off == regBG2X || off == regBG2X+1 || off == regBG2X+2 || off == regBG2X+3:
		p.reloadAffineRef(2)
	case off == regBG2Y || off == regBG2Y+1 || off == regBG2Y+2 || off == regBG2Y+3:
		p.reloadAffineRef(2)
	case off == regBG3X || off == regBG3X+1 || off == regBG3X+2 || off == regBG3X+3:
		p.reloadAffineRef(3)
	case off == regBG3Y || off == regBG3Y+1 || off == regBG3Y+2 || off == regBG3Y+3:
		p.reloadAffineRef(3)
	}
}

var _ interfaces.IOComponent = (*PPU)(nil)
