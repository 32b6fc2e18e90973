package ppu

// Affine (rotation/scaling) background support for modes 1 and 2: BG2/BG3
// carry a 2x2 transform matrix (PA/PB/PC/PD, 8.8 fixed
// point) and a reference point (BGxX/Y, 20.8 fixed point) that the real
// hardware reloads into an internal accumulator on every V-blank and on any
// write to the reference-point registers while that background is active.
// Nearest-neighbor sampling is the simplest faithful rendering for the
// scope here; bilinear filtering is not implemented.

type affineState struct {
	refX, refY int32 // 20.8 fixed point, sign-extended from the 28-bit register
}

func affineSlot(bg int) int { return bg - 2 }

func (p *PPU) reloadAffineRef(bg int) {
	slot := affineSlot(bg)
	var xOff, yOff int
	if bg == 2 {
		xOff, yOff = regBG2X, regBG2Y
	} else {
		xOff, yOff = regBG3X, regBG3Y
	}
	p.affine[slot].refX = signExtend28(p.get32(xOff))
	p.affine[slot].refY = signExtend28(p.get32(yOff))
}

func signExtend28(v uint32) int32 {
	v &= 0x0FFFFFFF
	if v&0x08000000 != 0 {
		return int32(v | 0xF0000000)
	}
	return int32(v)
}

func signExtend16(v uint16) int32 { return int32(int16(v)) }

func (p *PPU) affineParams(bg int) (pa, pb, pc, pd int32) {
	if bg == 2 {
		return signExtend16(p.get16(regBG2PA)), signExtend16(p.get16(regBG2PB)),
			signExtend16(p.get16(regBG2PC)), signExtend16(p.get16(regBG2PD))
	}
	return signExtend16(p.get16(regBG3PA)), signExtend16(p.get16(regBG3PB)),
		signExtend16(p.get16(regBG3PC)), signExtend16(p.get16(regBG3PD))
}

func (p *PPU) renderAffineLine(bg, line int) {
	if line == 0 {
		p.reloadAffineRef(bg)
	}

	cnt := p.bgcnt(bg)
	charBase := uint32((cnt>>bgcntCharBaseShift)&bgcntCharBaseMask) * 0x4000
	screenBase := uint32((cnt>>bgcntScreenBaseShift)&bgcntScreenBaseMask) * 0x800
	mapTiles := affineMapSize((cnt >> bgcntSizeShift) & bgcntSizeMask)
	mapPixels := mapTiles * 8
	wrap := cnt&(1<<13) != 0

	slot := affineSlot(bg)
	pa, _, pc, _ := p.affineParams(bg)
	originX := p.affine[slot].refX
	originY := p.affine[slot].refY

	for x := 0; x < screenWidth; x++ {
		srcX := int32(originX) + int32(x)*pa
		srcY := int32(originY) + int32(x)*pc
		px := int(srcX >> 8)
		py := int(srcY >> 8)

		if wrap {
			px = ((px % mapPixels) + mapPixels) % mapPixels
			py = ((py % mapPixels) + mapPixels) % mapPixels
		} else if px < 0 || py < 0 || px >= mapPixels || py >= mapPixels {
			p.bgLine[bg][x] = transparent
			continue
		}

		tileCol, tileRow := px/8, py/8
		pixelCol, pixelRow := px%8, py%8
		tilesPerRow := mapTiles
		entryAddr := screenBase + uint32(tileRow*tilesPerRow+tileCol)
		tileIndex := p.readVRAM8(entryAddr)

		tileAddr := charBase + uint32(tileIndex)*64 + uint32(pixelRow)*8 + uint32(pixelCol)
		palIndex := uint16(p.readVRAM8(tileAddr))
		if palIndex == 0 {
			p.bgLine[bg][x] = transparent
		} else {
			p.bgLine[bg][x] = palIndex
		}
	}

	_, pb, _, pd := p.affineParams(bg)
	p.affine[slot].refX += pb
	p.affine[slot].refY += pd
}

// affineMapSize returns the map width/height in tiles for an affine
// background's two-bit size field: 0=16x16, 1=32x32, 2=64x64, 3=128x128.
func affineMapSize(size uint16) int {
	switch size {
	case 0:
		return 16
	case 1:
		return 32
	case 2:
		return 64
	default:
		return 128
	}
}
