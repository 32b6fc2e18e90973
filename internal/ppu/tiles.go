package ppu

// Tile text-mode background synthesis. Each background's
// BGCNT selects a tile-graphics base ("char block"), a tilemap base
// ("screen block"), a color depth, and a logical size of 256 or 512 pixels
// per dimension; up to four 32x32-entry screen blocks tile together to
// cover the larger sizes.

const (
	bgcntCharBaseShift = 2
	bgcntCharBaseMask  = 0x3
	bgcntDepth8bpp     = 1 << 7
	bgcntScreenBaseShift = 8
	bgcntScreenBaseMask  = 0x1F
	bgcntSizeShift       = 14
	bgcntSizeMask        = 0x3
)

// textMapSize returns the logical map size in tiles for BGCNT's two-bit
// size field: 0=32x32, 1=64x32, 2=32x64, 3=64x64.
func textMapSize(size uint16) (tilesW, tilesH int) {
	switch size {
	case 0:
		return 32, 32
	case 1:
		return 64, 32
	case 2:
		return 32, 64
	default:
		return 64, 64
	}
}

func (p *PPU) renderTextLine(bg, line int) {
	cnt := p.bgcnt(bg)
	charBase := uint32((cnt>>bgcntCharBaseShift)&bgcntCharBaseMask) * 0x4000
	screenBase := uint32((cnt>>bgcntScreenBaseShift)&bgcntScreenBaseMask) * 0x800
	depth8 := cnt&bgcntDepth8bpp != 0
	mapTilesW, mapTilesH := textMapSize((cnt >> bgcntSizeShift) & bgcntSizeMask)

	hofs, vofs := p.bgScroll(bg)
	y := (line + int(vofs)) % (mapTilesH * 8)
	tileRow := y / 8
	pixelRow := y % 8

	for x := 0; x < screenWidth; x++ {
		scrolledX := (x + int(hofs)) % (mapTilesW * 8)
		tileCol := scrolledX / 8
		pixelCol := scrolledX % 8

		entry := p.readTextMapEntry(screenBase, mapTilesW, mapTilesH, tileCol, tileRow)
		tileIndex := entry & 0x3FF
		hFlip := entry&(1<<10) != 0
		vFlip := entry&(1<<11) != 0
		palBank := uint16((entry >> 12) & 0xF)

		row := pixelRow
		if vFlip {
			row = 7 - row
		}
		col := pixelCol
		if hFlip {
			col = 7 - col
		}

		var palIndex uint16
		if depth8 {
			tileAddr := charBase + uint32(tileIndex)*64 + uint32(row)*8 + uint32(col)
			palIndex = uint16(p.readVRAM8(tileAddr))
		} else {
			tileAddr := charBase + uint32(tileIndex)*32 + uint32(row)*4 + uint32(col/2)
			b := p.readVRAM8(tileAddr)
			var nibble uint8
			if col%2 == 0 {
				nibble = b & 0xF
			} else {
				nibble = b >> 4
			}
			if nibble == 0 {
				palIndex = 0
			} else {
				palIndex = uint16(palBank)*16 + uint16(nibble)
			}
		}

		if palIndex == 0 {
			p.bgLine[bg][x] = transparent
		} else {
			p.bgLine[bg][x] = palIndex
		}
	}
}

// readTextMapEntry resolves which of the up to four 32x32 screen blocks
// (tileCol, tileRow) falls in and reads its 16-bit tilemap entry.
func (p *PPU) readTextMapEntry(screenBase uint32, mapTilesW, mapTilesH, tileCol, tileRow int) uint16 {
	blockCol := tileCol / 32
	blockRow := tileRow / 32
	localCol := tileCol % 32
	localRow := tileRow % 32

	blockIndex := blockRow*(mapTilesW/32) + blockCol
	blockOffset := uint32(blockIndex) * 0x800
	entryOffset := uint32(localRow*32+localCol) * 2
	return p.readVRAM16(screenBase + blockOffset + entryOffset)
}

func (p *PPU) bgScroll(bg int) (hofs, vofs uint16) {
	switch bg {
	case 0:
		return p.get16(regBG0HOFS) & 0x1FF, p.get16(regBG0VOFS) & 0x1FF
	case 1:
		return p.get16(regBG1HOFS) & 0x1FF, p.get16(regBG1VOFS) & 0x1FF
	case 2:
		return p.get16(regBG2HOFS) & 0x1FF, p.get16(regBG2VOFS) & 0x1FF
	default:
		return p.get16(regBG3HOFS) & 0x1FF, p.get16(regBG3VOFS) & 0x1FF
	}
}
