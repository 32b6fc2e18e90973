package ppu

// OAM sprite scan: 128 fixed-size entries, each describing position,
// shape/size, tile base, palette mode, and priority. Affine (rotation/
// scaling) sprites are accepted as parsed but rendered using their
// unscaled bounding box; full affine sampling for OBJ is not implemented.

// shape x size -> {width, height} in pixels.
var objSizeTable = [3][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},   // square
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},   // horizontal
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},   // vertical
}

func (p *PPU) scanSprites(line int) {
	for x := range p.objLine {
		p.objLine[x] = objPixel{}
	}

	objMapping1D := p.dispcnt()&dispcntObj1D != 0

	for entry := 0; entry < 128; entry++ {
		addr := uint32(entry * 8)
		attr0 := p.readOAM16(addr)
		affineFlag := attr0&(1<<8) != 0
		if !affineFlag && attr0&(1<<9) != 0 {
			continue // disabled
		}

		shape := (attr0 >> 14) & 0x3
		if shape == 3 {
			continue // prohibited shape value
		}
		attr1 := p.readOAM16(addr + 2)
		size := (attr1 >> 14) & 0x3
		width, height := objSizeTable[shape][size][0], objSizeTable[shape][size][1]

		yPos := int(attr0 & 0xFF)
		rowInSprite := line - yPos
		if rowInSprite < 0 {
			rowInSprite += 256
		}
		if rowInSprite >= height {
			continue
		}

		xRaw := int(attr1 & 0x1FF)
		xPos := xRaw
		if xRaw >= 256 {
			xPos = xRaw - 512
		}
		if xPos+width <= 0 || xPos >= screenWidth {
			continue
		}

		attr2 := p.readOAM16(addr + 4)
		tileIndex := int(attr2 & 0x3FF)
		priority := uint8((attr2 >> 10) & 0x3)
		depth8 := attr0&(1<<13) != 0
		palBank := uint16((attr2 >> 12) & 0xF)

		hFlip := !affineFlag && attr1&(1<<12) != 0
		vFlip := !affineFlag && attr1&(1<<13) != 0

		row := rowInSprite
		if vFlip {
			row = height - 1 - row
		}

		charUnitsPerCell := 1
		if depth8 {
			charUnitsPerCell = 2
		}
		widthTiles := width / 8
		objBase := p.ObjVRAMBase()
		cellRow := row / 8
		withinCellRow := row % 8

		for dx := 0; dx < width; dx++ {
			screenX := xPos + dx
			if screenX < 0 || screenX >= screenWidth {
				continue
			}

			col := dx
			if hFlip {
				col = width - 1 - col
			}
			cellCol := col / 8
			withinCellCol := col % 8

			var cellIndex int
			if objMapping1D {
				cellIndex = tileIndex + (cellRow*widthTiles+cellCol)*charUnitsPerCell
			} else {
				cellIndex = tileIndex + cellRow*32 + cellCol*charUnitsPerCell
			}
			cellAddr := objBase + uint32(cellIndex)*32

			var colorIndex uint16
			if depth8 {
				b := p.readVRAM8(cellAddr + uint32(withinCellRow)*8 + uint32(withinCellCol))
				colorIndex = uint16(b)
			} else {
				b := p.readVRAM8(cellAddr + uint32(withinCellRow)*4 + uint32(withinCellCol/2))
				if withinCellCol%2 == 0 {
					colorIndex = uint16(b & 0xF)
				} else {
					colorIndex = uint16(b >> 4)
				}
			}

			if colorIndex == 0 {
				continue // transparent
			}

			existing := p.objLine[screenX]
			if existing.opaque && existing.priority <= priority {
				continue
			}

			var palIdx uint32
			if depth8 {
				palIdx = 256 + uint32(colorIndex)
			} else {
				palIdx = 256 + uint32(palBank)*16 + uint32(colorIndex)
			}

			p.objLine[screenX] = objPixel{
				color:    p.readPalette16(palIdx),
				priority: priority,
				opaque:   true,
			}
		}
	}
}
