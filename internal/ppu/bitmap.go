package ppu

// Bitmap background modes 3-5: BG2 becomes a direct framebuffer instead of
// a tile/tilemap pair. Mode 3 is a single full-screen
// 15-bpp buffer; mode 4 is full-screen but 8-bpp, palettized, and double
// buffered by DISPCNT's frame-select bit; mode 5 is 15-bpp, double
// buffered, and only 160x128 (the rest of the screen reads as black).
const (
	mode5Width  = 160
	mode5Height = 128
)

func (p *PPU) renderBitmapLine(mode, line int) {
	p.bgIsDirect = true
	frame1 := p.dispcnt()&dispcntFrame1 != 0

	switch mode {
	case 3:
		base := uint32(line * screenWidth * 2)
		for x := 0; x < screenWidth; x++ {
			p.bgDirect[x] = p.readVRAM16(base + uint32(x)*2)
		}
	case 4:
		var base uint32
		if frame1 {
			base = 0xA000
		}
		rowBase := base + uint32(line*screenWidth)
		for x := 0; x < screenWidth; x++ {
			idx := p.readVRAM8(rowBase + uint32(x))
			p.bgDirect[x] = p.readPalette16(uint32(idx))
		}
	case 5:
		var base uint32
		if frame1 {
			base = 0xA000
		}
		if line >= mode5Height {
			for x := 0; x < screenWidth; x++ {
				p.bgDirect[x] = 0
			}
			return
		}
		rowBase := base + uint32(line*mode5Width*2)
		for x := 0; x < screenWidth; x++ {
			if x >= mode5Width {
				p.bgDirect[x] = 0
				continue
			}
			p.bgDirect[x] = p.readVRAM16(rowBase + uint32(x)*2)
		}
	}
}
