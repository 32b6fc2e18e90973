package ppu

import "image/color"

// Layer compositing: per pixel, take the frontmost (numerically lowest
// priority) non-transparent background; a sprite with priority
// less-than-or-equal to that background's wins instead. Blending
// (BLDCNT/BLDALPHA/BLDY) and window clipping are parsed but not applied —
// the registers are stored and readable, but composition ignores them.
func (p *PPU) compose(line int) {
	bgCount := 4
	bgStart := 0
	if p.bgIsDirect {
		// Bitmap modes only ever populate "BG2"; the others stay blank.
		bgStart, bgCount = 2, 3
	}

	for x := 0; x < screenWidth; x++ {
		bestPriority := uint8(4)
		var bestColor uint16
		haveBG := false

		for bg := bgStart; bg < bgCount; bg++ {
			if !p.bgEnabled(bg) {
				continue
			}
			var idx uint16
			if p.bgIsDirect && bg == 2 {
				idx = p.bgDirect[x]
				if !haveBG || p.bgPriority(bg) < bestPriority {
					bestColor = idx
					bestPriority = p.bgPriority(bg)
					haveBG = true
				}
				continue
			}
			idx = p.bgLine[bg][x]
			if idx == transparent {
				continue
			}
			pr := p.bgPriority(bg)
			if !haveBG || pr < bestPriority {
				bestColor = p.readPalette16(uint32(idx))
				bestPriority = pr
				haveBG = true
			}
		}

		obj := p.objLine[x]
		var final uint16
		switch {
		case obj.opaque && (!haveBG || obj.priority <= bestPriority):
			final = obj.color
		case haveBG:
			final = bestColor
		default:
			final = p.readPalette16(0) // backdrop
		}

		p.frame.Set(x, line, toRGBA(final))
	}
}

// toRGBA expands a GBA BGR555 color (bit15 unused) into an opaque RGBA
// pixel, 5-bit channels scaled to 8-bit.
func toRGBA(c uint16) color.RGBA {
	r := uint8(c&0x1F) << 3
	g := uint8((c>>5)&0x1F) << 3
	b := uint8((c>>10)&0x1F) << 3
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
