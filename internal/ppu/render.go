package ppu

// spriteHeight returns 8 or 16 depending on control bit 5.
func (p *PPU) spriteHeight() int {
	if p.ctrl&0x20 != 0 {
		return 16
	}
	return 8
}

// evaluateSprites reproduces the hardware's secondary-OAM fill and its
// diagonal overflow-flag bug, per spec.md §4.4.
func (p *PPU) evaluateSprites(scanline int) ([]spriteSlot, bool, bool) {
	height := p.spriteHeight()
	var secondary []spriteSlot
	sprite0 := false

	oamAddr := 0
	count := 0
	overflow := false
	for oamAddr < 256 {
		n := oamAddr / 4
		if count < 8 {
			y := int(p.oam[n*4])
			if scanline >= y && scanline < y+height {
				secondary = append(secondary, spriteSlot{
					index: n,
					y:     p.oam[n*4],
					tile:  p.oam[n*4+1],
					attr:  p.oam[n*4+2],
					x:     p.oam[n*4+3],
				})
				if n == 0 {
					sprite0 = true
				}
				count++
			}
			oamAddr += 4
		} else {
			m := oamAddr % 4
			y := int(p.oam[oamAddr])
			if scanline >= y && scanline < y+height {
				overflow = true
				break
			}
			if m == 3 {
				oamAddr += 5
			} else {
				oamAddr++
			}
		}
	}
	return secondary, sprite0, overflow
}

// renderPixel computes and writes one framebuffer pixel at (x, y).
func (p *PPU) renderPixel(x, y int) {
	bgEnabled := p.mask&0x08 != 0
	spriteEnabled := p.mask&0x10 != 0
	bgLeftOK := x >= 8 || p.mask&0x02 != 0
	spriteLeftOK := x >= 8 || p.mask&0x04 != 0

	var bgColorIdx uint8
	var bgPaletteID uint8
	bgOpaque := false
	if bgEnabled && bgLeftOK {
		bgColorIdx, bgPaletteID = p.backgroundPixel(x, y)
		bgOpaque = bgColorIdx != 0
	}
	p.bgOpaque[x] = bgOpaque

	var paletteAddr uint16 = 0x3F00
	if bgOpaque {
		paletteAddr = 0x3F00 + uint16(bgPaletteID)*4 + uint16(bgColorIdx)
	}

	if spriteEnabled && spriteLeftOK {
		spriteColorIdx, spritePaletteID, isSprite0, priorityBG, hit := p.spritePixel(x, y)
		if hit {
			if isSprite0 && bgOpaque && x < 255 {
				p.status |= 0x40
			}
			if !(priorityBG && bgOpaque) {
				paletteAddr = 0x3F10 + uint16(spritePaletteID)*4 + uint16(spriteColorIdx)
			}
		}
	}

	idx := p.readPaletteByte(paletteAddr)
	r, g, b, a := rgbaFromPaletteIndex(idx)
	off := (y*Width + x) * 4
	p.frameBuffer[off+0] = r
	p.frameBuffer[off+1] = g
	p.frameBuffer[off+2] = b
	p.frameBuffer[off+3] = a
}

// backgroundPixel computes the 2-bit color index and palette id for one
// background pixel using the scanline-latched scroll state.
func (p *PPU) backgroundPixel(x, y int) (colorIdx, paletteID uint8) {
	coarseX := p.renderV & 0x1F
	coarseY := (p.renderV >> 5) & 0x1F
	fineY := (p.renderV >> 12) & 0x07
	nametableSelect := (p.renderV >> 10) & 0x03

	scrollX := int(coarseX)*8 + int(p.renderFineX)
	scrollY := int(coarseY)*8 + int(fineY)

	totalX := (scrollX + x) % 512
	totalY := (scrollY + y) % 480

	pageX := totalX / 256
	pageY := totalY / 240
	page := int(nametableSelect) ^ pageX ^ (pageY << 1)

	tileX := (totalX % 256) / 8
	tileY := (totalY % 240) / 8
	fineXInTile := totalX % 8
	fineYInTile := totalY % 8

	ntBase := uint16(0x2000 + page*0x400)
	ntAddr := ntBase + uint16(tileY*32+tileX)
	tileIndex := p.readNametable(ntAddr)

	attrAddr := ntBase + 0x3C0 + uint16((tileY/4)*8+(tileX/4))
	attrByte := p.readNametable(attrAddr)
	shift := uint((tileY%4)/2*4 + (tileX%4)/2*2)
	paletteID = (attrByte >> shift) & 0x03

	patternTable := uint16(0)
	if p.ctrl&0x10 != 0 {
		patternTable = 0x1000
	}
	patternAddr := patternTable + uint16(tileIndex)*16 + uint16(fineYInTile)
	lo := p.cart.PPURead(patternAddr)
	hi := p.cart.PPURead(patternAddr + 8)
	bit := uint(7 - fineXInTile)
	colorIdx = ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
	return colorIdx, paletteID
}

// spritePixel evaluates the scanline's active sprites for column x and
// returns the winning sprite's color/palette, whether it is sprite zero,
// its background-priority bit, and whether any sprite produced a pixel.
func (p *PPU) spritePixel(x, y int) (colorIdx, paletteID uint8, isSprite0, priorityBG, hit bool) {
	height := p.spriteHeight()
	for _, s := range p.activeSprites {
		spriteX := int(s.x)
		if x < spriteX || x >= spriteX+8 {
			continue
		}
		row := y - int(s.y)
		if row < 0 || row >= height {
			continue
		}
		if s.attr&0x80 != 0 {
			row = height - 1 - row
		}
		col := x - spriteX
		if s.attr&0x40 != 0 {
			col = 7 - col
		}

		var patternAddr uint16
		if height == 16 {
			table := uint16(s.tile&0x01) * 0x1000
			tileIndex := uint16(s.tile &^ 0x01)
			r := row
			if r >= 8 {
				tileIndex++
				r -= 8
			}
			patternAddr = table + tileIndex*16 + uint16(r)
		} else {
			table := uint16(0)
			if p.ctrl&0x08 != 0 {
				table = 0x1000
			}
			patternAddr = table + uint16(s.tile)*16 + uint16(row)
		}

		lo := p.cart.PPURead(patternAddr)
		hi := p.cart.PPURead(patternAddr + 8)
		bit := uint(7 - col)
		ci := ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
		if ci == 0 {
			continue
		}
		return ci, s.attr & 0x03, s.index == 0, s.attr&0x20 != 0, true
	}
	return 0, 0, false, false, false
}
