package ppu

import (
	"testing"

	"gones/internal/cartridge"
)

type fakeCart struct {
	chr    [0x2000]uint8
	mirror cartridge.Mirror
}

func (f *fakeCart) PPURead(addr uint16) uint8        { return f.chr[addr&0x1FFF] }
func (f *fakeCart) PPUWrite(addr uint16, value uint8) { f.chr[addr&0x1FFF] = value }
func (f *fakeCart) Mirror() cartridge.Mirror         { return f.mirror }

func newTestPPU(mirror cartridge.Mirror) (*PPU, *fakeCart) {
	p := New()
	c := &fakeCart{mirror: mirror}
	p.AttachCartridge(c)
	return p, c
}

func tickN(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Clock()
	}
}

func TestVBlankSetAndNMILatchedAt241_1(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.ctrl = 0x80 // NMI enable
	tickN(p, dotsPerScanline*(vblankScanline+1)) // safely past (241,1)
	if p.status&0x80 == 0 {
		t.Fatal("expected vblank flag set")
	}
	if !p.ConsumeNMI() {
		t.Fatal("expected NMI latched")
	}
}

func TestVBlankClearedAtPreRenderDot1(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	tickN(p, dotsPerScanline*(preRenderScanline+1)) // safely past (261,1)
	if p.status&0xE0 != 0 {
		t.Fatalf("expected status flags cleared at pre-render, got %#x", p.status)
	}
}

func TestStatusReadClearsVBlankAndWriteLatch(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.status = 0x80
	p.w = true
	v := p.ReadRegister(2)
	if v&0x80 == 0 {
		t.Fatal("expected read to report vblank set")
	}
	if p.status&0x80 != 0 {
		t.Fatal("expected vblank cleared after read")
	}
	if p.w {
		t.Fatal("expected write latch reset after status read")
	}
}

func TestPaletteMirroring(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.writePaletteByte(0x3F00, 0x20)
	if got := p.readPaletteByte(0x3F10); got != 0x20 {
		t.Fatalf("expected 0x3F10 to mirror 0x3F00, got %#x", got)
	}
}

func TestHorizontalMirroringSlots(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	if s0, s1 := p.nametableSlot(0), p.nametableSlot(1); s0 != s1 {
		t.Fatalf("expected pages 0,1 to share a slot under horizontal mirroring, got %d,%d", s0, s1)
	}
	if s2, s3 := p.nametableSlot(2), p.nametableSlot(3); s2 != s3 {
		t.Fatalf("expected pages 2,3 to share a slot under horizontal mirroring, got %d,%d", s2, s3)
	}
	if p.nametableSlot(0) == p.nametableSlot(2) {
		t.Fatal("expected the two horizontal mirroring groups to use distinct slots")
	}
}

func TestVerticalMirroringSlots(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorVertical)
	if s0, s2 := p.nametableSlot(0), p.nametableSlot(2); s0 != s2 {
		t.Fatalf("expected pages 0,2 to share a slot under vertical mirroring, got %d,%d", s0, s2)
	}
	if p.nametableSlot(0) == p.nametableSlot(1) {
		t.Fatal("expected the two vertical mirroring groups to use distinct slots")
	}
}

func TestAddrRegisterLoadsVFromTwoWrites(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.resetProtect = false
	p.WriteRegister(6, 0x21)
	p.WriteRegister(6, 0x08)
	if p.v != 0x2108 {
		t.Fatalf("expected v=0x2108, got %#x", p.v)
	}
}

func TestSpriteOverflowDiagonalBug(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	// Fill OAM with 9 sprites all in range on scanline 10 so the 9th
	// triggers the post-full overflow check.
	for i := 0; i < 9; i++ {
		p.oam[i*4+0] = 10 // y
		p.oam[i*4+1] = 0
		p.oam[i*4+2] = 0
		p.oam[i*4+3] = 0
	}
	_, _, overflow := p.evaluateSprites(10)
	if !overflow {
		t.Fatal("expected sprite overflow flag when a 9th in-range sprite exists")
	}
}

func TestDMAWriteAdvancesOAMAddr(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.oamAddr = 0
	p.DMAWrite(0xAB)
	p.DMAWrite(0xCD)
	if p.oam[0] != 0xAB || p.oam[1] != 0xCD {
		t.Fatalf("unexpected OAM contents: %#x %#x", p.oam[0], p.oam[1])
	}
	if p.oamAddr != 2 {
		t.Fatalf("expected oamAddr=2, got %d", p.oamAddr)
	}
}
