package cartridge

import "testing"

func newCartWithMapper(t *testing.T, mapperID uint8, prgBanks, chrBanks uint8) *Cartridge {
	t.Helper()
	flags6 := (mapperID & 0x0F) << 4
	flags7 := mapperID & 0xF0
	data := buildROM(prgBanks, chrBanks, flags6, flags7)
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load mapper %d: %v", mapperID, err)
	}
	return c
}

func TestUxROMBankSwitch(t *testing.T) {
	c := newCartWithMapper(t, 2, 4, 0)

	c.CPUWrite(0x8000, 2)
	lowBank2, _ := c.CPURead(0x8000)
	lowBank2Expect := c.prg[2*prgBankSize]
	if lowBank2 != lowBank2Expect {
		t.Fatalf("expected bank 2 byte %#x, got %#x", lowBank2Expect, lowBank2)
	}

	hi, _ := c.CPURead(0xC000)
	lastBank := c.prg[3*prgBankSize]
	if hi != lastBank {
		t.Fatalf("expected fixed last bank byte %#x, got %#x", lastBank, hi)
	}
}

func TestCNROMChrBankSwitch(t *testing.T) {
	c := newCartWithMapper(t, 3, 1, 4)
	c.CPUWrite(0x8000, 3)
	got := c.PPURead(0x0000)
	want := c.chr[3*chrBankSize]
	if got != want {
		t.Fatalf("expected CHR bank 3 byte %#x, got %#x", want, got)
	}
}

func mmc1Write(c *Cartridge, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		c.CPUWrite(addr, (value>>uint(i))&1)
	}
}

func TestMMC1FifthWriteLoadsRegister(t *testing.T) {
	c := newCartWithMapper(t, 1, 8, 8)
	mmc1Write(c, 0xE000, 0x05) // select PRG bank 5

	lo, _ := c.CPURead(0x8000)
	want := c.prg[5*prgBankSize]
	if lo != want {
		t.Fatalf("expected PRG bank 5 byte %#x, got %#x", want, lo)
	}
}

func TestMMC1ResetBitForcesShiftAndControl(t *testing.T) {
	c := newCartWithMapper(t, 1, 8, 8)
	m := c.mapper.(*mmc1)

	m.shift = 0x00
	m.shiftCount = 3
	c.CPUWrite(0x8000, 0x80)

	if m.shift != 0x10 || m.shiftCount != 0 {
		t.Fatalf("expected shift register reset, got shift=%#x count=%d", m.shift, m.shiftCount)
	}
	if m.control&0x0C != 0x0C {
		t.Fatalf("expected control bits 2-3 forced high, got %#x", m.control)
	}
}

func TestMMC3BankSelectAndData(t *testing.T) {
	c := newCartWithMapper(t, 4, 8, 0)
	c.CPUWrite(0x8000, 6)  // select R6
	c.CPUWrite(0x8001, 10) // R6 = bank 10

	got, _ := c.CPURead(0x8000)
	banks := c.mapper.(*mmc3).prgBankCount8k()
	want := c.prg[(10%banks)*0x2000]
	if got != want {
		t.Fatalf("expected R6 bank byte %#x, got %#x", want, got)
	}
}

func TestMMC3MirroringRegister(t *testing.T) {
	c := newCartWithMapper(t, 4, 8, 0)
	c.CPUWrite(0xA000, 1) // horizontal
	if c.Mirror() != MirrorHorizontal {
		t.Fatalf("expected horizontal mirroring, got %v", c.Mirror())
	}
	c.CPUWrite(0xA000, 0) // vertical
	if c.Mirror() != MirrorVertical {
		t.Fatalf("expected vertical mirroring, got %v", c.Mirror())
	}
}
