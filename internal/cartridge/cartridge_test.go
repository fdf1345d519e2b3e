package cartridge

import "testing"

func buildROM(prgBanks, chrBanks uint8, flags6, flags7 uint8) []byte {
	header := make([]byte, headerSize)
	copy(header[0:4], []byte{'N', 'E', 'S', 0x1A})
	header[4] = prgBanks
	header[5] = chrBanks
	header[6] = flags6
	header[7] = flags7

	prg := make([]byte, int(prgBanks)*prgBankSize)
	for i := range prg {
		prg[i] = uint8(i)
	}
	chr := make([]byte, int(chrBanks)*chrBankSize)
	for i := range chr {
		chr[i] = uint8(i + 1)
	}

	rom := append(header, prg...)
	rom = append(rom, chr...)
	return rom
}

func TestLoadRejectsBadMagic(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	data[0] = 'X'
	if _, err := Load(data); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestLoadRejectsNES20(t *testing.T) {
	data := buildROM(1, 1, 0, 0x08)
	if _, err := Load(data); err == nil {
		t.Fatal("expected error for NES 2.0 header")
	}
}

func TestLoadRejectsTruncatedPRG(t *testing.T) {
	data := buildROM(2, 0, 0, 0)
	data = data[:headerSize+prgBankSize] // drop the second bank
	if _, err := Load(data); err == nil {
		t.Fatal("expected error for truncated PRG-ROM")
	}
}

func TestLoadNROMSingleBankMirrors(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lo, ok := c.CPURead(0x8000)
	if !ok {
		t.Fatal("expected hit at 0x8000")
	}
	hi, ok := c.CPURead(0xC000)
	if !ok {
		t.Fatal("expected hit at 0xC000")
	}
	if lo != hi {
		t.Fatalf("expected single bank to mirror: lo=%d hi=%d", lo, hi)
	}
}

func TestLoadCHRRAMWhenNoCHRBanks(t *testing.T) {
	data := buildROM(1, 0, 0, 0)
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.PPUWrite(0x0000, 0x42)
	if got := c.PPURead(0x0000); got != 0x42 {
		t.Fatalf("CHR-RAM write/read mismatch: got %#x", got)
	}
}

func TestPRGRAMRoundTrip(t *testing.T) {
	data := buildROM(1, 1, 0, 0)
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if hit := c.CPUWrite(0x6000, 0x77); !hit {
		t.Fatal("expected PRG-RAM write to be accepted")
	}
	v, ok := c.CPURead(0x6000)
	if !ok || v != 0x77 {
		t.Fatalf("PRG-RAM round trip failed: v=%#x ok=%v", v, ok)
	}
}

func TestMirroringFromHeader(t *testing.T) {
	data := buildROM(1, 1, 0x01, 0)
	c, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Mirror() != MirrorVertical {
		t.Fatalf("expected vertical mirroring, got %v", c.Mirror())
	}
}

func TestUnsupportedMapperRejected(t *testing.T) {
	data := buildROM(1, 1, 0x50, 0) // mapper 5
	if _, err := Load(data); err == nil {
		t.Fatal("expected error for unsupported mapper")
	}
}
