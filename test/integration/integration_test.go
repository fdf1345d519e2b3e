// Package integration exercises the CPU, PPU, APU, bus and cartridge
// together through the console driver, covering the quantified
// invariants, round-trip properties and boundary behaviors described in
// spec.md's testable-properties section that a single package's unit
// tests can't see across.
package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gones/internal/cartridge"
	"gones/internal/console"
)

// buildROM constructs a minimal iNES image with one 16 KiB PRG bank and
// a reset vector pointed at $8000. chrBanks == 0 selects CHR-RAM so the
// PPU address-routing sweep can exercise pattern-table writes too.
func buildROM(t *testing.T, program []uint8, mirrorVertical bool, chrBanks uint8) *cartridge.Cartridge {
	t.Helper()

	const prgSize = 16 * 1024
	prg := make([]uint8, prgSize)
	copy(prg, program)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80

	chrSize := int(chrBanks) * 8192
	data := make([]uint8, 16+prgSize+chrSize)
	copy(data[0:4], []byte{'N', 'E', 'S', 0x1A})
	data[4] = 1
	data[5] = chrBanks
	if mirrorVertical {
		data[6] = 0x01
	}
	copy(data[16:], prg)

	cart, err := cartridge.Load(data)
	require.NoError(t, err)
	return cart
}

// newSweepConsole builds a console with a CHR-RAM cartridge inserted and
// clocks to the second vblank after reset. The first RunFrame stops at
// the first vblank (scanline 241); the second passes the pre-render line
// (scanline 261), where the PPU's post-reset register write-ignore window
// (spec.md §5) closes, before a test starts driving $2000-$2007 directly.
func newSweepConsole(t *testing.T, mirrorVertical bool) *console.Console {
	t.Helper()
	c := console.New()
	c.InsertCartridge(buildROM(t, nil, mirrorVertical, 0))
	c.Reset()
	c.RunFrame()
	c.RunFrame()
	return c
}

// TestPPUAddressRoutingAcrossFullRange sweeps every PPU bus address the
// v register can hold (0..16383) and checks that a write lands where the
// address-routing invariant says it should: CHR/nametable space round
// trips through the buffered $2007 read protocol, palette space returns
// immediately and is masked to 6 bits.
func TestPPUAddressRoutingAcrossFullRange(t *testing.T) {
	c := newSweepConsole(t, true)
	p := c.PPU

	setAddr := func(v uint16) {
		p.WriteRegister(6, uint8(v>>8))
		p.WriteRegister(6, uint8(v))
	}

	for v := 0; v < 0x4000; v++ {
		addr := uint16(v)
		value := uint8((v*73 + 17) & 0xFF)

		if addr < 0x3F00 {
			setAddr(addr)
			p.WriteRegister(7, value)

			// The first read after repositioning the address only primes
			// the buffer with addr's value; the second returns it.
			setAddr(addr)
			p.ReadRegister(7)
			setAddr(addr)
			got := p.ReadRegister(7)
			assert.Equalf(t, value, got, "addr %#04x: CHR/nametable round trip", addr)
			continue
		}

		setAddr(addr)
		p.WriteRegister(7, value)
		setAddr(addr)
		got := p.ReadRegister(7) & 0x3F
		assert.Equalf(t, value&0x3F, got, "addr %#04x: palette round trip (masked to 6 bits)", addr)
	}
}

// TestPaletteMirrorAddressesCollapseToBaseEntry checks the four sprite-
// palette-background mirror addresses fold onto their base entry, per
// spec.md's palette address invariant.
func TestPaletteMirrorAddressesCollapseToBaseEntry(t *testing.T) {
	c := newSweepConsole(t, true)
	p := c.PPU

	setAddr := func(v uint16) {
		p.WriteRegister(6, uint8(v>>8))
		p.WriteRegister(6, uint8(v))
	}
	write := func(addr uint16, value uint8) {
		setAddr(addr)
		p.WriteRegister(7, value)
	}
	read := func(addr uint16) uint8 {
		setAddr(addr)
		return p.ReadRegister(7) & 0x3F
	}

	mirrors := map[uint16]uint16{0x3F10: 0x3F00, 0x3F14: 0x3F04, 0x3F18: 0x3F08, 0x3F1C: 0x3F0C}
	for mirror, base := range mirrors {
		write(mirror, 0x2A)
		assert.Equalf(t, uint8(0x2A), read(base), "write to %#04x should be visible at base %#04x", mirror, base)

		write(base, 0x15)
		assert.Equalf(t, uint8(0x15), read(mirror), "write to base %#04x should be visible at mirror %#04x", base, mirror)
	}
}

// TestOAMDataRoundTrip checks spec.md's OAM round-trip property: writing
// $2003 (OAM address) then a run of bytes through $2004 reads back
// unchanged, and reading $2004 does not itself disturb oamAddr beyond
// the write path's own auto-increment.
func TestOAMDataRoundTrip(t *testing.T) {
	c := newSweepConsole(t, false)
	p := c.PPU

	p.WriteRegister(3, 0x10) // OAM address = 0x10
	for i := 0; i < 16; i++ {
		p.WriteRegister(4, uint8(i*7+1))
	}

	// Reads don't auto-increment oamAddr the way writes do, so each byte
	// needs its own $2003 addressing before the $2004 read.
	for i := 0; i < 16; i++ {
		p.WriteRegister(3, uint8(0x10+i))
		want := uint8(i*7 + 1)
		got := p.ReadRegister(4)
		assert.Equalf(t, want, got, "OAM byte %d round trip", i)
	}
}

// TestPRGRAMRoundTrip checks spec.md's PRG-RAM round-trip property: a
// byte written at $6000-$7FFF reads back unchanged.
func TestPRGRAMRoundTrip(t *testing.T) {
	c := console.New()
	c.InsertCartridge(buildROM(t, nil, false, 1))
	c.Reset()

	c.Bus.Write(0x6000, 0xAB)
	c.Bus.Write(0x7FFF, 0xCD)

	assert.Equal(t, uint8(0xAB), c.Bus.Read(0x6000))
	assert.Equal(t, uint8(0xCD), c.Bus.Read(0x7FFF))
}

// TestResetSetsPCToResetVector checks that after Reset the CPU's PC
// matches the cartridge's $FFFC/$FFFD reset vector.
func TestResetSetsPCToResetVector(t *testing.T) {
	c := console.New()
	cart := buildROM(t, nil, false, 1)
	c.InsertCartridge(cart)
	c.Reset()

	assert.Equal(t, uint16(0x8000), c.CPU.PC)
}

// TestFramebufferAlphaAlwaysOpaque checks the quantified invariant that
// every pixel's alpha byte is always 255.
func TestFramebufferAlphaAlwaysOpaque(t *testing.T) {
	c := console.New()
	c.InsertCartridge(buildROM(t, nil, false, 1))
	c.Reset()

	fb, _ := c.RunFrame()
	require.Len(t, fb, 256*240*4)
	for i := 3; i < len(fb); i += 4 {
		if fb[i] != 255 {
			t.Fatalf("pixel at byte offset %d has alpha %d, want 255", i, fb[i])
		}
	}
}

// TestScenarioPPUStatusReadClearsVBlankAndLatch is spec.md's sixth
// concrete end-to-end scenario: with $2002's vblank bit set and open bus
// holding 0x12, a read returns status|openBus low bits, clears bit 7 and
// resets the write latch so a subsequent $2005/$2006 write pair is
// interpreted as the first of the pair again.
func TestScenarioPPUStatusReadClearsVBlankAndLatch(t *testing.T) {
	c := newSweepConsole(t, false)
	p := c.PPU

	for !c.PPU.ConsumeFrameReady() {
		c.Clock()
	}
	require.NotZero(t, p.Status()&0x80, "expected vblank flag to be set")

	// Leave the write latch mid-sequence (first half of a $2006 write)
	// with the same write that puts 0x12 on open bus, matching the
	// scenario's "status read observes open bus holding 0x12".
	p.WriteRegister(6, 0x12)

	result := p.ReadRegister(2)
	assert.NotZero(t, result&0x80, "status read should return the vblank bit that was set")
	assert.Equal(t, uint8(0x12), result&0x1F, "status read's low bits should come from open bus")
	assert.Zero(t, p.Status()&0x80, "internal status bit 7 should be cleared by the read")

	// With the latch reset, a fresh $2006 write pair should be read as
	// (high byte, low byte) rather than as the second half of the
	// aborted pending write above, addressing $2100 correctly.
	p.WriteRegister(6, 0x21)
	p.WriteRegister(6, 0x00)
	p.WriteRegister(7, 0x77)

	p.WriteRegister(6, 0x21)
	p.WriteRegister(6, 0x00)
	p.ReadRegister(7) // primes the buffer with $2100's value
	p.WriteRegister(6, 0x21)
	p.WriteRegister(6, 0x00)
	got := p.ReadRegister(7)
	assert.Equal(t, uint8(0x77), got, "expected the write latch to have been reset to the first-write state")
}

// TestAPU4017InhibitClearsPendingIRQ covers the quantified invariant
// that writing $4017 with the frame-IRQ-inhibit bit set clears any
// already-pending frame IRQ, even though the frame counter itself is
// also reset by the same write.
func TestAPU4017InhibitClearsPendingIRQ(t *testing.T) {
	c := console.New()
	c.InsertCartridge(buildROM(t, nil, false, 1))
	c.Reset()

	// Select 4-step mode with IRQ inhibit disabled and run long enough
	// for the frame counter to assert its IRQ.
	c.Bus.Write(0x4017, 0x00)
	for i := 0; i < 40000; i++ {
		c.Clock()
	}
	require.True(t, c.APU.IRQPending(), "expected frame IRQ to be pending before the inhibit write")

	c.Bus.Write(0x4017, 0x40) // inhibit bit set
	assert.False(t, c.APU.IRQPending(), "expected $4017 inhibit write to clear the pending frame IRQ")
}

// TestBranchPageCrossCostsExtraCycleThroughConsole re-verifies the
// branch page-cross boundary behavior at console level: a taken branch
// that crosses a page boundary costs two extra cycles over the
// not-crossing, not-taken baseline.
func TestBranchPageCrossCostsExtraCycleThroughConsole(t *testing.T) {
	program := make([]uint8, 16*1024)
	at := func(addr uint16) uint16 { return addr - 0x8000 }

	// SEC ; BCC +16 at $9000: carry set, so the branch is not taken.
	program[at(0x9000)] = 0x38
	program[at(0x9001)] = 0x90
	program[at(0x9002)] = 0x10

	// CLC ; BCC +16 at $80F0: carry clear, so the branch is taken and
	// crosses from $80F3 to $8103.
	program[at(0x80F0)] = 0x18
	program[at(0x80F1)] = 0x90
	program[at(0x80F2)] = 0x10

	c := console.New()
	c.InsertCartridge(buildROM(t, program, false, 1))
	c.Reset()

	// Fixed iteration counts (rather than polling for a target PC) avoid
	// stopping mid-countdown of the CPU's remaining-cycles model, which
	// would leave a leftover idle cycle bleeding into the next segment.
	c.CPU.PC = 0x9000
	start := c.CPU.Cycles()
	for i := 0; i < 4; i++ { // SEC (2) + BCC not taken (2)
		c.Clock()
	}
	notTakenCycles := c.CPU.Cycles() - start
	require.Equal(t, uint16(0x9003), c.CPU.PC)

	c.CPU.PC = 0x80F0
	start2 := c.CPU.Cycles()
	for i := 0; i < 6; i++ { // CLC (2) + BCC taken, page cross (4)
		c.Clock()
	}
	takenCrossCycles := c.CPU.Cycles() - start2
	require.Equal(t, uint16(0x8103), c.CPU.PC)

	assert.Equal(t, notTakenCycles+2, takenCrossCycles, "taken branch across a page boundary should cost 2 more cycles than not-taken")
}
