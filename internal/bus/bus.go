// Package bus implements the system bus wiring RAM, the two controller
// shift registers, the PPU and APU register windows, OAM DMA and the
// cartridge into the single CPU-visible memory map described in
// spec.md §4.2.
package bus

import (
	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/input"
	"gones/internal/ppu"
)

const ramSize = 0x0800

// Bus is the CPU's view of the system: it owns work RAM, the controller
// shift registers and the open-bus latch, and holds back-references to
// the PPU, APU and the currently inserted cartridge.
type Bus struct {
	ram [ramSize]uint8

	ppu         *ppu.PPU
	apu         *apu.APU
	controllers *input.Controllers
	cart        *cartridge.Cartridge

	openBus uint8

	// dmaPending/dmaPage record an OAM DMA request raised by a $4014
	// write; the console driver drains it with RunOAMDMA, charging the
	// CPU the appropriate stall cycles.
	dmaPending bool
	dmaPage    uint8
}

// New creates a bus with no cartridge inserted.
func New(p *ppu.PPU, a *apu.APU) *Bus {
	b := &Bus{
		ppu:         p,
		apu:         a,
		controllers: input.New(),
	}
	a.SetMemReader(b.dmcRead)
	return b
}

// Controllers exposes the controller pair so the front-end can push
// button state in.
func (b *Bus) Controllers() *input.Controllers { return b.controllers }

// InsertCartridge attaches a cartridge, wiring it into both the CPU-side
// map and the PPU's CHR/nametable-mirroring view.
func (b *Bus) InsertCartridge(c *cartridge.Cartridge) {
	b.cart = c
	b.ppu.AttachCartridge(c)
}

// RemoveCartridge detaches the cartridge; cartridge address space then
// reads as open bus, matching spec.md §7's out-of-range behavior.
func (b *Bus) RemoveCartridge() {
	b.cart = nil
	b.ppu.AttachCartridge(nil)
}

// Reset clears RAM-independent bus state. RAM itself is left untouched,
// matching real hardware's power-on-only RAM initialization.
func (b *Bus) Reset() {
	b.controllers.Reset()
	b.openBus = 0
	b.dmaPending = false
}

// SetStallRequester wires the APU's DMC stall charges through to the
// CPU's halt-cycle bookkeeping; the console driver supplies this once
// the CPU exists.
func (b *Bus) SetStallRequester(r apu.StallRequester) {
	b.apu.SetStallRequester(r)
}

// Read dispatches a CPU read in priority order: APU status, controllers,
// work RAM, PPU registers, the cartridge ($4020-$FFFF, open bus where no
// cartridge claims the address), then open bus.
func (b *Bus) Read(addr uint16) uint8 {
	var value uint8
	switch {
	case addr == 0x4015:
		value = (b.apu.ReadStatus() & 0xDF) | (b.openBus & 0x20)

	case addr == 0x4016:
		value = (b.openBus &^ 0x01) | b.controllers.Read(0)

	case addr == 0x4017:
		value = (b.openBus &^ 0x01) | b.controllers.Read(1)

	case addr < 0x2000:
		value = b.ram[addr&0x07FF]

	case addr < 0x4000:
		value = b.ppu.ReadRegister(0x2000 + addr&0x0007)

	case addr >= 0x4020:
		if b.cart != nil {
			if v, ok := b.cart.CPURead(addr); ok {
				value = v
				break
			}
		}
		value = b.openBus

	default:
		value = b.openBus
	}

	b.openBus = value
	return value
}

// Write dispatches a CPU write: it updates the open-bus latch, offers
// the address to the APU and cartridge, then handles bus-local writes.
func (b *Bus) Write(addr uint16, value uint8) {
	b.openBus = value

	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = value

	case addr < 0x4000:
		b.ppu.WriteRegister(0x2000+addr&0x0007, value)

	case addr == 0x4014:
		b.dmaPending = true
		b.dmaPage = value

	case addr == 0x4016:
		b.controllers.WriteStrobe(value)

	case addr == 0x4017:
		b.apu.WriteRegister4017(value)

	case (addr >= 0x4000 && addr <= 0x4013) || addr == 0x4015:
		b.apu.WriteRegister(addr, value)

	case addr >= 0x4020:
		if b.cart != nil {
			b.cart.CPUWrite(addr, value)
		}
	}
}

// dmcRead services the APU's DMC sample-fetch callback by replaying the
// normal CPU read dispatch, so open-bus state is updated exactly as it
// would be for a CPU-driven fetch.
func (b *Bus) dmcRead(addr uint16) uint8 {
	return b.Read(addr)
}

// DMAPending reports and clears a queued OAM DMA request; the console
// driver calls this once per CPU cycle to discover a $4014 write.
func (b *Bus) DMAPending() (page uint8, pending bool) {
	if !b.dmaPending {
		return 0, false
	}
	b.dmaPending = false
	return b.dmaPage, true
}

// RunOAMDMA performs the 256-byte transfer from page*0x100 into the
// PPU's OAM, starting at the PPU's current OAM address. The CPU-cycle
// cost (513 or 514, depending on the CPU cycle parity at the moment the
// transfer starts) is charged by the caller.
func (b *Bus) RunOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		value := b.Read(base + uint16(i))
		b.ppu.DMAWrite(value)
	}
}
