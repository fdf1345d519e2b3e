// Package console drives the CPU, PPU and APU in lockstep through the
// system bus, implementing the per-cycle interleaving described in
// spec.md §4.6: three PPU ticks per CPU cycle, NMI consumption, OAM DMA
// stall bookkeeping, and the APU's IRQ line feeding back into the CPU.
package console

import (
	"gones/internal/apu"
	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/ppu"
)

// Console owns the bus, CPU, PPU, APU and the currently inserted
// cartridge, and is the sole driver of their interaction.
type Console struct {
	Bus *bus.Bus
	CPU *cpu.CPU
	PPU *ppu.PPU
	APU *apu.APU

	cart *cartridge.Cartridge
}

// New creates a powered-off console with no cartridge inserted. Call
// InsertCartridge then Reset before clocking.
func New() *Console {
	p := ppu.New()
	a := apu.New()
	b := bus.New(p, a)

	c := &Console{
		Bus: b,
		PPU: p,
		APU: a,
	}
	c.CPU = cpu.New(b)
	b.SetStallRequester(c.CPU.RequestStall)
	return c
}

// InsertCartridge attaches a parsed cartridge to the bus and PPU.
func (c *Console) InsertCartridge(cart *cartridge.Cartridge) {
	c.cart = cart
	c.Bus.InsertCartridge(cart)
}

// RemoveCartridge detaches the cartridge; cartridge space then reads as
// open bus.
func (c *Console) RemoveCartridge() {
	c.cart = nil
	c.Bus.RemoveCartridge()
}

// Reset resets the CPU, PPU, APU and the cartridge's mapper state. Work
// RAM and PRG/CHR-RAM contents survive, matching a real reset button.
func (c *Console) Reset() {
	c.Bus.Reset()
	c.PPU.Reset()
	c.APU.Reset()
	c.CPU.Reset()
	if c.cart != nil {
		c.cart.Reset()
	}
}

// Clock advances the console by one CPU cycle: three PPU dots, then one
// CPU cycle (instruction work or a stolen/stalled cycle), then one APU
// cycle, then the APU's IRQ line is reflected back onto the CPU.
func (c *Console) Clock() {
	c.tickPPU()
	c.tickPPU()
	c.tickPPU()

	c.CPU.Clock()

	if page, pending := c.Bus.DMAPending(); pending {
		c.runOAMDMA(page)
	}

	c.APU.Clock(c.CPU.Cycles())
	c.CPU.SetIRQ(c.APU.IRQPending())
}

func (c *Console) tickPPU() {
	c.PPU.Clock()
	if c.PPU.ConsumeNMI() {
		c.CPU.AssertNMI()
	}
}

// runOAMDMA performs the 256-byte OAM transfer and charges the CPU the
// 513 or 514 stall cycles real hardware spends suspended, keeping the
// PPU and APU clocked for the duration per spec.md §5's DMA notes.
func (c *Console) runOAMDMA(page uint8) {
	c.Bus.RunOAMDMA(page)

	cycles := 513
	if c.CPU.Cycles()%2 == 1 {
		cycles = 514
	}
	for i := 0; i < cycles; i++ {
		c.tickPPU()
		c.tickPPU()
		c.tickPPU()
		c.CPU.HaltCycle()
		c.APU.Clock(c.CPU.Cycles())
		c.CPU.SetIRQ(c.APU.IRQPending())
	}
}

// RunFrame clocks the console until the PPU reports a completed frame,
// returning the rendered framebuffer and any PCM samples the APU
// accumulated along the way.
func (c *Console) RunFrame() ([]uint8, []float32) {
	for !c.PPU.ConsumeFrameReady() {
		c.Clock()
	}
	return c.PPU.FrameBuffer(), c.APU.DrainAudio()
}

// SetButtons loads a player's controller latch from an 8-bit button
// mask, per spec.md §6's get_controller_state bit order.
func (c *Console) SetButtons(player int, mask uint8) {
	c.Bus.Controllers().SetButtons(player, mask)
}
