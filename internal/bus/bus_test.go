package bus

import (
	"testing"

	"gones/internal/apu"
	"gones/internal/ppu"
)

func newTestBus() *Bus {
	return New(ppu.New(), apu.New())
}

func TestRAMMirroredAcrossFourBanks(t *testing.T) {
	b := newTestBus()
	b.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if v := b.Read(mirror); v != 0x42 {
			t.Fatalf("expected mirrored RAM at $%04X to read 0x42, got 0x%02X", mirror, v)
		}
	}
}

func TestControllerShiftRegisterEightReadsThenOne(t *testing.T) {
	b := newTestBus()
	b.Controllers().SetButtons(0, 0b10110101)
	b.Write(0x4016, 1) // strobe high
	b.Write(0x4016, 0) // strobe low, freezes shift register

	expectedBits := []uint8{1, 0, 1, 0, 1, 1, 0, 1}
	for i, want := range expectedBits {
		got := b.Read(0x4016) & 0x01
		if got != want {
			t.Fatalf("read %d: expected bit %d, got %d", i, want, got)
		}
	}
	if ninth := b.Read(0x4016) & 0x01; ninth != 1 {
		t.Fatalf("expected ninth read to return 1, got %d", ninth)
	}
}

func TestOpenBusLatchedOnReadAndWrite(t *testing.T) {
	b := newTestBus()
	b.Write(0x0000, 0x7E)
	b.Read(0x0000)
	// 0x4020 is unmapped cartridge expansion space with no cartridge
	// inserted, so it must fall through to the open-bus latch.
	if v := b.Read(0x4020); v != 0x7E {
		t.Fatalf("expected open bus to read back 0x7E, got 0x%02X", v)
	}
}

func TestOAMDMAWriteQueuesPendingTransfer(t *testing.T) {
	b := newTestBus()
	b.Write(0x4014, 0x02)
	page, pending := b.DMAPending()
	if !pending || page != 0x02 {
		t.Fatalf("expected a pending DMA from page 0x02, got pending=%v page=0x%02X", pending, page)
	}
	if _, pending := b.DMAPending(); pending {
		t.Fatal("expected DMAPending to clear after being consumed once")
	}
}

func TestRunOAMDMACopiesPageIntoOAM(t *testing.T) {
	b := newTestBus()
	for i := 0; i < 256; i++ {
		b.ram[0x0200&0x07FF+i] = uint8(i)
	}
	b.RunOAMDMA(0x02)
	// Spot-check that byte 0 landed at OAM address 0 via DMAWrite.
	if v := b.ppu.ReadRegister(0x2004); v != 0 {
		t.Fatalf("expected OAM addr 0 (post-wrap) to hold byte 0, got %d", v)
	}
}
