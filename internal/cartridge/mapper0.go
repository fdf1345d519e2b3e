package cartridge

// nrom implements iNES mapper 0. PRG is fixed; a single 16KB bank mirrors
// across the whole $8000-$FFFF window, two banks map it directly.
type nrom struct {
	cart   *Cartridge
	mirror Mirror
}

func newNROM(c *Cartridge, mirror Mirror) *nrom {
	return &nrom{cart: c, mirror: mirror}
}

func (m *nrom) ID() uint8     { return 0 }
func (m *nrom) Mirror() Mirror { return m.mirror }
func (m *nrom) Reset()        {}

func (m *nrom) CPURead(addr uint16) Result {
	if addr < 0x8000 {
		return Result{}
	}
	banks := m.cart.prgBankCount()
	off := int(addr - 0x8000)
	if banks == 1 {
		off %= prgBankSize
	}
	return Result{Hit: true, Offset: off}
}

func (m *nrom) CPUWrite(addr uint16, value uint8) Result {
	if addr < 0x8000 {
		return Result{}
	}
	return Result{Hit: true, Offset: -1}
}

func (m *nrom) PPURead(addr uint16) int  { return int(addr) }
func (m *nrom) PPUWrite(addr uint16, value uint8) int { return int(addr) }
