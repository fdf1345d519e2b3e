package cartridge

// uxrom implements iNES mapper 2 (UxROM). Writes anywhere in $8000-$FFFF
// select the 16KB bank windowed at $8000-$BFFF; $C000-$FFFF is always the
// last bank. CHR is a single 8KB window, not bank-switched.
type uxrom struct {
	cart   *Cartridge
	mirror Mirror
	bank   uint8
}

func newUxROM(c *Cartridge, mirror Mirror) *uxrom {
	return &uxrom{cart: c, mirror: mirror}
}

func (m *uxrom) ID() uint8     { return 2 }
func (m *uxrom) Mirror() Mirror { return m.mirror }
func (m *uxrom) Reset()        { m.bank = 0 }

func (m *uxrom) CPURead(addr uint16) Result {
	if addr < 0x8000 {
		return Result{}
	}
	banks := m.cart.prgBankCount()
	if banks == 0 {
		return Result{Hit: true, Offset: -1}
	}
	if addr < 0xC000 {
		bank := int(m.bank) % banks
		return Result{Hit: true, Offset: bank*prgBankSize + int(addr-0x8000)}
	}
	bank := banks - 1
	return Result{Hit: true, Offset: bank*prgBankSize + int(addr-0xC000)}
}

func (m *uxrom) CPUWrite(addr uint16, value uint8) Result {
	if addr < 0x8000 {
		return Result{}
	}
	m.bank = value & 0x0F
	return Result{Hit: true, Offset: -1}
}

func (m *uxrom) PPURead(addr uint16) int              { return int(addr) }
func (m *uxrom) PPUWrite(addr uint16, value uint8) int { return int(addr) }
