package cartridge

// mmc1 implements iNES mapper 1. Every write to $8000-$FFFF feeds one bit
// into a 5-bit shift register; on the fifth write the accumulated value
// is copied into one of four internal registers selected by the write
// address, per spec.md §4.1.
type mmc1 struct {
	cart *Cartridge

	shift      uint8
	shiftCount uint8

	control uint8 // mirroring(2) | prgMode(2) | chrMode(1)
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8
}

func newMMC1(c *Cartridge, initial Mirror) *mmc1 {
	m := &mmc1{cart: c}
	m.Reset()
	switch initial {
	case MirrorVertical:
		m.control = (m.control &^ 0x03) | 0x02
	default:
		m.control = (m.control &^ 0x03) | 0x03
	}
	return m
}

func (m *mmc1) ID() uint8 { return 1 }

func (m *mmc1) Reset() {
	m.shift = 0x10
	m.shiftCount = 0
	m.control |= 0x0C // fix last PRG bank at $C000 by default
	m.chrBank0 = 0
	m.chrBank1 = 0
	m.prgBank = 0
}

func (m *mmc1) Mirror() Mirror {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleLower
	case 1:
		return MirrorSingleUpper
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mmc1) prgMode() uint8 { return (m.control >> 2) & 0x03 }
func (m *mmc1) chrMode() uint8 { return (m.control >> 4) & 0x01 }

func (m *mmc1) CPURead(addr uint16) Result {
	if addr < 0x8000 {
		return Result{}
	}
	banks := m.cart.prgBankCount()
	if banks == 0 {
		return Result{Hit: true, Offset: -1}
	}
	var bank int
	switch m.prgMode() {
	case 0, 1: // 32KB mode: ignore low bit of prgBank
		base := int(m.prgBank&0xFE) % banks
		if addr >= 0xC000 {
			base++
		}
		bank = base % banks
	case 2: // fix first bank at $8000, switch $C000
		if addr < 0xC000 {
			bank = 0
		} else {
			bank = int(m.prgBank) % banks
		}
	default: // 3: switch $8000, fix last bank at $C000
		if addr < 0xC000 {
			bank = int(m.prgBank) % banks
		} else {
			bank = banks - 1
		}
	}
	off := int(addr & 0x3FFF)
	return Result{Hit: true, Offset: bank*prgBankSize + off}
}

func (m *mmc1) CPUWrite(addr uint16, value uint8) Result {
	if addr < 0x8000 {
		return Result{}
	}
	if value&0x80 != 0 {
		m.shift = 0x10
		m.shiftCount = 0
		m.control |= 0x0C
		return Result{Hit: true, Offset: -1}
	}

	m.shift = (m.shift >> 1) | ((value & 1) << 4)
	m.shiftCount++
	if m.shiftCount < 5 {
		return Result{Hit: true, Offset: -1}
	}

	data := m.shift
	switch {
	case addr < 0xA000:
		m.control = data & 0x1F
	case addr < 0xC000:
		m.chrBank0 = data & 0x1F
	case addr < 0xE000:
		m.chrBank1 = data & 0x1F
	default:
		m.prgBank = data & 0x0F
	}
	m.shift = 0x10
	m.shiftCount = 0
	return Result{Hit: true, Offset: -1}
}

func (m *mmc1) chrOffset(addr uint16) int {
	if m.chrMode() == 0 {
		bank := m.chrBank0 &^ 1
		if addr >= 0x1000 {
			bank |= 1
		}
		return int(bank)*0x1000 + int(addr&0x0FFF)
	}
	if addr < 0x1000 {
		return int(m.chrBank0)*0x1000 + int(addr)
	}
	return int(m.chrBank1)*0x1000 + int(addr-0x1000)
}

func (m *mmc1) PPURead(addr uint16) int              { return m.chrOffset(addr) }
func (m *mmc1) PPUWrite(addr uint16, value uint8) int { return m.chrOffset(addr) }
