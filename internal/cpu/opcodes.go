package cpu

// AddressingMode identifies how an opcode's operand resolves to an
// effective address.
type AddressingMode uint8

const (
	modeImplied AddressingMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndirectX
	modeIndirectY
	modeRelative
)

// opInfo describes one entry of the 256-slot opcode table: the mnemonic
// dispatched to in execute, its addressing mode and its base cycle count
// before any page-cross or dummy-read adjustment.
type opInfo struct {
	mnemonic string
	mode     AddressingMode
	cycles   int
}

// opcodeTable is indexed by opcode byte. Unassigned (truly invalid) slots
// fall back to a two-cycle NOP, matching how real 6502-family hardware
// treats most unassigned opcodes as no-ops of various widths; the
// documented unofficial opcodes below are filled in explicitly.
var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]opInfo {
	var t [256]opInfo
	for i := range t {
		t[i] = opInfo{"NOP", modeImplied, 2}
	}

	set := func(op uint8, mnemonic string, mode AddressingMode, cycles int) {
		t[op] = opInfo{mnemonic, mode, cycles}
	}

	// Load/store
	set(0xA9, "LDA", modeImmediate, 2)
	set(0xA5, "LDA", modeZeroPage, 3)
	set(0xB5, "LDA", modeZeroPageX, 4)
	set(0xAD, "LDA", modeAbsolute, 4)
	set(0xBD, "LDA", modeAbsoluteX, 4)
	set(0xB9, "LDA", modeAbsoluteY, 4)
	set(0xA1, "LDA", modeIndirectX, 6)
	set(0xB1, "LDA", modeIndirectY, 5)

	set(0xA2, "LDX", modeImmediate, 2)
	set(0xA6, "LDX", modeZeroPage, 3)
	set(0xB6, "LDX", modeZeroPageY, 4)
	set(0xAE, "LDX", modeAbsolute, 4)
	set(0xBE, "LDX", modeAbsoluteY, 4)

	set(0xA0, "LDY", modeImmediate, 2)
	set(0xA4, "LDY", modeZeroPage, 3)
	set(0xB4, "LDY", modeZeroPageX, 4)
	set(0xAC, "LDY", modeAbsolute, 4)
	set(0xBC, "LDY", modeAbsoluteX, 4)

	set(0x85, "STA", modeZeroPage, 3)
	set(0x95, "STA", modeZeroPageX, 4)
	set(0x8D, "STA", modeAbsolute, 4)
	set(0x9D, "STA", modeAbsoluteX, 5)
	set(0x99, "STA", modeAbsoluteY, 5)
	set(0x81, "STA", modeIndirectX, 6)
	set(0x91, "STA", modeIndirectY, 6)

	set(0x86, "STX", modeZeroPage, 3)
	set(0x96, "STX", modeZeroPageY, 4)
	set(0x8E, "STX", modeAbsolute, 4)

	set(0x84, "STY", modeZeroPage, 3)
	set(0x94, "STY", modeZeroPageX, 4)
	set(0x8C, "STY", modeAbsolute, 4)

	// Transfers
	set(0xAA, "TAX", modeImplied, 2)
	set(0xA8, "TAY", modeImplied, 2)
	set(0xBA, "TSX", modeImplied, 2)
	set(0x8A, "TXA", modeImplied, 2)
	set(0x9A, "TXS", modeImplied, 2)
	set(0x98, "TYA", modeImplied, 2)

	// Stack
	set(0x48, "PHA", modeImplied, 3)
	set(0x08, "PHP", modeImplied, 3)
	set(0x68, "PLA", modeImplied, 4)
	set(0x28, "PLP", modeImplied, 4)

	// Logic
	set(0x29, "AND", modeImmediate, 2)
	set(0x25, "AND", modeZeroPage, 3)
	set(0x35, "AND", modeZeroPageX, 4)
	set(0x2D, "AND", modeAbsolute, 4)
	set(0x3D, "AND", modeAbsoluteX, 4)
	set(0x39, "AND", modeAbsoluteY, 4)
	set(0x21, "AND", modeIndirectX, 6)
	set(0x31, "AND", modeIndirectY, 5)

	set(0x09, "ORA", modeImmediate, 2)
	set(0x05, "ORA", modeZeroPage, 3)
	set(0x15, "ORA", modeZeroPageX, 4)
	set(0x0D, "ORA", modeAbsolute, 4)
	set(0x1D, "ORA", modeAbsoluteX, 4)
	set(0x19, "ORA", modeAbsoluteY, 4)
	set(0x01, "ORA", modeIndirectX, 6)
	set(0x11, "ORA", modeIndirectY, 5)

	set(0x49, "EOR", modeImmediate, 2)
	set(0x45, "EOR", modeZeroPage, 3)
	set(0x55, "EOR", modeZeroPageX, 4)
	set(0x4D, "EOR", modeAbsolute, 4)
	set(0x5D, "EOR", modeAbsoluteX, 4)
	set(0x59, "EOR", modeAbsoluteY, 4)
	set(0x41, "EOR", modeIndirectX, 6)
	set(0x51, "EOR", modeIndirectY, 5)

	set(0x24, "BIT", modeZeroPage, 3)
	set(0x2C, "BIT", modeAbsolute, 4)

	// Arithmetic
	set(0x69, "ADC", modeImmediate, 2)
	set(0x65, "ADC", modeZeroPage, 3)
	set(0x75, "ADC", modeZeroPageX, 4)
	set(0x6D, "ADC", modeAbsolute, 4)
	set(0x7D, "ADC", modeAbsoluteX, 4)
	set(0x79, "ADC", modeAbsoluteY, 4)
	set(0x61, "ADC", modeIndirectX, 6)
	set(0x71, "ADC", modeIndirectY, 5)

	set(0xE9, "SBC", modeImmediate, 2)
	set(0xEB, "SBC", modeImmediate, 2) // unofficial mirror
	set(0xE5, "SBC", modeZeroPage, 3)
	set(0xF5, "SBC", modeZeroPageX, 4)
	set(0xED, "SBC", modeAbsolute, 4)
	set(0xFD, "SBC", modeAbsoluteX, 4)
	set(0xF9, "SBC", modeAbsoluteY, 4)
	set(0xE1, "SBC", modeIndirectX, 6)
	set(0xF1, "SBC", modeIndirectY, 5)

	set(0xC9, "CMP", modeImmediate, 2)
	set(0xC5, "CMP", modeZeroPage, 3)
	set(0xD5, "CMP", modeZeroPageX, 4)
	set(0xCD, "CMP", modeAbsolute, 4)
	set(0xDD, "CMP", modeAbsoluteX, 4)
	set(0xD9, "CMP", modeAbsoluteY, 4)
	set(0xC1, "CMP", modeIndirectX, 6)
	set(0xD1, "CMP", modeIndirectY, 5)

	set(0xE0, "CPX", modeImmediate, 2)
	set(0xE4, "CPX", modeZeroPage, 3)
	set(0xEC, "CPX", modeAbsolute, 4)

	set(0xC0, "CPY", modeImmediate, 2)
	set(0xC4, "CPY", modeZeroPage, 3)
	set(0xCC, "CPY", modeAbsolute, 4)

	// Inc/Dec
	set(0xE6, "INC", modeZeroPage, 5)
	set(0xF6, "INC", modeZeroPageX, 6)
	set(0xEE, "INC", modeAbsolute, 6)
	set(0xFE, "INC", modeAbsoluteX, 7)
	set(0xE8, "INX", modeImplied, 2)
	set(0xC8, "INY", modeImplied, 2)

	set(0xC6, "DEC", modeZeroPage, 5)
	set(0xD6, "DEC", modeZeroPageX, 6)
	set(0xCE, "DEC", modeAbsolute, 6)
	set(0xDE, "DEC", modeAbsoluteX, 7)
	set(0xCA, "DEX", modeImplied, 2)
	set(0x88, "DEY", modeImplied, 2)

	// Shifts/rotates
	set(0x0A, "ASL", modeAccumulator, 2)
	set(0x06, "ASL", modeZeroPage, 5)
	set(0x16, "ASL", modeZeroPageX, 6)
	set(0x0E, "ASL", modeAbsolute, 6)
	set(0x1E, "ASL", modeAbsoluteX, 7)

	set(0x4A, "LSR", modeAccumulator, 2)
	set(0x46, "LSR", modeZeroPage, 5)
	set(0x56, "LSR", modeZeroPageX, 6)
	set(0x4E, "LSR", modeAbsolute, 6)
	set(0x5E, "LSR", modeAbsoluteX, 7)

	set(0x2A, "ROL", modeAccumulator, 2)
	set(0x26, "ROL", modeZeroPage, 5)
	set(0x36, "ROL", modeZeroPageX, 6)
	set(0x2E, "ROL", modeAbsolute, 6)
	set(0x3E, "ROL", modeAbsoluteX, 7)

	set(0x6A, "ROR", modeAccumulator, 2)
	set(0x66, "ROR", modeZeroPage, 5)
	set(0x76, "ROR", modeZeroPageX, 6)
	set(0x6E, "ROR", modeAbsolute, 6)
	set(0x7E, "ROR", modeAbsoluteX, 7)

	// Jumps/calls
	set(0x4C, "JMP", modeAbsolute, 3)
	set(0x6C, "JMP", modeIndirect, 5)
	set(0x20, "JSR", modeAbsolute, 6)
	set(0x40, "RTI", modeImplied, 6)
	set(0x60, "RTS", modeImplied, 6)

	// Branches
	set(0x90, "BCC", modeRelative, 2)
	set(0xB0, "BCS", modeRelative, 2)
	set(0xF0, "BEQ", modeRelative, 2)
	set(0x30, "BMI", modeRelative, 2)
	set(0xD0, "BNE", modeRelative, 2)
	set(0x10, "BPL", modeRelative, 2)
	set(0x50, "BVC", modeRelative, 2)
	set(0x70, "BVS", modeRelative, 2)

	// Flags
	set(0x18, "CLC", modeImplied, 2)
	set(0xD8, "CLD", modeImplied, 2)
	set(0x58, "CLI", modeImplied, 2)
	set(0xB8, "CLV", modeImplied, 2)
	set(0x38, "SEC", modeImplied, 2)
	set(0xF8, "SED", modeImplied, 2)
	set(0x78, "SEI", modeImplied, 2)

	set(0xEA, "NOP", modeImplied, 2)
	set(0x00, "BRK", modeImplied, 7)

	// Unofficial NOPs
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		set(op, "NOP", modeImplied, 2)
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		set(op, "NOP", modeImmediate, 2)
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		set(op, "NOP", modeZeroPage, 3)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		set(op, "NOP", modeZeroPageX, 4)
	}
	set(0x0C, "NOP", modeAbsolute, 4)
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		set(op, "NOP", modeAbsoluteX, 4)
	}

	// Unofficial combined RMW opcodes
	set(0x07, "SLO", modeZeroPage, 5)
	set(0x17, "SLO", modeZeroPageX, 6)
	set(0x0F, "SLO", modeAbsolute, 6)
	set(0x1F, "SLO", modeAbsoluteX, 7)
	set(0x1B, "SLO", modeAbsoluteY, 7)
	set(0x03, "SLO", modeIndirectX, 8)
	set(0x13, "SLO", modeIndirectY, 8)

	set(0x27, "RLA", modeZeroPage, 5)
	set(0x37, "RLA", modeZeroPageX, 6)
	set(0x2F, "RLA", modeAbsolute, 6)
	set(0x3F, "RLA", modeAbsoluteX, 7)
	set(0x3B, "RLA", modeAbsoluteY, 7)
	set(0x23, "RLA", modeIndirectX, 8)
	set(0x33, "RLA", modeIndirectY, 8)

	set(0x47, "SRE", modeZeroPage, 5)
	set(0x57, "SRE", modeZeroPageX, 6)
	set(0x4F, "SRE", modeAbsolute, 6)
	set(0x5F, "SRE", modeAbsoluteX, 7)
	set(0x5B, "SRE", modeAbsoluteY, 7)
	set(0x43, "SRE", modeIndirectX, 8)
	set(0x53, "SRE", modeIndirectY, 8)

	set(0x67, "RRA", modeZeroPage, 5)
	set(0x77, "RRA", modeZeroPageX, 6)
	set(0x6F, "RRA", modeAbsolute, 6)
	set(0x7F, "RRA", modeAbsoluteX, 7)
	set(0x7B, "RRA", modeAbsoluteY, 7)
	set(0x63, "RRA", modeIndirectX, 8)
	set(0x73, "RRA", modeIndirectY, 8)

	set(0x87, "SAX", modeZeroPage, 3)
	set(0x97, "SAX", modeZeroPageY, 4)
	set(0x8F, "SAX", modeAbsolute, 4)
	set(0x83, "SAX", modeIndirectX, 6)

	set(0xA7, "LAX", modeZeroPage, 3)
	set(0xB7, "LAX", modeZeroPageY, 4)
	set(0xAF, "LAX", modeAbsolute, 4)
	set(0xBF, "LAX", modeAbsoluteY, 4)
	set(0xA3, "LAX", modeIndirectX, 6)
	set(0xB3, "LAX", modeIndirectY, 5)

	set(0xC7, "DCP", modeZeroPage, 5)
	set(0xD7, "DCP", modeZeroPageX, 6)
	set(0xCF, "DCP", modeAbsolute, 6)
	set(0xDF, "DCP", modeAbsoluteX, 7)
	set(0xDB, "DCP", modeAbsoluteY, 7)
	set(0xC3, "DCP", modeIndirectX, 8)
	set(0xD3, "DCP", modeIndirectY, 8)

	set(0xE7, "ISC", modeZeroPage, 5)
	set(0xF7, "ISC", modeZeroPageX, 6)
	set(0xEF, "ISC", modeAbsolute, 6)
	set(0xFF, "ISC", modeAbsoluteX, 7)
	set(0xFB, "ISC", modeAbsoluteY, 7)
	set(0xE3, "ISC", modeIndirectX, 8)
	set(0xF3, "ISC", modeIndirectY, 8)

	// Unofficial immediate/misc
	set(0x0B, "ANC", modeImmediate, 2)
	set(0x2B, "ANC", modeImmediate, 2)
	set(0x4B, "ALR", modeImmediate, 2)
	set(0x6B, "ARR", modeImmediate, 2)
	set(0x8B, "ANE", modeImmediate, 2)
	set(0xAB, "LXA", modeImmediate, 2)
	set(0xCB, "AXS", modeImmediate, 2)

	// Unofficial unstable stores
	set(0x9F, "SHA", modeAbsoluteY, 5)
	set(0x93, "SHA", modeIndirectY, 6)
	set(0x9E, "SHX", modeAbsoluteY, 5)
	set(0x9C, "SHY", modeAbsoluteX, 5)
	set(0x9B, "SHS", modeAbsoluteY, 5)
	set(0xBB, "LAS", modeAbsoluteY, 4)

	return t
}
