// Package cpu implements the 6502 instruction/interrupt engine used by the
// console, including the console's documented unofficial opcodes.
package cpu

// Bus is the CPU's view of the rest of the system: every load and store
// the instruction decoder performs, including dummy reads, goes through
// this interface so the bus can drive open-bus and side-effecting I/O
// registers with the correct access pattern.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

const (
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
	stackBase   = 0x0100
)

// Flag bit positions within the status byte, used only for push/pull;
// internally each flag is tracked as its own bool per spec.md §3.
const (
	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 6
	flagN uint8 = 1 << 7
)

// shKind tags which unstable-store opcode a micro-sequencer context
// belongs to, selecting the register(s) ANDed into the corrupted high
// byte at the final write step (see shFinishWrite).
type shKind uint8

const (
	shNone shKind = iota
	shSHA
	shSHX
	shSHY
	shSHS
)

// CPU is the 6502 core. Execution is modeled with a remaining-cycles
// countdown: Clock fetches and fully resolves the next instruction only
// when cycles reaches zero, then idles for the rest of the count. This
// mirrors the instruction-boundary granularity described in spec.md §4.3.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	flagC, flagZ, flagI, flagD, flagV, flagN bool

	bus Bus

	cycles    uint64
	remaining int

	nmiPending  bool
	irqLine     bool
	pollDisable bool // interrupt-disable value latched at the previous poll point

	// CLI/SEI/PLP change flagI but the new value only affects interrupt
	// polling starting one instruction later than usual; these hold the
	// deferred value until that extra instruction has run.
	deferredMask      bool
	deferredMaskValid bool
	iFlagJustChanged  bool

	haltRequested int // stall cycles still owed to a DMC fetch

	// SH* (unstable store) micro-sequencer state. Unlike every other
	// opcode, SHA/SHX/SHY/SHS resolve one bus cycle per Clock call rather
	// than all at once, so a DMC stall requested mid-instruction can be
	// observed at the cycle that determines which high byte corrupts the
	// stored value.
	shActive      bool
	shKind        shKind
	shMode        AddressingMode
	shStep        int
	shZP          uint8
	shLo          uint8
	shBaseHi      uint8
	shAddr        uint16
	shReg         uint8
	shCrossed     bool
	shCorruptBase bool
}

// New creates a CPU wired to the given bus. Call Reset before clocking.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Reset performs the 6502 reset sequence: registers to their power-up
// state, PC loaded from the reset vector, then 8 idle cycles.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.flagC, c.flagZ, c.flagV, c.flagN = false, false, false, false
	c.flagD = false
	c.flagI = true
	c.nmiPending = false
	c.irqLine = false
	c.pollDisable = true
	c.deferredMaskValid = false
	c.iFlagJustChanged = false
	c.haltRequested = 0
	c.shActive = false

	lo := c.bus.Read(resetVector)
	hi := c.bus.Read(resetVector + 1)
	c.PC = uint16(hi)<<8 | uint16(lo)

	c.remaining = 8
	c.cycles = 0
}

// AssertNMI latches an edge-triggered non-maskable interrupt.
func (c *CPU) AssertNMI() {
	c.nmiPending = true
}

// SetIRQ drives the level-sensitive IRQ line. The bus/APU call this every
// cycle with the OR of all IRQ sources.
func (c *CPU) SetIRQ(asserted bool) {
	c.irqLine = asserted
}

// RequestStall asks the CPU to burn n cycles doing nothing on behalf of a
// pending DMC sample fetch.
func (c *CPU) RequestStall(n int) {
	c.haltRequested += n
}

// Cycles returns the total number of CPU cycles clocked since Reset.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Clock advances the CPU by exactly one cycle.
func (c *CPU) Clock() {
	c.cycles++

	if c.shActive {
		c.shClockStep()
		return
	}

	if c.remaining > 0 {
		c.remaining--
		return
	}

	if c.haltRequested > 0 {
		c.haltRequested--
		return
	}

	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(nmiVector, false)
		return
	}
	if c.irqLine && !c.pollDisable {
		c.serviceInterrupt(irqVector, false)
		return
	}

	c.iFlagJustChanged = false
	c.step()
	if c.iFlagJustChanged {
		c.deferredMask = c.flagI
		c.deferredMaskValid = true
	} else if c.deferredMaskValid {
		c.pollDisable = c.deferredMask
		c.deferredMaskValid = false
	} else {
		c.pollDisable = c.flagI
	}
}

// HaltCycle consumes a single idle cycle without fetching, equivalent to
// one tick where the CPU is stalled for a DMC fetch. Exposed for callers
// that drive stall bookkeeping outside RequestStall (e.g. OAM DMA).
func (c *CPU) HaltCycle() {
	c.cycles++
	if c.remaining > 0 {
		c.remaining--
	}
}

func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.push16(c.PC)
	status := c.statusByte(brk)
	c.push(status)
	c.flagI = true
	lo := c.bus.Read(vector)
	hi := c.bus.Read(vector + 1)
	c.PC = uint16(hi)<<8 | uint16(lo)
	c.remaining = 7 - 1 // one cycle already charged by the caller's Clock
	c.pollDisable = true
	c.deferredMaskValid = false
}

func (c *CPU) statusByte(brk bool) uint8 {
	var s uint8
	if c.flagC {
		s |= flagC
	}
	if c.flagZ {
		s |= flagZ
	}
	if c.flagI {
		s |= flagI
	}
	if c.flagD {
		s |= flagD
	}
	if brk {
		s |= flagB
	}
	s |= flagU
	if c.flagV {
		s |= flagV
	}
	if c.flagN {
		s |= flagN
	}
	return s
}

func (c *CPU) setStatusByte(s uint8) {
	c.flagC = s&flagC != 0
	c.flagZ = s&flagZ != 0
	c.flagI = s&flagI != 0
	c.flagD = s&flagD != 0
	c.flagV = s&flagV != 0
	c.flagN = s&flagN != 0
}

func (c *CPU) push(v uint8) {
	c.bus.Write(stackBase|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.bus.Read(stackBase | uint16(c.SP))
}

func (c *CPU) push16(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull()
	hi := c.pull()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) setZN(v uint8) {
	c.flagZ = v == 0
	c.flagN = v&0x80 != 0
}

// step fetches, decodes and fully executes one instruction, then arms the
// remaining-cycles countdown with its total cost including dummy reads
// and page-cross penalties.
func (c *CPU) step() {
	opcode := c.bus.Read(c.PC)
	c.PC++

	info := opcodeTable[opcode]
	if k := shKindFor(info.mnemonic); k != shNone {
		c.beginSHSequence(k, info.mode)
		return
	}

	cycles := c.execute(opcode, info)

	c.remaining = cycles - 1
}

// shKindFor maps an unstable-store mnemonic to its micro-sequencer tag.
func shKindFor(mnemonic string) shKind {
	switch mnemonic {
	case "SHA":
		return shSHA
	case "SHX":
		return shSHX
	case "SHY":
		return shSHY
	case "SHS":
		return shSHS
	}
	return shNone
}

// beginSHSequence starts the SH* micro-sequencer right after the opcode
// fetch cycle. The register value ANDed into the corrupted high byte is
// latched now, matching real hardware where A, X and Y don't change mid
// instruction; SHS also commits its stack-pointer side effect here.
func (c *CPU) beginSHSequence(k shKind, mode AddressingMode) {
	c.shActive = true
	c.shKind = k
	c.shMode = mode
	c.shStep = 1
	c.shCrossed = false
	c.shCorruptBase = false

	switch k {
	case shSHA:
		c.shReg = c.A & c.X
	case shSHX:
		c.shReg = c.X
	case shSHY:
		c.shReg = c.Y
	case shSHS:
		c.SP = c.A & c.X
		c.shReg = c.SP
	}
}

// shClockStep advances the active SH* micro-sequence by one bus cycle.
func (c *CPU) shClockStep() {
	if c.shMode == modeIndirectY {
		c.shClockIndirectY()
		return
	}
	c.shClockIndexedAbsolute()
}

// shIndexReg returns the register the current SH* opcode indexes with:
// SHY indexes with X (absolute,X), every other SH* opcode with Y.
func (c *CPU) shIndexReg() uint8 {
	if c.shKind == shSHY {
		return c.X
	}
	return c.Y
}

// shClockIndexedAbsolute runs SHA $9F, SHX $9E, SHY $9C and SHS $9B's
// 5-cycle sequence: operand low byte, operand high byte (address resolved,
// the DMC-stall checkpoint two cycles ahead of the write), the dummy read
// at the possibly-wrong address, then the corrupted write.
func (c *CPU) shClockIndexedAbsolute() {
	switch c.shStep {
	case 1:
		c.shLo = c.bus.Read(c.PC)
		c.PC++
		c.shStep = 2
	case 2:
		hi := c.bus.Read(c.PC)
		c.PC++
		index := c.shIndexReg()
		base := uint16(hi)<<8 | uint16(c.shLo)
		addr := base + uint16(index)
		c.shBaseHi = hi
		c.shAddr = addr
		c.shCrossed = (base & 0xFF00) != (addr & 0xFF00)
		c.shCorruptBase = c.haltRequested > 0
		c.shStep = 3
	case 3:
		wrong := uint16(c.shBaseHi)<<8 | (c.shAddr & 0x00FF)
		c.bus.Read(wrong)
		c.shStep = 4
	case 4:
		c.shFinishWrite()
		c.shActive = false
	}
}

// shClockIndirectY runs SHA $93's 6-cycle sequence: zero-page pointer
// fetch, pointer low byte, pointer high byte (address resolved, the
// DMC-stall checkpoint two cycles ahead of the write), the dummy read at
// the possibly-wrong address, then the corrupted write.
func (c *CPU) shClockIndirectY() {
	switch c.shStep {
	case 1:
		c.shZP = c.bus.Read(c.PC)
		c.PC++
		c.shStep = 2
	case 2:
		c.shLo = c.bus.Read(uint16(c.shZP))
		c.shStep = 3
	case 3:
		hi := c.bus.Read(uint16(c.shZP + 1))
		base := uint16(hi)<<8 | uint16(c.shLo)
		addr := base + uint16(c.Y)
		c.shBaseHi = hi
		c.shAddr = addr
		c.shCrossed = (base & 0xFF00) != (addr & 0xFF00)
		c.shCorruptBase = c.haltRequested > 0
		c.shStep = 4
	case 4:
		wrong := uint16(c.shBaseHi)<<8 | (c.shAddr & 0x00FF)
		c.bus.Read(wrong)
		c.shStep = 5
	case 5:
		c.shFinishWrite()
		c.shActive = false
	}
}

// shFinishWrite commits the corrupted store. Absent any DMC interference,
// a page-crossing index corrupts the AND mask's high byte to the low byte
// of the effective address plus one, because the carry-out of the index
// addition never reaches the address-high adder in time; a DMC stall
// latched two cycles before this write instead sources the mask from the
// base (pre-carry) high byte undisturbed by the index at all.
func (c *CPU) shFinishWrite() {
	var mask uint8
	switch {
	case c.shCorruptBase:
		mask = c.shBaseHi
	case c.shCrossed:
		mask = uint8(c.shAddr) + 1
	default:
		mask = uint8(c.shAddr>>8) + 1
	}
	c.bus.Write(c.shAddr, c.shReg&mask)
}
