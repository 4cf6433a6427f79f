package cpu

import "fmt"

// Instruction is a decoded opcode: its mnemonic, kept around for tracing and
// the LD B, B debug breakpoint, and the function that carries out its
// effect against whichever CPU executes it.
type Instruction struct {
	Name string
	fn   func(c *CPU)
}

// InstructionSet holds every unprefixed opcode, 0x00-0xFF.
var InstructionSet [256]Instruction

// InstructionSetCB holds every CB-prefixed opcode, 0x00-0xFF.
var InstructionSetCB [256]Instruction

// registerPairByIndex returns one of BC, DE, HL by the 2-bit index used
// throughout the main opcode table's 16-bit register groups. SP and AF share
// the same index slot in different instruction groups and are handled at
// their call sites instead.
func (c *CPU) registerPairByIndex(index uint8) *RegisterPair {
	switch index {
	case 0:
		return c.BC
	case 1:
		return c.DE
	case 2:
		return c.HL
	}
	panic(fmt.Sprintf("invalid register pair index: %d", index))
}

func disallowedOpcode(c *CPU) {
	panic(fmt.Sprintf("disallowed opcode %02X at %04X", c.mmu.Read(c.PC-1), c.PC-1))
}

// buildInstructionSet populates InstructionSet. It is called once from
// NewCPU; the closures it installs read their register operands through
// c.registerIndex/registerPairByIndex at call time, so the table is safe to
// share across CPU instances.
func (c *CPU) buildInstructionSet() {
	InstructionSet[0x00] = Instruction{"NOP", func(c *CPU) {}}
	InstructionSet[0x08] = Instruction{"LD (a16), SP", func(c *CPU) {
		low := c.readOperand()
		high := c.readOperand()
		address := uint16(high)<<8 | uint16(low)
		c.writeByte(address, uint8(c.SP))
		c.writeByte(address+1, uint8(c.SP>>8))
	}}
	InstructionSet[0x10] = Instruction{"STOP 0", func(c *CPU) { c.stop() }}
	InstructionSet[0x76] = Instruction{"HALT", func(c *CPU) { c.halt() }}
	InstructionSet[0xF3] = Instruction{"DI", func(c *CPU) { c.IRQ.IME = false }}
	InstructionSet[0xFB] = Instruction{"EI", func(c *CPU) { c.mode = ModeEnableIME }}

	InstructionSet[0x07] = Instruction{"RLCA", func(c *CPU) { c.rotateLeftAccumulator() }}
	InstructionSet[0x0F] = Instruction{"RRCA", func(c *CPU) { c.rotateRightAccumulator() }}
	InstructionSet[0x17] = Instruction{"RLA", func(c *CPU) { c.rotateLeftAccumulatorThroughCarry() }}
	InstructionSet[0x1F] = Instruction{"RRA", func(c *CPU) { c.rotateRightAccumulatorThroughCarry() }}
	InstructionSet[0x27] = Instruction{"DAA", func(c *CPU) { c.decimalAdjust() }}
	InstructionSet[0x2F] = Instruction{"CPL", func(c *CPU) { c.complement() }}
	InstructionSet[0x37] = Instruction{"SCF", func(c *CPU) { c.setCarryFlag() }}
	InstructionSet[0x3F] = Instruction{"CCF", func(c *CPU) { c.complementCarryFlag() }}

	// 16-bit register-pair groups: LD rr,d16 / INC rr / DEC rr / ADD HL,rr.
	// SP fills the fourth slot in every one of these, so it's handled
	// alongside the BC/DE/HL loop rather than through registerPairByIndex.
	rr16 := [4]uint8{0x01, 0x11, 0x21, 0x31}
	rrNames := [4]string{"BC", "DE", "HL", "SP"}
	for i, op := range rr16 {
		i, op := uint8(i), op
		InstructionSet[op] = Instruction{"LD " + rrNames[i] + ", d16", func(c *CPU) {
			low := c.readOperand()
			high := c.readOperand()
			value := uint16(high)<<8 | uint16(low)
			if i == 3 {
				c.SP = value
			} else {
				c.registerPairByIndex(i).SetUint16(value)
			}
		}}
	}
	incDec16 := [4]uint8{0x03, 0x13, 0x23, 0x33}
	for i, op := range incDec16 {
		i, op := uint8(i), op
		InstructionSet[op] = Instruction{"INC " + rrNames[i], func(c *CPU) {
			if i == 3 {
				c.SP++
			} else {
				c.incrementNN(c.registerPairByIndex(i))
			}
			c.tickCycle()
		}}
	}
	decDec16 := [4]uint8{0x0B, 0x1B, 0x2B, 0x3B}
	for i, op := range decDec16 {
		i, op := uint8(i), op
		InstructionSet[op] = Instruction{"DEC " + rrNames[i], func(c *CPU) {
			if i == 3 {
				c.SP--
			} else {
				c.decrementNN(c.registerPairByIndex(i))
			}
			c.tickCycle()
		}}
	}
	addHL16 := [4]uint8{0x09, 0x19, 0x29, 0x39}
	for i, op := range addHL16 {
		i, op := uint8(i), op
		InstructionSet[op] = Instruction{"ADD HL, " + rrNames[i], func(c *CPU) {
			if i == 3 {
				c.HL.SetUint16(c.addUint16(c.HL.Uint16(), c.SP))
			} else {
				c.addHL(c.registerPairByIndex(i))
			}
			c.tickCycle()
		}}
	}

	// LD (BC),A / LD (DE),A / LD (HL+),A / LD (HL-),A and their A,(rr) mirrors.
	InstructionSet[0x02] = Instruction{"LD (BC), A", func(c *CPU) { c.writeByte(c.BC.Uint16(), c.A) }}
	InstructionSet[0x12] = Instruction{"LD (DE), A", func(c *CPU) { c.writeByte(c.DE.Uint16(), c.A) }}
	InstructionSet[0x22] = Instruction{"LD (HL+), A", func(c *CPU) {
		c.writeByte(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}}
	InstructionSet[0x32] = Instruction{"LD (HL-), A", func(c *CPU) {
		c.writeByte(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}}
	InstructionSet[0x0A] = Instruction{"LD A, (BC)", func(c *CPU) { c.A = c.readByte(c.BC.Uint16()) }}
	InstructionSet[0x1A] = Instruction{"LD A, (DE)", func(c *CPU) { c.A = c.readByte(c.DE.Uint16()) }}
	InstructionSet[0x2A] = Instruction{"LD A, (HL+)", func(c *CPU) {
		c.A = c.readByte(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}}
	InstructionSet[0x3A] = Instruction{"LD A, (HL-)", func(c *CPU) {
		c.A = c.readByte(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}}

	// INC r / DEC r / LD r,d8, addressed by (opcode>>3)&7 across three
	// 8-wide blocks; index 6 is (HL) and needs a memory round-trip instead
	// of a register pointer.
	for i := uint8(0); i < 8; i++ {
		i := i
		incOp := 0x04 + i<<3
		decOp := 0x05 + i<<3
		ldOp := 0x06 + i<<3

		if i == 6 {
			InstructionSet[incOp] = Instruction{"INC (HL)", func(c *CPU) {
				value := c.readByte(c.HL.Uint16())
				c.writeByte(c.HL.Uint16(), c.increment(value))
			}}
			InstructionSet[decOp] = Instruction{"DEC (HL)", func(c *CPU) {
				value := c.readByte(c.HL.Uint16())
				c.writeByte(c.HL.Uint16(), c.decrement(value))
			}}
			InstructionSet[ldOp] = Instruction{"LD (HL), d8", func(c *CPU) {
				c.writeByte(c.HL.Uint16(), c.readOperand())
			}}
			continue
		}

		InstructionSet[incOp] = Instruction{"INC " + regName8(i), func(c *CPU) {
			c.incrementN(c.registerIndex(i))
		}}
		InstructionSet[decOp] = Instruction{"DEC " + regName8(i), func(c *CPU) {
			c.decrementN(c.registerIndex(i))
		}}
		InstructionSet[ldOp] = Instruction{"LD " + regName8(i) + ", d8", func(c *CPU) {
			c.loadRegister8(c.registerIndex(i), c.readOperand())
		}}
	}

	// JR r8 / JR cc,r8
	InstructionSet[0x18] = Instruction{"JR r8", func(c *CPU) { c.jumpRelative(true) }}
	InstructionSet[0x20] = Instruction{"JR NZ, r8", func(c *CPU) { c.jumpRelative(!c.isFlagSet(FlagZero)) }}
	InstructionSet[0x28] = Instruction{"JR Z, r8", func(c *CPU) { c.jumpRelative(c.isFlagSet(FlagZero)) }}
	InstructionSet[0x30] = Instruction{"JR NC, r8", func(c *CPU) { c.jumpRelative(!c.isFlagSet(FlagCarry)) }}
	InstructionSet[0x38] = Instruction{"JR C, r8", func(c *CPU) { c.jumpRelative(c.isFlagSet(FlagCarry)) }}

	// LD r,r' block: 0x40-0x7F, (opcode>>3)&7 is the destination and
	// opcode&7 is the source; 0x76 is HALT, handled above, not LD (HL),(HL).
	for op := uint16(0x40); op <= 0x7F; op++ {
		op := uint8(op)
		if op == 0x76 {
			continue
		}
		dst := (op >> 3) & 7
		src := op & 7
		switch {
		case dst == 6:
			InstructionSet[op] = Instruction{"LD (HL), " + regName8(src), func(c *CPU) {
				c.loadRegisterToMemory(c.registerIndex(src), c.HL.Uint16())
			}}
		case src == 6:
			InstructionSet[op] = Instruction{"LD " + regName8(dst) + ", (HL)", func(c *CPU) {
				c.loadMemoryToRegister(c.registerIndex(dst), c.HL.Uint16())
			}}
		default:
			InstructionSet[op] = Instruction{"LD " + regName8(dst) + ", " + regName8(src), func(c *CPU) {
				c.loadRegisterToRegister(c.registerIndex(dst), c.registerIndex(src))
			}}
		}
	}

	// ALU r block: 0x80-0xBF, (opcode>>3)&7 selects the operation and
	// opcode&7 selects the operand register (6 = (HL)).
	aluOps := [8]string{"ADD A, ", "ADC A, ", "SUB ", "SBC A, ", "AND ", "XOR ", "OR ", "CP "}
	aluFns := [8]func(c *CPU, v uint8){
		func(c *CPU, v uint8) { c.addN(v) },
		func(c *CPU, v uint8) { c.addNCarry(v) },
		func(c *CPU, v uint8) { c.subtractN(v) },
		func(c *CPU, v uint8) { c.subtractNCarry(v) },
		func(c *CPU, v uint8) { c.A = c.and(c.A, v) },
		func(c *CPU, v uint8) { c.A = c.xor(c.A, v) },
		func(c *CPU, v uint8) { c.A = c.or(c.A, v) },
		func(c *CPU, v uint8) { c.compare(v) },
	}
	for op := uint16(0x80); op <= 0xBF; op++ {
		op := uint8(op)
		alu := (op >> 3) & 7
		src := op & 7
		fn := aluFns[alu]
		name := aluOps[alu]
		if src == 6 {
			InstructionSet[op] = Instruction{name + "(HL)", func(c *CPU) {
				fn(c, c.readByte(c.HL.Uint16()))
			}}
		} else {
			InstructionSet[op] = Instruction{name + regName8(src), func(c *CPU) {
				fn(c, *c.registerIndex(src))
			}}
		}
	}

	// ALU d8 immediates.
	InstructionSet[0xC6] = Instruction{"ADD A, d8", func(c *CPU) { c.addN(c.readOperand()) }}
	InstructionSet[0xCE] = Instruction{"ADC A, d8", func(c *CPU) { c.addNCarry(c.readOperand()) }}
	InstructionSet[0xD6] = Instruction{"SUB d8", func(c *CPU) { c.subtractN(c.readOperand()) }}
	InstructionSet[0xDE] = Instruction{"SBC A, d8", func(c *CPU) { c.subtractNCarry(c.readOperand()) }}
	InstructionSet[0xE6] = Instruction{"AND d8", func(c *CPU) { c.A = c.and(c.A, c.readOperand()) }}
	InstructionSet[0xEE] = Instruction{"XOR d8", func(c *CPU) { c.A = c.xor(c.A, c.readOperand()) }}
	InstructionSet[0xF6] = Instruction{"OR d8", func(c *CPU) { c.A = c.or(c.A, c.readOperand()) }}
	InstructionSet[0xFE] = Instruction{"CP d8", func(c *CPU) { c.compare(c.readOperand()) }}

	// Control flow: JP/CALL/RET/RST.
	InstructionSet[0xC3] = Instruction{"JP a16", func(c *CPU) { c.jumpAbsolute(true) }}
	InstructionSet[0xC2] = Instruction{"JP NZ, a16", func(c *CPU) { c.jumpAbsolute(!c.isFlagSet(FlagZero)) }}
	InstructionSet[0xCA] = Instruction{"JP Z, a16", func(c *CPU) { c.jumpAbsolute(c.isFlagSet(FlagZero)) }}
	InstructionSet[0xD2] = Instruction{"JP NC, a16", func(c *CPU) { c.jumpAbsolute(!c.isFlagSet(FlagCarry)) }}
	InstructionSet[0xDA] = Instruction{"JP C, a16", func(c *CPU) { c.jumpAbsolute(c.isFlagSet(FlagCarry)) }}
	InstructionSet[0xE9] = Instruction{"JP (HL)", func(c *CPU) { c.PC = c.HL.Uint16() }}

	InstructionSet[0xCD] = Instruction{"CALL a16", func(c *CPU) { c.call(true) }}
	InstructionSet[0xC4] = Instruction{"CALL NZ, a16", func(c *CPU) { c.call(!c.isFlagSet(FlagZero)) }}
	InstructionSet[0xCC] = Instruction{"CALL Z, a16", func(c *CPU) { c.call(c.isFlagSet(FlagZero)) }}
	InstructionSet[0xD4] = Instruction{"CALL NC, a16", func(c *CPU) { c.call(!c.isFlagSet(FlagCarry)) }}
	InstructionSet[0xDC] = Instruction{"CALL C, a16", func(c *CPU) { c.call(c.isFlagSet(FlagCarry)) }}

	InstructionSet[0xC9] = Instruction{"RET", func(c *CPU) { c.ret(true) }}
	InstructionSet[0xD9] = Instruction{"RETI", func(c *CPU) { c.retInterrupt() }}
	InstructionSet[0xC0] = Instruction{"RET NZ", func(c *CPU) { c.retConditional(!c.isFlagSet(FlagZero)) }}
	InstructionSet[0xC8] = Instruction{"RET Z", func(c *CPU) { c.retConditional(c.isFlagSet(FlagZero)) }}
	InstructionSet[0xD0] = Instruction{"RET NC", func(c *CPU) { c.retConditional(!c.isFlagSet(FlagCarry)) }}
	InstructionSet[0xD8] = Instruction{"RET C", func(c *CPU) { c.retConditional(c.isFlagSet(FlagCarry)) }}

	rstVectors := [8]uint16{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38}
	for i, vector := range rstVectors {
		op := uint8(0xC7 + i*8)
		vector := vector
		InstructionSet[op] = Instruction{fmt.Sprintf("RST %02XH", vector), func(c *CPU) { c.rst(vector) }}
	}

	// PUSH/POP: same 2-bit index as the LD rr,d16 group, but the fourth
	// slot is AF rather than SP.
	pushOps := [4]uint8{0xC5, 0xD5, 0xE5, 0xF5}
	popOps := [4]uint8{0xC1, 0xD1, 0xE1, 0xF1}
	stackNames := [4]string{"BC", "DE", "HL", "AF"}
	for i, op := range pushOps {
		i, op := uint8(i), op
		InstructionSet[op] = Instruction{"PUSH " + stackNames[i], func(c *CPU) {
			c.tickCycle()
			if i == 3 {
				c.push16(c.AF.Uint16())
			} else {
				c.pushRegister(c.registerPairByIndex(i))
			}
		}}
	}
	for i, op := range popOps {
		i, op := uint8(i), op
		InstructionSet[op] = Instruction{"POP " + stackNames[i], func(c *CPU) {
			if i == 3 {
				c.AF.SetUint16(c.pop16() & 0xFFF0)
			} else {
				c.popStack(c.registerPairByIndex(i))
			}
		}}
	}

	// High-RAM and indirect A loads.
	InstructionSet[0xE0] = Instruction{"LDH (a8), A", func(c *CPU) {
		c.writeByte(0xFF00+uint16(c.readOperand()), c.A)
	}}
	InstructionSet[0xF0] = Instruction{"LDH A, (a8)", func(c *CPU) {
		c.A = c.readByte(0xFF00 + uint16(c.readOperand()))
	}}
	InstructionSet[0xE2] = Instruction{"LD (C), A", func(c *CPU) { c.writeByte(0xFF00+uint16(c.C), c.A) }}
	InstructionSet[0xF2] = Instruction{"LD A, (C)", func(c *CPU) { c.A = c.readByte(0xFF00 + uint16(c.C)) }}
	InstructionSet[0xEA] = Instruction{"LD (a16), A", func(c *CPU) {
		low := c.readOperand()
		high := c.readOperand()
		c.writeByte(uint16(high)<<8|uint16(low), c.A)
	}}
	InstructionSet[0xFA] = Instruction{"LD A, (a16)", func(c *CPU) {
		low := c.readOperand()
		high := c.readOperand()
		c.A = c.readByte(uint16(high)<<8 | uint16(low))
	}}

	InstructionSet[0xE8] = Instruction{"ADD SP, r8", func(c *CPU) {
		c.SP = c.addSPSigned(c.readOperand())
		c.tickCycle()
		c.tickCycle()
	}}
	InstructionSet[0xF8] = Instruction{"LD HL, SP+r8", func(c *CPU) {
		c.HL.SetUint16(c.addSPSigned(c.readOperand()))
		c.tickCycle()
	}}
	InstructionSet[0xF9] = Instruction{"LD SP, HL", func(c *CPU) {
		c.loadHLToSP()
		c.tickCycle()
	}}

	for _, op := range []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD} {
		InstructionSet[op] = Instruction{"", disallowedOpcode}
	}
	// 0xCB itself is never looked up in InstructionSet: runInstruction
	// intercepts it and dispatches through InstructionSetCB instead.
}

func regName8(index uint8) string {
	switch index {
	case 0:
		return "B"
	case 1:
		return "C"
	case 2:
		return "D"
	case 3:
		return "E"
	case 4:
		return "H"
	case 5:
		return "L"
	case 7:
		return "A"
	}
	return "?"
}
