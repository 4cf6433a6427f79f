package cpu

import "testing"

func TestDecimalAdjustAfterAdd(t *testing.T) {
	c := newTestCPU()
	// 0x45 + 0x38 = 0x7D in binary, but as BCD that's 45+38=83.
	c.A = 0x7D
	c.clearFlag(FlagSubtract)
	c.decimalAdjust()
	if c.A != 0x83 {
		t.Errorf("A = %02X, want 83", c.A)
	}
}

func TestComplement(t *testing.T) {
	c := newTestCPU()
	c.A = 0x35
	c.complement()
	if c.A != 0xCA {
		t.Errorf("A = %02X, want CA", c.A)
	}
	if !c.isFlagSet(FlagSubtract) || !c.isFlagSet(FlagHalfCarry) {
		t.Error("CPL must set N and H")
	}
}

func TestSetAndComplementCarryFlag(t *testing.T) {
	c := newTestCPU()
	c.setCarryFlag()
	if !c.isFlagSet(FlagCarry) {
		t.Error("expected carry set")
	}
	c.complementCarryFlag()
	if c.isFlagSet(FlagCarry) {
		t.Error("expected carry cleared after complement")
	}
	c.complementCarryFlag()
	if !c.isFlagSet(FlagCarry) {
		t.Error("expected carry set after second complement")
	}
}

func TestAddSPSigned(t *testing.T) {
	c := newTestCPU()
	c.SP = 0xFFF8
	got := c.addSPSigned(0x02)
	if got != 0xFFFA {
		t.Errorf("addSPSigned(+2) = %04X, want FFFA", got)
	}
	if c.isFlagSet(FlagZero) || c.isFlagSet(FlagSubtract) {
		t.Error("ADD SP,r8 always clears Z and N")
	}

	c.SP = 0x0005
	got = c.addSPSigned(0xFE) // -2
	if got != 0x0003 {
		t.Errorf("addSPSigned(-2) = %04X, want 0003", got)
	}
}
