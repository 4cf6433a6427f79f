package cpu

import "testing"

func TestAnd(t *testing.T) {
	c := newTestCPU()
	if got := c.and(0xF0, 0x3C); got != 0x30 {
		t.Errorf("and(F0,3C) = %02X, want 30", got)
	}
	if !c.isFlagSet(FlagHalfCarry) || c.isFlagSet(FlagCarry) {
		t.Errorf("AND must set H and clear C, F=%02X", c.F)
	}
}

func TestXor(t *testing.T) {
	c := newTestCPU()
	if got := c.xor(0xFF, 0xFF); got != 0x00 {
		t.Errorf("xor(FF,FF) = %02X, want 00", got)
	}
	if !c.isFlagSet(FlagZero) {
		t.Error("expected Z set")
	}
}

func TestOr(t *testing.T) {
	c := newTestCPU()
	if got := c.or(0x00, 0x00); got != 0x00 {
		t.Errorf("or(00,00) = %02X, want 00", got)
	}
	if !c.isFlagSet(FlagZero) {
		t.Error("expected Z set")
	}
}

func TestCompare(t *testing.T) {
	c := newTestCPU()
	c.A = 0x10
	c.compare(0x10)
	if !c.isFlagSet(FlagZero) {
		t.Error("expected Z set when operand equals A")
	}
	c.compare(0x20)
	if !c.isFlagSet(FlagCarry) {
		t.Error("expected C set when operand exceeds A")
	}
}
