package cpu

import "testing"

func TestSwapByte(t *testing.T) {
	c := newTestCPU()
	got := c.swapByte(0xAB)
	if got != 0xBA {
		t.Errorf("swapByte(AB) = %02X, want BA", got)
	}
	if c.isFlagSet(FlagSubtract) || c.isFlagSet(FlagHalfCarry) || c.isFlagSet(FlagCarry) {
		t.Errorf("SWAP must clear N, H, C, F=%02X", c.F)
	}
}

func TestSwapZero(t *testing.T) {
	c := newTestCPU()
	c.A = 0x00
	c.swap(&c.A)
	if c.A != 0x00 || !c.isFlagSet(FlagZero) {
		t.Errorf("swap(0) = %02X, Z=%v, want 00 with Z set", c.A, c.isFlagSet(FlagZero))
	}
}
