package cpu

import "testing"

func TestRegisterPairUint16(t *testing.T) {
	c := newTestCPU()
	c.H, c.L = 0x12, 0x34
	if got := c.HL.Uint16(); got != 0x1234 {
		t.Errorf("HL.Uint16() = %04X, want 1234", got)
	}

	c.HL.SetUint16(0xBEEF)
	if c.H != 0xBE || c.L != 0xEF {
		t.Errorf("SetUint16 gave H=%02X L=%02X, want BE EF", c.H, c.L)
	}
}
