package cpu

// newTestCPU builds a CPU with its register pairs wired up, skipping
// NewCPU's bus/peripheral wiring and opcode table construction. Suitable for
// exercising the pure register/flag/ALU helpers that never touch the bus.
func newTestCPU() *CPU {
	c := &CPU{}
	c.BC = &RegisterPair{&c.B, &c.C}
	c.DE = &RegisterPair{&c.D, &c.E}
	c.HL = &RegisterPair{&c.H, &c.L}
	c.AF = &RegisterPair{&c.A, &c.F}
	return c
}
