package cpu

// doHALTBug is called on the step after a HALT that was executed with
// the IME disabled and an interrupt already pending. It executes the
// byte after HALT without advancing PC past it, so that byte is read
// again by the next fetch.
func (c *CPU) doHALTBug() {
	// read the next instruction
	instr := c.readOperand()

	// decrement the PC to execute the instruction again
	c.PC--

	// execute the instruction
	c.execute(instr)
}
