package gameboy

// Debug enables the CPU's LD B,B debug breakpoint convention, used by
// test ROMs to signal a stopping point without a real debugger attached.
func Debug() Opt {
	return func(gb *GameBoy) { gb.CPU.Debug = true }
}
