// Package apu models the Game Boy's audio register file (0xFF10-0xFF3F)
// without synthesizing waveforms: spec.md's Non-goals explicitly exclude
// audio generation, but the registers must still read and write plausibly
// so games that poll channel status or write wave RAM keep working.
package apu

import (
	"github.com/kestrelcore/goboy/internal/ioerr"
	"github.com/kestrelcore/goboy/internal/types"
)

// APU is a register-file stub: every write is retained verbatim (matching
// real hardware's read-back behavior for writable bits) and NR52's
// power/status bit is tracked so games can observe "sound off" correctly.
type APU struct {
	memory  [48]byte // 0xFF10-0xFF3F register window minus wave RAM
	waveRAM [16]byte // 0xFF30-0xFF3F, kept separately so it survives power-off
	enabled bool
}

// New returns an APU with NR52 powered on; the caller applies the boot
// snapshot's register values on top.
func New() *APU {
	return &APU{enabled: true}
}

func (a *APU) Read(address uint16) (uint8, error) {
	switch {
	case address >= 0xFF10 && address <= 0xFF25:
		return a.memory[address-0xFF10] | unusedBitsMask[address-0xFF10], nil
	case address == 0xFF26:
		v := uint8(0x70)
		if a.enabled {
			v |= 0x80
		}
		return v, nil
	case address >= 0xFF30 && address <= 0xFF3F:
		return a.waveRAM[address-0xFF30], nil
	}
	return 0xFF, ioerr.NewUnknownAddress("apu", address, true)
}

func (a *APU) Write(address uint16, value uint8) error {
	switch {
	case address >= 0xFF10 && address <= 0xFF25:
		if !a.enabled && address != 0xFF11 && address != 0xFF16 && address != 0xFF1B && address != 0xFF20 {
			return nil // powered-off APU ignores writes except length counters
		}
		a.memory[address-0xFF10] = value
	case address == 0xFF26:
		a.enabled = value&0x80 != 0
		if !a.enabled {
			for i := range a.memory {
				a.memory[i] = 0
			}
		}
	case address >= 0xFF30 && address <= 0xFF3F:
		a.waveRAM[address-0xFF30] = value
	default:
		return ioerr.NewUnknownAddress("apu", address, false)
	}
	return nil
}

// unusedBitsMask ORs in the always-1 bits real hardware reports for
// write-only or partially-implemented fields, indexed the same as memory.
var unusedBitsMask = [48]uint8{
	0x00: 0x80, 0x01: 0x3F, 0x02: 0x00, 0x03: 0xFF, 0x04: 0xBF,
	0x05: 0xFF, 0x06: 0x00, 0x07: 0x00, 0x08: 0xFF, 0x09: 0xBF,
	0x0A: 0x7F, 0x0B: 0xFF, 0x0C: 0x9F, 0x0D: 0xFF, 0x0E: 0xBF,
	0x0F: 0xFF, 0x10: 0xFF, 0x11: 0x00, 0x12: 0x00, 0x13: 0xFF, 0x14: 0xBF,
}

var _ types.Stater = (*APU)(nil)

func (a *APU) Save(s *types.State) {
	s.WriteData(a.memory[:])
	s.WriteData(a.waveRAM[:])
	s.WriteBool(a.enabled)
}

func (a *APU) Load(s *types.State) {
	s.ReadData(a.memory[:])
	s.ReadData(a.waveRAM[:])
	a.enabled = s.ReadBool()
}
