package gameboy

import (
	"testing"

	"github.com/kestrelcore/goboy/internal/interrupts"
	"github.com/stretchr/testify/require"
)

// minimalROM builds the smallest header mmu.New/cartridge.New will accept:
// a 32KiB ROM-only cartridge with a DMG-compatibility byte.
func minimalROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0147] = 0x00 // ROM only
	rom[0x0148] = 0x00 // 32KiB
	rom[0x0149] = 0x00 // no RAM
	return rom
}

func TestNewAppliesPostBootSnapshot(t *testing.T) {
	gb, err := New(minimalROM(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0100), gb.CPU.PC)
	require.Equal(t, uint8(0xFF), gb.Bus.Read(0xFF50), "BDIS should read back as disabled when no boot ROM is supplied")
}

func TestPressButtonRequestsInterruptOnlyOnSelectedRow(t *testing.T) {
	gb, err := New(minimalROM(), nil, nil)
	require.NoError(t, err)

	// Select the direction row (bit 4 low), deselect the button row (bit 5 high).
	gb.Bus.Write(0xFF00, 0x20)

	gb.PressButton(0x02) // B, a button-row key: not selected, no interrupt
	require.Zero(t, gb.Bus.IRQ.Flag&(1<<interrupts.JoypadFlag), "deselected row must not request JOYPAD")

	gb.PressButton(0x40) // Up, a direction-row key: selected, interrupt fires
	require.NotZero(t, gb.Bus.IRQ.Flag&(1<<interrupts.JoypadFlag), "selected row must request JOYPAD")
}
