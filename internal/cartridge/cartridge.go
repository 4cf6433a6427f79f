// Package cartridge provides the cartridge mappers for the DMG and CGB:
// ROM, MBC1, MBC2, MBC3(+RTC), MBC5 and the Pocket Camera, selected by the
// cartridge-type byte per spec.md §4.4 and §6.
package cartridge

import (
	"fmt"

	"github.com/kestrelcore/goboy/internal/types"
)

// MemoryBankController is the capability every mapper exposes to the bus:
// reads/writes over 0x0000-0x7FFF (ROM) and 0xA000-0xBFFF (RAM), per
// spec.md §4.4.
type MemoryBankController interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
	SaveRAM() []byte
	LoadRAM([]byte)
	types.Stater
}

// Sensor is the external collaborator for the Pocket Camera mapper
// (spec.md §6): it produces a 128x112 grayscale frame on demand.
type Sensor interface {
	Capture() [112][128]uint8
}

// Cartridge wraps the selected MemoryBankController with the parsed
// header.
type Cartridge struct {
	MemoryBankController
	header Header
}

// New parses rom's header and constructs the mapper it declares. sensor
// may be nil unless the cartridge is a Pocket Camera.
func New(rom []byte, sensor Sensor) (*Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, fmt.Errorf("cartridge: ROM too small to contain a header (%d bytes)", len(rom))
	}
	header := parseHeader(rom[0x100:0x150])

	c := &Cartridge{header: header}
	switch header.CartridgeType {
	case ROM, ROMRAM, ROMRAMBATT:
		c.MemoryBankController = newROM(rom, &header)
	case MBC1, MBC1RAM, MBC1RAMBATT:
		c.MemoryBankController = newMBC1(rom, &header)
	case MBC2, MBC2BATT:
		c.MemoryBankController = newMBC2(rom, &header)
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		c.MemoryBankController = newMBC3(rom, &header)
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		c.MemoryBankController = newMBC5(rom, &header)
	case PocketCamera:
		c.MemoryBankController = newCamera(rom, &header, sensor)
	default:
		return nil, fmt.Errorf("cartridge: unsupported cartridge type %02X", uint8(header.CartridgeType))
	}

	return c, nil
}

// Header returns the parsed cartridge header.
func (c *Cartridge) Header() *Header {
	return &c.header
}

// Title returns the cartridge's title string.
func (c *Cartridge) Title() string {
	return c.header.Title
}
