package cartridge

import (
	"github.com/kestrelcore/goboy/internal/ioerr"
	"github.com/kestrelcore/goboy/internal/types"
)

// romOnly is the simplest cartridge: a linear 32KiB ROM with up to 8KiB of
// unbanked external RAM, and no bank-switching registers at all
// (spec.md §4.4 "ROM only").
type romOnly struct {
	rom []byte
	ram []byte
}

func newROM(rom []byte, header *Header) *romOnly {
	return &romOnly{
		rom: rom,
		ram: make([]byte, header.RAMSize),
	}
}

func (r *romOnly) Read(address uint16) (uint8, error) {
	switch {
	case address < 0x8000:
		if int(address) >= len(r.rom) {
			return 0xFF, nil
		}
		return r.rom[address], nil
	case address >= 0xA000 && address < 0xC000:
		off := address - 0xA000
		if int(off) >= len(r.ram) {
			return 0xFF, nil
		}
		return r.ram[off], nil
	}
	return 0xFF, ioerr.NewUnknownAddress("cartridge(ROM)", address, true)
}

func (r *romOnly) Write(address uint16, value uint8) error {
	switch {
	case address < 0x8000:
		return ioerr.NewROMWrite("cartridge(ROM)", address, value)
	case address >= 0xA000 && address < 0xC000:
		off := address - 0xA000
		if int(off) < len(r.ram) {
			r.ram[off] = value
		}
		return nil
	}
	return ioerr.NewUnknownAddress("cartridge(ROM)", address, false)
}

func (r *romOnly) SaveRAM() []byte   { return r.ram }
func (r *romOnly) LoadRAM(d []byte)  { copy(r.ram, d) }
func (r *romOnly) Save(s *types.State) { s.WriteData(r.ram) }
func (r *romOnly) Load(s *types.State) { s.ReadData(r.ram) }
