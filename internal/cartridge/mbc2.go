package cartridge

import (
	"github.com/kestrelcore/goboy/internal/ioerr"
	"github.com/kestrelcore/goboy/internal/types"
)

// mbc2 implements spec.md §4.4 MBC2: a 4-bit ROM bank register selected
// when address bit 8 is clear, RAM-enable when address bit 8 is set, and
// a built-in 512x4-bit RAM (modeled as 512 bytes, only the low nibble of
// each byte is meaningful and reads OR in 0xF0 on the high nibble).
type mbc2 struct {
	rom []byte
	ram [512]byte

	ramg     bool
	romBank  uint8
	romBanks int
}

func newMBC2(rom []byte, header *Header) *mbc2 {
	romBanks := len(rom) / 0x4000
	if romBanks == 0 {
		romBanks = 1
	}
	return &mbc2{rom: rom, romBank: 1, romBanks: romBanks}
}

func (m *mbc2) Read(address uint16) (uint8, error) {
	switch {
	case address < 0x4000:
		return m.rom[address], nil
	case address < 0x8000:
		bank := int(m.romBank) % m.romBanks
		return m.rom[bank*0x4000+int(address-0x4000)], nil
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg {
			return 0xFF, nil
		}
		return m.ram[address&0x1FF] | 0xF0, nil
	}
	return 0xFF, ioerr.NewUnknownAddress("cartridge(MBC2)", address, true)
}

func (m *mbc2) Write(address uint16, value uint8) error {
	switch {
	case address < 0x4000:
		if address&0x0100 == 0 {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		} else {
			m.ramg = value&0x0F == 0x0A
		}
	case address >= 0xA000 && address < 0xC000:
		if m.ramg {
			m.ram[address&0x1FF] = value & 0x0F
		}
	default:
		return ioerr.NewUnknownAddress("cartridge(MBC2)", address, false)
	}
	return nil
}

func (m *mbc2) SaveRAM() []byte  { return m.ram[:] }
func (m *mbc2) LoadRAM(d []byte) { copy(m.ram[:], d) }

var _ types.Stater = (*mbc2)(nil)

func (m *mbc2) Save(s *types.State) {
	s.WriteData(m.ram[:])
	s.WriteBool(m.ramg)
	s.Write8(m.romBank)
}

func (m *mbc2) Load(s *types.State) {
	s.ReadData(m.ram[:])
	m.ramg = s.ReadBool()
	m.romBank = s.Read8()
}
