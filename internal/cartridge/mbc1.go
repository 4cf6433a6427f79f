package cartridge

import (
	"github.com/kestrelcore/goboy/internal/ioerr"
	"github.com/kestrelcore/goboy/internal/types"
)

// mbc1 implements the MBC1 bank-switching policy of spec.md §4.4: a 5-bit
// ROM bank register (bank1, never 0), a 2-bit register (bank2) that acts
// as either the upper ROM bank bits or the RAM bank depending on mode,
// and a mode select latch.
type mbc1 struct {
	rom []byte
	ram []byte

	ramg bool // RAM enable, 0x0000-0x1FFF
	bank1 uint8 // 0x2000-0x3FFF, 5 bits, 0 => 1
	bank2 uint8 // 0x4000-0x5FFF, 2 bits
	mode  bool  // 0x6000-0x7FFF: false=ROM banking mode, true=RAM banking mode

	romBanks int
	ramBanks int
}

func newMBC1(rom []byte, header *Header) *mbc1 {
	romBanks := len(rom) / 0x4000
	if romBanks == 0 {
		romBanks = 1
	}
	ramBanks := int(header.RAMSize) / 0x2000
	return &mbc1{
		rom:      rom,
		ram:      make([]byte, header.RAMSize),
		bank1:    1,
		romBanks: romBanks,
		ramBanks: ramBanks,
	}
}

func (m *mbc1) lowROMBank() int {
	return 0
}

func (m *mbc1) highROMBank() int {
	bank := int(m.bank1)
	if !m.mode {
		bank |= int(m.bank2) << 5
	}
	return bank % m.romBanks
}

func (m *mbc1) ramBank() int {
	if m.mode && m.ramBanks > 0 {
		return int(m.bank2) % m.ramBanks
	}
	return 0
}

func (m *mbc1) Read(address uint16) (uint8, error) {
	switch {
	case address < 0x4000:
		return m.rom[m.lowROMBank()*0x4000+int(address)], nil
	case address < 0x8000:
		return m.rom[m.highROMBank()*0x4000+int(address-0x4000)], nil
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg || m.ramBanks == 0 {
			return 0xFF, nil
		}
		return m.ram[m.ramBank()*0x2000+int(address-0xA000)], nil
	}
	return 0xFF, ioerr.NewUnknownAddress("cartridge(MBC1)", address, true)
}

func (m *mbc1) Write(address uint16, value uint8) error {
	switch {
	case address < 0x2000:
		m.ramg = value&0x0F == 0x0A
	case address < 0x4000:
		value &= 0x1F
		if value == 0 {
			value = 1
		}
		m.bank1 = value
	case address < 0x6000:
		m.bank2 = value & 0x03
	case address < 0x8000:
		m.mode = value&0x01 == 0x01
	case address >= 0xA000 && address < 0xC000:
		if m.ramg && m.ramBanks > 0 {
			m.ram[m.ramBank()*0x2000+int(address-0xA000)] = value
		}
	default:
		return ioerr.NewUnknownAddress("cartridge(MBC1)", address, false)
	}
	return nil
}

func (m *mbc1) SaveRAM() []byte  { return m.ram }
func (m *mbc1) LoadRAM(d []byte) { copy(m.ram, d) }

var _ types.Stater = (*mbc1)(nil)

func (m *mbc1) Save(s *types.State) {
	s.WriteData(m.ram)
	s.WriteBool(m.ramg)
	s.Write8(m.bank1)
	s.Write8(m.bank2)
	s.WriteBool(m.mode)
}

func (m *mbc1) Load(s *types.State) {
	s.ReadData(m.ram)
	m.ramg = s.ReadBool()
	m.bank1 = s.Read8()
	m.bank2 = s.Read8()
	m.mode = s.ReadBool()
}
