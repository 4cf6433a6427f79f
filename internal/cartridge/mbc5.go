package cartridge

import (
	"github.com/kestrelcore/goboy/internal/ioerr"
	"github.com/kestrelcore/goboy/internal/types"
)

// mbc5 implements spec.md §4.4 MBC5: a 9-bit ROM bank register (bank 0 is
// valid at the 0x4000 window, unlike MBC1) and a 4-bit RAM bank register.
// Per the §3 invariant, an out-of-range bank access bounds-checks and
// returns 0xFF rather than wrapping, the observed MBC5 behavior.
type mbc5 struct {
	rom []byte
	ram []byte

	ramg    bool
	romBank uint16 // 9 bits
	ramBank uint8  // 4 bits

	hasRAM bool
}

func newMBC5(rom []byte, header *Header) *mbc5 {
	return &mbc5{
		rom:    rom,
		ram:    make([]byte, header.RAMSize),
		hasRAM: header.RAMSize > 0,
	}
}

func (m *mbc5) romOffset(bank uint16) (int, bool) {
	off := int(bank)*0x4000
	if off+0x4000 > len(m.rom) {
		return 0, false
	}
	return off, true
}

func (m *mbc5) ramOffset(bank uint8) (int, bool) {
	off := int(bank) * 0x2000
	if off+0x2000 > len(m.ram) {
		return 0, false
	}
	return off, true
}

func (m *mbc5) Read(address uint16) (uint8, error) {
	switch {
	case address < 0x4000:
		return m.rom[address], nil
	case address < 0x8000:
		base, ok := m.romOffset(m.romBank)
		if !ok {
			return 0xFF, nil
		}
		return m.rom[base+int(address-0x4000)], nil
	case address >= 0xA000 && address < 0xC000:
		if !m.ramg || !m.hasRAM {
			return 0xFF, nil
		}
		base, ok := m.ramOffset(m.ramBank)
		if !ok {
			return 0xFF, nil
		}
		return m.ram[base+int(address-0xA000)], nil
	}
	return 0xFF, ioerr.NewUnknownAddress("cartridge(MBC5)", address, true)
}

func (m *mbc5) Write(address uint16, value uint8) error {
	switch {
	case address < 0x2000:
		m.ramg = value&0x0F == 0x0A
	case address < 0x3000:
		m.romBank = (m.romBank & 0x100) | uint16(value)
	case address < 0x4000:
		m.romBank = (m.romBank & 0x0FF) | (uint16(value&0x01) << 8)
	case address < 0x6000:
		m.ramBank = value & 0x0F
	case address >= 0xA000 && address < 0xC000:
		if m.ramg && m.hasRAM {
			if base, ok := m.ramOffset(m.ramBank); ok {
				m.ram[base+int(address-0xA000)] = value
			}
		}
	default:
		return ioerr.NewUnknownAddress("cartridge(MBC5)", address, false)
	}
	return nil
}

func (m *mbc5) SaveRAM() []byte  { return m.ram }
func (m *mbc5) LoadRAM(d []byte) { copy(m.ram, d) }

var _ types.Stater = (*mbc5)(nil)

func (m *mbc5) Save(s *types.State) {
	s.WriteData(m.ram)
	s.WriteBool(m.ramg)
	s.Write16(m.romBank)
	s.Write8(m.ramBank)
}

func (m *mbc5) Load(s *types.State) {
	s.ReadData(m.ram)
	m.ramg = s.ReadBool()
	m.romBank = s.Read16()
	m.ramBank = s.Read8()
}
