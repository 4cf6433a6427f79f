package cartridge

import "fmt"

// Flag is the CGB-compatibility byte at 0x0143.
type Flag uint8

const (
	FlagOnlyDMG Flag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

// ramSizeTable maps the 0x0149 RAM-size byte to a byte count, per spec.md
// §6: 0x00->0, 0x01/0x02->8KiB (one bank), 0x03->32KiB (4 banks),
// 0x04->128KiB (16 banks). 0x05 (8 banks/64KiB) is not in the distilled
// spec but is real hardware behavior and is accepted as well.
var ramSizeTable = map[uint8]uint{
	0x00: 0,
	0x01: 8 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Type is the cartridge-type byte at 0x0147, identifying which mapper
// owns the cartridge's bank-switching policy (spec.md §6).
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC2              Type = 0x05
	MBC2BATT          Type = 0x06
	ROMRAM            Type = 0x08
	ROMRAMBATT        Type = 0x09
	MMM01             Type = 0x0B
	MMM01RAM          Type = 0x0C
	MMM01RAMBATT      Type = 0x0D
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
	PocketCamera      Type = 0xFC
	BandaiTama5       Type = 0xFD
	HudsonHuC3        Type = 0xFE
	HudsonHuC1        Type = 0xFF
)

// Header represents the header of a cartridge, located at address space
// 0x0100-0x014F. It carries title, hardware-compatibility and
// bank-sizing information (spec.md §6).
type Header struct {
	Title            string
	ManufacturerCode string
	CartridgeGBMode  Flag
	NewLicenseeCode  string
	SGBFlag          bool
	CartridgeType    Type
	ROMSize          uint
	RAMSize          uint
	CountryCode      uint8
	OldLicenseeCode  uint8
	MaskROMVersion   uint8
	HeaderChecksum   uint8
	GlobalChecksum   uint16
}

// parseHeader parses the 0x50-byte header window (ROM bytes 0x100-0x14F).
func parseHeader(header []byte) Header {
	h := Header{}
	if len(header) != 0x50 {
		panic(fmt.Sprintf("cartridge: invalid header length: %d", len(header)))
	}

	switch header[0x43] {
	case 0x80:
		h.CartridgeGBMode = FlagSupportsCGB
	case 0xC0:
		h.CartridgeGBMode = FlagOnlyCGB
	default:
		h.CartridgeGBMode = FlagOnlyDMG
	}

	if h.CartridgeGBMode == FlagOnlyDMG {
		h.Title = string(header[0x34:0x44])
	} else {
		h.Title = string(header[0x34:0x43])
	}

	h.ManufacturerCode = string(header[0x3F:0x43])
	h.NewLicenseeCode = string(header[0x44:0x46])
	h.SGBFlag = header[0x46] == 0x03
	h.CartridgeType = Type(header[0x47])
	h.ROMSize = (32 * 1024) * (1 << header[0x48])
	h.RAMSize = ramSizeTable[header[0x49]]
	h.CountryCode = header[0x4A]
	h.OldLicenseeCode = header[0x4B]
	h.MaskROMVersion = header[0x4C]
	h.HeaderChecksum = header[0x4D]
	h.GlobalChecksum = uint16(header[0x4E]) | uint16(header[0x4F])<<8

	return h
}

// GameboyColor reports whether the cartridge declares any CGB support.
func (h *Header) GameboyColor() bool {
	return h.CartridgeGBMode == FlagOnlyCGB || h.CartridgeGBMode == FlagSupportsCGB
}

// Hardware returns "DMG" or "CGB" depending on the compatibility byte.
func (h *Header) Hardware() string {
	if h.GameboyColor() {
		return "CGB"
	}
	return "DMG"
}

func (h *Header) String() string {
	return fmt.Sprintf("%s Mode: %s | ROM Size: %dkB | RAM Size: %dkB", h.Title, h.Hardware(), h.ROMSize/1024, h.RAMSize/1024)
}
