// Package palette resolves Game Boy color indices (0-3) to RGB: the fixed
// DMG monochrome shades selected by BGP/OBP0/OBP1, and the CGB's 8
// background + 8 object palettes addressed through BCPS/BCPD and
// OCPS/OCPD (spec.md §4.3).
package palette

import "github.com/kestrelcore/goboy/internal/types"

// DMG is a 4-shade monochrome palette, lightest first.
type DMG [4][3]uint8

// Default is the classic off-white/gray/dark-gray/black DMG shade ramp.
var Default = DMG{
	{0xFF, 0xFF, 0xFF},
	{0xCC, 0xCC, 0xCC},
	{0x77, 0x77, 0x77},
	{0x00, 0x00, 0x00},
}

// Resolve maps a raw 2-bit color id through a BGP/OBP register value (each
// 2-bit field selects which of the 4 shades represents that color id) to
// an RGB triple.
func (d DMG) Resolve(register uint8, colorID uint8) [3]uint8 {
	shade := (register >> (colorID * 2)) & 0x03
	return d[shade]
}

// CGB holds the 8 background or 8 object palettes of 4 RGB555 colors
// each, addressed through the auto-incrementing BCPS/OCPS index register
// (spec.md §4.3's CGB BG/OBJ palette attribute-byte selection).
type CGB struct {
	colors      [8][4][3]uint8
	index       uint8
	autoIncrement bool
}

// NewCGB returns a CGB palette bank initialized to white, matching power-on
// VRAM/palette-RAM contents before a game writes anything.
func NewCGB() *CGB {
	c := &CGB{}
	for p := range c.colors {
		for i := range c.colors[p] {
			c.colors[p][i] = [3]uint8{0xFF, 0xFF, 0xFF}
		}
	}
	return c
}

// WriteIndex handles a write to BCPS/OCPS: bits 0-5 select a byte within
// the 64-byte palette RAM, bit 7 requests auto-increment after each data
// write.
func (c *CGB) WriteIndex(value uint8) {
	c.index = value & 0x3F
	c.autoIncrement = value&0x80 != 0
}

// ReadIndex returns the current BCPS/OCPS value.
func (c *CGB) ReadIndex() uint8 {
	v := c.index
	if c.autoIncrement {
		v |= 0x80
	}
	return v
}

func (c *CGB) paletteColor() (paletteIdx, colorIdx int) {
	return int(c.index >> 3), int(c.index&0x07) >> 1
}

// ReadData handles a read from BCPD/OCPD: the low or high byte of the
// RGB555 word for the currently indexed color.
func (c *CGB) ReadData() uint8 {
	p, col := c.paletteColor()
	rgb555 := packRGB555(c.colors[p][col])
	if c.index&1 == 0 {
		return uint8(rgb555)
	}
	return uint8(rgb555 >> 8)
}

// WriteData handles a write to BCPD/OCPD, updating the low or high byte
// of the indexed color's RGB555 word, then auto-increments the index if
// BCPS/OCPS requested it.
func (c *CGB) WriteData(value uint8) {
	p, col := c.paletteColor()
	rgb555 := packRGB555(c.colors[p][col])
	if c.index&1 == 0 {
		rgb555 = rgb555&0xFF00 | uint16(value)
	} else {
		rgb555 = rgb555&0x00FF | uint16(value)<<8
	}
	c.colors[p][col] = unpackRGB555(rgb555)

	if c.autoIncrement {
		c.index = (c.index + 1) & 0x3F
	}
}

// Color returns the resolved RGB for a CGB palette/color-id pair (the
// attribute byte's bits 0-2 select paletteIdx, the tile's 2-bit pixel
// value selects colorIdx).
func (c *CGB) Color(paletteIdx, colorIdx uint8) [3]uint8 {
	return c.colors[paletteIdx&0x07][colorIdx&0x03]
}

func packRGB555(rgb [3]uint8) uint16 {
	return uint16(rgb[0]>>3) | uint16(rgb[1]>>3)<<5 | uint16(rgb[2]>>3)<<10
}

func unpackRGB555(v uint16) [3]uint8 {
	return [3]uint8{
		uint8(v&0x1F) << 3,
		uint8((v>>5)&0x1F) << 3,
		uint8((v>>10)&0x1F) << 3,
	}
}

var _ types.Stater = (*CGB)(nil)

func (c *CGB) Save(s *types.State) {
	for p := range c.colors {
		for i := range c.colors[p] {
			s.WriteData(c.colors[p][i][:])
		}
	}
	s.Write8(c.index)
	s.WriteBool(c.autoIncrement)
}

func (c *CGB) Load(s *types.State) {
	for p := range c.colors {
		for i := range c.colors[p] {
			s.ReadData(c.colors[p][i][:])
		}
	}
	c.index = s.Read8()
	c.autoIncrement = s.ReadBool()
}
