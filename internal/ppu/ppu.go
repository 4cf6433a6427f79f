// Package ppu provides a programmable pixel unit for the DMG and CGB.
package ppu

import (
	"github.com/kestrelcore/goboy/internal/interrupts"
	"github.com/kestrelcore/goboy/internal/ioerr"
	"github.com/kestrelcore/goboy/internal/ppu/palette"
	"github.com/kestrelcore/goboy/internal/ram"
	"github.com/kestrelcore/goboy/internal/types"
	"github.com/kestrelcore/goboy/pkg/bits"
)

// Mode is one of the four PPU states (spec.md §4.3), numbered to match the
// STAT register's mode bits directly.
type Mode = uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeTransfer
)

const (
	oamDots      = 80
	transferDots = 200
	hblankDots   = 456 - oamDots - transferDots
	scanlineDots = 456
	visibleLines = 144
	totalLines   = 154

	maxSpritesPerLine = 10
)

// ScreenWidth and ScreenHeight are the LCD's visible pixel dimensions,
// exported for callers assembling a framebuffer from OutputLine calls.
const (
	ScreenWidth  = 160
	ScreenHeight = visibleLines
)

// HDMAController is the subset of mmu.Bus the PPU drives: VRAM DMA copies
// one 16-byte block per HBlank entry, and runs continuously in
// general-purpose mode regardless of PPU mode.
type HDMAController interface {
	TickHDMA()
	NotifyHBlank()
}

// LCD receives one composited scanline at a time, called synchronously
// from Tick; it must not call back into the PPU or the orchestrator
// (spec.md §6 "LCD output").
type LCD interface {
	OutputLine(line int, pixels [160][3]uint8)
}

// sprite is a decoded OAM entry (spec.md §4.3 step 3).
type sprite struct {
	y, x  int16
	tile  uint8
	attr  uint8
	index uint8
}

// PPU implements the mode state machine and scanline compositor described
// in spec.md §4.3, exposed to the bus as a Video collaborator.
type PPU struct {
	lcdc uint8
	stat uint8 // only the enable bits (3-6); mode and coincidence are derived
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8
	vbk  uint8

	vram *ram.Banked
	oam  [160]byte

	bgPalette  *palette.CGB
	objPalette *palette.CGB

	mode Mode
	dot  int

	windowLine uint8
	coincident bool
	frameDone  bool

	isGBC   bool
	irq     *interrupts.Service
	hdma    HDMAController
	lcdSink LCD
}

// New returns a PPU powered on at OAM scan, LY 0, matching the state the
// post-boot register snapshot (boot.PostBoot) expects to find it in.
func New(isGBC bool, irq *interrupts.Service) *PPU {
	banks := 1
	if isGBC {
		banks = 2
	}
	return &PPU{
		vram:       ram.NewBanked(banks, 0x2000),
		bgPalette:  palette.NewCGB(),
		objPalette: palette.NewCGB(),
		isGBC:      isGBC,
		irq:        irq,
		mode:       ModeOAMScan,
	}
}

// AttachHDMA wires the VRAM DMA controller the PPU drives during HBlank.
func (p *PPU) AttachHDMA(h HDMAController) { p.hdma = h }

// AttachLCD wires the scanline sink the compositor outputs to.
func (p *PPU) AttachLCD(l LCD) { p.lcdSink = l }

func (p *PPU) enabled() bool { return p.lcdc&bits.Bit7 != 0 }

// ConsumeFrameDone reports whether a VBlank-to-OAM-scan transition
// happened since the last call, clearing the flag; the orchestrator's
// Frame loop polls this to find the frame boundary (spec.md §4.3
// "Frame delimiter").
func (p *PPU) ConsumeFrameDone() bool {
	v := p.frameDone
	p.frameDone = false
	return v
}

// Tick advances the PPU by one master-clock cycle.
func (p *PPU) Tick() {
	if p.hdma != nil {
		p.hdma.TickHDMA()
	}

	if !p.enabled() {
		return
	}

	p.dot++
	switch p.mode {
	case ModeOAMScan:
		if p.dot >= oamDots {
			p.dot = 0
			p.setMode(ModeTransfer)
		}
	case ModeTransfer:
		if p.dot >= transferDots {
			p.dot = 0
			p.renderScanline()
			p.setMode(ModeHBlank)
			if p.hdma != nil {
				p.hdma.NotifyHBlank()
			}
		}
	case ModeHBlank:
		if p.dot >= hblankDots {
			p.dot = 0
			p.advanceLine()
			if p.ly == visibleLines {
				p.setMode(ModeVBlank)
				p.irq.Request(interrupts.VBlankFlag)
			} else {
				p.setMode(ModeOAMScan)
			}
		}
	case ModeVBlank:
		if p.dot >= scanlineDots {
			p.dot = 0
			p.advanceLine()
			if p.ly >= totalLines {
				p.ly = 0
				p.windowLine = 0
				p.checkCoincidence()
				p.setMode(ModeOAMScan)
				p.frameDone = true
			}
		}
	}
}

func (p *PPU) advanceLine() {
	p.ly++
	p.checkCoincidence()
}

func (p *PPU) checkCoincidence() {
	was := p.coincident
	p.coincident = p.ly == p.lyc
	if p.coincident && !was && p.stat&bits.Bit6 != 0 {
		p.irq.Request(interrupts.LCDFlag)
	}
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	var enable uint8
	switch m {
	case ModeHBlank:
		enable = bits.Bit3
	case ModeVBlank:
		enable = bits.Bit4
	case ModeOAMScan:
		enable = bits.Bit5
	}
	if enable != 0 && p.stat&enable != 0 {
		p.irq.Request(interrupts.LCDFlag)
	}
}

// -- Scanline compositing (spec.md §4.3 steps 1-4) --------------------

func (p *PPU) renderScanline() {
	line := int(p.ly)
	var pixels [160][3]uint8
	var bgColorID [160]uint8
	var bgPriority [160]bool

	bgWinEnabled := p.isGBC || p.lcdc&bits.Bit0 != 0
	windowEnabled := p.lcdc&bits.Bit5 != 0 && line >= int(p.wy) && int(p.wx) <= 166

	windowUsedThisLine := false

	for dot := 0; dot < 160; dot++ {
		var colorID uint8
		var attr uint8

		fromWindow := windowEnabled && dot+7 >= int(p.wx)

		if bgWinEnabled {
			var mapBase uint16
			var tx, ty, tileX, tileY int
			if fromWindow {
				windowUsedThisLine = true
				if p.lcdc&bits.Bit6 != 0 {
					mapBase = 0x1C00
				} else {
					mapBase = 0x1800
				}
				tx = (dot + 7 - int(p.wx)) / 8
				ty = int(p.windowLine) / 8
				tileX = (dot + 7 - int(p.wx)) % 8
				tileY = int(p.windowLine) % 8
			} else {
				if p.lcdc&bits.Bit3 != 0 {
					mapBase = 0x1C00
				} else {
					mapBase = 0x1800
				}
				tx = (int(p.scx) + dot) / 8 % 32
				ty = (int(p.scy) + int(p.ly)) / 8 % 32
				tileX = (int(p.scx) + dot) % 8
				tileY = (int(p.scy) + int(p.ly)) % 8
			}

			mapAddr := mapBase + uint16(ty*32+tx)
			tileIndex := p.vram.ReadBank(0, mapAddr)
			if p.isGBC {
				attr = p.vram.ReadBank(1, mapAddr)
			}

			tileDataAddr := p.tileDataAddress(tileIndex, p.lcdc&bits.Bit4 != 0)

			if attr&bits.Bit6 != 0 {
				tileY = 7 - tileY
			}
			rowAddr := tileDataAddr + uint16(tileY)*2
			bank := uint8(0)
			if attr&bits.Bit3 != 0 {
				bank = 1
			}
			lo := p.vram.ReadBank(bank, rowAddr)
			hi := p.vram.ReadBank(bank, rowAddr+1)

			bit := 7 - tileX
			if attr&bits.Bit5 != 0 {
				bit = tileX
			}
			colorID = (lo>>uint(bit))&1 | (hi>>uint(bit))&1<<1
		}

		bgColorID[dot] = colorID
		bgPriority[dot] = attr&bits.Bit7 != 0

		if p.isGBC {
			pixels[dot] = p.bgPalette.Color(attr&0x07, colorID)
		} else {
			pixels[dot] = palette.Default.Resolve(p.bgp, colorID)
		}
	}

	if windowUsedThisLine {
		p.windowLine++
	}

	if p.lcdc&bits.Bit1 != 0 {
		p.overlaySprites(line, &pixels, bgColorID, bgPriority)
	}

	if p.lcdSink != nil {
		p.lcdSink.OutputLine(line, pixels)
	}
}

func (p *PPU) tileDataAddress(tileIndex uint8, unsigned bool) uint16 {
	if unsigned {
		return uint16(tileIndex) * 16
	}
	return uint16(0x1000 + int16(int8(tileIndex))*16)
}

func (p *PPU) overlaySprites(line int, pixels *[160][3]uint8, bgColorID [160]uint8, bgPriority [160]bool) {
	height := int16(8)
	if p.lcdc&bits.Bit2 != 0 {
		height = 16
	}

	var visible []sprite
	for i := 0; i < 40 && len(visible) < maxSpritesPerLine; i++ {
		off := i * 4
		y := int16(p.oam[off]) - 16
		if int16(line) < y || int16(line) >= y+height {
			continue
		}
		visible = append(visible, sprite{
			y:     y,
			x:     int16(p.oam[off+1]) - 8,
			tile:  p.oam[off+2],
			attr:  p.oam[off+3],
			index: uint8(i),
		})
	}

	// DMG priority: smaller X wins, then OAM index; draw lowest-priority
	// first so higher-priority sprites overwrite. CGB: OAM index alone.
	order := make([]int, len(visible))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 {
			a, b := visible[order[j-1]], visible[order[j]]
			var higher bool
			if p.isGBC {
				higher = a.index < b.index
			} else {
				higher = a.x < b.x || (a.x == b.x && a.index < b.index)
			}
			if !higher {
				break
			}
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}

	for _, idx := range order {
		s := visible[idx]
		tile := s.tile
		row := int16(line) - s.y
		if s.attr&bits.Bit6 != 0 {
			row = height - 1 - row
		}
		if height == 16 {
			tile &^= 1
			if row >= 8 {
				tile |= 1
				row -= 8
			}
		}

		bank := uint8(0)
		if p.isGBC && s.attr&bits.Bit3 != 0 {
			bank = 1
		}
		rowAddr := uint16(tile)*16 + uint16(row)*2
		lo := p.vram.ReadBank(bank, rowAddr)
		hi := p.vram.ReadBank(bank, rowAddr+1)

		for col := int16(0); col < 8; col++ {
			dot := s.x + col
			if dot < 0 || dot >= 160 {
				continue
			}
			bit := 7 - col
			if s.attr&bits.Bit5 != 0 {
				bit = col
			}
			colorID := (lo>>uint(bit))&1 | (hi>>uint(bit))&1<<1
			if colorID == 0 {
				continue
			}
			if s.attr&bits.Bit7 != 0 && bgColorID[dot] != 0 {
				continue
			}
			if p.isGBC && p.lcdc&bits.Bit0 != 0 && bgPriority[dot] && bgColorID[dot] != 0 {
				continue
			}

			if p.isGBC {
				pixels[dot] = p.objPalette.Color(s.attr&0x07, colorID)
			} else {
				reg := p.obp0
				if s.attr&bits.Bit4 != 0 {
					reg = p.obp1
				}
				pixels[dot] = palette.Default.Resolve(reg, colorID)
			}
		}
	}
}

// -- Bus interface ------------------------------------------------------

func (p *PPU) Read(address uint16) (uint8, error) {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		return p.vram.Read(address - 0x8000), nil
	case address >= 0xFE00 && address <= 0xFE9F:
		return p.oam[address-0xFE00], nil
	}
	switch address {
	case types.LCDC:
		return p.lcdc, nil
	case types.STAT:
		v := uint8(0x80) | p.stat | p.mode
		if p.coincident {
			v |= bits.Bit2
		}
		if !p.enabled() {
			v &^= 0x03
		}
		return v, nil
	case types.SCY:
		return p.scy, nil
	case types.SCX:
		return p.scx, nil
	case types.LY:
		if !p.enabled() {
			return 0, nil
		}
		return p.ly, nil
	case types.LYC:
		return p.lyc, nil
	case types.BGP:
		return p.bgp, nil
	case types.OBP0:
		return p.obp0, nil
	case types.OBP1:
		return p.obp1, nil
	case types.WY:
		return p.wy, nil
	case types.WX:
		return p.wx, nil
	case types.VBK:
		if !p.isGBC {
			return 0xFF, nil
		}
		return p.vbk | 0xFE, nil
	case types.BCPS:
		return p.bgPalette.ReadIndex(), nil
	case types.BCPD:
		return p.bgPalette.ReadData(), nil
	case types.OCPS:
		return p.objPalette.ReadIndex(), nil
	case types.OCPD:
		return p.objPalette.ReadData(), nil
	}
	return 0xFF, ioerr.NewUnknownAddress("ppu", address, true)
}

func (p *PPU) Write(address uint16, value uint8) error {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		p.vram.Write(address-0x8000, value)
		return nil
	case address >= 0xFE00 && address <= 0xFE9F:
		p.oam[address-0xFE00] = value
		return nil
	}
	switch address {
	case types.LCDC:
		wasOn := p.enabled()
		p.lcdc = value
		if wasOn && !p.enabled() {
			p.dot = 0
			p.ly = 0
			p.mode = ModeHBlank
		} else if !wasOn && p.enabled() {
			p.dot = 0
			p.mode = ModeOAMScan
		}
	case types.STAT:
		p.stat = value & 0x78
	case types.SCY:
		p.scy = value
	case types.SCX:
		p.scx = value
	case types.LY:
		p.ly = 0
	case types.LYC:
		p.lyc = value
		p.checkCoincidence()
	case types.BGP:
		p.bgp = value
	case types.OBP0:
		p.obp0 = value
	case types.OBP1:
		p.obp1 = value
	case types.WY:
		p.wy = value
	case types.WX:
		p.wx = value
	case types.VBK:
		if p.isGBC {
			p.vbk = value & 0x01
			p.vram.SetBank(p.vbk)
		}
	case types.BCPS:
		p.bgPalette.WriteIndex(value)
	case types.BCPD:
		p.bgPalette.WriteData(value)
	case types.OCPS:
		p.objPalette.WriteIndex(value)
	case types.OCPD:
		p.objPalette.WriteData(value)
	default:
		return ioerr.NewUnknownAddress("ppu", address, false)
	}
	return nil
}

var _ types.Stater = (*PPU)(nil)

func (p *PPU) Save(s *types.State) {
	s.Write8(p.lcdc)
	s.Write8(p.stat)
	s.Write8(p.scy)
	s.Write8(p.scx)
	s.Write8(p.ly)
	s.Write8(p.lyc)
	s.Write8(p.bgp)
	s.Write8(p.obp0)
	s.Write8(p.obp1)
	s.Write8(p.wy)
	s.Write8(p.wx)
	s.Write8(p.vbk)
	s.WriteData(p.oam[:])
	s.Write8(p.mode)
	s.Write32(uint32(p.dot))
	s.Write8(p.windowLine)
	s.WriteBool(p.coincident)
	s.WriteBool(p.frameDone)
	p.vram.Save(s)
	p.bgPalette.Save(s)
	p.objPalette.Save(s)
}

func (p *PPU) Load(s *types.State) {
	p.lcdc = s.Read8()
	p.stat = s.Read8()
	p.scy = s.Read8()
	p.scx = s.Read8()
	p.ly = s.Read8()
	p.lyc = s.Read8()
	p.bgp = s.Read8()
	p.obp0 = s.Read8()
	p.obp1 = s.Read8()
	p.wy = s.Read8()
	p.wx = s.Read8()
	p.vbk = s.Read8()
	s.ReadData(p.oam[:])
	p.mode = s.Read8()
	p.dot = int(s.Read32())
	p.windowLine = s.Read8()
	p.coincident = s.ReadBool()
	p.frameDone = s.ReadBool()
	p.vram.Load(s)
	p.bgPalette.Load(s)
	p.objPalette.Load(s)
}
