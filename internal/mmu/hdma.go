package mmu

import "github.com/kestrelcore/goboy/internal/types"

// transferMode selects between a one-shot general-purpose transfer and a
// 16-byte-per-HBlank transfer (spec.md §4.6 "VRAM DMA (CGB)").
type transferMode = uint8

const (
	gdmaMode transferMode = iota
	hblankMode
)

// HDMA implements the CGB's VRAM DMA controller at 0xFF51-0xFF55,
// transferring from any bus address into VRAM (via the owning Bus) either
// immediately (GDMA) or one 16-byte block per HBlank (HDMA).
type HDMA struct {
	mode         transferMode
	transferring bool
	copying   bool

	source      uint16
	destination uint16
	blocks      uint8

	bus *Bus
}

// NewHDMA returns an idle HDMA controller bound to bus.
func NewHDMA(bus *Bus) *HDMA {
	return &HDMA{mode: gdmaMode, blocks: 1, bus: bus}
}

func (h *HDMA) Read(address uint16) uint8 {
	switch address {
	case types.HDMA1, types.HDMA2, types.HDMA3, types.HDMA4:
		return 0xFF
	case types.HDMA5:
		if !h.transferring {
			return 0xFF
		}
		return h.blocks - 1
	}
	return 0xFF
}

func (h *HDMA) Write(address uint16, value uint8) {
	switch address {
	case types.HDMA1:
		h.source = (h.source & 0x00FF) | uint16(value)<<8
	case types.HDMA2:
		h.source = (h.source & 0xFF00) | uint16(value&0xF0)
	case types.HDMA3:
		h.destination = (h.destination & 0x00FF) | uint16(value&0x1F)<<8
	case types.HDMA4:
		h.destination = (h.destination & 0xFF00) | uint16(value&0xF0)
	case types.HDMA5:
		if h.mode == hblankMode && h.copying {
			if value>>7 == gdmaMode {
				h.transferring = false
				h.copying = false
				return
			}
			h.mode = value >> 7
			h.blocks = value&0x7F + 1
		} else {
			h.mode = value >> 7
			h.blocks = value&0x7F + 1
			h.transferring = true
		}
		if h.mode == gdmaMode {
			h.copying = true
		}
	}
}

// Tick copies one byte from source to VRAM, advancing both pointers, when
// a transfer is in progress. Called once per master-clock cycle while
// copying is true; GDMA transfers run their full length in consecutive
// ticks, HDMA transfers copy one 16-byte block (16 calls) and then wait
// for the next HBlank (SetHBlank).
func (h *HDMA) Tick() {
	if !h.copying {
		return
	}
	h.bus.Write(0x8000+(h.destination&0x1FFF), h.bus.Read(h.source))
	h.destination++
	h.source++

	if h.destination&0xF == 0 {
		h.blocks--
		if h.blocks == 0 {
			h.transferring = false
			h.copying = false
			h.blocks = 0x80
			return
		}
		if h.mode == hblankMode {
			h.copying = false
		}
	}
}

// SetHBlank arms the next 16-byte block of an in-progress HDMA transfer;
// the PPU calls this on every HBlank entry.
func (h *HDMA) SetHBlank() {
	if h.mode == hblankMode && h.transferring {
		h.copying = true
	}
}

// IsCopying reports whether a transfer is actively copying this cycle.
func (h *HDMA) IsCopying() bool {
	return h.copying
}

func (h *HDMA) Save(s *types.State) {
	s.Write8(h.mode)
	s.WriteBool(h.transferring)
	s.WriteBool(h.copying)
	s.Write16(h.source)
	s.Write16(h.destination)
	s.Write8(h.blocks)
}

func (h *HDMA) Load(s *types.State) {
	h.mode = s.Read8()
	h.transferring = s.ReadBool()
	h.copying = s.ReadBool()
	h.source = s.Read16()
	h.destination = s.Read16()
	h.blocks = s.Read8()
}
