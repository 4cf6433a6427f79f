// Package ram provides the flat-addressed RAM blocks used for WRAM, VRAM
// and HRAM, plus a banked wrapper for components that switch between
// several equally-sized blocks (WRAM on CGB, VRAM on CGB).
package ram

import (
	"fmt"

	"github.com/kestrelcore/goboy/internal/types"
)

// RAM is a single flat-addressed block of bytes, addressed starting at 0
// (the owning component is responsible for translating a bus address into
// a bank-local offset before calling in).
type RAM struct {
	data []byte
}

// NewRAM returns a zeroed RAM block of the given size in bytes.
func NewRAM(size uint32) *RAM {
	return &RAM{data: make([]byte, size)}
}

// Read returns the byte at address.
func (r *RAM) Read(address uint16) uint8 {
	if int(address) >= len(r.data) {
		panic(fmt.Sprintf("ram: address out of bounds: %04X (len %d)", address, len(r.data)))
	}
	return r.data[address]
}

// Write stores value at address.
func (r *RAM) Write(address uint16, value uint8) {
	if int(address) >= len(r.data) {
		panic(fmt.Sprintf("ram: address out of bounds: %04X (len %d)", address, len(r.data)))
	}
	r.data[address] = value
}

// Len returns the size of the block in bytes.
func (r *RAM) Len() int {
	return len(r.data)
}

var _ types.Stater = (*RAM)(nil)

func (r *RAM) Save(s *types.State) {
	s.WriteData(r.data)
}

func (r *RAM) Load(s *types.State) {
	s.ReadData(r.data)
}

// Banked holds several same-sized RAM blocks, one of which is active at a
// time (WRAM banks 1-7 on CGB via 0xFF70, VRAM banks 0-1 via 0xFF4F).
type Banked struct {
	banks  []*RAM
	active uint8
}

// NewBanked allocates count blocks of bankSize bytes each.
func NewBanked(count int, bankSize uint32) *Banked {
	banks := make([]*RAM, count)
	for i := range banks {
		banks[i] = NewRAM(bankSize)
	}
	return &Banked{banks: banks}
}

// SetBank selects the active bank, clamped into range (0 maps to bank 0
// for WRAM's "writing 0 selects bank 1" quirk is handled by the caller).
func (b *Banked) SetBank(bank uint8) {
	if int(bank) >= len(b.banks) {
		bank = uint8(len(b.banks) - 1)
	}
	b.active = bank
}

// Bank returns the currently selected bank index.
func (b *Banked) Bank() uint8 {
	return b.active
}

// Read reads from the active bank.
func (b *Banked) Read(address uint16) uint8 {
	return b.banks[b.active].Read(address)
}

// Write writes to the active bank.
func (b *Banked) Write(address uint16, value uint8) {
	b.banks[b.active].Write(address, value)
}

// ReadBank reads from an explicit bank, bypassing the active selector
// (used by the PPU, which must read both VRAM banks for CGB attribute
// decoding regardless of which bank 0xFF4F currently selects).
func (b *Banked) ReadBank(bank uint8, address uint16) uint8 {
	return b.banks[bank].Read(address)
}

// WriteBank writes to an explicit bank.
func (b *Banked) WriteBank(bank uint8, address uint16, value uint8) {
	b.banks[bank].Write(address, value)
}

var _ types.Stater = (*Banked)(nil)

func (b *Banked) Save(s *types.State) {
	s.Write8(b.active)
	for _, bank := range b.banks {
		bank.Save(s)
	}
}

func (b *Banked) Load(s *types.State) {
	b.active = s.Read8()
	for _, bank := range b.banks {
		bank.Load(s)
	}
}
