// Package interrupts implements the Game Boy interrupt controller: the
// IE/IF register pair, IME, and priority-ordered vector dispatch described
// in spec.md §3 "Interrupt state" and §4.1 "Interrupt service".
package interrupts

import (
	"fmt"

	"github.com/kestrelcore/goboy/internal/types"
)

// Address is the handler address of an interrupt line.
type Address = uint16

const (
	VBlank Address = 0x0040
	LCD    Address = 0x0048
	Timer  Address = 0x0050
	Serial Address = 0x0058
	Joypad Address = 0x0060
)

// Flag is a bit index into the IE/IF registers, lowest first so that
// comparing flag numbers directly encodes priority (spec.md §3 invariant:
// the lowest-numbered bit wins).
type Flag = uint8

const (
	VBlankFlag Flag = 0
	LCDFlag    Flag = 1
	TimerFlag  Flag = 2
	SerialFlag Flag = 3
	JoypadFlag Flag = 4
)

// vectors indexes directly by Flag to recover the handler address.
var vectors = [5]Address{VBlank, LCD, Timer, Serial, Joypad}

const (
	// FlagRegister is the register for the interrupt flags. (R/W)
	FlagRegister uint16 = 0xFF0F
	// EnableRegister is the register for the interrupt enable flags. (R/W)
	EnableRegister uint16 = 0xFFFF
)

// Service represents the current state of the interrupt controller.
type Service struct {
	// Flag is the Interrupt FlagRegister. (0xFF0F)
	Flag uint8
	// Enable is the Interrupt EnableRegister. (0xFFFF)
	Enable uint8

	// IME is the Interrupt Master Enable flag.
	IME bool

	// Enabling is saved and restored with the state but is otherwise
	// unused: the CPU tracks the one-instruction delay after EI through
	// its own ModeEnableIME mode instead.
	Enabling bool
}

// NewService returns a new Service.
func NewService() *Service {
	return &Service{}
}

// Request requests an interrupt.
func (s *Service) Request(flag Flag) {
	s.Flag |= 1 << flag
}

// Clear clears the interrupt flag.
func (s *Service) Clear(flag Flag) {
	s.Flag &^= 1 << flag
}

// Pending is the set of enabled and requested interrupt lines (IE & IF).
func (s *Service) Pending() uint8 {
	return s.Enable & s.Flag & 0x1F
}

// HasPending reports whether any line is enabled and requested,
// irrespective of IME; used to wake the CPU from HALT/STOP.
func (s *Service) HasPending() bool {
	return s.Pending() != 0
}

// NextFlag returns the lowest-set Flag among pending interrupts and true,
// or (0, false) if none are pending.
func (s *Service) NextFlag() (Flag, bool) {
	p := s.Pending()
	if p == 0 {
		return 0, false
	}
	for f := VBlankFlag; f <= JoypadFlag; f++ {
		if p&(1<<f) != 0 {
			return f, true
		}
	}
	return 0, false
}

// Vector returns the handler address for flag.
func Vector(flag Flag) Address {
	return vectors[flag]
}

// Read returns the value of the register at the given address.
func (s *Service) Read(address uint16) uint8 {
	switch address {
	case FlagRegister:
		return s.Flag&0b00011111 | 0b11100000
	case EnableRegister:
		return s.Enable
	}
	panic(fmt.Sprintf("interrupts\tillegal read from address %04X", address))
}

// Write writes the given value to the register at the given address.
func (s *Service) Write(address uint16, value uint8) {
	switch address {
	case FlagRegister:
		s.Flag = value & 0x1F
	case EnableRegister:
		s.Enable = value
	default:
		panic(fmt.Sprintf("interrupts\tillegal write to address %04X", address))
	}
}

var _ types.Stater = (*Service)(nil)

func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
	st.WriteBool(s.IME)
	st.WriteBool(s.Enabling)
}

func (s *Service) Load(st *types.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
	s.IME = st.ReadBool()
	s.Enabling = st.ReadBool()
}
