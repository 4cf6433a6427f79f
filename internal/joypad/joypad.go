// Package joypad emulates the Game Boy's row-selected button matrix and
// JOYPAD interrupt trigger, described in spec.md §6 "Joypad buttons".
package joypad

import (
	"github.com/kestrelcore/goboy/internal/types"
	"github.com/kestrelcore/goboy/pkg/bits"
)

// Button represents a physical button on the Game Boy. The low nibble is
// the button row (A/B/Select/Start), the high nibble the direction row
// (Right/Left/Up/Down); Read selects one nibble at a time via Register.
type Button = uint8

const (
	ButtonA      Button = 0x01
	ButtonB      Button = 0x02
	ButtonSelect Button = 0x04
	ButtonStart  Button = 0x08
	ButtonRight  Button = 0x10
	ButtonLeft   Button = 0x20
	ButtonUp     Button = 0x40
	ButtonDown   Button = 0x80
)

// State represents the state of the joypad.
type State struct {
	// Register is the P1/JOYP register (0xFF00): bits 4-5 select which
	// nibble of State is visible on bits 0-3.
	Register byte
	// State tracks which buttons are currently held, one bit per Button.
	State Button
}

// New returns a new joypad with no buttons held and both row-select bits
// cleared high (no row selected), matching the post-boot snapshot.
func New() *State {
	return &State{
		Register: 0x3F,
	}
}

// Read returns P1 with the selected row's buttons reflected, active-low,
// on bits 0-3 (spec.md §6).
func (s *State) Read() uint8 {
	if s.Register&0x10 == 0 {
		return s.Register & ^(s.State >> 4)
	}
	if s.Register&0x20 == 0 {
		return s.Register & ^(s.State & 0x0F)
	}
	return s.Register | 0x0F
}

// Write updates the row-select bits (4-5); the button bits are read-only.
func (s *State) Write(value byte) {
	s.Register = (s.Register & 0xCF) | (value & 0x30)
}

// Press marks key as held and reports whether a JOYPAD interrupt should
// fire: only on the 0→1 transition of a button whose row is selected
// (spec.md §6, SPEC_FULL.md supplemented feature).
func (s *State) Press(key Button) bool {
	alreadyHeld := bits.Test(s.State, key)
	s.State |= key

	var rowSelected bool
	if key <= ButtonStart {
		rowSelected = !bits.Test(s.Register, 0x20)
	} else {
		rowSelected = !bits.Test(s.Register, 0x10)
	}

	return !alreadyHeld && rowSelected
}

// Release marks key as no longer held.
func (s *State) Release(key Button) {
	s.State &^= key
}

// Inputs batches a frame's worth of host-reported button transitions.
type Inputs struct {
	Pressed, Released []Button
}

// ProcessInputs applies a batch of transitions and reports whether any
// press should raise the JOYPAD interrupt.
func (s *State) ProcessInputs(inputs Inputs) bool {
	interrupt := false
	for _, key := range inputs.Pressed {
		if s.Press(key) {
			interrupt = true
		}
	}
	for _, key := range inputs.Released {
		s.Release(key)
	}
	return interrupt
}

var _ types.Stater = (*State)(nil)

func (s *State) Save(st *types.State) {
	st.Write8(s.Register)
	st.Write8(s.State)
}

func (s *State) Load(st *types.State) {
	s.Register = st.Read8()
	s.State = st.Read8()
}
