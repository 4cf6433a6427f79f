// Package ioerr defines the error taxonomy raised by the strict device
// layer (cartridge, CPU, RAM banks) as described in spec §7. The bus
// adapter (internal/mmu) is the only component permitted to convert these
// into permissive fallbacks; every other caller treats them as fatal.
package ioerr

import "fmt"

// Kind identifies which row of the spec §7 table an error belongs to.
type Kind int

const (
	UnknownAddress Kind = iota
	NotImplemented
	ROMWrite
	InvalidData
	UnknownOpcode
	StackOverflow
	ProgramCounterOverflow
)

func (k Kind) String() string {
	switch k {
	case UnknownAddress:
		return "UnknownAddress"
	case NotImplemented:
		return "NotImplemented"
	case ROMWrite:
		return "ROMWrite"
	case InvalidData:
		return "InvalidData"
	case UnknownOpcode:
		return "UnknownOpcode"
	case StackOverflow:
		return "StackOverflow"
	case ProgramCounterOverflow:
		return "ProgramCounterOverflow"
	}
	return "Unknown"
}

// Error is a component-level error tagged with a Kind so the bus adapter
// and orchestrator can dispatch on it without string matching.
type Error struct {
	Kind      Kind
	Component string
	Address   uint16
	Data      uint8
	Read      bool
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnknownAddress:
		dir := "write"
		if e.Read {
			dir = "read"
		}
		return fmt.Sprintf("%s: unknown address %04X (%s)", e.Component, e.Address, dir)
	case NotImplemented:
		return fmt.Sprintf("%s: not implemented", e.Component)
	case ROMWrite:
		return fmt.Sprintf("%s: write to ROM at %04X (%02X)", e.Component, e.Address, e.Data)
	case InvalidData:
		return fmt.Sprintf("%s: invalid data %02X at %04X", e.Component, e.Data, e.Address)
	case UnknownOpcode:
		return fmt.Sprintf("%s: unknown opcode %02X at %04X", e.Component, e.Data, e.Address)
	case StackOverflow:
		return fmt.Sprintf("%s: stack overflow at SP=%04X", e.Component, e.Address)
	case ProgramCounterOverflow:
		return fmt.Sprintf("%s: program counter overflow at %04X", e.Component, e.Address)
	}
	return fmt.Sprintf("%s: error", e.Component)
}

// Fatal reports whether a Kind must abort the current Step/NextFrame call
// (spec §7: InvalidData, UnknownOpcode, StackOverflow, ProgramCounterOverflow).
// UnknownAddress and NotImplemented are always recoverable by the bus adapter.
func (k Kind) Fatal() bool {
	switch k {
	case InvalidData, UnknownOpcode, StackOverflow, ProgramCounterOverflow:
		return true
	}
	return false
}

func NewUnknownAddress(component string, addr uint16, read bool) *Error {
	return &Error{Kind: UnknownAddress, Component: component, Address: addr, Read: read}
}

func NewNotImplemented(component string) *Error {
	return &Error{Kind: NotImplemented, Component: component}
}

func NewROMWrite(component string, addr uint16, data uint8) *Error {
	return &Error{Kind: ROMWrite, Component: component, Address: addr, Data: data}
}

func NewInvalidData(component string, addr uint16, data uint8) *Error {
	return &Error{Kind: InvalidData, Component: component, Address: addr, Data: data}
}

func NewUnknownOpcode(component string, pc uint16, opcode uint8) *Error {
	return &Error{Kind: UnknownOpcode, Component: component, Address: pc, Data: opcode}
}

func NewStackOverflow(component string, sp uint16) *Error {
	return &Error{Kind: StackOverflow, Component: component, Address: sp}
}

func NewProgramCounterOverflow(component string, pc uint16) *Error {
	return &Error{Kind: ProgramCounterOverflow, Component: component, Address: pc}
}
