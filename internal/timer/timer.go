// Package timer implements the DIV/TIMA/TMA/TAC timer described in
// spec.md §4.5. DIV is the top 8 bits of a free-running 16-bit internal
// counter; TIMA increments on a falling edge of one bit of that counter,
// selected by TAC, which is how real hardware's DIV-reset and TAC-change
// glitches arise (both are reproduced here).
package timer

import (
	"github.com/kestrelcore/goboy/internal/interrupts"
	"github.com/kestrelcore/goboy/internal/types"
)

// selectBit maps TAC's rate select (bits 0-1) to the bit of the internal
// 16-bit divider whose falling edge clocks TIMA: 4096Hz, 262144Hz,
// 65536Hz, 16384Hz for select values 0, 1, 2, 3 respectively.
var selectBit = [4]uint8{9, 3, 5, 7}

// Controller is a timer controller, advanced one master-clock T-cycle at
// a time via Tick.
type Controller struct {
	div uint16 // internal 16-bit divider; DIV register is div>>8

	tima uint8
	tma  uint8
	tac  uint8 // bits 0-1 rate select, bit 2 enable

	irq *interrupts.Service
}

// NewController returns a new timer controller.
func NewController(irq *interrupts.Service) *Controller {
	return &Controller{irq: irq}
}

func (c *Controller) enabled() bool {
	return c.tac&0x04 != 0
}

func (c *Controller) selectedBit() uint8 {
	return selectBit[c.tac&0x03]
}

func (c *Controller) edgeInput() bool {
	return c.enabled() && (c.div>>c.selectedBit())&1 != 0
}

// Tick advances the timer by one master-clock T-cycle.
func (c *Controller) Tick() {
	before := c.edgeInput()
	c.div++
	after := c.edgeInput()
	if before && !after {
		c.incrementTIMA()
	}
}

func (c *Controller) incrementTIMA() {
	c.tima++
	if c.tima == 0 {
		c.tima = c.tma
		c.irq.Request(interrupts.TimerFlag)
	}
}

// Div returns the visible DIV register (0xFF04).
func (c *Controller) Div() uint8 {
	return uint8(c.div >> 8)
}

// DivCounter returns the full 16-bit internal divider, the clock source
// the serial controller's internal-clock shift rate is also derived from.
func (c *Controller) DivCounter() uint16 {
	return c.div
}

// ResetDiv resets the internal divider to 0, as any write to 0xFF04 does.
// If the previously selected bit was set, this is itself a falling edge
// and ticks TIMA once, matching real hardware.
func (c *Controller) ResetDiv() {
	before := c.edgeInput()
	c.div = 0
	if before {
		c.incrementTIMA()
	}
}

func (c *Controller) TIMA() uint8 { return c.tima }
func (c *Controller) TMA() uint8  { return c.tma }
func (c *Controller) TAC() uint8  { return c.tac | 0xF8 }

func (c *Controller) SetTIMA(v uint8) { c.tima = v }
func (c *Controller) SetTMA(v uint8)  { c.tma = v }

// SetTAC writes TAC. A falling edge produced purely by the rate-select
// change (the old bit was high, the new bit is low, timer stays enabled)
// also clocks TIMA once, matching the well-known TAC-change glitch.
func (c *Controller) SetTAC(v uint8) {
	before := c.edgeInput()
	c.tac = v & 0x07
	after := c.edgeInput()
	if before && !after {
		c.incrementTIMA()
	}
}

func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case 0xFF04:
		return c.Div()
	case 0xFF05:
		return c.TIMA()
	case 0xFF06:
		return c.TMA()
	case 0xFF07:
		return c.TAC()
	}
	return 0xFF
}

func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case 0xFF04:
		c.ResetDiv()
	case 0xFF05:
		c.SetTIMA(value)
	case 0xFF06:
		c.SetTMA(value)
	case 0xFF07:
		c.SetTAC(value)
	}
}

var _ types.Stater = (*Controller)(nil)

func (c *Controller) Save(s *types.State) {
	s.Write16(c.div)
	s.Write8(c.tima)
	s.Write8(c.tma)
	s.Write8(c.tac)
}

func (c *Controller) Load(s *types.State) {
	c.div = s.Read16()
	c.tima = s.Read8()
	c.tma = s.Read8()
	c.tac = s.Read8()
}
