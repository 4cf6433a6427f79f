// Package serial models the SB/SC register pair (0xFF01-0xFF02). Peer
// link-cable connectivity is a spec.md Non-goal, so a transfer always
// behaves as if no peer is attached: the shift register receives 1 bits
// and a Serial interrupt still fires when the internal clock completes a
// transfer, matching real hardware with an empty port.
package serial

import (
	"github.com/kestrelcore/goboy/internal/interrupts"
	"github.com/kestrelcore/goboy/internal/types"
	"github.com/kestrelcore/goboy/pkg/bits"
)

// Device is an external collaborator a Controller can shift bits with.
// The core never attaches one (peer connectivity is out of scope); the
// interface is kept so a host integration can supply one.
type Device interface {
	Receive(bit bool)
	Send() bool
}

// Controller implements the serial transfer shift register.
type Controller struct {
	data    uint8
	control uint8

	count    uint8
	device   Device
	prevEdge bool

	irq *interrupts.Service
}

// NewController returns a controller with no peer device attached.
func NewController(irq *interrupts.Service) *Controller {
	return &Controller{irq: irq, control: 0x7E}
}

// Attach wires an external Device (e.g. a host link-cable bridge).
func (c *Controller) Attach(d Device) {
	c.device = d
}

func (c *Controller) internalClock() bool  { return c.control&bits.Bit0 != 0 }
func (c *Controller) transferActive() bool { return c.control&bits.Bit7 != 0 }

// Tick advances the shift register off DIV's bit 8 falling edge, the same
// clock source timer.Controller uses for its own rate selection.
func (c *Controller) Tick(div uint16) {
	edge := div&(1<<8) != 0 && c.internalClock() && c.transferActive()
	if c.prevEdge && !edge {
		bit := true
		if c.device != nil {
			bit = c.device.Send()
		}
		c.data = c.data<<1 | bits.Val(bit)
		if c.device != nil {
			c.device.Receive(c.data&bits.Bit7 != 0)
		}
		c.count++
		if c.count >= 8 {
			c.count = 0
			c.control &^= bits.Bit7
			c.irq.Request(interrupts.SerialFlag)
		}
	}
	c.prevEdge = edge
}

func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case types.SB:
		return c.data
	case types.SC:
		return c.control | 0x7E
	}
	return 0xFF
}

func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case types.SB:
		c.data = value
	case types.SC:
		c.control = value | 0x7E
		if c.transferActive() {
			c.count = 0
		}
	}
}

var _ types.Stater = (*Controller)(nil)

func (c *Controller) Save(s *types.State) {
	s.Write8(c.data)
	s.Write8(c.control)
	s.Write8(c.count)
	s.WriteBool(c.prevEdge)
}

func (c *Controller) Load(s *types.State) {
	c.data = s.Read8()
	c.control = s.Read8()
	c.count = s.Read8()
	c.prevEdge = s.ReadBool()
}
