// Package gameboy wires the bus, CPU, PPU and peripherals into a single
// runnable machine and drives it one frame at a time (spec.md §2, §8).
package gameboy

import (
	"fmt"

	"github.com/kestrelcore/goboy/internal/boot"
	"github.com/kestrelcore/goboy/internal/cartridge"
	"github.com/kestrelcore/goboy/internal/cpu"
	"github.com/kestrelcore/goboy/internal/interrupts"
	"github.com/kestrelcore/goboy/internal/joypad"
	"github.com/kestrelcore/goboy/internal/mmu"
	"github.com/kestrelcore/goboy/internal/ppu"
	"github.com/kestrelcore/goboy/internal/types"
	"github.com/kestrelcore/goboy/pkg/log"
	"github.com/kestrelcore/goboy/pkg/savestate"
)

// ClockSpeed is the Game Boy's master clock, in Hz.
const ClockSpeed = 4194304

// FrameRate is the nominal refresh rate of the DMG/CGB LCD.
const FrameRate = 59.7275

// TicksPerFrame is the number of T-cycles a single frame advances the
// clock by, derived from ClockSpeed and FrameRate rather than kept as a
// separately maintained constant.
const TicksPerFrame = ClockSpeed / FrameRate

// frameBuffer assembles the PPU's per-scanline OutputLine callbacks into
// a full 160x144 RGB framebuffer, implementing ppu.LCD.
type frameBuffer struct {
	pixels [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8
}

func (f *frameBuffer) OutputLine(line int, pixels [160][3]uint8) {
	if line < 0 || line >= ppu.ScreenHeight {
		return
	}
	f.pixels[line] = pixels
}

// GameBoy is a fully wired Game Boy: bus, CPU, PPU and joypad bound
// together and ready to step.
type GameBoy struct {
	Bus    *mmu.Bus
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	Joypad *joypad.State
	Logger log.Logger

	fb    *frameBuffer
	model types.Model
}

// Opt configures a GameBoy at construction time.
type Opt func(gb *GameBoy)

// WithLogger overrides the default warn-level logger.
func WithLogger(l log.Logger) Opt {
	return func(gb *GameBoy) { gb.Logger = l }
}

// AsModel forces DMG or CGB behaviour instead of deriving it from the
// cartridge header's CGB-compatibility byte.
func AsModel(m types.Model) Opt {
	return func(gb *GameBoy) { gb.model = m }
}

// New constructs a GameBoy from a ROM image. bootROM may be nil, in which
// case the post-boot register/IO snapshot (boot.PostBoot) is applied
// directly and the boot overlay is skipped, matching real hardware's BDIS
// already-written state.
func New(rom []byte, bootROM []byte, sensor cartridge.Sensor, opts ...Opt) (*GameBoy, error) {
	cart, err := cartridge.New(rom, sensor)
	if err != nil {
		return nil, fmt.Errorf("gameboy: %w", err)
	}

	gb := &GameBoy{
		Logger: log.New(logWarnLevel),
		model:  types.Unset,
	}
	for _, opt := range opts {
		opt(gb)
	}

	isGBC := cart.Header().GameboyColor()
	if gb.model == types.CGBABC || gb.model == types.CGB0 {
		isGBC = true
	} else if gb.model == types.DMGABC || gb.model == types.DMG0 || gb.model == types.MGB {
		isGBC = false
	}

	var bootImage *boot.ROM
	if len(bootROM) > 0 {
		bootImage, err = boot.LoadBootROM(bootROM)
		if err != nil {
			return nil, fmt.Errorf("gameboy: %w", err)
		}
	}

	bus := mmu.New(cart, bootImage, gb.Logger)
	irq := bus.IRQ

	p := ppu.New(isGBC, irq)
	p.AttachHDMA(bus)
	gb.fb = &frameBuffer{}
	p.AttachLCD(gb.fb)
	bus.AttachVideo(p)

	c := cpu.NewCPU(bus, irq, bus.Timer, p, bus.Serial)

	gb.Bus = bus
	gb.CPU = c
	gb.PPU = p
	gb.Joypad = bus.Joypad

	if bootImage == nil {
		applyPostBoot(gb, isGBC)
	}

	return gb, nil
}

// logWarnLevel mirrors logrus.WarnLevel without importing logrus here;
// pkg/log.New takes the numeric level directly.
const logWarnLevel = 3

// applyPostBoot seeds the CPU registers and IO register file with the
// documented post-boot-ROM state, for the no-boot-ROM fast path.
func applyPostBoot(gb *GameBoy, isGBC bool) {
	snap := boot.PostBoot(isGBC)
	gb.CPU.A, gb.CPU.F = snap.A, snap.F
	gb.CPU.B, gb.CPU.C = snap.B, snap.C
	gb.CPU.D, gb.CPU.E = snap.D, snap.E
	gb.CPU.H, gb.CPU.L = snap.H, snap.L
	gb.CPU.SP = snap.SP
	gb.CPU.PC = snap.PC

	for addr, value := range snap.IORegisters {
		gb.Bus.Write(addr, value)
	}
}

// PressButton marks key as held and requests a JOYPAD interrupt if the
// transition is one the currently-selected row would observe.
func (gb *GameBoy) PressButton(key joypad.Button) {
	if gb.Joypad.Press(key) {
		gb.Bus.IRQ.Request(interrupts.JoypadFlag)
	}
}

// ReleaseButton marks key as no longer held.
func (gb *GameBoy) ReleaseButton(key joypad.Button) {
	gb.Joypad.Release(key)
}

// ApplyGameGenie parses and enables a Game Genie cheat code against this
// machine's cartridge ROM reads.
func (gb *GameBoy) ApplyGameGenie(code, name string) error {
	return gb.Bus.LoadGameGenie(code, name)
}

// ApplyGameShark parses and enables a GameShark cheat code.
func (gb *GameBoy) ApplyGameShark(code, name string) error {
	return gb.Bus.LoadGameShark(code, name)
}

// Frame runs the machine until the PPU signals a completed frame, then
// returns the assembled framebuffer. Running a variable number of
// T-cycles per call (rather than a fixed TicksPerFrame) keeps the CPU and
// PPU in lockstep even across STOP-triggered CGB speed switches.
func (gb *GameBoy) Frame() [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8 {
	for !gb.PPU.ConsumeFrameDone() {
		gb.CPU.Step()
	}
	return gb.fb.pixels
}

// Title returns the cartridge's header title, for window chrome and save
// file naming.
func (gb *GameBoy) Title() string {
	return gb.Bus.Cart.Title()
}

// SaveState serializes the machine's full state (spec.md §9.4).
func (gb *GameBoy) SaveState() []byte {
	return savestate.Save(gb.CPU, gb.Bus, gb.PPU)
}

// LoadState restores a machine from a buffer produced by SaveState.
func (gb *GameBoy) LoadState(raw []byte) error {
	return savestate.Load(raw, gb.CPU, gb.Bus, gb.PPU)
}
