// Package mmu is the Game Boy's memory bus: the single address-decode
// point every CPU read/write passes through (spec.md §4.2). It owns WRAM
// and HRAM directly, and multiplexes everything else out to the
// cartridge, PPU, APU, serial, timer, joypad and interrupt controller it
// is constructed with.
//
// The bus is deliberately the only *permissive* layer in the system: the
// device layer below it (cartridge, RAM, PPU) is strict and returns
// ioerr.Error on anything unexpected, while the bus converts those into
// logged, recoverable fallbacks so the CPU keeps running against a
// partially wired machine (spec.md §4.2 "Error policy").
package mmu

import (
	"github.com/kestrelcore/goboy/internal/apu"
	"github.com/kestrelcore/goboy/internal/boot"
	"github.com/kestrelcore/goboy/internal/cartridge"
	"github.com/kestrelcore/goboy/internal/cheats"
	"github.com/kestrelcore/goboy/internal/interrupts"
	"github.com/kestrelcore/goboy/internal/ioerr"
	"github.com/kestrelcore/goboy/internal/joypad"
	"github.com/kestrelcore/goboy/internal/ram"
	"github.com/kestrelcore/goboy/internal/serial"
	"github.com/kestrelcore/goboy/internal/timer"
	"github.com/kestrelcore/goboy/internal/types"
	"github.com/kestrelcore/goboy/pkg/bits"
	"github.com/kestrelcore/goboy/pkg/log"
)

// Video is the capability the PPU exposes to the bus: the LCD register
// file (0xFF40-0xFF4B plus CGB palette/bank registers), VRAM and OAM.
type Video interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
}

// Bus is the memory management unit.
type Bus struct {
	Cart *cartridge.Cartridge
	PPU  Video
	APU  *apu.APU
	Serial *serial.Controller
	Timer  *timer.Controller
	Joypad *joypad.State
	IRQ    *interrupts.Service

	wram *ram.Banked
	hram *ram.RAM

	bootROM      *boot.ROM
	bootDisabled bool

	isGBC bool
	key0  uint8
	key1  uint8

	hdma *HDMA

	gameGenie *cheats.GameGenie
	gameShark *cheats.GameShark

	Log log.Logger
}

// New constructs a bus wired to the given cartridge and components. If
// bootROM is nil, the caller is expected to apply boot.PostBoot to the
// CPU/bus directly instead of relying on the boot overlay.
func New(cart *cartridge.Cartridge, bootROM *boot.ROM, logger log.Logger) *Bus {
	isGBC := cart.Header().GameboyColor()
	wramBanks := 2
	if isGBC {
		wramBanks = 8
	}

	b := &Bus{
		Cart:      cart,
		APU:       apu.New(),
		wram:      ram.NewBanked(wramBanks, 0x1000),
		hram:      ram.NewRAM(0x7F),
		isGBC:     isGBC,
		bootROM:   bootROM,
		gameGenie: cheats.NewGameGenie(),
		gameShark: cheats.NewGameShark(),
		Log:       logger,
	}
	b.wram.SetBank(1)
	b.IRQ = interrupts.NewService()
	b.Joypad = joypad.New()
	b.Timer = timer.NewController(b.IRQ)
	b.Serial = serial.NewController(b.IRQ)
	if isGBC {
		b.hdma = NewHDMA(b)
	}
	return b
}

// AttachVideo wires the PPU in after construction, breaking the import
// cycle between mmu and ppu (the PPU needs OAM DMA's bus access too).
func (b *Bus) AttachVideo(v Video) {
	b.PPU = v
}

func (b *Bus) IsGBC() bool { return b.isGBC }

// TickHDMA advances an in-progress CGB VRAM DMA transfer by one byte; a
// no-op on DMG or when no transfer is active.
func (b *Bus) TickHDMA() {
	if b.hdma != nil {
		b.hdma.Tick()
	}
}

// NotifyHBlank arms the next HDMA block; the PPU calls this on entering
// HBlank.
func (b *Bus) NotifyHBlank() {
	if b.hdma != nil {
		b.hdma.SetHBlank()
	}
}

// HDMACopying reports whether a VRAM DMA transfer is actively copying
// this cycle (used by the orchestrator to know whether the CPU is
// blocked, on real hardware HDMA halts the CPU during HBlank blocks).
func (b *Bus) HDMACopying() bool {
	return b.hdma != nil && b.hdma.IsCopying()
}

// DoubleSpeed reports whether KEY1's double-speed bit is latched on.
func (b *Bus) DoubleSpeed() bool {
	return b.key1&bits.Bit7 != 0
}

// ArmSpeedSwitch is triggered by the CPU's STOP handler when KEY1 bit 0 is
// set: it flips the latched double-speed bit and clears the armed request.
func (b *Bus) ArmSpeedSwitch() {
	if b.key1&bits.Bit0 != 0 {
		b.key1 ^= bits.Bit7
		b.key1 &^= bits.Bit0
	}
}

// LoadGameGenie parses and enables a Game Genie code (spec.md §6 cartridge
// mapper behaviour doesn't cover cheat hardware, but the read-modify-write
// hook it uses is identical to a ROM-range bus patch).
func (b *Bus) LoadGameGenie(code, name string) error {
	if err := b.gameGenie.Load(code, name); err != nil {
		return err
	}
	b.gameGenie.Enable(name)
	return nil
}

// LoadGameShark parses and enables a GameShark code.
func (b *Bus) LoadGameShark(code, name string) error {
	if err := b.gameShark.Load(code, name); err != nil {
		return err
	}
	return b.gameShark.Enable(name)
}

// applyCheats patches raw if an enabled Game Genie or GameShark code
// targets address; GameShark is checked second so it wins a conflict,
// matching real hardware where the GameShark's DMA-based patch runs after
// the Game Genie's passive ROM substitution.
func (b *Bus) applyCheats(address uint16, raw uint8) uint8 {
	raw = b.gameGenie.Read(address, raw)
	raw = b.gameShark.Read(address, raw)
	return raw
}

func (b *Bus) wramEcho(address uint16) (bank int, offset uint16) {
	if address < 0xD000 {
		return 0, address & 0x0FFF
	}
	return int(b.wram.Bank()), address & 0x0FFF
}

// Read implements the CPU-facing bus read (spec.md §4.2 decode table).
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF:
		if !b.bootDisabled && b.bootROM != nil && b.inBootWindow(address) {
			return b.bootROM.Read(address)
		}
		return b.applyCheats(address, b.fromCart(b.Cart.Read(address)))
	case address <= 0x9FFF:
		return b.fromVideo(b.readVideo(address))
	case address <= 0xBFFF:
		return b.fromCart(b.Cart.Read(address))
	case address <= 0xCFFF:
		return b.wram.ReadBank(0, address-0xC000)
	case address <= 0xDFFF:
		return b.wram.Read(address - 0xD000)
	case address <= 0xFDFF: // echo of 0xC000-0xDDFF, spec.md §4.2
		b.Log.Debugf("echo RAM read at %04X", address)
		bank, off := b.wramEcho(address - 0x2000)
		return b.wram.ReadBank(uint8(bank), off)
	case address <= 0xFE9F:
		return b.fromVideo(b.readVideo(address))
	case address <= 0xFEFF:
		return 0xFF // prohibited region, spec.md §3
	case address == interrupts.FlagRegister:
		return b.IRQ.Read(address)
	case address >= 0xFF04 && address <= 0xFF07:
		return b.Timer.Read(address)
	case address == types.SB || address == types.SC:
		return b.Serial.Read(address)
	case address == 0xFF00:
		return b.Joypad.Read()
	case address >= 0xFF10 && address <= 0xFF3F:
		return b.fromAPU(b.APU.Read(address))
	case address == types.KEY1:
		if b.isGBC {
			return b.key1 | 0x7E
		}
		return 0xFF
	case address == types.KEY0:
		return b.key0
	case address >= types.HDMA1 && address <= types.HDMA5:
		if b.isGBC && b.hdma != nil {
			return b.hdma.Read(address)
		}
		return 0xFF
	case address == types.SVBK:
		if b.isGBC {
			return b.wram.Bank()
		}
		return 0xFF
	case address == types.BDIS:
		if b.bootDisabled {
			return 0xFF
		}
		return 0xFE
	case address >= 0xFF40 && address <= 0xFF6B:
		return b.fromVideo(b.readVideo(address))
	case address >= 0xFF80 && address <= 0xFFFE:
		return b.hram.Read(address - 0xFF80)
	case address == interrupts.EnableRegister:
		return b.IRQ.Read(address)
	}
	b.Log.Warnf("unmapped read at %04X", address)
	return 0xFF
}

func (b *Bus) readVideo(address uint16) (uint8, error) {
	if b.PPU == nil {
		return 0xFF, nil
	}
	return b.PPU.Read(address)
}

// Write implements the CPU-facing bus write (spec.md §4.2 decode table).
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		b.handleErr(b.Cart.Write(address, value), "cartridge")
	case address <= 0x9FFF:
		b.handleErr(b.writeVideo(address, value), "ppu")
	case address <= 0xBFFF:
		b.handleErr(b.Cart.Write(address, value), "cartridge")
	case address <= 0xCFFF:
		b.wram.WriteBank(0, address-0xC000, value)
	case address <= 0xDFFF:
		b.wram.Write(address-0xD000, value)
	case address <= 0xFDFF:
		b.Log.Debugf("echo RAM write at %04X", address)
		bank, off := b.wramEcho(address - 0x2000)
		b.wram.WriteBank(uint8(bank), off, value)
	case address <= 0xFE9F:
		b.handleErr(b.writeVideo(address, value), "ppu")
	case address <= 0xFEFF:
		// prohibited region, writes ignored
	case address == interrupts.FlagRegister:
		b.IRQ.Write(address, value)
	case address == types.DMA:
		b.startOAMDMA(value)
	case address >= 0xFF04 && address <= 0xFF07:
		b.Timer.Write(address, value)
	case address == types.SB || address == types.SC:
		b.Serial.Write(address, value)
	case address == 0xFF00:
		b.Joypad.Write(value)
	case address >= 0xFF10 && address <= 0xFF3F:
		b.handleErr(b.APU.Write(address, value), "apu")
	case address == types.KEY1:
		if b.isGBC {
			b.key1 = (b.key1 & 0x80) | (value & 0x01)
		}
	case address == types.KEY0:
		if b.isGBC {
			b.key0 = value & 0x0F
		}
	case address >= types.HDMA1 && address <= types.HDMA5:
		if b.isGBC && b.hdma != nil {
			b.hdma.Write(address, value)
		}
	case address == types.SVBK:
		if b.isGBC {
			v := value & 0x07
			if v == 0 {
				v = 1
			}
			b.wram.SetBank(v)
		}
	case address == types.BDIS:
		if value != 0 {
			b.bootDisabled = true
		}
	case address >= 0xFF40 && address <= 0xFF6B:
		b.handleErr(b.writeVideo(address, value), "ppu")
	case address >= 0xFF80 && address <= 0xFFFE:
		b.hram.Write(address-0xFF80, value)
	case address == interrupts.EnableRegister:
		b.IRQ.Write(address, value)
	default:
		b.Log.Warnf("unmapped write at %04X := %02X", address, value)
	}
}

func (b *Bus) writeVideo(address uint16, value uint8) error {
	if b.PPU == nil {
		return nil
	}
	return b.PPU.Write(address, value)
}

func (b *Bus) inBootWindow(address uint16) bool {
	if address < 0x0100 {
		return true
	}
	return b.isGBC && address >= 0x0200 && address < 0x0900
}

// startOAMDMA performs the synchronous 160-byte OAM DMA copy described in
// spec.md §4.6: the reference implementation charges zero wall-cycles and
// copies immediately on the triggering write.
func (b *Bus) startOAMDMA(hi uint8) {
	src := uint16(hi) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.Write(0xFE00+i, b.Read(src+i))
	}
}

// fromCart converts a strict cartridge error into the bus's permissive
// fallback, per spec.md §4.2's error policy.
func (b *Bus) fromCart(v uint8, err error) uint8 {
	if err == nil {
		return v
	}
	b.logComponentErr(err, "cartridge")
	return 0xFF
}

func (b *Bus) fromVideo(v uint8, err error) uint8 {
	if err == nil {
		return v
	}
	b.logComponentErr(err, "ppu")
	return 0xFF
}

func (b *Bus) fromAPU(v uint8, err error) uint8 {
	if err == nil {
		return v
	}
	b.logComponentErr(err, "apu")
	return 0xFF
}

func (b *Bus) handleErr(err error, component string) {
	if err == nil {
		return
	}
	b.logComponentErr(err, component)
}

func (b *Bus) logComponentErr(err error, component string) {
	ioErr, ok := err.(*ioerr.Error)
	if !ok {
		b.Log.Errorf("%s: %v", component, err)
		return
	}
	switch ioErr.Kind {
	case ioerr.NotImplemented:
		return // silently dropped, per spec.md §4.2
	case ioerr.UnknownAddress:
		b.Log.Warnf("%v", err)
	default:
		b.Log.Errorf("%v", err)
	}
}

var _ types.Stater = (*Bus)(nil)

func (b *Bus) Save(s *types.State) {
	b.wram.Save(s)
	b.hram.Save(s)
	b.IRQ.Save(s)
	b.Joypad.Save(s)
	b.Timer.Save(s)
	b.Serial.Save(s)
	b.APU.Save(s)
	b.Cart.Save(s)
	s.WriteBool(b.bootDisabled)
	s.Write8(b.key0)
	s.Write8(b.key1)
	if b.hdma != nil {
		b.hdma.Save(s)
	}
}

func (b *Bus) Load(s *types.State) {
	b.wram.Load(s)
	b.hram.Load(s)
	b.IRQ.Load(s)
	b.Joypad.Load(s)
	b.Timer.Load(s)
	b.Serial.Load(s)
	b.APU.Load(s)
	b.Cart.Load(s)
	b.bootDisabled = s.ReadBool()
	b.key0 = s.Read8()
	b.key1 = s.Read8()
	if b.hdma != nil {
		b.hdma.Load(s)
	}
}
