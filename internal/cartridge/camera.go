package cartridge

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/kestrelcore/goboy/internal/ioerr"
	"github.com/kestrelcore/goboy/internal/types"
)

// camera implements the Pocket Camera mapper (spec.md §4.4, §6): MBC-like
// ROM banking over 0x4000-0x7FFF plus a register bank exposed through
// 0xA000-0xBFFF when register mode is selected (bit 4 of the 0x4000-0x5FFF
// selector). The low bits of that selector are stored but do not bank RAM:
// outside register mode 0xA000-0xBFFF always maps the same 8KiB. Writing
// bit 0 of register 0x00 latches the Sensor's frame, applies inversion
// (register 0x01 bit 7) and the fixed ditherMatrix below, and packs the
// result into 2bpp tiles at the front of RAM. The dither thresholds are
// not read from registers 0x06-0x35, and the edge-enhancement bits are
// stored without effect.
type camera struct {
	rom []byte
	ram []byte

	sensor Sensor

	ramg     bool
	romBank  uint8
	ramBank  uint8 // also selects register mode via bit 4
	romBanks int

	registers [54]uint8 // 0x00-0x35, only a handful are meaningful
	capturing uint8     // saved and restored only; capture completes synchronously and never sets it
}

const (
	cameraRegisterCount = 54
	cameraTileBytes     = 14 * 16 * 16 // 14x16 tile grid, 16 bytes/tile (2bpp)
)

// ditherMatrix is the canonical 4x4 ordered-dither threshold matrix that
// capture applies to every frame; no camera register changes it.
var ditherMatrix = [4][4]uint8{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

func newCamera(rom []byte, header *Header, sensor Sensor) *camera {
	romBanks := len(rom) / 0x4000
	if romBanks == 0 {
		romBanks = 1
	}
	ramSize := header.RAMSize
	if ramSize < cameraTileBytes+cameraRegisterCount {
		ramSize = cameraTileBytes + cameraRegisterCount
	}
	return &camera{
		rom:      rom,
		ram:      make([]byte, ramSize),
		sensor:   sensor,
		romBank:  1,
		romBanks: romBanks,
	}
}

func (c *camera) registerMode() bool {
	return c.ramBank&0x10 != 0
}

func (c *camera) Read(address uint16) (uint8, error) {
	switch {
	case address < 0x4000:
		return c.rom[address], nil
	case address < 0x8000:
		bank := int(c.romBank) % c.romBanks
		return c.rom[bank*0x4000+int(address-0x4000)], nil
	case address >= 0xA000 && address < 0xC000:
		if !c.ramg {
			return 0xFF, nil
		}
		if c.registerMode() {
			off := address - 0xA000
			if int(off) >= len(c.registers) {
				return 0xFF, nil
			}
			if off == 0 {
				return c.registers[0] & 0x01, nil // capture-in-progress bit
			}
			return c.registers[off], nil
		}
		off := int(address-0xA000) + cameraRegisterCount
		if off >= len(c.ram) {
			return 0xFF, nil
		}
		return c.ram[off], nil
	}
	return 0xFF, ioerr.NewUnknownAddress("cartridge(Camera)", address, true)
}

func (c *camera) Write(address uint16, value uint8) error {
	switch {
	case address < 0x2000:
		c.ramg = value&0x0F == 0x0A
	case address < 0x4000:
		bank := value & 0x3F
		if bank == 0 {
			bank = 1
		}
		c.romBank = bank
	case address < 0x6000:
		c.ramBank = value & 0x1F
	case address >= 0xA000 && address < 0xC000:
		if !c.ramg {
			return nil
		}
		if c.registerMode() {
			off := address - 0xA000
			if int(off) >= len(c.registers) {
				return nil
			}
			c.registers[off] = value
			if off == 0 && value&0x01 != 0 {
				c.capture()
			}
			return nil
		}
		off := int(address-0xA000) + cameraRegisterCount
		if off < len(c.ram) {
			c.ram[off] = value
		}
	default:
		return ioerr.NewUnknownAddress("cartridge(Camera)", address, false)
	}
	return nil
}

// capture pulls a frame from the Sensor, applies inversion and the ordered
// dither matrix, and packs the result as 2bpp tiles into RAM starting
// right after the register window.
func (c *camera) capture() {
	if c.sensor == nil {
		return
	}
	raw := c.sensor.Capture()
	frame := rescaleFrame(raw)
	invert := c.registers[1]&0x80 != 0

	const tilesWide, tilesHigh = 16, 14
	for ty := 0; ty < tilesHigh; ty++ {
		for tx := 0; tx < tilesWide; tx++ {
			tileBase := cameraRegisterCount + (ty*tilesWide+tx)*16
			for row := 0; row < 8; row++ {
				py := ty*8 + row
				var lo, hi uint8
				for col := 0; col < 8; col++ {
					px := tx*8 + col
					pixel := frame[py][px]
					if invert {
						pixel = 255 - pixel
					}
					threshold := ditherMatrix[py%4][px%4] * 16
					shade := uint8(0)
					switch {
					case pixel < threshold:
						shade = 3
					case pixel < threshold+64:
						shade = 2
					case pixel < threshold+128:
						shade = 1
					}
					bit := uint(7 - col)
					lo |= (shade & 0x01) << bit
					hi |= ((shade >> 1) & 0x01) << bit
				}
				if tileBase+row*2+1 < len(c.ram) {
					c.ram[tileBase+row*2] = lo
					c.ram[tileBase+row*2+1] = hi
				}
			}
		}
	}
	c.registers[0] &^= 0x01
}

// rescaleFrame passes a Sensor's raw capture through a Catmull-Rom
// resampler onto the 128x112 grid the camera ASIC exposes to tile-packing.
// Sensor.Capture already returns a 128x112 frame, so source and
// destination are the same size and the resample is 1:1.
func rescaleFrame(raw [112][128]uint8) [112][128]uint8 {
	src := image.NewGray(image.Rect(0, 0, 128, 112))
	for y := 0; y < 112; y++ {
		for x := 0; x < 128; x++ {
			src.SetGray(x, y, color.Gray{Y: raw[y][x]})
		}
	}
	dst := image.NewGray(image.Rect(0, 0, 128, 112))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var out [112][128]uint8
	for y := 0; y < 112; y++ {
		for x := 0; x < 128; x++ {
			out[y][x] = dst.GrayAt(x, y).Y
		}
	}
	return out
}

func (c *camera) SaveRAM() []byte  { return c.ram }
func (c *camera) LoadRAM(d []byte) { copy(c.ram, d) }

var _ types.Stater = (*camera)(nil)

func (c *camera) Save(s *types.State) {
	s.WriteData(c.ram)
	s.WriteBool(c.ramg)
	s.Write8(c.romBank)
	s.Write8(c.ramBank)
	s.WriteData(c.registers[:])
	s.Write8(c.capturing)
}

func (c *camera) Load(s *types.State) {
	s.ReadData(c.ram)
	c.ramg = s.ReadBool()
	c.romBank = s.Read8()
	c.ramBank = s.Read8()
	s.ReadData(c.registers[:])
	c.capturing = s.Read8()
}
