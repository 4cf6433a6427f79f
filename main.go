// Command goboy runs the emulator core headlessly: it loads a ROM, steps
// the machine frame by frame, and when -snapshot is given writes the last
// frame to a PNG file once the -frames limit is reached, so the core can
// be exercised without a GUI front end.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/kestrelcore/goboy/internal/gameboy"
	"github.com/kestrelcore/goboy/internal/ppu"
	"github.com/kestrelcore/goboy/internal/types"
	"github.com/kestrelcore/goboy/pkg/log"
	"github.com/sirupsen/logrus"
)

func parseModel(s string) types.Model {
	switch s {
	case "dmg":
		return types.DMGABC
	case "cgb":
		return types.CGBABC
	default:
		return types.Unset
	}
}

func main() {
	go func() {
		_ = http.ListenAndServe("localhost:6060", nil)
	}()

	logger := log.New(logrus.WarnLevel)

	romFile := flag.String("rom", "", "the ROM file to load")
	bootFile := flag.String("boot", "", "an optional boot ROM dump")
	model := flag.String("model", "auto", "model to emulate: auto, dmg or cgb")
	frames := flag.Int("frames", 0, "number of frames to run before exiting (0 = run forever)")
	snapshot := flag.String("snapshot", "", "write the final frame to this PNG path")
	genie := flag.String("genie", "", "a Game Genie code to apply")
	shark := flag.String("shark", "", "a GameShark code to apply")
	flag.Parse()

	if *romFile == "" {
		logger.Errorf("no -rom supplied")
		os.Exit(1)
	}

	rom, err := os.ReadFile(*romFile)
	if err != nil {
		logger.Errorf("unable to read ROM %s: %s", *romFile, err)
		os.Exit(1)
	}

	var bootROM []byte
	if *bootFile != "" {
		bootROM, err = os.ReadFile(*bootFile)
		if err != nil {
			logger.Errorf("unable to read boot ROM %s: %s", *bootFile, err)
			os.Exit(1)
		}
	}

	var opts []gameboy.Opt
	opts = append(opts, gameboy.WithLogger(logger))
	if m := parseModel(*model); m != types.Unset {
		opts = append(opts, gameboy.AsModel(m))
	}

	gb, err := gameboy.New(rom, bootROM, nil, opts...)
	if err != nil {
		logger.Errorf("unable to start %s: %s", *romFile, err)
		os.Exit(1)
	}

	if *genie != "" {
		if err := gb.ApplyGameGenie(*genie, "cli"); err != nil {
			logger.Errorf("invalid Game Genie code %s: %s", *genie, err)
		}
	}
	if *shark != "" {
		if err := gb.ApplyGameShark(*shark, "cli"); err != nil {
			logger.Errorf("invalid GameShark code %s: %s", *shark, err)
		}
	}

	logger.Infof("running %s", gb.Title())

	start := time.Now()
	var frame [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8
	for n := 0; *frames == 0 || n < *frames; n++ {
		frame = gb.Frame()
	}
	logger.Infof("ran in %s", time.Since(start))

	if *snapshot != "" {
		if err := writePNG(*snapshot, frame); err != nil {
			logger.Errorf("unable to write snapshot: %s", err)
		}
	}
}

func writePNG(path string, frame [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8) error {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			px := frame[y][x]
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = px[0], px[1], px[2], 0xFF
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()
	return png.Encode(f, img)
}
