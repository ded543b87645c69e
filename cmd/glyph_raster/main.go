package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/glassglyph/internal/fontfile"
	"github.com/unixpickle/glassglyph/internal/logger"
	"github.com/unixpickle/model3d/model2d"
	"go.uber.org/zap"
)

func main() {
	fontPath := flag.String("font", "", "path to TTF/OTF font file (default: built-in glyphs)")
	text := flag.String("text", "0123456789", "characters to render")
	outPath := flag.String("out", "", "output image path (.png or .jpg)")
	size := flag.Float64("size", 1.4, "em size in model units when using a font")
	gap := flag.Float64("gap", 0.15, "space between glyphs in model units")
	segs := flag.Int("segs", glassglyph.DefaultCurveSegments, "curve segments per curve")
	scale := flag.Float64("scale", 100.0, "pixels per model unit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *outPath == "" || *text == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := "info"
	if *debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(*fontPath, *text, *outPath, *size, *gap, *segs, *scale); err != nil {
		logger.Log.Error("glyph_raster failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
	fmt.Printf("wrote %s\n", *outPath)
}

func run(fontPath, text, outPath string, size, gap float64, segs int, scale float64) error {
	log := logger.Log

	library := glassglyph.NewLibrary()
	if fontPath != "" {
		var err error
		library, err = fontfile.Load(fontPath, size)
		if err != nil {
			return err
		}
	}
	library.Warnf = logger.Warnf

	row := glassglyph.LayoutRow(library, text, glassglyph.RowOptions{
		Gap:           gap,
		Align:         glassglyph.HAlignCenter,
		CurveSegments: segs,
	})
	solid := row.Solid2D(segs)
	if solid == nil {
		return errors.New("no outlines produced")
	}
	log.Debug("laid out row", zap.Int("shapes", len(row)))

	return model2d.Rasterize(outPath, solid, scale)
}
