package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/unixpickle/glassglyph"
	"github.com/unixpickle/glassglyph/internal/config"
	"github.com/unixpickle/glassglyph/internal/fontfile"
	"github.com/unixpickle/glassglyph/internal/logger"
	"github.com/unixpickle/glassglyph/studio"
	"go.uber.org/zap"
)

// FontScale is the size of a font's em square in model units.
const FontScale = 1.4

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(1)
	}
}

// run executes the command. Errors are reported before it returns, on
// stderr or through the logger once it is set up.
func run(args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("glassglyph", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	char := fs.String("char", "0", "character to export")
	batch := fs.Bool("batch", false, "export every batch character into one archive")
	outDir := fs.String("out", ".", "output directory")
	preview := fs.Int("preview", studio.DefaultPreviewSize, "preview renderer size in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := flags.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err == nil {
		err = logger.Setup(cfg.Logging.Level, cfg.Logging.File)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer logger.Sync()
	log := logger.Log
	defer func() {
		if err != nil {
			log.Error("glassglyph failed", zap.Error(err))
		}
	}()

	library := glassglyph.NewLibrary()
	if cfg.Render.FontPath != "" {
		library, err = fontfile.Load(cfg.Render.FontPath, FontScale)
		if err != nil {
			return err
		}
	}
	library.Warnf = logger.Warnf

	c := []rune(*char)
	if len(c) != 1 {
		return fmt.Errorf("expected a single character, got %q", *char)
	}

	s, err := studio.New(studio.Options{
		PreviewSize:   *preview,
		Supersample:   cfg.Render.Supersample,
		Library:       library,
		Character:     c[0],
		Material:      cfg.Material,
		Export:        cfg.Export,
		Remap:         &cfg.USDZ,
		SettleTimeout: time.Duration(cfg.Render.SettleTimeoutMS) * time.Millisecond,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("create studio: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var name string
	var data []byte
	if *batch {
		chars := cfg.BatchCharacters()
		name, data, err = s.ExportBatch(ctx, chars, func(current, total int) {
			log.Info("exporting", zap.Int("current", current), zap.Int("total", total))
		})
	} else {
		name, data, err = s.ExportCurrent(ctx)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}
	outPath := filepath.Join(*outDir, name)
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", outPath)
	return nil
}
