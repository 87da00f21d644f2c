// Command collage builds a collage from image files on disk.
//
// Usage:
//
//	collage -o out.png [-preset classic] [-background bg.jpg] [-caption text] img1.png img2.jpg ...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kyiku/hackz-collage-back/internal/collage"
	"github.com/kyiku/hackz-collage-back/internal/render"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("collage", flag.ExitOnError)

	var (
		output      string
		presetName  string
		presetsPath string
		background  string
		caption     string
		fontPath    string
		seed        int64
		scaleMin    float64
		scaleMax    float64
		attempts    int
	)

	fs.StringVar(&output, "o", "collage.png", "Output PNG path")
	fs.StringVar(&presetName, "preset", collage.PresetClassic, "Preset name")
	fs.StringVar(&presetsPath, "presets", os.Getenv("COLLAGE_PRESETS"), "YAML presets file (optional)")
	fs.StringVar(&background, "background", "", "Background image path (optional)")
	fs.StringVar(&caption, "caption", "", "Caption drawn at the bottom (optional)")
	fs.StringVar(&fontPath, "font", "", "TTF/OTF font path (default: Go Regular)")
	fs.Int64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	fs.Float64Var(&scaleMin, "scale-min", 0, "Override minimum scale")
	fs.Float64Var(&scaleMax, "scale-max", 0, "Override maximum scale")
	fs.IntVar(&attempts, "attempts", 0, "Override placement attempts per image")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: collage [flags] image...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no images given")
	}

	presets, err := collage.LoadPresets(presetsPath)
	if err != nil {
		return err
	}
	opts, ok := presets[presetName]
	if !ok {
		return fmt.Errorf("unknown preset %q", presetName)
	}
	if scaleMin > 0 {
		opts.Scale.Min = scaleMin
	}
	if scaleMax > 0 {
		opts.Scale.Max = scaleMax
	}
	if attempts > 0 {
		opts.MaxAttempts = attempts
	}

	req := collage.Request{Caption: caption, Seed: seed}
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		req.Images = append(req.Images, data)
	}
	if background != "" {
		if req.Background, err = os.ReadFile(background); err != nil {
			return fmt.Errorf("read %s: %w", background, err)
		}
	}

	fonts, err := render.NewFontManager(fontPath)
	if err != nil {
		return err
	}

	result, err := collage.NewBuilder(fonts).Build(context.Background(), opts, req)
	if err != nil {
		var be *collage.BuildError
		if errors.As(err, &be) && be.Index >= 0 && be.Index < fs.NArg() {
			return fmt.Errorf("%s: %w", fs.Arg(be.Index), err)
		}
		return err
	}

	if err := os.WriteFile(output, result.PNG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Printf("Wrote %s (%d images, seed %d)\n", output, len(result.Placements), result.Seed)
	return nil
}
