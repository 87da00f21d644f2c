// Package collage builds a single collage image from uploaded images.
package collage

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/kyiku/hackz-collage-back/internal/layout"
	"github.com/kyiku/hackz-collage-back/internal/render"
	"gopkg.in/yaml.v3"
)

// A4 at 300 DPI.
const (
	DefaultCanvasWidth  = 2480
	DefaultCanvasHeight = 3508
)

// MaxAttemptsLimit caps the per-item placement budget. Layout does not observe
// the request context, so the budget bounds the CPU one build can spend.
const MaxAttemptsLimit = 10000

// Preset names.
const (
	PresetClassic = "classic"
	PresetStory   = "story"
)

// Options controls one collage build.
type Options struct {
	CanvasWidth  int          `yaml:"canvas-width" json:"canvas_width"`
	CanvasHeight int          `yaml:"canvas-height" json:"canvas_height"`
	Scale        layout.Range `yaml:"scale" json:"scale"`
	Rotate       bool         `yaml:"rotate" json:"rotate"`
	MaxRotation  float64      `yaml:"max-rotation" json:"max_rotation"` // degrees
	MaxAttempts  int          `yaml:"max-attempts" json:"max_attempts"`
	Frame        bool         `yaml:"frame" json:"frame"`
	Labels       bool         `yaml:"labels" json:"labels"`
	Background   string       `yaml:"background" json:"background"` // hex fill color
	CaptionSize  float64      `yaml:"caption-size" json:"caption_size"`
}

// ClassicOptions is the plain upload collage: framed, labelled, unrotated, white.
func ClassicOptions() Options {
	return Options{
		CanvasWidth:  DefaultCanvasWidth,
		CanvasHeight: DefaultCanvasHeight,
		Scale:        layout.Range{Min: 0.8, Max: 1.2},
		MaxAttempts:  1000,
		Frame:        true,
		Labels:       true,
		Background:   "#ffffff",
		CaptionSize:  72,
	}
}

// StoryOptions is the story collage: tilted images over a generated background with a caption.
func StoryOptions() Options {
	return Options{
		CanvasWidth:  DefaultCanvasWidth,
		CanvasHeight: DefaultCanvasHeight,
		Scale:        layout.Range{Min: 0.9, Max: 1.05},
		Rotate:       true,
		MaxRotation:  15,
		MaxAttempts:  100,
		Background:   "#ffffff",
		CaptionSize:  72,
	}
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() map[string]Options {
	return map[string]Options{
		PresetClassic: ClassicOptions(),
		PresetStory:   StoryOptions(),
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	if o.CanvasWidth <= 0 || o.CanvasHeight <= 0 {
		return errors.New("canvas size must be positive")
	}
	if !isFinite(o.Scale.Min) || !isFinite(o.Scale.Max) || o.Scale.Min <= 0 || o.Scale.Max < o.Scale.Min {
		return fmt.Errorf("invalid scale range [%g, %g]", o.Scale.Min, o.Scale.Max)
	}
	if !isFinite(o.MaxRotation) || o.MaxRotation < 0 || o.MaxRotation > 180 {
		return fmt.Errorf("invalid max rotation %g", o.MaxRotation)
	}
	if o.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}
	if o.MaxAttempts > MaxAttemptsLimit {
		return fmt.Errorf("max attempts must be at most %d", MaxAttemptsLimit)
	}
	if !isFinite(o.CaptionSize) {
		return errors.New("caption size must be finite")
	}
	if o.CaptionSize <= 0 {
		return errors.New("caption size must be positive")
	}
	if _, err := render.ParseHexColor(o.Background); err != nil {
		return err
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// LayoutParams converts the options into layout sampling parameters.
func (o Options) LayoutParams() layout.Params {
	rotation := layout.Fixed(0)
	if o.Rotate {
		rotation = layout.Range{Min: -o.MaxRotation, Max: o.MaxRotation}
	}
	return layout.Params{
		Scale:       o.Scale,
		Rotation:    rotation,
		MaxAttempts: o.MaxAttempts,
	}
}

// LoadPresets reads presets from a YAML file and merges them over the built-in presets.
// Each preset in the file starts from the classic defaults, so files only list what differs.
func LoadPresets(path string) (map[string]Options, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	for name, node := range raw {
		opts, ok := presets[name]
		if !ok {
			opts = ClassicOptions()
		}
		if err := node.Decode(&opts); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		if err := opts.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		presets[name] = opts
	}

	return presets, nil
}
