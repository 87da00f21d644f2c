package layout

import (
	"math/rand"
)

// DefaultMaxAttempts is used when a sampler is configured without a budget.
const DefaultMaxAttempts = 1000

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Fixed returns a range that always samples v.
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// Sample draws a value uniformly from [Min, Max].
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Sampler finds random positions that do not overlap previously accepted rectangles.
type Sampler struct {
	MaxAttempts int
}

// NewSampler creates a Sampler with the given attempt budget.
func NewSampler(maxAttempts int) *Sampler {
	return &Sampler{MaxAttempts: maxAttempts}
}

func (s *Sampler) attempts() int {
	if s.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return s.MaxAttempts
}

// Sample draws top-left positions for a width x height item until one clears every
// rectangle in accepted. The returned rect always lies within the canvas.
func (s *Sampler) Sample(rng *rand.Rand, canvas Size, width, height float64, accepted []Rect) (Rect, error) {
	// negated comparisons also reject NaN
	if !(width > 0) || !(height > 0) || width > canvas.Width || height > canvas.Height {
		return Rect{}, ErrInvalidItemSize
	}

	maxX := canvas.Width - width
	maxY := canvas.Height - height

	for attempt := 0; attempt < s.attempts(); attempt++ {
		candidate := Rect{
			X:      rng.Float64() * maxX,
			Y:      rng.Float64() * maxY,
			Width:  width,
			Height: height,
		}

		if !hasCollision(candidate, accepted) {
			return candidate, nil
		}
	}

	return Rect{}, ErrPlacementExhausted
}

// hasCollision checks if a candidate overlaps any accepted rectangle.
func hasCollision(candidate Rect, accepted []Rect) bool {
	for _, existing := range accepted {
		if candidate.Overlaps(existing) {
			return true
		}
	}
	return false
}
