package layout

import (
	"math"
	"math/rand"
)

// Item is one input rectangle at its natural size.
// A zero Scale uses the engine's default scale range.
type Item struct {
	Width  float64
	Height float64
	Scale  Range
}

// Params holds the per-build sampling parameters.
type Params struct {
	Scale       Range // multiplier applied to the natural size
	Rotation    Range // degrees; Fixed(0) disables rotation
	MaxAttempts int
}

// Placement is an accepted, non-overlapping position for one item.
// Rect is the unrotated scaled box used for overlap tests; Angle is applied at draw time only.
type Placement struct {
	Index int
	Rect  Rect
	Scale float64
	Angle float64 // radians
}

// Engine lays items out greedily in input order.
type Engine struct {
	params  Params
	sampler *Sampler
}

// NewEngine creates a layout engine.
func NewEngine(params Params) *Engine {
	if params.Scale == (Range{}) {
		params.Scale = Fixed(1)
	}
	return &Engine{
		params:  params,
		sampler: NewSampler(params.MaxAttempts),
	}
}

// Layout places every item or fails on the first one that cannot be placed.
// The returned placements are index-aligned with items.
func (e *Engine) Layout(rng *rand.Rand, canvas Size, items []Item) ([]Placement, error) {
	placements := make([]Placement, 0, len(items))
	accepted := make([]Rect, 0, len(items))

	for i, item := range items {
		scaleRange := item.Scale
		if scaleRange == (Range{}) {
			scaleRange = e.params.Scale
		}
		scale := scaleRange.Sample(rng)
		width := item.Width * scale
		height := item.Height * scale

		rect, err := e.sampler.Sample(rng, canvas, width, height, accepted)
		if err != nil {
			return nil, &PlacementError{
				Index:    i,
				Width:    width,
				Height:   height,
				Attempts: e.sampler.attempts(),
				Err:      err,
			}
		}

		accepted = append(accepted, rect)
		placements = append(placements, Placement{
			Index: i,
			Rect:  rect,
			Scale: scale,
			Angle: e.params.Rotation.Sample(rng) * math.Pi / 180,
		})
	}

	return placements, nil
}

// Rects returns the accepted rectangles of placements in order.
func Rects(placements []Placement) []Rect {
	rects := make([]Rect, len(placements))
	for i, p := range placements {
		rects[i] = p.Rect
	}
	return rects
}
