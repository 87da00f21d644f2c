package collage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math/rand"
	"strings"
	"time"

	"github.com/kyiku/hackz-collage-back/internal/codec"
	"github.com/kyiku/hackz-collage-back/internal/layout"
	"github.com/kyiku/hackz-collage-back/internal/render"
	"golang.org/x/sync/errgroup"
)

// Request is the input of one build.
type Request struct {
	Images     [][]byte // encoded images in draw order
	Background []byte   // optional encoded background bitmap
	Caption    string
	Seed       int64 // 0 picks a seed
}

// Result is a finished collage.
type Result struct {
	PNG        []byte
	Placements []layout.Placement
	Seed       int64
}

// Builder turns requests into encoded collages. It is safe for concurrent use;
// every build gets its own surface, placement list and random source.
type Builder struct {
	fonts *render.FontManager
	style render.Style
	now   func() time.Time
}

// NewBuilder creates a Builder that draws text with fonts.
func NewBuilder(fonts *render.FontManager) *Builder {
	return &Builder{
		fonts: fonts,
		style: render.DefaultStyle(),
		now:   time.Now,
	}
}

// Build decodes, lays out, composes and encodes a collage. Any failure aborts
// the whole build and is returned as a *BuildError.
func (b *Builder) Build(ctx context.Context, opts Options, req Request) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, &BuildError{Kind: KindInvalidRequest, Index: -1, Err: err}
	}
	if len(req.Images) == 0 {
		return nil, &BuildError{Kind: KindInvalidRequest, Index: -1, Err: ErrNoImages}
	}

	images, background, err := decodeAll(ctx, req)
	if err != nil {
		return nil, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = b.now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	items := make([]layout.Item, len(images))
	for i, img := range images {
		bounds := img.Bounds()
		items[i] = layout.Item{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
	}

	canvas := layout.Size{Width: float64(opts.CanvasWidth), Height: float64(opts.CanvasHeight)}
	placements, err := layout.NewEngine(opts.LayoutParams()).Layout(rng, canvas, items)
	if err != nil {
		return nil, layoutError(err)
	}

	fill, _ := render.ParseHexColor(opts.Background)
	scene := render.Scene{
		Background: render.Background{Color: fill, Image: background},
		Items:      make([]render.SceneItem, len(images)),
		Frame:      opts.Frame,
		Labels:     opts.Labels,
		Caption:    NormalizeCaption(req.Caption),
	}
	for i, img := range images {
		scene.Items[i] = render.SceneItem{Image: img, Placement: placements[i]}
	}

	style := b.style
	style.CaptionSize = opts.CaptionSize

	surface := render.NewRasterSurface(opts.CanvasWidth, opts.CanvasHeight, b.fonts.Clone())
	if err := render.NewCompositor(style).Compose(surface, scene); err != nil {
		return nil, encodeError(err)
	}

	var buf bytes.Buffer
	if err := surface.Encode(&buf); err != nil {
		return nil, encodeError(err)
	}

	return &Result{
		PNG:        buf.Bytes(),
		Placements: placements,
		Seed:       seed,
	}, nil
}

// decodeAll decodes the images and optional background concurrently.
// Decoding is the only part of a build that may run in parallel.
func decodeAll(ctx context.Context, req Request) ([]image.Image, image.Image, error) {
	images := make([]image.Image, len(req.Images))
	var background image.Image

	eg, egCtx := errgroup.WithContext(ctx)

	for i, data := range req.Images {
		i, data := i, data
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return decodeError(i, err)
			}
			img, err := codec.Decode(data)
			if err != nil {
				return decodeError(i, err)
			}
			images[i] = img
			return nil
		})
	}

	if len(req.Background) > 0 {
		eg.Go(func() error {
			img, err := codec.Decode(req.Background)
			if err != nil {
				return decodeError(-1, fmt.Errorf("background: %w", err))
			}
			background = img
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return images, background, nil
}

// NormalizeCaption collapses a caption onto a single trimmed line.
func NormalizeCaption(caption string) string {
	return strings.Join(strings.Fields(caption), " ")
}
