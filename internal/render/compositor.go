package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/kyiku/hackz-collage-back/internal/layout"
)

// ErrMissingImage is returned when a scene item has no decoded image.
var ErrMissingImage = errors.New("missing image")

// Style holds the fixed decoration parameters of a collage.
type Style struct {
	FrameWidth float64
	FrameColor color.Color

	LabelText   string
	LabelSize   float64
	LabelColor  color.Color
	LabelOffset float64 // baseline distance below the image rect

	CaptionSize    float64
	CaptionColor   color.Color
	PlateColor     color.Color
	PlatePadding   float64
	PlateOffset    float64 // plate vertical center sits this far above the bottom edge
	BaselineOffset float64 // caption baseline sits this far above the bottom edge
}

// DefaultStyle returns the stock collage decoration.
func DefaultStyle() Style {
	return Style{
		FrameWidth:     5,
		FrameColor:     color.Black,
		LabelText:      "Caption",
		LabelSize:      20,
		LabelColor:     color.Black,
		LabelOffset:    25,
		CaptionSize:    72,
		CaptionColor:   color.Black,
		PlateColor:     color.White,
		PlatePadding:   10,
		PlateOffset:    150,
		BaselineOffset: 100,
	}
}

// Background is either a solid color or a bitmap stretched over the canvas.
// Image takes precedence when set.
type Background struct {
	Color color.Color
	Image image.Image
}

// SceneItem is a decoded image together with its accepted placement.
type SceneItem struct {
	Image     image.Image
	Placement layout.Placement
}

// Scene is everything drawn for one collage, in draw order.
type Scene struct {
	Background Background
	Items      []SceneItem
	Frame      bool
	Labels     bool
	Caption    string
}

// Compositor issues draw calls for a scene in a fixed order.
type Compositor struct {
	style Style
}

// NewCompositor creates a compositor with the given style.
func NewCompositor(style Style) *Compositor {
	return &Compositor{style: style}
}

// Compose draws background, items, then caption onto s.
func (c *Compositor) Compose(s Surface, scene Scene) error {
	c.drawBackground(s, scene.Background)

	for i, item := range scene.Items {
		if item.Image == nil {
			return fmt.Errorf("item %d: %w", i, ErrMissingImage)
		}
		if err := c.drawItem(s, item, scene.Frame, scene.Labels); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}

	if scene.Caption != "" {
		if err := c.drawCaption(s, scene.Caption); err != nil {
			return fmt.Errorf("caption: %w", err)
		}
	}

	return nil
}

func (c *Compositor) drawBackground(s Surface, bg Background) {
	if bg.Image != nil {
		s.DrawBackground(bg.Image)
		return
	}

	fill := bg.Color
	if fill == nil {
		fill = color.White
	}
	s.FillBackground(fill)
}

func (c *Compositor) drawItem(s Surface, item SceneItem, frame, label bool) error {
	r := item.Placement.Rect
	s.DrawImage(item.Image, r, item.Placement.Angle)

	// Frames follow the axis-aligned rect, not the rotated footprint.
	if frame {
		s.StrokeRect(r, c.style.FrameWidth, c.style.FrameColor)
	}

	if label {
		return s.DrawText(c.style.LabelText, r.X, r.Y+r.Height+c.style.LabelOffset,
			c.style.LabelSize, c.style.LabelColor, AlignLeft)
	}
	return nil
}

func (c *Compositor) drawCaption(s Surface, caption string) error {
	measured, err := s.MeasureText(caption, c.style.CaptionSize)
	if err != nil {
		return err
	}

	b := s.Bounds()
	plate := CaptionPlate(measured, float64(b.Dx()), float64(b.Dy()), c.style)
	s.FillRect(plate, c.style.PlateColor)

	return s.DrawText(caption, float64(b.Dx())/2, float64(b.Dy())-c.style.BaselineOffset,
		c.style.CaptionSize, c.style.CaptionColor, AlignCenter)
}

// CaptionPlate returns the background plate for a caption of the given measured width,
// centered horizontally near the bottom of a canvasWidth x canvasHeight canvas.
func CaptionPlate(measured, canvasWidth, canvasHeight float64, style Style) layout.Rect {
	return layout.Rect{
		X:      (canvasWidth-measured)/2 - style.PlatePadding,
		Y:      canvasHeight - style.PlateOffset - style.CaptionSize/2,
		Width:  measured + 2*style.PlatePadding,
		Height: style.CaptionSize + 2*style.PlatePadding,
	}
}
