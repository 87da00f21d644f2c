// Package render draws laid-out collages onto a raster surface.
// It uses a layered approach: background -> images (with frames and labels) -> caption.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/kyiku/hackz-collage-back/internal/codec"
	"github.com/kyiku/hackz-collage-back/internal/layout"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Align is the horizontal anchor of drawn text.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Surface is the drawing capability set the compositor needs.
type Surface interface {
	Bounds() image.Rectangle
	FillBackground(c color.Color)
	DrawBackground(img image.Image)
	DrawImage(img image.Image, r layout.Rect, angle float64)
	StrokeRect(r layout.Rect, width float64, c color.Color)
	FillRect(r layout.Rect, c color.Color)
	MeasureText(text string, size float64) (float64, error)
	DrawText(text string, x, y, size float64, c color.Color, align Align) error
	Encode(w io.Writer) error
}

// RasterSurface is a Surface backed by an in-memory RGBA image.
type RasterSurface struct {
	img   *image.RGBA
	fonts *FontManager
}

// NewRasterSurface creates a width x height surface drawing text with fonts.
func NewRasterSurface(width, height int, fonts *FontManager) *RasterSurface {
	return &RasterSurface{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		fonts: fonts,
	}
}

// Bounds returns the canvas bounds.
func (s *RasterSurface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Image returns the underlying canvas.
func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}

// FillBackground fills the whole canvas with c.
func (s *RasterSurface) FillBackground(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
}

// DrawBackground stretches img to exactly cover the canvas.
func (s *RasterSurface) DrawBackground(img image.Image) {
	b := s.img.Bounds()
	stretched := imaging.Resize(img, b.Dx(), b.Dy(), imaging.Lanczos)
	draw.Draw(s.img, b, stretched, image.Point{}, draw.Src)
}

// DrawImage scales img into r. A non-zero angle (radians, clockwise on screen)
// rotates the scaled image about the center of r.
func (s *RasterSurface) DrawImage(img image.Image, r layout.Rect, angle float64) {
	sr := img.Bounds()
	if sr.Empty() || r.Width <= 0 || r.Height <= 0 {
		return
	}

	if angle == 0 {
		xdraw.CatmullRom.Scale(s.img, r.Bounds(), img, sr, xdraw.Over, nil)
		return
	}

	xdraw.BiLinear.Transform(s.img, rotateInto(sr, r, angle), img, sr, xdraw.Over, nil)
}

// rotateInto maps source pixel space onto r, rotated by angle about r's center.
func rotateInto(sr image.Rectangle, r layout.Rect, angle float64) f64.Aff3 {
	sx := r.Width / float64(sr.Dx())
	sy := r.Height / float64(sr.Dy())
	cos, sin := math.Cos(angle), math.Sin(angle)
	cx, cy := r.Center()

	// source center
	scx := float64(sr.Min.X) + float64(sr.Dx())/2
	scy := float64(sr.Min.Y) + float64(sr.Dy())/2

	a, b := cos*sx, -sin*sy
	d, e := sin*sx, cos*sy

	return f64.Aff3{
		a, b, cx - a*scx - b*scy,
		d, e, cy - d*scx - e*scy,
	}
}

// StrokeRect strokes the outline of r with a line of the given width centered on the edge.
func (s *RasterSurface) StrokeRect(r layout.Rect, width float64, c color.Color) {
	if width <= 0 {
		return
	}
	half := width / 2
	outer := layout.Rect{X: r.X - half, Y: r.Y - half, Width: r.Width + width, Height: r.Height + width}.Bounds()
	inner := layout.Rect{X: r.X + half, Y: r.Y + half, Width: r.Width - width, Height: r.Height - width}.Bounds()

	src := &image.Uniform{c}
	if inner.Empty() {
		draw.Draw(s.img, outer, src, image.Point{}, draw.Over)
		return
	}

	bands := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y), // top
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y), // bottom
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y), // left
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y), // right
	}
	for _, band := range bands {
		draw.Draw(s.img, band, src, image.Point{}, draw.Over)
	}
}

// FillRect fills r with c.
func (s *RasterSurface) FillRect(r layout.Rect, c color.Color) {
	draw.Draw(s.img, r.Bounds(), &image.Uniform{c}, image.Point{}, draw.Over)
}

// MeasureText returns the advance width of text at the given size.
func (s *RasterSurface) MeasureText(text string, size float64) (float64, error) {
	face, err := s.fonts.Face(size)
	if err != nil {
		return 0, err
	}
	return fixedToFloat(font.MeasureString(face, norm.NFC.String(text))), nil
}

// DrawText draws a single line of text with its baseline at y.
func (s *RasterSurface) DrawText(text string, x, y, size float64, c color.Color, align Align) error {
	face, err := s.fonts.Face(size)
	if err != nil {
		return err
	}

	text = norm.NFC.String(text)
	if align == AlignCenter {
		x -= fixedToFloat(font.MeasureString(face, text)) / 2
	}

	drawer := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)},
	}
	drawer.DrawString(text)
	return nil
}

// Encode writes the canvas as PNG.
func (s *RasterSurface) Encode(w io.Writer) error {
	data, err := codec.EncodePNG(s.img)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", codec.ErrEncode, err)
	}
	return nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
