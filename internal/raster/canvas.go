// Package raster implements the engine's drawing surface on a plain
// *image.RGBA: line and polygon primitives plus text through the
// freetype / x/image font stack.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas draws onto an offscreen RGBA image. It is not safe for
// concurrent use.
type Canvas struct {
	img  *image.RGBA
	face font.Face

	// freetype path, used when a TTF has been loaded.
	tt       *truetype.Font
	ft       *freetype.Context
	fontSize float64
}

// New returns a canvas of the given size. Text falls back to the builtin
// bitmap face until SetFont loads a TTF.
func New(width, height int) *Canvas {
	return &Canvas{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: basicfont.Face7x13,
	}
}

// Size returns the surface size in pixels.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Clear fills the whole surface with a color.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// DrawBackground scales img over the whole surface.
func (c *Canvas) DrawBackground(img image.Image) {
	xdraw.NearestNeighbor.Scale(c.img, c.img.Bounds(), img, img.Bounds(), xdraw.Src, nil)
}

// SetFont loads TTF bytes for text drawing at the given point size.
func (c *Canvas) SetFont(ttf []byte, size float64) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = 13
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(96)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingFull)
	c.tt = f
	c.ft = ctx
	c.fontSize = size
	c.face = truetype.NewFace(f, &truetype.Options{Size: size, DPI: 96, Hinting: font.HintingFull})
	return nil
}

// DrawText draws a string with its baseline origin at (x, y).
func (c *Canvas) DrawText(x, y float64, text string, col color.Color) {
	if c.ft != nil {
		c.ft.SetClip(c.img.Bounds())
		c.ft.SetDst(c.img)
		c.ft.SetSrc(image.NewUniform(col))
		if _, err := c.ft.DrawString(text, freetype.Pt(int(math.Round(x)), int(math.Round(y)))); err == nil {
			return
		}
		// Fall through to the face path on freetype failure.
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
	}
	d.DrawString(text)
}

// DrawLine draws a segment. Width 1 strokes pixel by pixel; wider lines
// are filled as a quad perpendicular to the segment.
func (c *Canvas) DrawLine(x0, y0, x1, y1 float64, col color.Color, width int) {
	if width <= 1 {
		c.strokeLine(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)), col)
		return
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		c.fillPolygon(squareXs(x0, float64(width)/2), squareYs(y0, float64(width)/2), col)
		return
	}
	nx := -dy / length * float64(width) / 2
	ny := dx / length * float64(width) / 2
	xs := []float64{x0 + nx, x1 + nx, x1 - nx, x0 - nx}
	ys := []float64{y0 + ny, y1 + ny, y1 - ny, y0 - ny}
	c.fillPolygon(xs, ys, col)
}

func squareXs(x, r float64) []float64 { return []float64{x - r, x + r, x + r, x - r} }
func squareYs(y, r float64) []float64 { return []float64{y - r, y - r, y + r, y + r} }

// DrawPolygon fills the polygon with fill, then strokes the edges with
// outline when outlineWidth > 0. A nil fill skips the interior.
func (c *Canvas) DrawPolygon(xs, ys []float64, fill, outline color.Color, outlineWidth int) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return
	}
	if fill != nil && len(xs) >= 3 {
		c.fillPolygon(xs, ys, fill)
	}
	if outline == nil || outlineWidth <= 0 {
		return
	}
	n := len(xs)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		c.DrawLine(xs[i], ys[i], xs[j], ys[j], outline, outlineWidth)
	}
}

// strokeLine is an integer Bresenham stroke.
func (c *Canvas) strokeLine(x0, y0, x1, y1 int, col color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.setPixel(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillPolygon fills by even-odd scanline coverage, sampling at pixel
// centers.
func (c *Canvas) fillPolygon(xs, ys []float64, col color.Color) {
	n := len(xs)
	if n < 3 {
		return
	}
	minY, maxY := ys[0], ys[0]
	for _, y := range ys[1:] {
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	b := c.img.Bounds()
	y0 := clamp(int(math.Floor(minY)), b.Min.Y, b.Max.Y-1)
	y1 := clamp(int(math.Ceil(maxY)), b.Min.Y, b.Max.Y-1)

	var hits []float64
	for y := y0; y <= y1; y++ {
		cy := float64(y) + 0.5
		hits = hits[:0]
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ay, by := ys[i], ys[j]
			if (ay <= cy) == (by <= cy) {
				continue
			}
			t := (cy - ay) / (by - ay)
			hits = append(hits, xs[i]+t*(xs[j]-xs[i]))
		}
		sort.Float64s(hits)
		for k := 0; k+1 < len(hits); k += 2 {
			xa := int(math.Ceil(hits[k] - 0.5))
			xb := int(math.Floor(hits[k+1] - 0.5))
			for x := xa; x <= xb; x++ {
				c.setPixel(x, y, col)
			}
		}
	}
}

func (c *Canvas) setPixel(x, y int, col color.Color) {
	if !(image.Point{X: x, Y: y}).In(c.img.Bounds()) {
		return
	}
	c.img.Set(x, y, col)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
