// Package renderer draws snapshots without a GPU: a PNG rasterizer and a
// terminal frontend. Both share the window palette.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/pthm-cable/forage/game"
)

// Palette shared by every frontend.
var (
	BackgroundColor = color.RGBA{R: 20, G: 20, B: 24, A: 255}
	FoodColor       = color.RGBA{R: 0, G: 180, B: 0, A: 255}
	AgentColor      = color.RGBA{R: 60, G: 140, B: 255, A: 255}
)

// AgentRadius returns the creature circle radius in pixels for a cell size.
func AgentRadius(cellSize int) int {
	return max(2, cellSize/2-1)
}

// RenderImage rasterizes s at s.CellSize pixels per cell.
func RenderImage(s *game.Snapshot) *image.RGBA {
	cs := max(1, s.CellSize)
	img := image.NewRGBA(image.Rect(0, 0, s.Width*cs, s.Height*cs))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: BackgroundColor}, image.Point{}, draw.Src)

	food := &image.Uniform{C: FoodColor}
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if s.HasFood(x, y) {
				r := image.Rect(x*cs, y*cs, (x+1)*cs, (y+1)*cs)
				draw.Draw(img, r, food, image.Point{}, draw.Src)
			}
		}
	}

	radius := AgentRadius(cs)
	for _, p := range s.Agents {
		fillCircle(img, p.X*cs+cs/2, p.Y*cs+cs/2, radius, AgentColor)
	}

	return img
}

// fillCircle fills every pixel within radius of (cx, cy), clipped to img.
func fillCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	b := img.Bounds()
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		y := cy + dy
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			x := cx + dx
			if x < b.Min.X || x >= b.Max.X || dx*dx+dy*dy > r2 {
				continue
			}
			img.SetRGBA(x, y, c)
		}
	}
}

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding png: %w", err)
	}
	return f.Close()
}
