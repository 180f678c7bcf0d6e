package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/renderer"
)

// Window is a game.Frontend backed by a raylib window holding the grid at
// cellSize pixels per cell with the status bar in a band below it.
type Window struct {
	width, height int32
	cellSize      int32
	radius        float32
	hud           *HUD

	background, food, agent rl.Color
}

// WindowSize returns the window dimensions for a grid: the grid itself plus
// the status bar band.
func WindowSize(width, height, cellSize int) (int32, int32) {
	return int32(width * cellSize), int32(height*cellSize + HUDHeight)
}

// OpenWindow creates the window. Frame pacing is left to the caller.
func OpenWindow(width, height, cellSize int, title string) *Window {
	ww, wh := WindowSize(width, height, cellSize)
	w := &Window{
		width:      ww,
		height:     wh,
		cellSize:   int32(cellSize),
		radius:     float32(renderer.AgentRadius(cellSize)),
		hud:        NewHUD(),
		background: rl.Color(renderer.BackgroundColor),
		food:       rl.Color(renderer.FoodColor),
		agent:      rl.Color(renderer.AgentColor),
	}
	rl.InitWindow(w.width, w.height, title)
	return w
}

// ShouldQuit reports whether the window was closed.
func (w *Window) ShouldQuit() bool {
	return rl.WindowShouldClose()
}

// Draw renders s and presents the frame.
func (w *Window) Draw(s *game.Snapshot) {
	rl.BeginDrawing()
	rl.ClearBackground(w.background)

	cs := w.cellSize
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if s.HasFood(x, y) {
				rl.DrawRectangle(int32(x)*cs, int32(y)*cs, cs, cs, w.food)
			}
		}
	}

	for _, p := range s.Agents {
		cx := int32(p.X)*cs + cs/2
		cy := int32(p.Y)*cs + cs/2
		rl.DrawCircle(cx, cy, w.radius, w.agent)
	}

	w.hud.Draw(HUDData{
		Step:         s.Step,
		Population:   s.Population,
		Food:         s.Food,
		MeanEnergy:   s.MeanEnergy,
		FPS:          rl.GetFPS(),
		ScreenWidth:  w.width,
		ScreenHeight: w.height,
	})

	rl.EndDrawing()
}

// Capture writes the current framebuffer to path as PNG.
func (w *Window) Capture(path string) error {
	img := rl.LoadImageFromScreen()
	defer rl.UnloadImage(img)

	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("exporting screenshot to %s", path)
	}
	return nil
}

// Close destroys the window.
func (w *Window) Close() {
	rl.CloseWindow()
}
