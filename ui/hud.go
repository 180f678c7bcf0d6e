// Package ui draws the simulation in a raylib window.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the status bar.
type HUDData struct {
	Step         int
	Population   int
	Food         int
	MeanEnergy   float64
	FPS          int32
	ScreenWidth  int32
	ScreenHeight int32
}

// Text formats the status line.
func (d HUDData) Text() string {
	return fmt.Sprintf("Step: %d | Pop: %d | Food: %d | Energy: %.3f | FPS: %d",
		d.Step, d.Population, d.Food, d.MeanEnergy, d.FPS)
}

// HUDHeight is the height in pixels of the band below the grid.
const HUDHeight = 20

// HUD renders a raygui status bar along the bottom edge of the window.
type HUD struct {
	height float32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{height: HUDHeight}
}

// Bounds returns the status bar rectangle for a screen of the given size.
func (h *HUD) Bounds(screenWidth, screenHeight int32) rl.Rectangle {
	return rl.Rectangle{
		X:      0,
		Y:      float32(screenHeight) - h.height,
		Width:  float32(screenWidth),
		Height: h.height,
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	gui.StatusBar(h.Bounds(data.ScreenWidth, data.ScreenHeight), data.Text())
}
