package game

import (
	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/systems"
)

// Snapshot is a read-only copy of the state a renderer needs.
// Reuse one Snapshot across frames to avoid reallocating its slices.
type Snapshot struct {
	Step          int
	Width, Height int
	CellSize      int

	Cells  []systems.Cell        // Row-major, len = Width*Height
	Agents []components.Position // Population order

	Population int
	Food       int
	MeanEnergy float64
}

// Snapshot copies the current state into dst.
func (e *Engine) Snapshot(dst *Snapshot) {
	rec := e.Metrics()

	dst.Step = e.step
	dst.Width = e.world.W
	dst.Height = e.world.H
	dst.CellSize = e.worldCfg.CellSize
	dst.Cells = e.world.Cells(dst.Cells)
	dst.Agents = e.population.Positions(dst.Agents)
	dst.Population = rec.Population
	dst.Food = rec.Food
	dst.MeanEnergy = rec.MeanEnergy
}

// HasFood reports whether the snapshot cell at (x, y) holds food.
// Coordinates must be in range.
func (s *Snapshot) HasFood(x, y int) bool {
	return s.Cells[y*s.Width+x] == systems.CellFood
}
