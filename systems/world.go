package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/forage/config"
)

// Cell is the state of a single grid cell.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellFood
)

// GridWorld is a toroidal food grid with capped random regrowth.
// Cells are stored row-major (index = y*W + x).
type GridWorld struct {
	W, H int

	cells []Cell

	maxFood      int
	spawnPerStep int
	food         int // live FOOD count, maintained on every transition

	rng *rand.Rand

	// Scratch buffer of empty cell indices, reused across spawns
	empties []int
}

// NewGridWorld creates a world and places the configured initial food.
// The world takes ownership of rng; callers must not draw from it afterwards.
func NewGridWorld(cfg config.WorldConfig, rng *rand.Rand) (*GridWorld, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}

	w := &GridWorld{
		W:            cfg.Width,
		H:            cfg.Height,
		cells:        make([]Cell, cfg.Width*cfg.Height),
		maxFood:      cfg.MaxFood,
		spawnPerStep: cfg.FoodSpawnPerStep,
		rng:          rng,
		empties:      make([]int, 0, cfg.Width*cfg.Height),
	}
	w.SpawnFood(cfg.InitialFood)

	return w, nil
}

// MaxFood returns the cap on simultaneous food cells.
func (w *GridWorld) MaxFood() int { return w.maxFood }

// FoodCount returns the number of FOOD cells.
func (w *GridWorld) FoodCount() int { return w.food }

// Wrap maps any coordinate onto the torus using true modulo,
// so negative inputs wrap from the far edge.
func (w *GridWorld) Wrap(x, y int) (int, int) {
	x %= w.W
	if x < 0 {
		x += w.W
	}
	y %= w.H
	if y < 0 {
		y += w.H
	}
	return x, y
}

func (w *GridWorld) index(x, y int) int {
	x, y = w.Wrap(x, y)
	return y*w.W + x
}

// At returns the state of the cell at (x, y), wrapped.
func (w *GridWorld) At(x, y int) Cell {
	return w.cells[w.index(x, y)]
}

// HasFood reports whether the cell at (x, y) holds food.
func (w *GridWorld) HasFood(x, y int) bool {
	return w.At(x, y) == CellFood
}

// TakeFood clears the food at (x, y). Returns false if there was none.
func (w *GridWorld) TakeFood(x, y int) bool {
	i := w.index(x, y)
	if w.cells[i] != CellFood {
		return false
	}
	w.cells[i] = CellEmpty
	w.food--
	return true
}

// PlaceFood puts food at (x, y) if the cell is empty and the cap allows it.
func (w *GridWorld) PlaceFood(x, y int) bool {
	i := w.index(x, y)
	if w.cells[i] != CellEmpty || w.food >= w.maxFood {
		return false
	}
	w.cells[i] = CellFood
	w.food++
	return true
}

// SpawnFood converts up to amount EMPTY cells to FOOD, chosen uniformly at
// random without replacement, never letting the food count exceed maxFood.
// Returns the number of cells placed. A full grid or a non-positive amount is a no-op.
func (w *GridWorld) SpawnFood(amount int) int {
	w.empties = w.empties[:0]
	for i, c := range w.cells {
		if c == CellEmpty {
			w.empties = append(w.empties, i)
		}
	}
	if len(w.empties) == 0 {
		return 0
	}

	amount = min(amount, len(w.empties), w.maxFood-w.food)
	if amount <= 0 {
		return 0
	}

	// Partial Fisher-Yates: the first amount slots become a uniform sample
	n := len(w.empties)
	for i := 0; i < amount; i++ {
		j := i + w.rng.Intn(n-i)
		w.empties[i], w.empties[j] = w.empties[j], w.empties[i]
		w.cells[w.empties[i]] = CellFood
	}
	w.food += amount

	return amount
}

// StepRegrow attempts one regrowth round if the world is below its food cap.
func (w *GridWorld) StepRegrow() int {
	if w.food >= w.maxFood {
		return 0
	}
	return w.SpawnFood(w.spawnPerStep)
}

// Cells copies the grid into dst (grown as needed) and returns it.
func (w *GridWorld) Cells(dst []Cell) []Cell {
	if cap(dst) < len(w.cells) {
		dst = make([]Cell, len(w.cells))
	}
	dst = dst[:len(w.cells)]
	copy(dst, w.cells)
	return dst
}
