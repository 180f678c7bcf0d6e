package systems

import (
	"math/rand"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
)

// Direction is a unit step on the grid. Greedy steps may be diagonal.
type Direction struct {
	DX, DY int
}

var cardinals = [4]Direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Cardinals returns the fallback directions, drawn uniformly.
func Cardinals() [4]Direction {
	return cardinals
}

// MovementSystem picks one direction per creature per step and walks it
// speed cells, paying move cost for every cell traversed.
type MovementSystem struct {
	cfg config.AgentConfig
	rng *rand.Rand
}

// NewMovementSystem creates a movement system drawing from rng.
// rng should be independent of the world's source so food layout
// does not depend on movement behavior.
func NewMovementSystem(cfg config.AgentConfig, rng *rand.Rand) *MovementSystem {
	return &MovementSystem{cfg: cfg, rng: rng}
}

// Update moves every creature once, in population order.
func (s *MovementSystem) Update(w *GridWorld, pop *Population) {
	pop.Each(func(pos *components.Position, energy *components.Energy) {
		d := s.decide(w, pos.X, pos.Y)
		for i := 0; i < s.cfg.Speed; i++ {
			pos.X, pos.Y = w.Wrap(pos.X+d.DX, pos.Y+d.DY)
			energy.Value -= s.cfg.MoveCost
		}
	})
}

func (s *MovementSystem) decide(w *GridWorld, x, y int) Direction {
	if s.cfg.Behavior == config.BehaviorGreedy {
		if d, ok := NearestFoodDir(w, x, y, s.cfg.Vision); ok {
			return d
		}
	}
	return cardinals[s.rng.Intn(len(cardinals))]
}

// NearestFoodDir searches every cell within Manhattan distance vision of
// (x, y), wrapping across edges, and returns the unit step toward the nearest
// food. The creature's own cell is ignored.
//
// Nearest means smallest Manhattan distance; ties go to the smaller Euclidean
// distance, then to the first offset in row-major scan order (dy outer, dx
// inner, both ascending). Returns false when no food is in range.
func NearestFoodDir(w *GridWorld, x, y, vision int) (Direction, bool) {
	var best Direction
	found := false
	bestDist, bestEuclid := 0, 0

	for dy := -vision; dy <= vision; dy++ {
		for dx := -vision; dx <= vision; dx++ {
			dist := abs(dx) + abs(dy)
			if dist == 0 || dist > vision {
				continue
			}
			if !w.HasFood(x+dx, y+dy) {
				continue
			}
			euclid := dx*dx + dy*dy
			if found && (dist > bestDist || (dist == bestDist && euclid >= bestEuclid)) {
				continue
			}
			found = true
			bestDist, bestEuclid = dist, euclid
			best = Direction{DX: sign(dx), DY: sign(dy)}
		}
	}

	return best, found
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
