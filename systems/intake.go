package systems

import (
	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
)

// IntakeSystem converts food under a creature into energy.
type IntakeSystem struct {
	eatEnergy float64
}

// NewIntakeSystem creates an intake system.
func NewIntakeSystem(cfg config.AgentConfig) *IntakeSystem {
	return &IntakeSystem{eatEnergy: cfg.EatEnergy}
}

// Update feeds creatures in population order. When several share a food
// cell, the first one consumes it and the rest gain nothing.
// Returns the number of food cells eaten.
func (s *IntakeSystem) Update(w *GridWorld, pop *Population) int {
	eaten := 0
	pop.Each(func(pos *components.Position, energy *components.Energy) {
		if w.TakeFood(pos.X, pos.Y) {
			energy.Value += s.eatEnergy
			eaten++
		}
	})
	return eaten
}
