package systems

import "github.com/pthm-cable/forage/components"

// EnergySystem culls creatures whose energy is depleted.
// It runs after movement and intake, so creatures are judged on net energy.
type EnergySystem struct{}

// NewEnergySystem creates an energy system.
func NewEnergySystem() *EnergySystem {
	return &EnergySystem{}
}

// Update removes every creature with energy <= 0, keeping survivor order.
// Returns the number of deaths.
func (s *EnergySystem) Update(pop *Population) int {
	return pop.RemoveIf(Depleted)
}

// Depleted reports whether a creature has run out of energy.
func Depleted(energy *components.Energy) bool {
	return energy.Value <= 0
}
