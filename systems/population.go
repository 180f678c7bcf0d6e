package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
)

// Population stores creatures as ECS entities and keeps them in insertion order.
// The ECS tables reorder entities on removal, so iteration always goes through
// the order slice to keep random draws reproducible.
type Population struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Energy]
	order  []ecs.Entity
}

// NewPopulation creates an empty population.
func NewPopulation() *Population {
	world := ecs.NewWorld()
	return &Population{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Energy](world),
	}
}

// Spawn adds a creature at the end of the iteration order.
func (p *Population) Spawn(x, y int, energy float64) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	e := components.Energy{Value: energy}
	entity := p.mapper.NewEntity(&pos, &e)
	p.order = append(p.order, entity)
	return entity
}

// Len returns the number of live creatures.
func (p *Population) Len() int { return len(p.order) }

// At returns the components of the i-th creature in iteration order.
// Pointers are valid until the next Spawn or RemoveIf.
func (p *Population) At(i int) (*components.Position, *components.Energy) {
	return p.mapper.Get(p.order[i])
}

// Each calls fn for every creature in iteration order.
// fn must not spawn or remove creatures.
func (p *Population) Each(fn func(pos *components.Position, energy *components.Energy)) {
	for _, entity := range p.order {
		fn(p.mapper.Get(entity))
	}
}

// RemoveIf removes every creature for which dead returns true, preserving the
// relative order of survivors. Returns the number removed.
func (p *Population) RemoveIf(dead func(energy *components.Energy) bool) int {
	// First pass: decide, keeping survivors in place (must complete before modifying)
	kept := p.order[:0]
	var toRemove []ecs.Entity
	for _, entity := range p.order {
		_, energy := p.mapper.Get(entity)
		if dead(energy) {
			toRemove = append(toRemove, entity)
			continue
		}
		kept = append(kept, entity)
	}
	clear(p.order[len(kept):])
	p.order = kept

	for _, entity := range toRemove {
		p.world.RemoveEntity(entity)
	}
	return len(toRemove)
}

// Positions appends every creature's position to dst[:0] in iteration order.
func (p *Population) Positions(dst []components.Position) []components.Position {
	dst = dst[:0]
	for _, entity := range p.order {
		pos, _ := p.mapper.Get(entity)
		dst = append(dst, *pos)
	}
	return dst
}

// Energies appends every creature's energy to dst[:0] in iteration order.
func (p *Population) Energies(dst []float64) []float64 {
	dst = dst[:0]
	for _, entity := range p.order {
		_, energy := p.mapper.Get(entity)
		dst = append(dst, energy.Value)
	}
	return dst
}
