// Package components defines ECS components for the simulation.
package components

// Position represents a creature's grid cell.
// Always within [0,width) x [0,height) once wrapped by the world.
type Position struct {
	X, Y int
}

// Energy holds a creature's energy reserve.
// Value may dip to zero or below during a step; the creature is culled at the end of it.
type Energy struct {
	Value float64
}
