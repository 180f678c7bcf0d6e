// Package main provides CMA-ES optimization for forage simulation parameters.
package main

import (
	"math"

	"github.com/pthm-cable/forage/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded when applied
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the food and energy parameters, bounded so every
// candidate stays a valid configuration for base.
func NewParamVector(base *config.Config) *ParamVector {
	cells := float64(base.World.Width * base.World.Height)
	minFood := math.Max(1, float64(base.World.InitialFood))

	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "food_spawn_per_step", Path: "world.food_spawn_per_step", Min: 0, Max: math.Max(1, cells/50), Integer: true},
			{Name: "max_food", Path: "world.max_food", Min: minFood, Max: math.Max(minFood+1, cells), Integer: true},
			{Name: "eat_energy", Path: "agents.eat_energy", Min: 0.5, Max: 20},
			{Name: "move_cost", Path: "agents.move_cost", Min: 0.01, Max: 1},
		},
	}

	defaults := pv.ExtractFromConfig(base)
	clamped := pv.Clamp(defaults)
	for i := range pv.Specs {
		pv.Specs[i].Default = clamped[i]
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds, rounding integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Min(math.Max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.World.FoodSpawnPerStep = int(clamped[0])
	cfg.World.MaxFood = int(clamped[1])
	cfg.Agents.EatEnergy = clamped[2]
	cfg.Agents.MoveCost = clamped[3]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		float64(cfg.World.FoodSpawnPerStep),
		float64(cfg.World.MaxFood),
		cfg.Agents.EatEnergy,
		cfg.Agents.MoveCost,
	}
}
