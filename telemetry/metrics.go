// Package telemetry records simulation metrics and writes run output.
package telemetry

import (
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MetricsRecord is one periodic observation of the simulation.
type MetricsRecord struct {
	Step       int     `csv:"step"`
	Population int     `csv:"population"`
	MeanEnergy float64 `csv:"mean_energy"` // Rounded to EnergyPrecision decimals
	Food       int     `csv:"food"`
}

// EnergyPrecision is the number of decimals kept in MetricsRecord.MeanEnergy.
const EnergyPrecision = 3

// Sink consumes metrics records as they are emitted.
type Sink interface {
	WriteMetrics(rec MetricsRecord) error
}

// MultiSink fans a record out to several sinks.
// Every sink is written even if an earlier one fails.
type MultiSink []Sink

// WriteMetrics writes rec to every sink and joins their errors.
func (m MultiSink) WriteMetrics(rec MetricsRecord) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.WriteMetrics(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MeanEnergy returns the mean of energies, or 0 for an empty population.
func MeanEnergy(energies []float64) float64 {
	if len(energies) == 0 {
		return 0
	}
	return stat.Mean(energies, nil)
}

// RoundEnergy rounds v to EnergyPrecision decimals.
func RoundEnergy(v float64) float64 {
	scale := math.Pow10(EnergyPrecision)
	return math.Round(v*scale) / scale
}

// LogStats outputs the record via slog.
func (r MetricsRecord) LogStats() {
	slog.Info("metrics",
		"step", r.Step,
		"population", r.Population,
		"mean_energy", r.MeanEnergy,
		"food", r.Food,
	)
}
