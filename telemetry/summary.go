package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Tracker is a Sink that accumulates population history for an end-of-run summary.
type Tracker struct {
	records []MetricsRecord
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// WriteMetrics records rec.
func (t *Tracker) WriteMetrics(rec MetricsRecord) error {
	t.records = append(t.records, rec)
	return nil
}

// Records returns every record seen so far.
func (t *Tracker) Records() []MetricsRecord {
	return t.records
}

// RunSummary describes a finished run.
type RunSummary struct {
	Steps          int
	Deaths         int
	Emissions      int
	PeakPopulation int
	// ExtinctionStep is the first emitted step with no creatures left, or -1.
	ExtinctionStep int
	MeanPopulation float64
	StdPopulation  float64
	MeanFood       float64

	FinalPopulation int
	FinalEnergyP10  float64
	FinalEnergyP50  float64
	FinalEnergyP90  float64
}

// Summary builds a RunSummary from the tracked history and the final energies.
func (t *Tracker) Summary(steps, deaths int, finalEnergies []float64) RunSummary {
	s := RunSummary{
		Steps:           steps,
		Deaths:          deaths,
		Emissions:       len(t.records),
		ExtinctionStep:  -1,
		FinalPopulation: len(finalEnergies),
	}

	if len(t.records) > 0 {
		pops := make([]float64, len(t.records))
		food := make([]float64, len(t.records))
		for i, r := range t.records {
			pops[i] = float64(r.Population)
			food[i] = float64(r.Food)
			if r.Population > s.PeakPopulation {
				s.PeakPopulation = r.Population
			}
			if r.Population == 0 && s.ExtinctionStep < 0 {
				s.ExtinctionStep = r.Step
			}
		}
		s.MeanPopulation, s.StdPopulation = stat.MeanStdDev(pops, nil)
		if len(pops) < 2 {
			s.StdPopulation = 0
		}
		s.MeanFood = stat.Mean(food, nil)
	}

	if len(finalEnergies) > 0 {
		sorted := make([]float64, len(finalEnergies))
		copy(sorted, finalEnergies)
		sort.Float64s(sorted)
		s.FinalEnergyP10 = stat.Quantile(0.1, stat.Empirical, sorted, nil)
		s.FinalEnergyP50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		s.FinalEnergyP90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}

	return s
}

// LogStats outputs the summary via slog.
func (s RunSummary) LogStats() {
	slog.Info("run summary",
		"steps", s.Steps,
		"deaths", s.Deaths,
		"emissions", s.Emissions,
		"peak_population", s.PeakPopulation,
		"extinction_step", s.ExtinctionStep,
		"mean_population", s.MeanPopulation,
		"std_population", s.StdPopulation,
		"mean_food", s.MeanFood,
		"final_population", s.FinalPopulation,
		"final_energy_p10", s.FinalEnergyP10,
		"final_energy_p50", s.FinalEnergyP50,
		"final_energy_p90", s.FinalEnergyP90,
	)
}
