package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of a simulation step.
type Phase int

// Step phases, in execution order.
const (
	PhaseMove Phase = iota
	PhaseIntake
	PhaseCull
	PhaseRegrow
	PhaseMetrics
	numPhases
)

var phaseNames = [numPhases]string{"move", "intake", "cull", "regrow", "metrics"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// perfSample holds timing data for a single step.
type perfSample struct {
	step   time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times step phases over a rolling window.
// A nil collector ignores every call.
type PerfCollector struct {
	samples    []perfSample
	writeIndex int
	count      int

	current    perfSample
	stepStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over the last windowSize steps.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 100
	}
	return &PerfCollector{
		samples: make([]perfSample, windowSize),
		now:     time.Now,
	}
}

// StartStep begins timing a new step.
func (p *PerfCollector) StartStep() {
	if p == nil {
		return
	}
	p.stepStart = p.now()
	p.current = perfSample{}
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and starts phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	if p == nil {
		return
	}
	now := p.now()
	if p.inPhase {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.phase = phase
	p.inPhase = true
}

// EndStep closes the running phase and records the sample.
func (p *PerfCollector) EndStep() {
	if p == nil {
		return
	}
	now := p.now()
	if p.inPhase {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
	p.current.step = now.Sub(p.stepStart)

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

// PerfStats holds aggregated timing over the window.
type PerfStats struct {
	Samples        int
	AvgStep        time.Duration
	MinStep        time.Duration
	MaxStep        time.Duration
	StepsPerSecond float64
	PhaseAvg       [numPhases]time.Duration
	PhasePct       [numPhases]float64 // Share of the average step, 0-100
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.count == 0 {
		return PerfStats{}
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	s := PerfStats{Samples: p.count}

	for i := 0; i < p.count; i++ {
		sample := p.samples[i]
		total += sample.step
		if i == 0 || sample.step < s.MinStep {
			s.MinStep = sample.step
		}
		if sample.step > s.MaxStep {
			s.MaxStep = sample.step
		}
		for ph, d := range sample.phases {
			phaseSum[ph] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgStep = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if total > 0 {
			s.PhasePct[ph] = float64(phaseSum[ph]) / float64(total) * 100
		}
	}
	if s.AvgStep > 0 {
		s.StepsPerSecond = float64(time.Second) / float64(s.AvgStep)
	}
	return s
}

// LogStats logs the aggregated timing via slog.
func (s PerfStats) LogStats() {
	attrs := []any{
		"samples", s.Samples,
		"avg_step_us", s.AvgStep.Microseconds(),
		"min_step_us", s.MinStep.Microseconds(),
		"max_step_us", s.MaxStep.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		attrs = append(attrs, ph.String()+"_pct", float64(int(s.PhasePct[ph]*10))/10)
	}
	slog.Info("perf", attrs...)
}
