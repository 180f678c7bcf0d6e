package main

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/telemetry"
)

// Fitness weights.
const (
	weightStability  = 0.5 // multiplies the squared coefficient of variation
	extinctionBase   = 1.0 // flat penalty for any extinction
	steadyStateStart = 0.5 // fraction of the run skipped before scoring
	survivingCap     = 10  // surviving runs never score above this
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	steps      int
	seeds      []int64
	target     float64
	baseConfig *config.Config
	workers    *semaphore.Weighted

	mu          sync.Mutex
	lastMeanPop float64 // steady-state population from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. At most workers seeds run at
// once; workers < 1 runs every seed concurrently.
func NewFitnessEvaluator(params *ParamVector, steps int, seeds []int64, target float64, baseCfg *config.Config, workers int) *FitnessEvaluator {
	if workers < 1 {
		workers = max(1, len(seeds))
	}
	return &FitnessEvaluator{
		params:     params,
		steps:      steps,
		seeds:      seeds,
		target:     target,
		baseConfig: baseCfg,
		workers:    semaphore.NewWeighted(int64(workers)),
	}
}

// LastMeanPopulation returns the steady-state population from the most recent evaluation.
func (fe *FitnessEvaluator) LastMeanPopulation() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeanPop
}

// runResult holds the results from a single simulation run.
type runResult struct {
	records        []telemetry.MetricsRecord
	extinctionStep int // -1 if the population survived
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel; the result is the mean over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	fitness := make([]float64, len(fe.seeds))
	meanPop := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	ctx := context.Background()

	for i, seed := range fe.seeds {
		if fe.workers != nil {
			// Background is never cancelled, so Acquire cannot fail
			_ = fe.workers.Acquire(ctx, 1)
		}
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			if fe.workers != nil {
				defer fe.workers.Release(1)
			}
			result := runSimulation(cfg, fe.steps, s)
			fitness[idx], meanPop[idx] = fe.computeFitness(result)
		}(i, seed)
	}
	wg.Wait()

	fe.mu.Lock()
	fe.lastMeanPop = stat.Mean(meanPop, nil)
	fe.mu.Unlock()

	return stat.Mean(fitness, nil)
}

// runSimulation executes a single headless run, stopping early on extinction.
// cfg is only read.
func runSimulation(cfg *config.Config, steps int, seed int64) *runResult {
	result := &runResult{extinctionStep: -1}

	e, err := game.NewEngine(cfg.World, cfg.Agents, cfg.Engine, game.Options{
		Seed: seed,
		StatsCallback: func(rec telemetry.MetricsRecord) {
			result.records = append(result.records, rec)
		},
	})
	if err != nil {
		// Bounds keep candidates valid; treat anything else as immediate extinction
		result.extinctionStep = 0
		return result
	}

	for e.StepCount() < steps {
		e.Step()
		if e.Population().Len() == 0 {
			result.extinctionStep = e.StepCount()
			return result
		}
	}
	return result
}

// copyConfig creates a copy of the base config. Every section is a value type.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness scores one run and returns (fitness, steady-state mean population).
// Surviving runs score the squared relative error to the target plus a
// stability term; extinct runs score above every surviving run, earlier worse.
func (fe *FitnessEvaluator) computeFitness(r *runResult) (float64, float64) {
	if r.extinctionStep >= 0 {
		survived := float64(r.extinctionStep) / float64(max(1, fe.steps))
		return extinctionBase + survivingCap + (1 - survived), 0
	}

	start := int(float64(len(r.records)) * steadyStateStart)
	tail := r.records[start:]
	if len(tail) == 0 {
		return survivingCap, 0
	}

	pops := make([]float64, len(tail))
	for i, rec := range tail {
		pops[i] = float64(rec.Population)
	}
	mean, std := stat.MeanStdDev(pops, nil)
	if len(pops) < 2 {
		std = 0
	}

	relErr := (mean - fe.target) / fe.target
	cv := 0.0
	if mean > 0 {
		cv = std / mean
	}
	return math.Min(relErr*relErr+weightStability*cv*cv, survivingCap), mean
}
