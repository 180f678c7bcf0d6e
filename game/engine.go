// Package game drives the simulation: it owns the world and population and
// sequences the systems one fixed step at a time.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// Options configures an Engine beyond the three config sections.
type Options struct {
	Seed     int64
	Sink     telemetry.Sink // Receives metrics records (nil = none)
	LogStats bool           // Log every metrics record via slog

	// ScreenshotDir receives realtime screenshots (empty = none).
	ScreenshotDir string

	// Perf times each step phase when set.
	Perf *telemetry.PerfCollector

	// StatsCallback is called with every emitted record, after the sink.
	StatsCallback func(telemetry.MetricsRecord)
}

// Engine owns all simulation state for a run.
type Engine struct {
	worldCfg  config.WorldConfig
	agentCfg  config.AgentConfig
	engineCfg config.EngineConfig

	world      *systems.GridWorld
	population *systems.Population

	movement *systems.MovementSystem
	intake   *systems.IntakeSystem
	energy   *systems.EnergySystem

	sink          telemetry.Sink
	logStats      bool
	statsCallback func(telemetry.MetricsRecord)
	screenshotDir string
	perf          *telemetry.PerfCollector

	step    int
	lastLog int
	deaths  int

	// Reused buffer for energy sampling
	energyBuf []float64
}

// NewEngine validates the configuration and builds the initial state.
//
// Two random sources are derived from opts.Seed: seed feeds food placement,
// seed+1 feeds creature placement and movement decisions. Changing movement
// behavior therefore never perturbs the food layout.
func NewEngine(world config.WorldConfig, agents config.AgentConfig, engine config.EngineConfig, opts Options) (*Engine, error) {
	cfg := config.Config{World: world, Agents: agents, Engine: engine}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	worldRNG := rand.New(rand.NewSource(opts.Seed))
	moveRNG := rand.New(rand.NewSource(opts.Seed + 1))

	w, err := systems.NewGridWorld(world, worldRNG)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	e := &Engine{
		worldCfg:      world,
		agentCfg:      agents,
		engineCfg:     engine,
		world:         w,
		population:    systems.NewPopulation(),
		movement:      systems.NewMovementSystem(agents, moveRNG),
		intake:        systems.NewIntakeSystem(agents),
		energy:        systems.NewEnergySystem(),
		sink:          opts.Sink,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		screenshotDir: opts.ScreenshotDir,
		perf:          opts.Perf,
	}

	for i := 0; i < agents.Count; i++ {
		x := moveRNG.Intn(world.Width)
		y := moveRNG.Intn(world.Height)
		e.population.Spawn(x, y, agents.StartEnergy)
	}

	return e, nil
}

// Step advances the simulation by exactly one tick.
func (e *Engine) Step() {
	e.perf.StartStep()

	// 1. Move (pays move cost per cell)
	e.perf.StartPhase(telemetry.PhaseMove)
	e.movement.Update(e.world, e.population)

	// 2. Eat food under creatures
	e.perf.StartPhase(telemetry.PhaseIntake)
	e.intake.Update(e.world, e.population)

	// 3. Cull depleted creatures
	e.perf.StartPhase(telemetry.PhaseCull)
	e.deaths += e.energy.Update(e.population)

	// 4. Regrow food
	e.perf.StartPhase(telemetry.PhaseRegrow)
	e.world.StepRegrow()

	e.step++

	// 5. Emit metrics on cadence; lastLog moves to the current step so bursts keep exact spacing
	if e.step-e.lastLog >= e.engineCfg.LogEverySteps {
		e.perf.StartPhase(telemetry.PhaseMetrics)
		e.lastLog = e.step
		e.emitMetrics()
	}

	e.perf.EndStep()
}

// RunHeadless runs exactly steps ticks with no timing control.
func (e *Engine) RunHeadless(steps int) {
	for i := 0; i < steps; i++ {
		e.Step()
	}
}

// emitMetrics hands the current record to every configured consumer.
func (e *Engine) emitMetrics() {
	if e.sink == nil && !e.logStats && e.statsCallback == nil {
		return
	}

	rec := e.Metrics()

	if e.sink != nil {
		if err := e.sink.WriteMetrics(rec); err != nil {
			slog.Error("failed to write metrics", "step", rec.Step, "error", err)
		}
	}
	if e.logStats {
		rec.LogStats()
	}
	if e.statsCallback != nil {
		e.statsCallback(rec)
	}
}

// Metrics returns the current metrics record.
func (e *Engine) Metrics() telemetry.MetricsRecord {
	e.energyBuf = e.population.Energies(e.energyBuf)
	return telemetry.MetricsRecord{
		Step:       e.step,
		Population: e.population.Len(),
		MeanEnergy: telemetry.RoundEnergy(telemetry.MeanEnergy(e.energyBuf)),
		Food:       e.world.FoodCount(),
	}
}

// StepCount returns the number of completed steps.
func (e *Engine) StepCount() int { return e.step }

// Deaths returns the total number of creatures culled so far.
func (e *Engine) Deaths() int { return e.deaths }

// World returns the food grid. Callers must not mutate it while the engine runs.
func (e *Engine) World() *systems.GridWorld { return e.world }

// Population returns the creature store. Callers must not mutate it while the engine runs.
func (e *Engine) Population() *systems.Population { return e.population }

// WorldConfig returns the world parameters the engine was built with.
func (e *Engine) WorldConfig() config.WorldConfig { return e.worldCfg }

// AgentConfig returns the creature parameters the engine was built with.
func (e *Engine) AgentConfig() config.AgentConfig { return e.agentCfg }

// EngineConfig returns the stepping parameters the engine was built with.
func (e *Engine) EngineConfig() config.EngineConfig { return e.engineCfg }
