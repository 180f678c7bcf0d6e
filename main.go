package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/renderer"
	"github.com/pthm-cable/forage/telemetry"
	"github.com/pthm-cable/forage/ui"
)

// perfWindowSteps is the number of recent steps averaged in the perf report.
const perfWindowSteps = 1000

type runOptions struct {
	headless  bool
	steps     int
	seed      int64
	seedSet   bool
	outputDir string
	term      bool
	logStats  bool
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without a window")
	steps := flag.Int("steps", 10000, "Steps for headless mode")
	seed := flag.Int64("seed", 0, "RNG seed (overrides config; unset = config seed or time-based)")
	outputDir := flag.String("output-dir", "", "Run directory (empty = <output.dir>/run-YYYYMMDD-HHMMSS.mmm-seedN)")
	term := flag.Bool("term", false, "Render in the terminal instead of a window")
	logStats := flag.Bool("log-stats", false, "Output metrics via slog")

	flag.Parse()

	opts := runOptions{
		headless:  *headless,
		steps:     *steps,
		seed:      *seed,
		outputDir: *outputDir,
		term:      *term,
		logStats:  *logStats,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seedSet = true
		}
	})

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(config.Cfg(), opts); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts runOptions) error {
	started := time.Now()

	// Seed precedence: flag, then config, then wall clock
	var rngSeed int64
	switch {
	case opts.seedSet:
		rngSeed = opts.seed
	case cfg.Seed != nil:
		rngSeed = *cfg.Seed
	default:
		rngSeed = started.UnixNano()
	}
	cfg.Seed = &rngSeed

	runID := telemetry.RunID(started, rngSeed)
	runDir := opts.outputDir
	if runDir == "" && cfg.Output.Dir != "" {
		runDir = filepath.Join(cfg.Output.Dir, runID)
	}

	om, err := telemetry.NewOutputManager(runDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := om.Close(); err != nil {
			slog.Error("failed to close metrics file", "error", err)
		}
	}()

	// The terminal frontend owns stdout, so logs go to the run directory instead
	logOut := io.Writer(os.Stdout)
	if opts.term && !opts.headless {
		logOut = io.Discard
		if om != nil {
			f, err := os.Create(om.Path("run.log"))
			if err != nil {
				return fmt.Errorf("creating run log: %w", err)
			}
			defer f.Close()
			logOut = f
		}
	}

	// Set up slog (JSON for structured logging)
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	slog.Info("seed", "seed", rngSeed, "run_id", runID)

	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	tracker := telemetry.NewTracker()
	sinks := telemetry.MultiSink{tracker}
	if om != nil {
		sinks = append(sinks, om)
	}

	if cfg.Output.SQLite != "" {
		db, err := telemetry.OpenSQLite(cfg.Output.SQLite, runID, rngSeed, started)
		if err != nil {
			return err
		}
		defer db.Close()
		sinks = append(sinks, db)
	}

	perf := telemetry.NewPerfCollector(perfWindowSteps)

	engine, err := game.NewEngine(cfg.World, cfg.Agents, cfg.Engine, game.Options{
		Seed:          rngSeed,
		Sink:          sinks,
		LogStats:      opts.logStats,
		ScreenshotDir: om.Dir(),
		Perf:          perf,
	})
	if err != nil {
		return err
	}

	switch {
	case opts.headless:
		slog.Info("starting headless simulation",
			"steps", opts.steps,
			"run_dir", runDir,
		)
		engine.RunHeadless(opts.steps)

	case opts.term:
		fe, err := renderer.OpenTerminal()
		if err != nil {
			return err
		}
		err = engine.RunRealtime(fe, game.SystemClock{})
		fe.Close()
		if err != nil {
			return err
		}

	default:
		w := cfg.World
		fe := ui.OpenWindow(w.Width, w.Height, w.CellSize, "A-Life Forage")
		err := engine.RunRealtime(fe, game.SystemClock{})
		fe.Close()
		if err != nil {
			return err
		}
	}

	summary := tracker.Summary(engine.StepCount(), engine.Deaths(), engine.Population().Energies(nil))
	summary.LogStats()
	perf.Stats().LogStats()

	slog.Info("run complete",
		"run_dir", runDir,
		"steps", engine.StepCount(),
		"elapsed", time.Since(started).Round(time.Millisecond).String(),
	)
	return nil
}
