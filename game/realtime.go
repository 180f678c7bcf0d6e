package game

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Frontend displays snapshots and reports when the user wants to stop.
type Frontend interface {
	ShouldQuit() bool
	Draw(s *Snapshot)
	Capture(path string) error
}

// Clock abstracts wall time so the frame loop can be driven by tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// ScreenshotName returns the file name of the n-th screenshot of a run.
func ScreenshotName(n int) string {
	return fmt.Sprintf("shot-%05d.png", n)
}

// RunRealtime runs the fixed-timestep loop until the frontend asks to quit.
// Wall time accumulates into a residual that is consumed in dt-sized steps,
// so the step rate is independent of the frame rate.
func (e *Engine) RunRealtime(fe Frontend, clock Clock) error {
	if fe == nil {
		return errors.New("running realtime: nil frontend")
	}
	if clock == nil {
		clock = SystemClock{}
	}

	shotEvery := e.engineCfg.ScreenshotEverySteps
	if shotEvery > 0 && e.screenshotDir != "" {
		if err := os.MkdirAll(e.screenshotDir, 0755); err != nil {
			return fmt.Errorf("creating screenshot directory: %w", err)
		}
	}

	var frameBudget time.Duration
	if e.engineCfg.MaxFPS > 0 {
		frameBudget = time.Second / time.Duration(e.engineCfg.MaxFPS)
	}

	var (
		snap        Snapshot
		accumulator float64
		shotID      int
		lastShot    = -1
		last        = clock.Now()
	)

	for !fe.ShouldQuit() {
		frameStart := clock.Now()
		accumulator += frameStart.Sub(last).Seconds()
		last = frameStart

		for accumulator >= e.engineCfg.DT {
			e.Step()
			accumulator -= e.engineCfg.DT
		}

		e.Snapshot(&snap)
		fe.Draw(&snap)

		// Several frames can land on the same step; capture it once
		if shotEvery > 0 && e.screenshotDir != "" &&
			e.step > 0 && e.step%shotEvery == 0 && e.step != lastShot {
			path := filepath.Join(e.screenshotDir, ScreenshotName(shotID))
			if err := fe.Capture(path); err != nil {
				slog.Error("failed to capture screenshot", "step", e.step, "path", path, "error", err)
			} else {
				shotID++
			}
			lastShot = e.step
		}

		if frameBudget > 0 {
			if elapsed := clock.Now().Sub(frameStart); elapsed < frameBudget {
				clock.Sleep(frameBudget - elapsed)
			}
		}
	}

	return nil
}
