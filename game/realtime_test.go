package game

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// fakeClock only advances when slept on.
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

type fakeFrontend struct {
	quitAfter  int
	frames     int
	steps      []int
	shots      []string
	captureErr error
}

func (f *fakeFrontend) ShouldQuit() bool { return f.frames >= f.quitAfter }

func (f *fakeFrontend) Draw(s *Snapshot) {
	f.frames++
	f.steps = append(f.steps, s.Step)
}

func (f *fakeFrontend) Capture(path string) error {
	if f.captureErr != nil {
		return f.captureErr
	}
	f.shots = append(f.shots, path)
	return nil
}

func TestRunRealtime_FixedStepAccumulator(t *testing.T) {
	world, agents, engine := testConfigs()
	engine.DT = 0.1
	engine.MaxFPS = 10
	e := newTestEngine(t, world, agents, engine, Options{})

	fe := &fakeFrontend{quitAfter: 3}
	clock := &fakeClock{now: time.Unix(0, 0)}

	if err := e.RunRealtime(fe, clock); err != nil {
		t.Fatalf("running: %v", err)
	}

	if fe.frames != 3 {
		t.Fatalf("expected 3 frames, got %d", fe.frames)
	}
	// First frame has no elapsed time; each later frame carries one frame budget = one dt
	if e.StepCount() != 2 {
		t.Errorf("expected 2 steps, got %d", e.StepCount())
	}
	if len(clock.slept) != 3 {
		t.Fatalf("expected a sleep per frame, got %d", len(clock.slept))
	}
	for _, d := range clock.slept {
		if d != 100*time.Millisecond {
			t.Errorf("expected 100ms frame budget, slept %v", d)
		}
	}
}

func TestRunRealtime_MultipleStepsPerFrame(t *testing.T) {
	world, agents, engine := testConfigs()
	engine.DT = 0.25
	engine.MaxFPS = 1
	e := newTestEngine(t, world, agents, engine, Options{})

	fe := &fakeFrontend{quitAfter: 3}
	if err := e.RunRealtime(fe, &fakeClock{now: time.Unix(0, 0)}); err != nil {
		t.Fatal(err)
	}

	// One-second frames consume 4 steps each after the first
	want := []int{0, 4, 8}
	for i, step := range want {
		if fe.steps[i] != step {
			t.Errorf("frame %d drew step %d, want %d", i, fe.steps[i], step)
		}
	}
}

func TestRunRealtime_UncappedNeverSleeps(t *testing.T) {
	world, agents, engine := testConfigs()
	engine.MaxFPS = 0
	e := newTestEngine(t, world, agents, engine, Options{})

	clock := &fakeClock{now: time.Unix(0, 0)}
	fe := &fakeFrontend{quitAfter: 5}
	if err := e.RunRealtime(fe, clock); err != nil {
		t.Fatal(err)
	}

	if len(clock.slept) != 0 {
		t.Errorf("expected no sleeps, got %v", clock.slept)
	}
	if e.StepCount() != 0 {
		t.Errorf("no wall time passed, expected 0 steps, got %d", e.StepCount())
	}
}

func TestRunRealtime_QuitBeforeFirstFrame(t *testing.T) {
	world, agents, engine := testConfigs()
	e := newTestEngine(t, world, agents, engine, Options{})

	fe := &fakeFrontend{quitAfter: 0}
	if err := e.RunRealtime(fe, &fakeClock{}); err != nil {
		t.Fatal(err)
	}
	if fe.frames != 0 || e.StepCount() != 0 {
		t.Errorf("expected nothing to run, got frames=%d steps=%d", fe.frames, e.StepCount())
	}
}

func TestRunRealtime_NilFrontend(t *testing.T) {
	world, agents, engine := testConfigs()
	e := newTestEngine(t, world, agents, engine, Options{})

	if err := e.RunRealtime(nil, &fakeClock{}); err == nil {
		t.Error("expected error for nil frontend")
	}
}

// ---------- screenshots ----------

func TestRunRealtime_ScreenshotCadence(t *testing.T) {
	world, agents, engine := testConfigs()
	engine.DT = 0.1
	engine.MaxFPS = 10
	engine.ScreenshotEverySteps = 2
	dir := t.TempDir()
	e := newTestEngine(t, world, agents, engine, Options{ScreenshotDir: dir})

	// Frames draw steps 0..6
	fe := &fakeFrontend{quitAfter: 7}
	if err := e.RunRealtime(fe, &fakeClock{now: time.Unix(0, 0)}); err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "shot-00000.png"),
		filepath.Join(dir, "shot-00001.png"),
		filepath.Join(dir, "shot-00002.png"),
	}
	if len(fe.shots) != len(want) {
		t.Fatalf("expected %d shots, got %v", len(want), fe.shots)
	}
	for i := range want {
		if fe.shots[i] != want[i] {
			t.Errorf("shot %d = %q, want %q", i, fe.shots[i], want[i])
		}
	}
}

func TestRunRealtime_NoDuplicateShotsForSameStep(t *testing.T) {
	world, agents, engine := testConfigs()
	engine.DT = 0.1
	engine.MaxFPS = 20
	engine.ScreenshotEverySteps = 2
	e := newTestEngine(t, world, agents, engine, Options{ScreenshotDir: t.TempDir()})

	// Two frames per step: steps 0,0,1,1,2,2,3,3,4
	fe := &fakeFrontend{quitAfter: 9}
	if err := e.RunRealtime(fe, &fakeClock{now: time.Unix(0, 0)}); err != nil {
		t.Fatal(err)
	}

	if e.StepCount() != 4 {
		t.Fatalf("expected 4 steps, got %d", e.StepCount())
	}
	if len(fe.shots) != 2 {
		t.Errorf("expected shots at steps 2 and 4 only, got %v", fe.shots)
	}
}

func TestRunRealtime_CaptureErrorContinues(t *testing.T) {
	world, agents, engine := testConfigs()
	engine.ScreenshotEverySteps = 1
	e := newTestEngine(t, world, agents, engine, Options{ScreenshotDir: t.TempDir()})

	fe := &fakeFrontend{quitAfter: 4, captureErr: errors.New("no gpu")}
	if err := e.RunRealtime(fe, &fakeClock{now: time.Unix(0, 0)}); err != nil {
		t.Fatalf("capture failure should not abort the loop: %v", err)
	}
	if fe.frames != 4 {
		t.Errorf("expected 4 frames, got %d", fe.frames)
	}
}

func TestRunRealtime_ScreenshotsDisabledWithoutDir(t *testing.T) {
	world, agents, engine := testConfigs()
	engine.ScreenshotEverySteps = 1
	e := newTestEngine(t, world, agents, engine, Options{})

	fe := &fakeFrontend{quitAfter: 4}
	if err := e.RunRealtime(fe, &fakeClock{now: time.Unix(0, 0)}); err != nil {
		t.Fatal(err)
	}
	if len(fe.shots) != 0 {
		t.Errorf("expected no shots, got %v", fe.shots)
	}
}
