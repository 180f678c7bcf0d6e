package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/forage/config"
)

func testWorldConfig() config.WorldConfig {
	return config.WorldConfig{
		Width:            10,
		Height:           10,
		CellSize:         8,
		InitialFood:      0,
		FoodSpawnPerStep: 5,
		MaxFood:          20,
	}
}

func newTestWorld(t *testing.T, cfg config.WorldConfig, seed int64) *GridWorld {
	t.Helper()
	w, err := NewGridWorld(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("creating world: %v", err)
	}
	return w
}

// countFood recounts FOOD cells from scratch.
func countFood(w *GridWorld) int {
	n := 0
	for _, c := range w.cells {
		if c == CellFood {
			n++
		}
	}
	return n
}

// ---------- Wrap ----------

func TestWrap_NegativeUsesTrueModulo(t *testing.T) {
	w := newTestWorld(t, testWorldConfig(), 1)

	x, y := w.Wrap(-1, -1)
	if x != 9 || y != 9 {
		t.Errorf("Wrap(-1,-1) = (%d,%d), want (9,9)", x, y)
	}
}

func TestWrap_Cases(t *testing.T) {
	cfg := testWorldConfig()
	cfg.Width, cfg.Height = 10, 7
	w := newTestWorld(t, cfg, 1)

	cases := []struct{ x, y, wantX, wantY int }{
		{0, 0, 0, 0},
		{10, 7, 0, 0},
		{11, 8, 1, 1},
		{-10, -7, 0, 0},
		{-11, -8, 9, 6},
		{-21, 15, 9, 1},
	}
	for _, c := range cases {
		x, y := w.Wrap(c.x, c.y)
		if x != c.wantX || y != c.wantY {
			t.Errorf("Wrap(%d,%d) = (%d,%d), want (%d,%d)", c.x, c.y, x, y, c.wantX, c.wantY)
		}
	}
}

// ---------- Construction ----------

func TestNewGridWorld_PlacesInitialFood(t *testing.T) {
	cfg := testWorldConfig()
	cfg.InitialFood = 15
	w := newTestWorld(t, cfg, 3)

	if w.FoodCount() != 15 {
		t.Errorf("expected 15 food, got %d", w.FoodCount())
	}
	if countFood(w) != w.FoodCount() {
		t.Errorf("incremental count %d disagrees with grid %d", w.FoodCount(), countFood(w))
	}
}

func TestNewGridWorld_RejectsBadConfig(t *testing.T) {
	cfg := testWorldConfig()
	cfg.Width = 0
	if _, err := NewGridWorld(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for zero width")
	}

	cfg = testWorldConfig()
	cfg.InitialFood = 30 // above MaxFood
	if _, err := NewGridWorld(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for max_food < initial_food")
	}
}

// ---------- SpawnFood ----------

func TestSpawnFood_NeverExceedsMaxFood(t *testing.T) {
	w := newTestWorld(t, testWorldConfig(), 5)

	for i := 0; i < 10; i++ {
		w.SpawnFood(7)
		if w.FoodCount() > w.MaxFood() {
			t.Fatalf("food %d exceeds cap %d after spawn %d", w.FoodCount(), w.MaxFood(), i)
		}
		if countFood(w) != w.FoodCount() {
			t.Fatalf("incremental count %d disagrees with grid %d", w.FoodCount(), countFood(w))
		}
	}
	if w.FoodCount() != 20 {
		t.Errorf("expected to saturate at 20, got %d", w.FoodCount())
	}
}

func TestSpawnFood_NonPositiveAmountIsNoOp(t *testing.T) {
	w := newTestWorld(t, testWorldConfig(), 5)

	if n := w.SpawnFood(0); n != 0 {
		t.Errorf("expected 0 placed, got %d", n)
	}
	if n := w.SpawnFood(-4); n != 0 {
		t.Errorf("expected 0 placed, got %d", n)
	}
	if w.FoodCount() != 0 {
		t.Errorf("expected no food, got %d", w.FoodCount())
	}
}

func TestSpawnFood_FullGridIsNoOp(t *testing.T) {
	cfg := testWorldConfig()
	cfg.Width, cfg.Height = 3, 3
	cfg.MaxFood = 100
	w := newTestWorld(t, cfg, 5)

	if n := w.SpawnFood(50); n != 9 {
		t.Fatalf("expected to fill all 9 cells, placed %d", n)
	}
	if n := w.SpawnFood(5); n != 0 {
		t.Errorf("expected no-op on a full grid, placed %d", n)
	}
	if w.FoodCount() != 9 {
		t.Errorf("expected 9 food, got %d", w.FoodCount())
	}
}

func TestSpawnFood_OnlyConvertsEmptyCells(t *testing.T) {
	cfg := testWorldConfig()
	cfg.MaxFood = 100
	w := newTestWorld(t, cfg, 11)

	w.SpawnFood(40)
	before := w.Cells(nil)
	placed := w.SpawnFood(40)

	after := w.Cells(nil)
	changed := 0
	for i := range before {
		if before[i] == CellFood && after[i] != CellFood {
			t.Fatalf("cell %d lost food during spawn", i)
		}
		if before[i] != after[i] {
			changed++
		}
	}
	if changed != placed {
		t.Errorf("expected %d newly placed cells, saw %d", placed, changed)
	}
}

func TestSpawnFood_CoversWholeGrid(t *testing.T) {
	// Repeated single spawns from an empty grid should reach corners and edges alike
	cfg := testWorldConfig()
	cfg.MaxFood = 1
	hits := make([]int, cfg.Width*cfg.Height)

	w := newTestWorld(t, cfg, 17)
	for i := 0; i < 5000; i++ {
		w.SpawnFood(1)
		for j, c := range w.cells {
			if c == CellFood {
				hits[j]++
				w.TakeFood(j%w.W, j/w.W)
			}
		}
	}
	for j, n := range hits {
		if n == 0 {
			t.Errorf("cell (%d,%d) never received food", j%cfg.Width, j/cfg.Width)
		}
	}
}

func TestSpawnFood_DeterministicForSeed(t *testing.T) {
	cfg := testWorldConfig()
	cfg.InitialFood = 12
	a := newTestWorld(t, cfg, 42)
	b := newTestWorld(t, cfg, 42)

	a.SpawnFood(5)
	b.SpawnFood(5)

	ca, cb := a.Cells(nil), b.Cells(nil)
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("grids diverge at cell %d", i)
		}
	}
}

// ---------- StepRegrow ----------

func TestStepRegrow_SpawnsUpToPerStep(t *testing.T) {
	w := newTestWorld(t, testWorldConfig(), 9)

	if n := w.StepRegrow(); n != 5 {
		t.Errorf("expected 5 regrown, got %d", n)
	}
	for i := 0; i < 10; i++ {
		w.StepRegrow()
		if w.FoodCount() > w.MaxFood() {
			t.Fatalf("food %d exceeds cap %d", w.FoodCount(), w.MaxFood())
		}
	}
	if n := w.StepRegrow(); n != 0 {
		t.Errorf("expected no regrowth at cap, got %d", n)
	}
}

// ---------- Take / Place ----------

func TestTakeFood_ClearsCell(t *testing.T) {
	w := newTestWorld(t, testWorldConfig(), 1)

	if !w.PlaceFood(3, 4) {
		t.Fatal("expected placement on empty cell")
	}
	if w.PlaceFood(3, 4) {
		t.Error("placing on an occupied cell should fail")
	}
	if !w.HasFood(13, -6) {
		t.Error("expected wrapped lookup to see food at (3,4)")
	}
	if !w.TakeFood(3, 4) {
		t.Fatal("expected to take food")
	}
	if w.TakeFood(3, 4) {
		t.Error("second take should find nothing")
	}
	if w.FoodCount() != 0 {
		t.Errorf("expected 0 food, got %d", w.FoodCount())
	}
}

func TestPlaceFood_RespectsCap(t *testing.T) {
	cfg := testWorldConfig()
	cfg.MaxFood = 2
	w := newTestWorld(t, cfg, 1)

	w.PlaceFood(0, 0)
	w.PlaceFood(1, 0)
	if w.PlaceFood(2, 0) {
		t.Error("placement beyond max_food should fail")
	}
	if w.FoodCount() != 2 {
		t.Errorf("expected 2 food, got %d", w.FoodCount())
	}
}
