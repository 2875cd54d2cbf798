package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTriggerForScatters(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		scatters  int
		wantMode  Mode
		wantSpins int
	}{
		{0, ModeBase, 0},
		{1, ModeBase, 0},
		{2, ModeBase, 0},
		{3, ModeTier1, 10},
		{4, ModeTier2, 12},
		{5, ModeTier3, 14},
		{7, ModeTier3, 14},
	}

	for _, tt := range tests {
		mode, spins := TriggerForScatters(cfg, tt.scatters)
		if mode != tt.wantMode || spins != tt.wantSpins {
			t.Errorf("TriggerForScatters(%d) = (%s, %d), want (%s, %d)",
				tt.scatters, mode, spins, tt.wantMode, tt.wantSpins)
		}
	}
}

func TestEnterBonusTierSetup(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		mode       Mode
		wantSpins  int
		wantSticky int
	}{
		{ModeTier1, 10, 1},
		{ModeTier2, 12, 3},
		{ModeTier3, 14, Rows * Cols},
	}

	for _, tt := range tests {
		src := &scriptSource{floats: []float64{0.5}, ints: []int{0, 1, 2, 3, 4, 5}}
		state, err := EnterBonus(cfg, tt.mode, src)
		if err != nil {
			t.Fatalf("EnterBonus(%s) failed: %v", tt.mode, err)
		}
		if state.Mode != tt.mode || state.SpinsRemaining != tt.wantSpins {
			t.Errorf("EnterBonus(%s): mode=%s spins=%d, want spins=%d",
				tt.mode, state.Mode, state.SpinsRemaining, tt.wantSpins)
		}
		if len(state.Sticky) != tt.wantSticky {
			t.Errorf("EnterBonus(%s): %d sticky frames, want %d", tt.mode, len(state.Sticky), tt.wantSticky)
		}
		if !state.Active() {
			t.Errorf("EnterBonus(%s): state not active", tt.mode)
		}
		seen := make(map[Coord]bool)
		for _, sf := range state.Sticky {
			c := Coord{Row: sf.Row, Col: sf.Col}
			if seen[c] {
				t.Errorf("EnterBonus(%s): duplicate sticky cell %+v", tt.mode, c)
			}
			seen[c] = true
		}
	}
}

func TestEnterBonusRejectsBaseMode(t *testing.T) {
	if _, err := EnterBonus(DefaultConfig(), ModeBase, &scriptSource{floats: []float64{0.5}, ints: []int{0}}); err == nil {
		t.Error("EnterBonus accepted the base mode")
	}
}

func TestBuyBonus(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		kind     BuyKind
		tierDraw float64
		wantMode Mode
		wantCost decimal.Decimal
	}{
		{"super always top tier", BuySuper, 0.99, ModeTier3, decimal.NewFromInt(300)},
		{"regular below weight", BuyRegular, 0.1, ModeTier1, decimal.NewFromInt(100)},
		{"regular above weight", BuyRegular, 0.9, ModeTier2, decimal.NewFromInt(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptSource{floats: []float64{tt.tierDraw, 0.5}, ints: []int{0, 1, 2, 3}}
			state, cost, err := BuyBonus(cfg, tt.kind, src)
			if err != nil {
				t.Fatalf("BuyBonus failed: %v", err)
			}
			if state.Mode != tt.wantMode {
				t.Errorf("mode = %s, want %s", state.Mode, tt.wantMode)
			}
			if !cost.Equal(tt.wantCost) {
				t.Errorf("cost = %s, want %s", cost, tt.wantCost)
			}
		})
	}

	if _, _, err := BuyBonus(cfg, BuyKind("mystery"), &scriptSource{floats: []float64{0.5}, ints: []int{0}}); err == nil {
		t.Error("BuyBonus accepted an unknown kind")
	}
}

// gridScript builds the draw sequences for one generated grid: every
// cell draws a symbol and a frame check, scatters at the given
// row-major positions, all other cells taking their column's symbol and
// no cell drawing a frame.
func gridScript(scatterAt map[int]bool) ([]float64, []int) {
	var floats []float64
	var ints []int
	for i := 0; i < Rows*Cols; i++ {
		if scatterAt[i] {
			floats = append(floats, 0.0, 0.9)
			continue
		}
		floats = append(floats, 0.5, 0.9)
		ints = append(ints, i%Cols)
	}
	return floats, ints
}

func TestPlaySpinRetriggerAtLastSpin(t *testing.T) {
	cfg := DefaultConfig()
	state := &BonusState{Mode: ModeTier1, SpinsRemaining: 1, AccumulatedWin: decimal.Zero}

	// Two scatters on the final spin extend the run instead of ending it.
	floats, ints := gridScript(map[int]bool{0: true, 1: true})
	floats = append(floats, 0.5) // retrigger frame kind: multiplier
	ints = append(ints, 5, 0)    // retrigger cell and pool index
	src := &scriptSource{floats: floats, ints: ints}

	out, done, err := state.PlaySpin(cfg, decimal.NewFromInt(1), src)
	if err != nil {
		t.Fatalf("PlaySpin failed: %v", err)
	}
	if out.ScatterCount != 2 {
		t.Fatalf("scatter count = %d, want 2", out.ScatterCount)
	}
	if done {
		t.Error("run reported finished despite retrigger")
	}
	if state.SpinsRemaining != 2 {
		t.Errorf("spins remaining = %d, want 2 (1 - 1 + 2)", state.SpinsRemaining)
	}
	if len(state.Sticky) != 1 {
		t.Errorf("retrigger placed %d sticky frames, want 1", len(state.Sticky))
	}
}

func TestPlaySpinFullRetrigger(t *testing.T) {
	cfg := DefaultConfig()
	state := &BonusState{Mode: ModeTier2, SpinsRemaining: 5, AccumulatedWin: decimal.Zero}

	floats, ints := gridScript(map[int]bool{0: true, 1: true, 2: true})
	floats = append(floats, 0.5)
	ints = append(ints, 0, 0)
	src := &scriptSource{floats: floats, ints: ints}

	_, done, err := state.PlaySpin(cfg, decimal.NewFromInt(1), src)
	if err != nil {
		t.Fatalf("PlaySpin failed: %v", err)
	}
	if done {
		t.Error("run reported finished")
	}
	if state.SpinsRemaining != 8 {
		t.Errorf("spins remaining = %d, want 8 (5 - 1 + 4)", state.SpinsRemaining)
	}
}

func TestPlaySpinRetriggerRespectsCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSpins = 5
	state := &BonusState{Mode: ModeTier1, SpinsRemaining: 5, AccumulatedWin: decimal.Zero}

	floats, ints := gridScript(map[int]bool{0: true, 1: true, 2: true})
	floats = append(floats, 0.5)
	ints = append(ints, 0, 0)
	src := &scriptSource{floats: floats, ints: ints}

	if _, _, err := state.PlaySpin(cfg, decimal.NewFromInt(1), src); err != nil {
		t.Fatalf("PlaySpin failed: %v", err)
	}
	if state.SpinsRemaining != 5 {
		t.Errorf("spins remaining = %d, want cap of 5", state.SpinsRemaining)
	}
}

func TestPlaySpinFinishAndSettle(t *testing.T) {
	cfg := DefaultConfig()
	state := &BonusState{
		Mode:           ModeTier1,
		SpinsRemaining: 1,
		AccumulatedWin: decimal.NewFromInt(50),
	}

	floats, ints := gridScript(nil)
	src := &scriptSource{floats: floats, ints: ints}

	_, done, err := state.PlaySpin(cfg, decimal.NewFromInt(1), src)
	if err != nil {
		t.Fatalf("PlaySpin failed: %v", err)
	}
	if !done {
		t.Fatal("run not reported finished at zero spins")
	}

	total := state.Settle()
	if !total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("settled %s, want 50", total)
	}
	if state.Active() {
		t.Error("state still active after settle")
	}
	if !state.AccumulatedWin.IsZero() {
		t.Errorf("accumulated win not reset: %s", state.AccumulatedWin)
	}

	// The run pays out exactly once.
	if !state.Settle().IsZero() {
		t.Error("second settle paid again")
	}
	if _, _, err := state.PlaySpin(cfg, decimal.NewFromInt(1), src); err == nil {
		t.Error("PlaySpin succeeded on a settled run")
	}
}

func TestPlaySpinAccumulatesWinnings(t *testing.T) {
	cfg := DefaultConfig()
	state := &BonusState{Mode: ModeTier1, SpinsRemaining: 3, AccumulatedWin: decimal.Zero}

	floats, ints := gridScript(nil)
	src := &scriptSource{floats: floats, ints: ints}

	out, _, err := state.PlaySpin(cfg, decimal.NewFromInt(2), src)
	if err != nil {
		t.Fatalf("PlaySpin failed: %v", err)
	}
	if !state.AccumulatedWin.Equal(out.Payout) {
		t.Errorf("accumulated %s, want %s", state.AccumulatedWin, out.Payout)
	}
	if state.SpinsRemaining != 2 {
		t.Errorf("spins remaining = %d, want 2", state.SpinsRemaining)
	}
}
