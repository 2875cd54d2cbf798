package engine

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/rng"
)

func TestSpinRejectsBadRequests(t *testing.T) {
	cfg := DefaultConfig()
	src := rng.NewStream("server", "client", 1)

	tests := []struct {
		name string
		req  Request
	}{
		{"zero bet", Request{Bet: decimal.Zero, Mode: ModeBase}},
		{"negative bet", Request{Bet: decimal.NewFromInt(-5), Mode: ModeBase}},
		{"sticky row out of bounds", Request{
			Bet:    decimal.NewFromInt(1),
			Mode:   ModeTier1,
			Sticky: []StickyFrame{{Row: Rows, Col: 0, Frame: Frame{Kind: FrameMultiplier, Multiplier: 2}}},
		}},
		{"sticky col out of bounds", Request{
			Bet:    decimal.NewFromInt(1),
			Mode:   ModeTier1,
			Sticky: []StickyFrame{{Row: 0, Col: -1, Frame: Frame{Kind: FrameMultiplier, Multiplier: 2}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out, err := Spin(cfg, tt.req, src); err == nil {
				t.Errorf("Spin accepted request, outcome %+v", out)
			}
		})
	}
}

func TestSpinDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	req := Request{Bet: decimal.NewFromInt(2), Mode: ModeBase}

	a, err := Spin(cfg, req, rng.NewStream("server-seed", "client-seed", 42))
	if err != nil {
		t.Fatalf("first spin failed: %v", err)
	}
	b, err := Spin(cfg, req, rng.NewStream("server-seed", "client-seed", 42))
	if err != nil {
		t.Fatalf("second spin failed: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical seeds produced different outcomes:\n%+v\n%+v", a, b)
	}

	c, err := Spin(cfg, req, rng.NewStream("server-seed", "client-seed", 43))
	if err != nil {
		t.Fatalf("third spin failed: %v", err)
	}
	if reflect.DeepEqual(a.Grid, c.Grid) {
		t.Error("different nonces produced an identical grid")
	}
}

func TestSpinEntropyFailureIsAtomic(t *testing.T) {
	cfg := DefaultConfig()
	out, err := Spin(cfg, Request{Bet: decimal.NewFromInt(1), Mode: ModeBase}, failSource{})
	if err == nil {
		t.Fatal("expected error from failing entropy source")
	}
	if out != nil {
		t.Errorf("got partial outcome %+v, want nil", out)
	}
}

func TestSpinPayoutInvariants(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(2)

	for nonce := uint64(0); nonce < 200; nonce++ {
		out, err := Spin(cfg, Request{Bet: bet, Mode: ModeBase}, rng.NewStream("srv", "cli", nonce))
		if err != nil {
			t.Fatalf("spin %d failed: %v", nonce, err)
		}

		sum := decimal.Zero
		for _, lw := range out.Lines {
			sum = sum.Add(lw.Payout)
		}
		if !out.RawPayout.Equal(sum) {
			t.Errorf("spin %d: raw payout %s != line sum %s", nonce, out.RawPayout, sum)
		}
		if out.Payout.LessThan(out.RawPayout) {
			t.Errorf("spin %d: final payout %s below raw %s", nonce, out.Payout, out.RawPayout)
		}
		if len(out.UpdatedSticky) != 0 {
			t.Errorf("spin %d: base spin produced sticky frames", nonce)
		}
	}
}

func TestSpinBaseTriggersBonus(t *testing.T) {
	cfg := DefaultConfig()
	floats, ints := gridScript(map[int]bool{0: true, 5: true, 10: true})
	src := &scriptSource{floats: floats, ints: ints}

	out, err := Spin(cfg, Request{Bet: decimal.NewFromInt(1), Mode: ModeBase}, src)
	if err != nil {
		t.Fatalf("Spin failed: %v", err)
	}
	if out.ScatterCount != 3 {
		t.Fatalf("scatter count = %d, want 3", out.ScatterCount)
	}
	if out.BonusTrigger != ModeTier1 {
		t.Errorf("bonus trigger = %s, want %s", out.BonusTrigger, ModeTier1)
	}
	if out.FreeSpinsAwarded != 10 {
		t.Errorf("free spins awarded = %d, want 10", out.FreeSpinsAwarded)
	}
}

func TestSpinBonusModeNeverTriggers(t *testing.T) {
	cfg := DefaultConfig()
	floats, ints := gridScript(map[int]bool{0: true, 5: true, 10: true, 15: true})
	src := &scriptSource{floats: floats, ints: ints}

	out, err := Spin(cfg, Request{Bet: decimal.NewFromInt(1), Mode: ModeTier1}, src)
	if err != nil {
		t.Fatalf("Spin failed: %v", err)
	}
	if out.ScatterCount != 4 {
		t.Fatalf("scatter count = %d, want 4", out.ScatterCount)
	}
	if out.BonusTrigger != ModeBase || out.FreeSpinsAwarded != 0 {
		t.Errorf("bonus spin set a trigger: %s/%d", out.BonusTrigger, out.FreeSpinsAwarded)
	}
}
