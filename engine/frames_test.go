package engine

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/rng"
)

// scriptSource replays fixed draw sequences, cycling when exhausted.
type scriptSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptSource) Float64() (float64, error) {
	if len(s.floats) == 0 {
		return 0, fmt.Errorf("script has no floats")
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v, nil
}

func (s *scriptSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("rng: Intn called with n=%d", n)
	}
	if len(s.ints) == 0 {
		return 0, fmt.Errorf("script has no ints")
	}
	v := s.ints[s.ii%len(s.ints)] % n
	s.ii++
	return v, nil
}

// failSource simulates an entropy outage on every draw.
type failSource struct{}

func (failSource) Float64() (float64, error) { return 0, rng.ErrEntropy }
func (failSource) Intn(int) (int, error)     { return 0, rng.ErrEntropy }

func mult(n int) *Frame { return &Frame{Kind: FrameMultiplier, Multiplier: n} }

// crownRow returns a grid whose top row pays crown three-of-a-kind,
// worth 1x bet before frames.
func crownRow() Grid {
	g := fillerGrid()
	setRow(&g, 0, SymCrown, SymCrown, SymCrown, SymClubs, SymDice)
	return g
}

func TestApplyFramesMultiplierScalesLine(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(2)
	g := crownRow()
	g[0][1].Frame = mult(5)

	lines := Evaluate(cfg, g, bet)
	res, err := ApplyFrames(cfg, g, lines, ModeBase, nil, bet, &scriptSource{})
	if err != nil {
		t.Fatalf("ApplyFrames failed: %v", err)
	}

	// $2 line win through a 5x frame pays $10.
	want := decimal.NewFromInt(10)
	if !res.Payout.Equal(want) {
		t.Errorf("payout = %s, want %s", res.Payout, want)
	}
	if len(res.UpdatedSticky) != 0 {
		t.Errorf("base game produced sticky frames: %+v", res.UpdatedSticky)
	}
}

func TestApplyFramesMultipliersCompound(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(2)
	g := crownRow()
	g[0][0].Frame = mult(2)
	g[0][2].Frame = mult(5)

	lines := Evaluate(cfg, g, bet)
	res, err := ApplyFrames(cfg, g, lines, ModeBase, nil, bet, &scriptSource{})
	if err != nil {
		t.Fatalf("ApplyFrames failed: %v", err)
	}

	want := decimal.NewFromInt(20) // $2 x 2 x 5
	if !res.Payout.Equal(want) {
		t.Errorf("payout = %s, want %s", res.Payout, want)
	}
}

func TestApplyFramesIgnoresFrameOutsideWin(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(2)
	g := crownRow()
	g[0][4].Frame = mult(10) // beyond the 3-cell run
	g[2][2].Frame = mult(10) // not on a winning line

	lines := Evaluate(cfg, g, bet)
	res, err := ApplyFrames(cfg, g, lines, ModeBase, nil, bet, &scriptSource{})
	if err != nil {
		t.Fatalf("ApplyFrames failed: %v", err)
	}

	if !res.Payout.Equal(decimal.NewFromInt(2)) {
		t.Errorf("payout = %s, want 2", res.Payout)
	}
}

func TestApplyFramesJackpotOnWinningCell(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(2)
	g := crownRow()
	g[0][1].Frame = &Frame{Kind: FrameJackpot, Tier: JackpotMini}
	g[3][3].Frame = &Frame{Kind: FrameJackpot, Tier: JackpotMega} // not winning, never pays

	lines := Evaluate(cfg, g, bet)
	res, err := ApplyFrames(cfg, g, lines, ModeBase, nil, bet, &scriptSource{})
	if err != nil {
		t.Fatalf("ApplyFrames failed: %v", err)
	}

	if len(res.JackpotHits) != 1 {
		t.Fatalf("got %d jackpot hits, want 1", len(res.JackpotHits))
	}
	hit := res.JackpotHits[0]
	if hit.Tier != JackpotMini {
		t.Errorf("hit tier = %s, want mini", hit.Tier)
	}
	if !hit.Payout.Equal(decimal.NewFromInt(30)) {
		t.Errorf("hit payout = %s, want 30", hit.Payout)
	}
	// line win plus jackpot award
	want := decimal.NewFromInt(32)
	if !res.Payout.Equal(want) {
		t.Errorf("payout = %s, want %s", res.Payout, want)
	}
	if res.Payout.LessThan(lines.RawPayout) {
		t.Errorf("final payout %s below raw payout %s", res.Payout, lines.RawPayout)
	}
}

func TestApplyFramesBonusStickyDoubling(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(2)
	sticky := []StickyFrame{
		{Row: 0, Col: 1, Frame: Frame{Kind: FrameMultiplier, Multiplier: 5}},
		{Row: 3, Col: 4, Frame: Frame{Kind: FrameMultiplier, Multiplier: 7}},
	}
	g := crownRow()
	// Stamp the sticky set plus two transient draws.
	g[0][1].Frame = mult(5)
	g[3][4].Frame = mult(7)
	g[0][0].Frame = mult(3) // transient, on the win: promotes and doubles
	g[2][2].Frame = mult(4) // transient, off the win: discarded

	lines := Evaluate(cfg, g, bet)
	res, err := ApplyFrames(cfg, g, lines, ModeTier1, sticky, bet, &scriptSource{})
	if err != nil {
		t.Fatalf("ApplyFrames failed: %v", err)
	}

	if !res.Payout.Equal(decimal.NewFromInt(30)) { // $2 x 3 x 5
		t.Errorf("payout = %s, want 30", res.Payout)
	}

	want := []StickyFrame{
		{Row: 0, Col: 0, Frame: Frame{Kind: FrameMultiplier, Multiplier: 6}},
		{Row: 0, Col: 1, Frame: Frame{Kind: FrameMultiplier, Multiplier: 10}},
		{Row: 3, Col: 4, Frame: Frame{Kind: FrameMultiplier, Multiplier: 7}},
	}
	if len(res.UpdatedSticky) != len(want) {
		t.Fatalf("got %d sticky frames, want %d: %+v", len(res.UpdatedSticky), len(want), res.UpdatedSticky)
	}
	for i, sf := range want {
		if res.UpdatedSticky[i] != sf {
			t.Errorf("sticky[%d] = %+v, want %+v", i, res.UpdatedSticky[i], sf)
		}
	}
}

func TestApplyFramesBonusJackpotRedrawn(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(1)
	sticky := []StickyFrame{
		{Row: 0, Col: 2, Frame: Frame{Kind: FrameJackpot, Tier: JackpotMega}},
	}
	g := crownRow()
	g[0][2].Frame = &Frame{Kind: FrameJackpot, Tier: JackpotMega}

	lines := Evaluate(cfg, g, bet)
	src := &scriptSource{ints: []int{0}} // redraw lands on mini
	res, err := ApplyFrames(cfg, g, lines, ModeTier2, sticky, bet, src)
	if err != nil {
		t.Fatalf("ApplyFrames failed: %v", err)
	}

	if len(res.JackpotHits) != 1 || res.JackpotHits[0].Tier != JackpotMega {
		t.Fatalf("unexpected jackpot hits: %+v", res.JackpotHits)
	}
	// crown win $1 plus mega 200x
	if !res.Payout.Equal(decimal.NewFromInt(201)) {
		t.Errorf("payout = %s, want 201", res.Payout)
	}

	if len(res.UpdatedSticky) != 1 {
		t.Fatalf("got %d sticky frames, want 1", len(res.UpdatedSticky))
	}
	got := res.UpdatedSticky[0]
	if got.Frame.Kind != FrameJackpot || got.Frame.Tier != JackpotMini {
		t.Errorf("won jackpot frame not redrawn: %+v", got.Frame)
	}
}

func TestApplyFramesEntropyFailure(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(1)
	sticky := []StickyFrame{
		{Row: 0, Col: 0, Frame: Frame{Kind: FrameJackpot, Tier: JackpotMini}},
	}
	g := crownRow()
	g[0][0].Frame = &Frame{Kind: FrameJackpot, Tier: JackpotMini}

	lines := Evaluate(cfg, g, bet)
	if _, err := ApplyFrames(cfg, g, lines, ModeTier1, sticky, bet, failSource{}); err == nil {
		t.Error("expected error when the jackpot redraw cannot be served")
	}
}
