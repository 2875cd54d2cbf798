package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/rng"
)

// BonusState owns one free-spin run: tier, remaining spins, winnings
// accumulated so far, and the sticky frame set. The zero value (mode
// None) means no bonus is active. The state advances only on explicit
// spin requests; nothing is timer-driven.
type BonusState struct {
	Mode           Mode            `json:"mode"`
	SpinsRemaining int             `json:"spinsRemaining"`
	AccumulatedWin decimal.Decimal `json:"accumulatedWin"`
	Sticky         []StickyFrame   `json:"stickyFrames,omitempty"`
}

// Active reports whether a bonus run is in progress.
func (s *BonusState) Active() bool {
	return s.Mode != ModeBase && s.SpinsRemaining > 0
}

// BuyKind selects a purchased bonus entry.
type BuyKind string

const (
	BuyRegular BuyKind = "regular" // weighted Tier1/Tier2 draw at 100x bet
	BuySuper   BuyKind = "super"   // guaranteed Tier3 at 300x bet
)

// TriggerForScatters maps a base-game scatter count to the bonus tier
// it enters and the free spins awarded. ModeBase means no trigger.
func TriggerForScatters(cfg *Config, scatters int) (Mode, int) {
	for _, mode := range []Mode{ModeTier3, ModeTier2, ModeTier1} {
		tc, ok := cfg.TierFor(mode)
		if ok && scatters >= tc.Scatters {
			return mode, tc.FreeSpins
		}
	}
	return ModeBase, 0
}

// EnterBonus creates a fresh bonus run for a tier, placing its initial
// sticky frames: one for Tier1, three for Tier2, and full grid
// coverage for Tier3. Initial frames draw from the bonus pools.
func EnterBonus(cfg *Config, mode Mode, src rng.Source) (*BonusState, error) {
	tc, ok := cfg.TierFor(mode)
	if !ok {
		return nil, fmt.Errorf("engine: %s is not a bonus tier", mode)
	}
	state := &BonusState{
		Mode:           mode,
		SpinsRemaining: tc.FreeSpins,
		AccumulatedWin: decimal.Zero,
	}

	if tc.StickyCount < 0 {
		// Full coverage: every cell framed and sticky from entry.
		for r := 0; r < Rows; r++ {
			for c := 0; c < Cols; c++ {
				f, err := drawStickyFrame(cfg, mode, src)
				if err != nil {
					return nil, err
				}
				state.Sticky = append(state.Sticky, StickyFrame{Row: r, Col: c, Frame: f})
			}
		}
		return state, nil
	}

	for i := 0; i < tc.StickyCount; i++ {
		sf, err := placeStickyFrame(cfg, mode, state.Sticky, src)
		if err != nil {
			return nil, err
		}
		state.Sticky = append(state.Sticky, sf)
	}
	return state, nil
}

// BuyBonus creates a purchased bonus run and returns it together with
// its cost in bet multiples. The regular buy draws Tier1 or Tier2 by
// configured weight; the super buy always enters Tier3.
func BuyBonus(cfg *Config, kind BuyKind, src rng.Source) (*BonusState, decimal.Decimal, error) {
	switch kind {
	case BuySuper:
		state, err := EnterBonus(cfg, ModeTier3, src)
		if err != nil {
			return nil, decimal.Zero, err
		}
		return state, decimal.NewFromFloat(cfg.BuySuperCost), nil
	case BuyRegular:
		f, err := src.Float64()
		if err != nil {
			return nil, decimal.Zero, err
		}
		mode := ModeTier2
		if f < cfg.BuyTier1Weight {
			mode = ModeTier1
		}
		state, err := EnterBonus(cfg, mode, src)
		if err != nil {
			return nil, decimal.Zero, err
		}
		return state, decimal.NewFromFloat(cfg.BuyRegularCost), nil
	default:
		return nil, decimal.Zero, fmt.Errorf("engine: unknown bonus buy kind %q", kind)
	}
}

// PlaySpin runs one bonus spin and advances the state machine: the
// outcome is accumulated, the spin counter decremented, retriggers
// extend the run, and the sticky set is replaced by the outcome's
// updated frames. Returns the outcome and whether the run finished.
func (s *BonusState) PlaySpin(cfg *Config, bet decimal.Decimal, src rng.Source) (*Outcome, bool, error) {
	if !s.Active() {
		return nil, false, fmt.Errorf("engine: no active bonus run")
	}

	out, err := Spin(cfg, Request{Bet: bet, Mode: s.Mode, Sticky: s.Sticky}, src)
	if err != nil {
		return nil, false, err
	}

	s.Sticky = out.UpdatedSticky
	s.SpinsRemaining--
	s.AccumulatedWin = s.AccumulatedWin.Add(out.Payout)

	// Retrigger: 3+ scatters this spin add 4 spins, exactly 2 add 2.
	// The extension is applied after the decrement, so a run at one
	// remaining spin that draws 2 scatters continues at 1-1+2=2.
	switch {
	case out.ScatterCount >= 3:
		s.retrigger(cfg, 4, src)
	case out.ScatterCount == 2:
		s.retrigger(cfg, 2, src)
	}

	return out, s.SpinsRemaining == 0, nil
}

// retrigger extends the run and, below full coverage, grows the sticky
// set by one frame.
func (s *BonusState) retrigger(cfg *Config, spins int, src rng.Source) {
	s.SpinsRemaining += spins
	if cfg.MaxSpins > 0 && s.SpinsRemaining > cfg.MaxSpins {
		s.SpinsRemaining = cfg.MaxSpins
	}
	if len(s.Sticky) < Rows*Cols {
		if sf, err := placeStickyFrame(cfg, s.Mode, s.Sticky, src); err == nil {
			s.Sticky = append(s.Sticky, sf)
		}
	}
}

// Settle emits the run's total winnings as the single terminal payout
// and resets the state to None.
func (s *BonusState) Settle() decimal.Decimal {
	total := s.AccumulatedWin
	*s = BonusState{AccumulatedWin: decimal.Zero}
	return total
}

// drawStickyFrame draws a frame from the mode's pools, ignoring the
// frame probability: sticky placement always yields a frame.
func drawStickyFrame(cfg *Config, mode Mode, src rng.Source) (Frame, error) {
	kind, err := src.Float64()
	if err != nil {
		return Frame{}, err
	}
	if kind < cfg.JackpotFrameShare {
		tier, err := drawJackpotTier(src)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Kind: FrameJackpot, Tier: tier}, nil
	}
	mult, err := drawMultiplier(cfg, mode, src)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Kind: FrameMultiplier, Multiplier: mult}, nil
}

// placeStickyFrame draws a frame at a random cell not already sticky.
func placeStickyFrame(cfg *Config, mode Mode, taken []StickyFrame, src rng.Source) (StickyFrame, error) {
	occupied := make(map[Coord]bool, len(taken))
	for _, sf := range taken {
		occupied[Coord{Row: sf.Row, Col: sf.Col}] = true
	}
	free := make([]Coord, 0, Rows*Cols-len(taken))
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if !occupied[Coord{Row: r, Col: c}] {
				free = append(free, Coord{Row: r, Col: c})
			}
		}
	}
	if len(free) == 0 {
		return StickyFrame{}, fmt.Errorf("engine: no free cell for sticky frame")
	}
	i, err := src.Intn(len(free))
	if err != nil {
		return StickyFrame{}, err
	}
	f, err := drawStickyFrame(cfg, mode, src)
	if err != nil {
		return StickyFrame{}, err
	}
	return StickyFrame{Row: free[i].Row, Col: free[i].Col, Frame: f}, nil
}
