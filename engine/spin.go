package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/rng"
)

// Request carries everything one spin needs besides randomness.
type Request struct {
	Bet    decimal.Decimal
	Mode   Mode
	Sticky []StickyFrame
}

// Outcome is the immutable result of one spin. A given request is
// served exactly once; callers persist the outcome before issuing the
// next request.
type Outcome struct {
	Grid         Grid            `json:"grid"`
	Mode         Mode            `json:"mode"`
	Bet          decimal.Decimal `json:"bet"`
	ScatterCount int             `json:"scatterCount"`
	Lines        []LineWin       `json:"winningPaylines,omitempty"`
	WinningCells []Coord         `json:"winningCells,omitempty"`
	RawPayout    decimal.Decimal `json:"rawPayout"`
	Payout       decimal.Decimal `json:"payout"`
	JackpotHits  []JackpotHit    `json:"jackpotHits,omitempty"`

	// BonusTrigger is set on base-game spins whose scatter count enters
	// a bonus tier; ModeBase means no trigger.
	BonusTrigger     Mode `json:"bonusTrigger,omitempty"`
	FreeSpinsAwarded int  `json:"freeSpinsAwarded,omitempty"`

	// UpdatedSticky is the sticky frame set to persist for the next
	// bonus spin.
	UpdatedSticky []StickyFrame `json:"updatedStickyFrames,omitempty"`
}

// Spin is the engine's single entry point: one atomic, pure function
// from (config, request, RNG draws) to an outcome. Grid generation
// through payout is indivisible; on any draw failure no partial grid is
// returned and no state is mutated. Animation sequencing is entirely
// the consumer's concern.
func Spin(cfg *Config, req Request, src rng.Source) (*Outcome, error) {
	if req.Bet.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("engine: bet must be positive, got %s", req.Bet)
	}
	for _, sf := range req.Sticky {
		if sf.Row < 0 || sf.Row >= Rows || sf.Col < 0 || sf.Col >= Cols {
			return nil, fmt.Errorf("engine: sticky frame out of bounds at (%d,%d)", sf.Row, sf.Col)
		}
	}

	grid, err := GenerateGrid(cfg, req.Mode, req.Sticky, src)
	if err != nil {
		return nil, err
	}
	lines := Evaluate(cfg, grid, req.Bet)
	frames, err := ApplyFrames(cfg, grid, lines, req.Mode, req.Sticky, req.Bet, src)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Grid:          grid,
		Mode:          req.Mode,
		Bet:           req.Bet,
		ScatterCount:  lines.ScatterCount,
		Lines:         lines.Lines,
		WinningCells:  lines.WinningCells,
		RawPayout:     lines.RawPayout,
		Payout:        frames.Payout,
		JackpotHits:   frames.JackpotHits,
		UpdatedSticky: frames.UpdatedSticky,
	}

	if req.Mode == ModeBase {
		if tier, spins := TriggerForScatters(cfg, lines.ScatterCount); tier != ModeBase {
			out.BonusTrigger = tier
			out.FreeSpinsAwarded = spins
		}
	}
	return out, nil
}
