package engine

import (
	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/rng"
)

// JackpotHit records a jackpot frame awarded on a winning cell.
type JackpotHit struct {
	Cell   Coord           `json:"cell"`
	Tier   JackpotTier     `json:"tier"`
	Payout decimal.Decimal `json:"payout"`
}

// FrameResult is the outcome of frame resolution.
type FrameResult struct {
	// Payout is the final spin payout: framed line wins plus jackpot
	// awards. Never less than the raw line payout.
	Payout decimal.Decimal

	JackpotHits []JackpotHit

	// UpdatedSticky is the sticky frame set for the next bonus spin:
	// carried frames with doubled multipliers where they participated
	// in a win, won jackpot frames redrawn to a fresh tier, and frames
	// newly promoted to sticky by winning. Empty outside bonus mode.
	UpdatedSticky []StickyFrame
}

// ApplyFrames resolves multiplier and jackpot frames against the line
// result. Multiplier frames scale each line passing through their cell
// independently and in sequence; jackpot frames award their fixed tier
// payout on top of line wins. In bonus mode every multiplier frame
// involved in a win doubles its stored value for the remainder of the
// run, so a sticky frame's value is monotonically non-decreasing.
// sticky is the frame set that was stamped onto the grid before
// evaluation; frames outside it are transient draws for this spin only
// unless a win promotes them.
func ApplyFrames(cfg *Config, g Grid, lines LineResult, mode Mode, sticky []StickyFrame, bet decimal.Decimal, src rng.Source) (FrameResult, error) {
	res := FrameResult{Payout: decimal.Zero}

	winning := make(map[Coord]bool, len(lines.WinningCells))
	for _, c := range lines.WinningCells {
		winning[c] = true
	}
	wasSticky := make(map[Coord]bool, len(sticky))
	for _, sf := range sticky {
		wasSticky[Coord{Row: sf.Row, Col: sf.Col}] = true
	}

	// Scale each winning line by the multiplier frames along its run.
	for _, lw := range lines.Lines {
		payout := lw.Payout
		for _, cell := range lw.Cells {
			f := g[cell.Row][cell.Col].Frame
			if f != nil && f.Kind == FrameMultiplier {
				payout = payout.Mul(decimal.NewFromInt(int64(f.Multiplier)))
			}
		}
		res.Payout = res.Payout.Add(payout)
	}

	// Jackpot frames on winning cells pay once per cell, in addition to
	// line wins. Won jackpot frames are re-randomized for later spins.
	redrawn := make(map[Coord]JackpotTier)
	for _, cell := range lines.WinningCells {
		f := g[cell.Row][cell.Col].Frame
		if f == nil || f.Kind != FrameJackpot {
			continue
		}
		res.JackpotHits = append(res.JackpotHits, JackpotHit{
			Cell:   cell,
			Tier:   f.Tier,
			Payout: cfg.JackpotPayout(f.Tier, bet),
		})
		res.Payout = res.Payout.Add(cfg.JackpotPayout(f.Tier, bet))
		if mode.IsBonus() {
			tier, err := drawJackpotTier(src)
			if err != nil {
				return FrameResult{}, err
			}
			redrawn[cell] = tier
		}
	}

	if !mode.IsBonus() {
		return res, nil
	}

	// Carry the sticky set forward: frames already sticky persist, and
	// a transient frame that was part of a win is promoted to sticky
	// for the rest of the run. Winning multiplier frames double; won
	// jackpot frames carry their redrawn tier.
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			f := g[r][c].Frame
			if f == nil {
				continue
			}
			coord := Coord{Row: r, Col: c}
			if !wasSticky[coord] && !winning[coord] {
				continue
			}
			next := *f
			if winning[coord] {
				switch next.Kind {
				case FrameMultiplier:
					next.Multiplier *= 2
				case FrameJackpot:
					next.Tier = redrawn[coord]
				}
			}
			res.UpdatedSticky = append(res.UpdatedSticky, StickyFrame{Row: r, Col: c, Frame: next})
		}
	}
	return res, nil
}
