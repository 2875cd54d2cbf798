package engine

import (
	"github.com/Digital-Creators-Team/velvet-slots/rng"
)

// Frame is a multiplier or jackpot overlay on a grid cell.
type Frame struct {
	Kind       FrameKind   `json:"kind"`
	Multiplier int         `json:"multiplier,omitempty"`
	Tier       JackpotTier `json:"tier,omitempty"`
}

// Cell is one position of the reel grid.
type Cell struct {
	Symbol Symbol `json:"symbol"`
	Frame  *Frame `json:"frame,omitempty"`
}

// Grid is the fixed 4-row by 5-column symbol matrix.
type Grid [Rows][Cols]Cell

// Coord addresses a grid cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// StickyFrame is a frame bound to a coordinate for the remainder of a
// bonus run. The cell's symbol is still redrawn every spin; only the
// frame persists.
type StickyFrame struct {
	Row   int   `json:"row"`
	Col   int   `json:"col"`
	Frame Frame `json:"frame"`
}

// GenerateGrid produces a fresh grid for one spin. Symbols and frames
// are drawn independently per cell in row-major order, symbol first,
// so that a deterministic Source replays to an identical grid. Sticky
// frames are stamped last and override any random frame at their
// coordinates.
func GenerateGrid(cfg *Config, mode Mode, sticky []StickyFrame, src rng.Source) (Grid, error) {
	var g Grid
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			sym, err := drawSymbol(cfg, mode, src)
			if err != nil {
				return Grid{}, err
			}
			frame, err := drawFrame(cfg, mode, src)
			if err != nil {
				return Grid{}, err
			}
			g[r][c] = Cell{Symbol: sym, Frame: frame}
		}
	}
	for _, sf := range sticky {
		f := sf.Frame
		g[sf.Row][sf.Col].Frame = &f
	}
	return g, nil
}

// drawSymbol draws one symbol from the mode's distribution. The top
// bonus tier never draws scatters; the remainder after scatter and wild
// is split uniformly across the regular symbols.
func drawSymbol(cfg *Config, mode Mode, src rng.Source) (Symbol, error) {
	f, err := src.Float64()
	if err != nil {
		return 0, err
	}
	scatterProb := cfg.ScatterProb
	if mode == ModeTier3 {
		scatterProb = 0
	}
	if f < scatterProb {
		return SymScatter, nil
	}
	if f < scatterProb+cfg.WildProb {
		return SymWild, nil
	}
	i, err := src.Intn(RegularSymbolCount)
	if err != nil {
		return 0, err
	}
	return Symbol(i), nil
}

// drawFrame draws an optional frame for one cell.
func drawFrame(cfg *Config, mode Mode, src rng.Source) (*Frame, error) {
	f, err := src.Float64()
	if err != nil {
		return nil, err
	}
	if f >= cfg.FrameProb(mode) {
		return nil, nil
	}
	kind, err := src.Float64()
	if err != nil {
		return nil, err
	}
	if kind < cfg.JackpotFrameShare {
		tier, err := drawJackpotTier(src)
		if err != nil {
			return nil, err
		}
		return &Frame{Kind: FrameJackpot, Tier: tier}, nil
	}
	mult, err := drawMultiplier(cfg, mode, src)
	if err != nil {
		return nil, err
	}
	return &Frame{Kind: FrameMultiplier, Multiplier: mult}, nil
}

func drawMultiplier(cfg *Config, mode Mode, src rng.Source) (int, error) {
	pool := cfg.MultiplierPool(mode)
	i, err := src.Intn(len(pool))
	if err != nil {
		return 0, err
	}
	return pool[i], nil
}

func drawJackpotTier(src rng.Source) (JackpotTier, error) {
	i, err := src.Intn(JackpotTierCount)
	if err != nil {
		return 0, err
	}
	return JackpotTier(i), nil
}

// CountScatters returns the number of scatter symbols anywhere on the
// grid, independent of payline position.
func CountScatters(g Grid) int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if g[r][c].Symbol == SymScatter {
				n++
			}
		}
	}
	return n
}
