package engine

import (
	"github.com/shopspring/decimal"
)

// LineWin records one winning payline.
type LineWin struct {
	Line   int             `json:"lineId"`
	Symbol Symbol          `json:"symbol"`
	Count  int             `json:"matchCount"`
	Payout decimal.Decimal `json:"payout"`
	Cells  []Coord         `json:"cells"`
}

// LineResult is the outcome of payline evaluation before frames.
type LineResult struct {
	Lines        []LineWin
	WinningCells []Coord
	ScatterCount int
	RawPayout    decimal.Decimal
}

// Evaluate scans the fixed paylines against a grid. Each line is walked
// left to right from column 0; a win requires a contiguous run of 3+
// matching symbols with wild substituting for everything except
// scatter. Line payouts are paytable multiple times bet, summed across
// lines with overlapping cells deduplicated. Scatters never pay on a
// line; their count is reported for bonus triggering.
func Evaluate(cfg *Config, g Grid, bet decimal.Decimal) LineResult {
	res := LineResult{
		RawPayout:    decimal.Zero,
		ScatterCount: CountScatters(g),
	}
	seen := make(map[Coord]bool)

	for li, line := range Paylines {
		sym, count := scanLine(cfg, g, line)
		mult := cfg.LinePayout(sym, count)
		if mult <= 0 {
			continue
		}
		payout := bet.Mul(decimal.NewFromFloat(mult))
		cells := make([]Coord, count)
		for c := 0; c < count; c++ {
			cells[c] = Coord{Row: line[c], Col: c}
		}
		res.Lines = append(res.Lines, LineWin{
			Line:   li,
			Symbol: sym,
			Count:  count,
			Payout: payout,
			Cells:  cells,
		})
		res.RawPayout = res.RawPayout.Add(payout)
		for _, cell := range cells {
			if !seen[cell] {
				seen[cell] = true
				res.WinningCells = append(res.WinningCells, cell)
			}
		}
	}
	return res
}

// scanLine determines the winning symbol and run length for one line.
//
// A pure-wild prefix can score two ways: as a run of wilds (the highest
// paytable) or extended by the first regular symbol after it. Both are
// priced and the better one wins; ties go to the longer run. A scatter
// terminates the run immediately since wild never substitutes for it.
func scanLine(cfg *Config, g Grid, line [Cols]int) (Symbol, int) {
	wilds := 0
	for wilds < Cols && g[line[wilds]][wilds].Symbol == SymWild {
		wilds++
	}
	if wilds == Cols {
		return SymWild, Cols
	}

	cand := g[line[wilds]][wilds].Symbol
	if cand == SymScatter {
		return SymWild, wilds
	}
	run := wilds + 1
	for c := wilds + 1; c < Cols; c++ {
		s := g[line[c]][c].Symbol
		if s != cand && s != SymWild {
			break
		}
		run++
	}

	wildPay := cfg.LinePayout(SymWild, wilds)
	candPay := cfg.LinePayout(cand, run)
	if wildPay > candPay {
		return SymWild, wilds
	}
	return cand, run
}
