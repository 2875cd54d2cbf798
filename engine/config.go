package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Grid dimensions are fixed by the game design.
const (
	Rows = 4
	Cols = 5
)

// Config holds every parameter table the engine consults. Tables are
// enumerated once at initialization and never mutated afterwards, so a
// spin is a pure function of (config, request, RNG draws).
type Config struct {
	GameCode string `mapstructure:"game_code" json:"gameCode"`
	GameName string `mapstructure:"game_name" json:"gameName"`

	MinBet float64 `mapstructure:"min_bet" json:"minBet"`
	MaxBet float64 `mapstructure:"max_bet" json:"maxBet"`

	// Paytable maps symbol name to bet multiples for 3/4/5-of-a-kind.
	// Wild carries the highest table; scatter has no entry.
	Paytable map[string][]float64 `mapstructure:"paytable" json:"paytable"`

	// Symbol draw distribution. The remainder after scatter and wild is
	// split uniformly across the 9 regular symbols.
	ScatterProb float64 `mapstructure:"scatter_prob" json:"scatterProb"`
	WildProb    float64 `mapstructure:"wild_prob" json:"wildProb"`

	// Frame draw parameters.
	BaseFrameProb     float64 `mapstructure:"base_frame_prob" json:"baseFrameProb"`
	BonusFrameProb    float64 `mapstructure:"bonus_frame_prob" json:"bonusFrameProb"`
	JackpotFrameShare float64 `mapstructure:"jackpot_frame_share" json:"jackpotFrameShare"`

	BaseMultiplierPool  []int `mapstructure:"base_multiplier_pool" json:"baseMultiplierPool"`
	BonusMultiplierPool []int `mapstructure:"bonus_multiplier_pool" json:"bonusMultiplierPool"`

	// JackpotTiers maps tier name to its fixed payout multiple of bet.
	JackpotTiers map[string]float64 `mapstructure:"jackpot_tiers" json:"jackpotTiers"`

	// Bonus tier entry parameters, keyed by mode name.
	Tiers map[string]TierConfig `mapstructure:"tiers" json:"tiers"`

	// Bonus buy pricing in bet multiples.
	BuyRegularCost float64 `mapstructure:"buy_regular_cost" json:"buyRegularCost"`
	BuySuperCost   float64 `mapstructure:"buy_super_cost" json:"buySuperCost"`
	// Weight of Tier1 in the regular buy's Tier1/Tier2 draw.
	BuyTier1Weight float64 `mapstructure:"buy_tier1_weight" json:"buyTier1Weight"`

	// MaxSpins caps a bonus run's total spins including retriggers.
	// Zero means uncapped.
	MaxSpins int `mapstructure:"max_spins" json:"maxSpins"`

	RTP        float64 `mapstructure:"rtp" json:"rtp"`
	Volatility string  `mapstructure:"volatility" json:"volatility"`
}

// TierConfig describes one bonus tier's entry parameters.
type TierConfig struct {
	Scatters    int `mapstructure:"scatters" json:"scatters"`
	FreeSpins   int `mapstructure:"free_spins" json:"freeSpins"`
	StickyCount int `mapstructure:"sticky_count" json:"stickyCount"` // -1 = every cell
}

// DefaultConfig returns the shipped Velvet Nights parameter set.
func DefaultConfig() *Config {
	return &Config{
		GameCode: "velvet-nights",
		GameName: "Velvet Nights",
		MinBet:   0.10,
		MaxBet:   500,
		Paytable: map[string][]float64{
			"spades":   {0.2, 0.5, 1.5},
			"hearts":   {0.2, 0.5, 1.5},
			"diamonds": {0.3, 0.8, 2},
			"clubs":    {0.3, 0.8, 2},
			"dice":     {0.5, 1.2, 3},
			"chips":    {0.5, 1.2, 3},
			"cards":    {0.8, 2, 5},
			"crown":    {1, 2.5, 6},
			"gem":      {1.5, 4, 10},
			"wild":     {5, 12, 25},
		},
		ScatterProb:         0.02,
		WildProb:            0.03,
		BaseFrameProb:       0.12,
		BonusFrameProb:      0.12,
		JackpotFrameShare:   0.10,
		BaseMultiplierPool:  []int{2, 3, 4, 5, 6, 7, 8, 9, 10},
		BonusMultiplierPool: []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 25, 50, 100},
		JackpotTiers: map[string]float64{
			"mini":   15,
			"major":  50,
			"mega":   200,
			"maxwin": 1000,
		},
		Tiers: map[string]TierConfig{
			"black_and_gold": {Scatters: 3, FreeSpins: 10, StickyCount: 1},
			"golden_hits":    {Scatters: 4, FreeSpins: 12, StickyCount: 3},
			"velvet_nights":  {Scatters: 5, FreeSpins: 14, StickyCount: -1},
		},
		BuyRegularCost: 100,
		BuySuperCost:   300,
		BuyTier1Weight: 0.7,
		MaxSpins:       0,
		RTP:            96.2,
		Volatility:     "high",
	}
}

// Validate checks the parameter tables for internal consistency.
func (c *Config) Validate() error {
	if c.GameCode == "" {
		return fmt.Errorf("game_code is required")
	}
	if c.MinBet <= 0 || c.MaxBet < c.MinBet {
		return fmt.Errorf("invalid bet bounds [%v, %v]", c.MinBet, c.MaxBet)
	}
	if c.ScatterProb < 0 || c.WildProb < 0 || c.ScatterProb+c.WildProb >= 1 {
		return fmt.Errorf("invalid symbol distribution: scatter=%v wild=%v", c.ScatterProb, c.WildProb)
	}
	if c.JackpotFrameShare < 0 || c.JackpotFrameShare > 1 {
		return fmt.Errorf("jackpot_frame_share must be in [0,1], got %v", c.JackpotFrameShare)
	}
	if len(c.BaseMultiplierPool) == 0 || len(c.BonusMultiplierPool) == 0 {
		return fmt.Errorf("multiplier pools must not be empty")
	}
	for name, table := range c.Paytable {
		if _, ok := SymbolByName(name); !ok {
			return fmt.Errorf("paytable references unknown symbol %q", name)
		}
		if name == "scatter" {
			return fmt.Errorf("scatter must not carry a paytable")
		}
		if len(table) != 3 {
			return fmt.Errorf("paytable for %q must have 3/4/5-of-a-kind entries, got %d", name, len(table))
		}
	}
	for _, tier := range []JackpotTier{JackpotMini, JackpotMajor, JackpotMega, JackpotMaxWin} {
		if _, ok := c.JackpotTiers[tier.String()]; !ok {
			return fmt.Errorf("jackpot tier %q missing payout multiple", tier)
		}
	}
	for _, mode := range []Mode{ModeTier1, ModeTier2, ModeTier3} {
		tc, ok := c.Tiers[mode.String()]
		if !ok {
			return fmt.Errorf("bonus tier %q missing config", mode)
		}
		if tc.FreeSpins <= 0 {
			return fmt.Errorf("bonus tier %q must award free spins", mode)
		}
	}
	return nil
}

// LinePayout returns the bet multiple for a run of n matching symbols.
// Runs shorter than 3 and symbols without a paytable pay nothing.
func (c *Config) LinePayout(s Symbol, n int) float64 {
	if n < 3 {
		return 0
	}
	if n > 5 {
		n = 5
	}
	table, ok := c.Paytable[s.String()]
	if !ok {
		return 0
	}
	return table[n-3]
}

// JackpotPayout returns the fixed payout for a jackpot tier at the
// given bet.
func (c *Config) JackpotPayout(tier JackpotTier, bet decimal.Decimal) decimal.Decimal {
	mult, ok := c.JackpotTiers[tier.String()]
	if !ok {
		return decimal.Zero
	}
	return bet.Mul(decimal.NewFromFloat(mult))
}

// TierFor returns the tier config for a bonus mode.
func (c *Config) TierFor(mode Mode) (TierConfig, bool) {
	tc, ok := c.Tiers[mode.String()]
	return tc, ok
}

// MultiplierPool returns the frame value pool for a mode.
func (c *Config) MultiplierPool(mode Mode) []int {
	if mode.IsBonus() {
		return c.BonusMultiplierPool
	}
	return c.BaseMultiplierPool
}

// FrameProb returns the per-cell frame probability for a mode. The top
// tier frames every cell on every spin.
func (c *Config) FrameProb(mode Mode) float64 {
	switch mode {
	case ModeTier3:
		return 1.0
	case ModeTier1, ModeTier2:
		return c.BonusFrameProb
	default:
		return c.BaseFrameProb
	}
}
