package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing game code", func(c *Config) { c.GameCode = "" }},
		{"zero min bet", func(c *Config) { c.MinBet = 0 }},
		{"max below min", func(c *Config) { c.MaxBet = c.MinBet / 2 }},
		{"distribution overflow", func(c *Config) { c.ScatterProb = 0.6; c.WildProb = 0.5 }},
		{"jackpot share above one", func(c *Config) { c.JackpotFrameShare = 1.5 }},
		{"empty multiplier pool", func(c *Config) { c.BaseMultiplierPool = nil }},
		{"unknown paytable symbol", func(c *Config) { c.Paytable["joker"] = []float64{1, 2, 3} }},
		{"scatter paytable entry", func(c *Config) { c.Paytable["scatter"] = []float64{1, 2, 3} }},
		{"short paytable row", func(c *Config) { c.Paytable["gem"] = []float64{1.5} }},
		{"missing jackpot tier", func(c *Config) { delete(c.JackpotTiers, "mega") }},
		{"missing bonus tier", func(c *Config) { delete(c.Tiers, "golden_hits") }},
		{"tier without spins", func(c *Config) {
			tc := c.Tiers["black_and_gold"]
			tc.FreeSpins = 0
			c.Tiers["black_and_gold"] = tc
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted a broken config")
			}
		})
	}
}

func TestLinePayout(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		sym  Symbol
		n    int
		want float64
	}{
		{SymGem, 2, 0},
		{SymGem, 3, 1.5},
		{SymGem, 4, 4},
		{SymGem, 5, 10},
		{SymGem, 6, 10}, // clamped to five-of-a-kind
		{SymWild, 3, 5},
		{SymScatter, 5, 0},
	}

	for _, tt := range tests {
		if got := cfg.LinePayout(tt.sym, tt.n); got != tt.want {
			t.Errorf("LinePayout(%s, %d) = %v, want %v", tt.sym, tt.n, got, tt.want)
		}
	}
}

func TestJackpotPayout(t *testing.T) {
	cfg := DefaultConfig()
	bet := decimal.NewFromInt(2)

	if got := cfg.JackpotPayout(JackpotMaxWin, bet); !got.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("max win payout = %s, want 2000", got)
	}
	if got := cfg.JackpotPayout(JackpotMini, bet); !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("mini payout = %s, want 30", got)
	}
}

func TestFrameProbByMode(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.FrameProb(ModeBase); got != cfg.BaseFrameProb {
		t.Errorf("base frame prob = %v", got)
	}
	if got := cfg.FrameProb(ModeTier1); got != cfg.BonusFrameProb {
		t.Errorf("tier1 frame prob = %v", got)
	}
	if got := cfg.FrameProb(ModeTier3); got != 1.0 {
		t.Errorf("top tier frame prob = %v, want 1.0", got)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.yaml")
	content := []byte(`
game_code: velvet-nights
min_bet: 0.5
max_bet: 100
scatter_prob: 0.05
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MinBet != 0.5 || cfg.MaxBet != 100 {
		t.Errorf("bet bounds = [%v, %v], want [0.5, 100]", cfg.MinBet, cfg.MaxBet)
	}
	if cfg.ScatterProb != 0.05 {
		t.Errorf("scatter prob = %v, want 0.05", cfg.ScatterProb)
	}
	// Untouched tables keep their defaults.
	if cfg.BuySuperCost != 300 {
		t.Errorf("buy super cost = %v, want default 300", cfg.BuySuperCost)
	}
}

func TestLoadConfigDirMergesAlphabetically(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "01-base.yaml"),
		[]byte("game_code: velvet-nights\nmin_bet: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "02-override.yaml"),
		[]byte("min_bet: 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MinBet != 2 {
		t.Errorf("min bet = %v, want later file's 2", cfg.MinBet)
	}
}

func TestLoadConfigMissingPath(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig accepted a missing path")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.yaml")
	if err := os.WriteFile(path, []byte("game_code: ''\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig accepted an invalid config")
	}
}
