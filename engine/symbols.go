package engine

// Symbol identifies one of the 11 symbol kinds on the reel grid.
type Symbol int

const (
	SymSpades Symbol = iota
	SymHearts
	SymDiamonds
	SymClubs
	SymDice
	SymChips
	SymCards
	SymCrown
	SymGem
	SymWild
	SymScatter

	SymbolCount = 11
)

// RegularSymbolCount is the number of symbols drawn from the uniform
// remainder of the distribution (everything except wild and scatter).
const RegularSymbolCount = 9

var symbolNames = map[Symbol]string{
	SymSpades:   "spades",
	SymHearts:   "hearts",
	SymDiamonds: "diamonds",
	SymClubs:    "clubs",
	SymDice:     "dice",
	SymChips:    "chips",
	SymCards:    "cards",
	SymCrown:    "crown",
	SymGem:      "gem",
	SymWild:     "wild",
	SymScatter:  "scatter",
}

var symbolsByName = func() map[string]Symbol {
	m := make(map[string]Symbol, len(symbolNames))
	for s, n := range symbolNames {
		m[n] = s
	}
	return m
}()

func (s Symbol) String() string {
	if n, ok := symbolNames[s]; ok {
		return n
	}
	return "unknown"
}

// SymbolByName resolves a config-file symbol name.
func SymbolByName(name string) (Symbol, bool) {
	s, ok := symbolsByName[name]
	return s, ok
}

// Mode identifies the active game mode: the base game or one of the
// three escalating bonus tiers.
type Mode int

const (
	ModeBase Mode = iota
	ModeTier1     // Black & Gold
	ModeTier2     // Golden Hits
	ModeTier3     // Velvet Nights
)

var modeNames = map[Mode]string{
	ModeBase:  "base",
	ModeTier1: "black_and_gold",
	ModeTier2: "golden_hits",
	ModeTier3: "velvet_nights",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return "unknown"
}

// IsBonus reports whether the mode is one of the free-spin tiers.
func (m Mode) IsBonus() bool {
	return m != ModeBase
}

// FrameKind distinguishes the two overlay frame types.
type FrameKind int

const (
	FrameMultiplier FrameKind = iota
	FrameJackpot
)

func (k FrameKind) String() string {
	if k == FrameJackpot {
		return "jackpot"
	}
	return "multiplier"
}

// JackpotTier is one of the four named jackpot frame tiers.
type JackpotTier int

const (
	JackpotMini JackpotTier = iota
	JackpotMajor
	JackpotMega
	JackpotMaxWin

	JackpotTierCount = 4
)

var jackpotTierNames = map[JackpotTier]string{
	JackpotMini:   "mini",
	JackpotMajor:  "major",
	JackpotMega:   "mega",
	JackpotMaxWin: "maxwin",
}

func (t JackpotTier) String() string {
	if n, ok := jackpotTierNames[t]; ok {
		return n
	}
	return "unknown"
}
