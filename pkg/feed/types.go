package feed

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UpdateType classifies a live feed entry.
type UpdateType string

const (
	UpdateSpinWin    UpdateType = "spin_win"
	UpdateJackpotHit UpdateType = "jackpot_hit"
	UpdateBonusWin   UpdateType = "bonus_win"
)

// Update is one entry of the live win feed pushed to SSE and WebSocket
// subscribers.
type Update struct {
	Type      UpdateType      `json:"type"`
	SessionID string          `json:"sessionId"`
	GameCode  string          `json:"gameCode"`
	Tier      string          `json:"tier,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// ServiceConfig configures the feed service.
type ServiceConfig struct {
	// BroadcastInterval controls how often buffered updates are flushed
	// to listeners.
	BroadcastInterval time.Duration

	// Logger is optional; if zero value, a no-op logger is used.
	Logger zerolog.Logger

	// GameCode tags every update.
	GameCode string
}
