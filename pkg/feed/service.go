package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBroadcastInterval is the default interval for flushing
// buffered updates to listeners.
const DefaultBroadcastInterval = 2 * time.Second

// Service buffers win updates and broadcasts them to feed listeners on
// a fixed interval. It is transport-agnostic: the HTTP layer wires the
// SSE and WebSocket routes and subscribes via Listen().
type Service struct {
	mu       sync.Mutex
	buffer   []Update
	broad    *Broadcaster
	logger   zerolog.Logger
	gameCode string
	interval time.Duration
	ticker   *time.Ticker
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewService creates a feed service and starts its flush loop.
func NewService(cfg ServiceConfig) *Service {
	interval := cfg.BroadcastInterval
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	s := &Service{
		broad:    NewBroadcaster(128),
		logger:   cfg.Logger.With().Str("component", "win-feed").Logger(),
		gameCode: cfg.GameCode,
		interval: interval,
		stopChan: make(chan struct{}),
	}
	s.ticker = time.NewTicker(s.interval)
	go s.loop()
	return s
}

// PublishWin buffers a spin win for the next flush. Zero payouts are
// not fed.
func (s *Service) PublishWin(sessionID string, amount decimal.Decimal, bonus bool) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	typ := UpdateSpinWin
	if bonus {
		typ = UpdateBonusWin
	}
	s.publish(Update{
		Type:      typ,
		SessionID: sessionID,
		Amount:    amount,
	})
}

// PublishJackpot buffers a jackpot award for the next flush.
func (s *Service) PublishJackpot(sessionID, tier string, amount decimal.Decimal) {
	s.publish(Update{
		Type:      UpdateJackpotHit,
		SessionID: sessionID,
		Tier:      tier,
		Amount:    amount,
	})
}

func (s *Service) publish(u Update) {
	u.GameCode = s.gameCode
	u.Timestamp = time.Now().UTC()

	s.mu.Lock()
	s.buffer = append(s.buffer, u)
	s.mu.Unlock()
}

// Listen returns a channel of flushed updates plus a cancel function.
func (s *Service) Listen(ctx context.Context) (<-chan Update, context.CancelFunc) {
	return s.broad.Listen(ctx)
}

// Stop stops the flush loop.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.stopChan)
	})
}

func (s *Service) loop() {
	for {
		select {
		case <-s.stopChan:
			return
		case <-s.ticker.C:
			s.flush()
		}
	}
}

// flush broadcasts buffered updates in arrival order and clears the
// buffer.
func (s *Service) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	updates := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	for _, u := range updates {
		s.broad.Send(u)
	}
	if s.logger.GetLevel() <= zerolog.DebugLevel {
		s.logger.Debug().Int("count", len(updates)).Msg("flushed win feed updates")
	}
}
