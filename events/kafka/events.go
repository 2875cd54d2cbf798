package kafka

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Default topics, overridable through the kafka.topics config map.
const (
	TopicSpinSettled  = "game.spin.settled"
	TopicBonusSettled = "game.bonus.settled"
	TopicJackpotHit   = "game.jackpot.hit"
)

// SpinSettledEvent is emitted after every committed spin.
type SpinSettledEvent struct {
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	GameCode  string          `json:"gameCode"`
	Mode      string          `json:"mode"`
	Bet       decimal.Decimal `json:"bet"`
	Payout    decimal.Decimal `json:"payout"`
	Scatters  int             `json:"scatters"`
	Timestamp time.Time       `json:"timestamp"`
}

// BonusSettledEvent is emitted when a bonus run pays out its total.
type BonusSettledEvent struct {
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	GameCode  string          `json:"gameCode"`
	Tier      string          `json:"tier"`
	TotalWin  decimal.Decimal `json:"totalWin"`
	Timestamp time.Time       `json:"timestamp"`
}

// JackpotHitEvent is emitted for every jackpot frame award.
type JackpotHitEvent struct {
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	GameCode  string          `json:"gameCode"`
	Tier      string          `json:"tier"`
	Payout    decimal.Decimal `json:"payout"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher routes domain events to their topics through the async
// producer. A nil Publisher drops every event, which keeps Kafka
// optional in development.
type Publisher struct {
	producer *Producer
	topics   map[string]string
	logger   zerolog.Logger
}

// NewPublisher wires a publisher over the producer. topics remaps the
// logical names "spin", "bonus" and "jackpot" when present.
func NewPublisher(producer *Producer, topics map[string]string, logger zerolog.Logger) *Publisher {
	if producer == nil {
		return nil
	}
	return &Publisher{
		producer: producer,
		topics:   topics,
		logger:   logger.With().Str("component", "event-publisher").Logger(),
	}
}

func (p *Publisher) topic(name, fallback string) string {
	if t, ok := p.topics[name]; ok {
		return t
	}
	return fallback
}

// SpinSettled publishes a spin settlement keyed by session.
func (p *Publisher) SpinSettled(ev SpinSettledEvent) {
	if p == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	if err := p.producer.SendMessage(p.topic("spin", TopicSpinSettled), ev.SessionID, ev); err != nil {
		p.logger.Error().Err(err).Str("session_id", ev.SessionID).Msg("Failed to publish spin settlement")
	}
}

// BonusSettled publishes a bonus run settlement keyed by session.
func (p *Publisher) BonusSettled(ev BonusSettledEvent) {
	if p == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	if err := p.producer.SendMessage(p.topic("bonus", TopicBonusSettled), ev.SessionID, ev); err != nil {
		p.logger.Error().Err(err).Str("session_id", ev.SessionID).Msg("Failed to publish bonus settlement")
	}
}

// JackpotHit publishes a jackpot award keyed by session.
func (p *Publisher) JackpotHit(ev JackpotHitEvent) {
	if p == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	if err := p.producer.SendMessage(p.topic("jackpot", TopicJackpotHit), ev.SessionID, ev); err != nil {
		p.logger.Error().Err(err).Str("session_id", ev.SessionID).Msg("Failed to publish jackpot hit")
	}
}
