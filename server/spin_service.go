package server

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/engine"
	"github.com/Digital-Creators-Team/velvet-slots/errors"
	"github.com/Digital-Creators-Team/velvet-slots/events/kafka"
	"github.com/Digital-Creators-Team/velvet-slots/pkg/feed"
	"github.com/Digital-Creators-Team/velvet-slots/rng"
	"github.com/Digital-Creators-Team/velvet-slots/session"
	"github.com/Digital-Creators-Team/velvet-slots/wallet"
)

// SpinService orchestrates the full spin flow
//
// The service:
// 1. Validates requests
// 2. Serializes spins per session (exclusive lease)
// 3. Manages wallet transactions (debit before any reel is drawn)
// 4. Calls the engine for spin logic
// 5. Persists session state with conditional updates
// 6. Publishes settlement events and live feed updates
type SpinService struct {
	cfg       *engine.Config
	store     session.Store
	locker    session.Locker
	ledger    wallet.Ledger
	publisher *kafka.Publisher
	feed      *feed.Service
	leaseTTL  time.Duration
	logger    zerolog.Logger

	// newSource produces the RNG source for one spin. Overridable for
	// deterministic tests.
	newSource func() rng.Source
}

// SpinServiceDeps holds the spin service dependencies.
type SpinServiceDeps struct {
	Config    *engine.Config
	Store     session.Store
	Locker    session.Locker
	Ledger    wallet.Ledger
	Publisher *kafka.Publisher
	Feed      *feed.Service
	LeaseTTL  time.Duration
	Logger    zerolog.Logger
}

// NewSpinService creates a new spin service
func NewSpinService(deps SpinServiceDeps) *SpinService {
	leaseTTL := deps.LeaseTTL
	if leaseTTL <= 0 {
		leaseTTL = 30 * time.Second
	}
	return &SpinService{
		cfg:       deps.Config,
		store:     deps.Store,
		locker:    deps.Locker,
		ledger:    deps.Ledger,
		publisher: deps.Publisher,
		feed:      deps.Feed,
		leaseTTL:  leaseTTL,
		logger:    deps.Logger.With().Str("service", "spin").Logger(),
		newSource: func() rng.Source { return rng.NewCrypto() },
	}
}

// SetSourceFactory overrides the per-spin RNG source constructor.
func (s *SpinService) SetSourceFactory(factory func() rng.Source) {
	s.newSource = factory
}

func (s *SpinService) source(override rng.Source) rng.Source {
	if override != nil {
		return override
	}
	return s.newSource()
}

// SpinServiceRequest represents a spin request
type SpinServiceRequest struct {
	SessionID  string
	UserID     string
	Username   string
	CurrencyID string
	Bet        decimal.Decimal

	// Resume echoes the last committed bonus state. Required on every
	// spin of an active bonus run; a divergent copy is rejected.
	Resume *engine.BonusState

	// Source overrides the RNG for this spin. Only set by the handler
	// outside production, for seeded QA replays.
	Source rng.Source
}

// SpinServiceResponse represents a spin response
type SpinServiceResponse struct {
	SessionID string          `json:"sessionId"`
	Outcome   *engine.Outcome `json:"outcome"`

	// Bonus is the run state after this spin; nil when no run is active.
	Bonus *engine.BonusState `json:"bonus,omitempty"`

	// BonusDone is set on the spin that exhausts a run. BonusTotalWin
	// is the single terminal payout credited at that point.
	BonusDone     bool            `json:"bonusDone,omitempty"`
	BonusTotalWin decimal.Decimal `json:"bonusTotalWin"`

	EndingBalance decimal.Decimal `json:"endingBalance"`
}

// BonusBuyRequest represents a bonus buy request
type BonusBuyRequest struct {
	SessionID  string
	UserID     string
	CurrencyID string
	Bet        decimal.Decimal
	Kind       engine.BuyKind
}

// BonusBuyResponse represents a bonus buy response
type BonusBuyResponse struct {
	SessionID     string            `json:"sessionId"`
	Bonus         engine.BonusState `json:"bonus"`
	Cost          decimal.Decimal   `json:"cost"`
	EndingBalance decimal.Decimal   `json:"endingBalance"`
}

// ExecuteSpin orchestrates one spin end to end. Exactly one spin per
// session is in flight at a time; a second request while the lease is
// held fails with the concurrency conflict code rather than queueing.
func (s *SpinService) ExecuteSpin(ctx context.Context, req *SpinServiceRequest) (*SpinServiceResponse, error) {
	if err := s.validateRequest(req.UserID, req.CurrencyID); err != nil {
		return nil, err
	}
	sessionID := s.sessionID(req.SessionID, req.UserID)

	release, err := s.locker.Acquire(ctx, sessionID, s.leaseTTL)
	if err != nil {
		if stderrors.Is(err, session.ErrLocked) {
			return nil, errors.New(errors.ErrConcurrentSpinConflict, "another spin is already in flight for this session")
		}
		return nil, errors.Wrap(err, errors.ErrSessionStateError, "failed to acquire session lease")
	}
	defer release()

	state, fresh, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if state.Bonus.Active() {
		return s.bonusSpin(ctx, req, state)
	}
	return s.baseSpin(ctx, req, state, fresh)
}

// baseSpin runs a paid base-game spin: debit, draw, persist, credit.
func (s *SpinService) baseSpin(ctx context.Context, req *SpinServiceRequest, state *session.State, fresh bool) (*SpinServiceResponse, error) {
	if err := s.validateBet(req.Bet); err != nil {
		return nil, err
	}

	// The bet is debited before any reel is drawn, so a declined debit
	// consumes no RNG draws and leaves no session trace.
	if err := s.ledger.Debit(ctx, req.UserID, req.CurrencyID, req.Bet); err != nil {
		if stderrors.Is(err, wallet.ErrInsufficientFunds) {
			return nil, errors.New(errors.ErrInsufficientBalance, "balance does not cover the bet")
		}
		return nil, errors.Wrap(err, errors.ErrWalletError, "failed to debit bet")
	}

	src := s.source(req.Source)
	out, err := engine.Spin(s.cfg, engine.Request{Bet: req.Bet, Mode: engine.ModeBase}, src)
	if err != nil {
		s.refund(ctx, req, req.Bet)
		return nil, s.engineError(err)
	}

	var bonusSnapshot *engine.BonusState
	if out.BonusTrigger != engine.ModeBase {
		bonus, err := engine.EnterBonus(s.cfg, out.BonusTrigger, src)
		if err != nil {
			s.refund(ctx, req, req.Bet)
			return nil, s.engineError(err)
		}
		state.Bonus = *bonus
		state.Bet = req.Bet
		snapshot := *bonus
		bonusSnapshot = &snapshot
	}

	if err := s.persist(ctx, state, fresh); err != nil {
		s.refund(ctx, req, req.Bet)
		return nil, err
	}

	if out.Payout.GreaterThan(decimal.Zero) {
		if err := s.ledger.Credit(ctx, req.UserID, req.CurrencyID, out.Payout); err != nil {
			return nil, errors.Wrap(err, errors.ErrWalletError, "failed to credit winnings")
		}
	}

	s.settleEvents(req, state.SessionID, out, engine.ModeBase)

	return &SpinServiceResponse{
		SessionID:     state.SessionID,
		Outcome:       out,
		Bonus:         bonusSnapshot,
		BonusTotalWin: decimal.Zero,
		EndingBalance: s.balance(ctx, req),
	}, nil
}

// bonusSpin advances an active free-spin run. No debit happens; the
// run was paid for when it opened. Winnings accumulate inside the run
// and are credited as one terminal payout when it finishes.
func (s *SpinService) bonusSpin(ctx context.Context, req *SpinServiceRequest, state *session.State) (*SpinServiceResponse, error) {
	if req.Resume == nil {
		return nil, errors.New(errors.ErrBonusStateMismatch, "bonus run in progress: resume state is required")
	}
	client := &session.State{Bonus: *req.Resume, Bet: req.Bet}
	if !state.Matches(client) {
		return nil, errors.New(errors.ErrBonusStateMismatch, "resume state does not match the last committed spin")
	}

	src := s.source(req.Source)
	out, done, err := state.Bonus.PlaySpin(s.cfg, state.Bet, src)
	if err != nil {
		return nil, s.engineError(err)
	}

	total := decimal.Zero
	var tier engine.Mode
	if done {
		tier = state.Bonus.Mode
		total = state.Bonus.Settle()
	}
	snapshot := state.Bonus

	if err := s.persist(ctx, state, false); err != nil {
		return nil, err
	}

	if done && total.GreaterThan(decimal.Zero) {
		if err := s.ledger.Credit(ctx, req.UserID, req.CurrencyID, total); err != nil {
			return nil, errors.Wrap(err, errors.ErrWalletError, "failed to credit bonus winnings")
		}
	}

	s.settleEvents(req, state.SessionID, out, out.Mode)
	if done {
		s.publisher.BonusSettled(kafka.BonusSettledEvent{
			SessionID: state.SessionID,
			UserID:    req.UserID,
			GameCode:  s.cfg.GameCode,
			Tier:      tier.String(),
			TotalWin:  total,
		})
		s.feed.PublishWin(state.SessionID, total, true)
	}

	return &SpinServiceResponse{
		SessionID:     state.SessionID,
		Outcome:       out,
		Bonus:         &snapshot,
		BonusDone:     done,
		BonusTotalWin: total,
		EndingBalance: s.balance(ctx, req),
	}, nil
}

// ExecuteBonusBuy charges the configured bet multiple and opens a
// bought bonus run without a triggering base spin.
func (s *SpinService) ExecuteBonusBuy(ctx context.Context, req *BonusBuyRequest) (*BonusBuyResponse, error) {
	if err := s.validateRequest(req.UserID, req.CurrencyID); err != nil {
		return nil, err
	}
	if err := s.validateBet(req.Bet); err != nil {
		return nil, err
	}

	var costMultiple float64
	switch req.Kind {
	case engine.BuyRegular:
		costMultiple = s.cfg.BuyRegularCost
	case engine.BuySuper:
		costMultiple = s.cfg.BuySuperCost
	default:
		return nil, errors.New(errors.ErrInvalidRequest, "unknown bonus buy kind")
	}
	cost := req.Bet.Mul(decimal.NewFromFloat(costMultiple))

	sessionID := s.sessionID(req.SessionID, req.UserID)

	release, err := s.locker.Acquire(ctx, sessionID, s.leaseTTL)
	if err != nil {
		if stderrors.Is(err, session.ErrLocked) {
			return nil, errors.New(errors.ErrConcurrentSpinConflict, "another spin is already in flight for this session")
		}
		return nil, errors.Wrap(err, errors.ErrSessionStateError, "failed to acquire session lease")
	}
	defer release()

	state, fresh, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Bonus.Active() {
		return nil, errors.New(errors.ErrBonusStateMismatch, "bonus run already in progress")
	}

	if err := s.ledger.Debit(ctx, req.UserID, req.CurrencyID, cost); err != nil {
		if stderrors.Is(err, wallet.ErrInsufficientFunds) {
			return nil, errors.New(errors.ErrInsufficientBalance, "balance does not cover the bonus buy")
		}
		return nil, errors.Wrap(err, errors.ErrWalletError, "failed to debit bonus buy")
	}

	bonus, _, err := engine.BuyBonus(s.cfg, req.Kind, s.newSource())
	if err != nil {
		s.refund(ctx, &SpinServiceRequest{UserID: req.UserID, CurrencyID: req.CurrencyID}, cost)
		return nil, s.engineError(err)
	}

	state.Bonus = *bonus
	state.Bet = req.Bet
	if err := s.persist(ctx, state, fresh); err != nil {
		s.refund(ctx, &SpinServiceRequest{UserID: req.UserID, CurrencyID: req.CurrencyID}, cost)
		return nil, err
	}

	s.logger.Info().
		Str("session_id", state.SessionID).
		Str("user_id", req.UserID).
		Str("kind", string(req.Kind)).
		Str("tier", bonus.Mode.String()).
		Float64("cost", cost.InexactFloat64()).
		Msg("Bonus bought")

	return &BonusBuyResponse{
		SessionID:     state.SessionID,
		Bonus:         *bonus,
		Cost:          cost,
		EndingBalance: s.balance(ctx, &SpinServiceRequest{UserID: req.UserID, CurrencyID: req.CurrencyID}),
	}, nil
}

// PlayerState returns the last committed state for a session, or a
// fresh one when none is persisted.
func (s *SpinService) PlayerState(ctx context.Context, sessionID string) (*session.State, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, session.ErrNotFound) {
			return session.New(sessionID), nil
		}
		return nil, errors.Wrap(err, errors.ErrSessionStateError, "failed to load session state")
	}
	return state, nil
}

func (s *SpinService) sessionID(requested, userID string) string {
	if requested != "" {
		return requested
	}
	return userID
}

func (s *SpinService) validateRequest(userID, currencyID string) error {
	if userID == "" {
		return errors.New(errors.ErrInvalidRequest, "user ID is required")
	}
	if currencyID == "" {
		return errors.New(errors.ErrInvalidRequest, "currency ID is required")
	}
	return nil
}

func (s *SpinService) validateBet(bet decimal.Decimal) error {
	if bet.LessThanOrEqual(decimal.Zero) {
		return errors.New(errors.ErrInvalidBetAmount, "bet must be greater than 0")
	}
	if bet.LessThan(decimal.NewFromFloat(s.cfg.MinBet)) || bet.GreaterThan(decimal.NewFromFloat(s.cfg.MaxBet)) {
		return errors.New(errors.ErrInvalidBetAmount, "bet is outside the configured limits")
	}
	return nil
}

func (s *SpinService) loadState(ctx context.Context, sessionID string) (*session.State, bool, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, session.ErrNotFound) {
			return session.New(sessionID), true, nil
		}
		return nil, false, errors.Wrap(err, errors.ErrSessionStateError, "failed to load session state")
	}
	return state, false, nil
}

// persist commits the state. A revision conflict means another spin
// committed since this one loaded, which surfaces as the same code as
// a held lease: the caller retries from a fresh resume.
func (s *SpinService) persist(ctx context.Context, state *session.State, fresh bool) error {
	state.UpdatedAt = time.Now().UTC()
	var err error
	if fresh {
		err = s.store.Put(ctx, state)
	} else {
		err = s.store.Update(ctx, state)
	}
	if err != nil {
		if stderrors.Is(err, session.ErrRevisionConflict) {
			return errors.New(errors.ErrConcurrentSpinConflict, "session state changed since this spin started")
		}
		return errors.Wrap(err, errors.ErrSessionStateError, "failed to persist session state")
	}
	return nil
}

func (s *SpinService) engineError(err error) error {
	if stderrors.Is(err, rng.ErrEntropy) {
		return errors.Wrap(err, errors.ErrInternalRNGFailure, "entropy source unavailable")
	}
	return errors.Wrap(err, errors.ErrInternalServerError, "spin failed")
}

// refund returns a debited amount after a failed draw. Best effort:
// a failed refund is logged for manual reconciliation, the original
// error still reaches the caller.
func (s *SpinService) refund(ctx context.Context, req *SpinServiceRequest, amount decimal.Decimal) {
	if err := s.ledger.Credit(ctx, req.UserID, req.CurrencyID, amount); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", req.UserID).
			Float64("amount", amount.InexactFloat64()).
			Msg("Failed to refund bet after aborted spin")
	}
}

func (s *SpinService) balance(ctx context.Context, req *SpinServiceRequest) decimal.Decimal {
	balance, err := s.ledger.Balance(ctx, req.UserID, req.CurrencyID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", req.UserID).Msg("Failed to fetch ending balance")
		return decimal.Zero
	}
	return balance
}

// settleEvents publishes the Kafka settlement event and live feed
// entries for one committed spin.
func (s *SpinService) settleEvents(req *SpinServiceRequest, sessionID string, out *engine.Outcome, mode engine.Mode) {
	s.publisher.SpinSettled(kafka.SpinSettledEvent{
		SessionID: sessionID,
		UserID:    req.UserID,
		GameCode:  s.cfg.GameCode,
		Mode:      mode.String(),
		Bet:       out.Bet,
		Payout:    out.Payout,
		Scatters:  out.ScatterCount,
	})
	for _, hit := range out.JackpotHits {
		s.publisher.JackpotHit(kafka.JackpotHitEvent{
			SessionID: sessionID,
			UserID:    req.UserID,
			GameCode:  s.cfg.GameCode,
			Tier:      hit.Tier.String(),
			Payout:    hit.Payout,
		})
		s.feed.PublishJackpot(sessionID, hit.Tier.String(), hit.Payout)
	}
	if mode == engine.ModeBase {
		s.feed.PublishWin(sessionID, out.Payout, false)
	}
}
