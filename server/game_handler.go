package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/auth"
	"github.com/Digital-Creators-Team/velvet-slots/engine"
	"github.com/Digital-Creators-Team/velvet-slots/errors"
	"github.com/Digital-Creators-Team/velvet-slots/rng"
	"github.com/Digital-Creators-Team/velvet-slots/session"
)

// GameHandler handles HTTP requests for the game
//
// Flow: HTTP Request -> gameRoutes -> GameHandler -> SpinService -> engine
//
// Responsibilities:
// - Extract user info from JWT token
// - Validate request parameters
// - Call SpinService for business logic
// - Format and return HTTP responses
type GameHandler struct {
	app    *App
	logger zerolog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(app *App) *GameHandler {
	return &GameHandler{
		app:    app,
		logger: app.logger.With().Str("handler", "game").Logger(),
	}
}

// extractUserID extracts user ID from gin context
func (h *GameHandler) extractUserID(c *gin.Context) (string, error) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return "", errors.New(errors.ErrUnauthorized, "user_id not found in context")
	}
	return userID, nil
}

// extractCurrencyID extracts currency ID from gin context
func (h *GameHandler) extractCurrencyID(c *gin.Context) string {
	currencyID, ok := auth.GetCurrencyID(c)
	if !ok {
		return "gold"
	}
	return currencyID
}

// Player describes the authorized player in the authorize response.
type Player struct {
	UserID   string          `json:"userId"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// AuthorizeResponse is the payload of POST /authorize-game.
type AuthorizeResponse struct {
	Player     Player         `json:"player"`
	GameConfig *engine.Config `json:"gameConfig"`
	LastState  *session.State `json:"lastState"`
}

// Authorize validates the JWT token and returns the player, the game
// configuration and the last committed session state.
func (h *GameHandler) Authorize(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.extractUserID(c)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to extract user ID")
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	username, _ := auth.GetUsername(c)
	currencyID := h.extractCurrencyID(c)

	state, err := h.app.spinService.PlayerState(ctx, userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get player state")
		HandleAppError(c, err)
		return
	}

	balance, err := h.app.spinService.ledger.Balance(ctx, userID, currencyID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get balance")
		InternalError(c, errors.Wrap(err, errors.ErrWalletError, "Failed to get balance"))
		return
	}

	OK(c, AuthorizeResponse{
		Player: Player{
			UserID:   userID,
			Username: username,
			Balance:  balance,
			Currency: currencyID,
		},
		GameConfig: h.app.gameConfig,
		LastState:  state,
	})
}

// SpinRequest represents the spin request body
type SpinRequest struct {
	// Bet amount (required for base spins, echoed on bonus spins)
	Bet float64 `json:"bet" binding:"required"`
	// Optional session ID; defaults to the authenticated user
	SessionID string `json:"sessionId,omitempty"`
	// Resume echoes the last committed bonus state during a run
	Resume *engine.BonusState `json:"resume,omitempty"`

	// Seeded draws for QA replays. Ignored in production.
	ServerSeed string `json:"serverSeed,omitempty"`
	ClientSeed string `json:"clientSeed,omitempty"`
	Nonce      uint64 `json:"nonce,omitempty"`
}

// seededSource returns a deterministic draw stream when the request
// carries seeds and the environment allows it, nil otherwise.
func (h *GameHandler) seededSource(req *SpinRequest) rng.Source {
	if req.ServerSeed == "" || h.app.config.IsProduction() {
		return nil
	}
	return rng.NewStream(req.ServerSeed, req.ClientSeed, req.Nonce)
}

// Spin executes one spin: a paid base-game spin, or the next free spin
// of an active bonus run when a matching resume state is supplied.
func (h *GameHandler) Spin(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.extractUserID(c)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to extract user ID")
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	var req SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse spin request")
		BadRequest(c, errors.New(errors.ErrInvalidRequest, "Invalid request payload"))
		return
	}

	username, _ := auth.GetUsername(c)
	currencyID := h.extractCurrencyID(c)

	result, err := h.app.spinService.ExecuteSpin(ctx, &SpinServiceRequest{
		SessionID:  req.SessionID,
		UserID:     userID,
		Username:   username,
		CurrencyID: currencyID,
		Bet:        decimal.NewFromFloat(req.Bet),
		Resume:     req.Resume,
		Source:     h.seededSource(&req),
	})
	if err != nil {
		h.logger.Error().Err(err).
			Str("user_id", userID).
			Float64("bet", req.Bet).
			Msg("Failed to execute spin")
		HandleAppError(c, err)
		return
	}

	h.logger.Info().
		Str("user_id", userID).
		Str("session_id", result.SessionID).
		Str("mode", result.Outcome.Mode.String()).
		Float64("bet", result.Outcome.Bet.InexactFloat64()).
		Float64("payout", result.Outcome.Payout.InexactFloat64()).
		Msg("Spin executed")

	OK(c, result)
}

// BonusBuyBody represents the bonus buy request body
type BonusBuyBody struct {
	// Bet amount the bought run plays at
	Bet float64 `json:"bet" binding:"required"`
	// Kind is "regular" or "super"
	Kind string `json:"kind" binding:"required"`
	// Optional session ID; defaults to the authenticated user
	SessionID string `json:"sessionId,omitempty"`
}

// BonusBuy opens a purchased bonus run.
func (h *GameHandler) BonusBuy(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.extractUserID(c)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to extract user ID")
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	var req BonusBuyBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse bonus buy request")
		BadRequest(c, errors.New(errors.ErrInvalidRequest, "Invalid request payload"))
		return
	}

	result, err := h.app.spinService.ExecuteBonusBuy(ctx, &BonusBuyRequest{
		SessionID:  req.SessionID,
		UserID:     userID,
		CurrencyID: h.extractCurrencyID(c),
		Bet:        decimal.NewFromFloat(req.Bet),
		Kind:       engine.BuyKind(req.Kind),
	})
	if err != nil {
		h.logger.Error().Err(err).
			Str("user_id", userID).
			Str("kind", req.Kind).
			Msg("Failed to execute bonus buy")
		HandleAppError(c, err)
		return
	}

	OK(c, result)
}

// GetConfig returns the game configuration.
func (h *GameHandler) GetConfig(c *gin.Context) {
	OK(c, h.app.gameConfig)
}

// GetState returns the last committed session state.
func (h *GameHandler) GetState(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.extractUserID(c)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to extract user ID")
		Unauthorized(c, errors.New(errors.ErrUnauthorized, "Invalid or missing authentication token"))
		return
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = userID
	}

	state, err := h.app.spinService.PlayerState(ctx, sessionID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get player state")
		HandleAppError(c, err)
		return
	}

	OK(c, state)
}
