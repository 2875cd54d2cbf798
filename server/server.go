package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/auth"
	"github.com/Digital-Creators-Team/velvet-slots/config"
	"github.com/Digital-Creators-Team/velvet-slots/engine"
	"github.com/Digital-Creators-Team/velvet-slots/events/kafka"
	"github.com/Digital-Creators-Team/velvet-slots/middleware"
	"github.com/Digital-Creators-Team/velvet-slots/pkg/feed"
	"github.com/Digital-Creators-Team/velvet-slots/session"
	"github.com/Digital-Creators-Team/velvet-slots/wallet"
)

// App represents the game service application
type App struct {
	engine      *gin.Engine
	config      *config.Config
	logger      zerolog.Logger
	gameConfig  *engine.Config
	spinService *SpinService
	feedService *feed.Service
	gameHandler *GameHandler
	feedHandler *FeedHandler
	httpServer  *http.Server
	onShutdown  []func()
}

// Options holds server configuration options
type Options struct {
	Config     *config.Config
	Logger     zerolog.Logger
	GameConfig *engine.Config

	// Store and Locker share the same implementation in practice
	// (Redis in deployments, in-memory in tests).
	Store  session.Store
	Locker session.Locker

	Ledger wallet.Ledger

	// Publisher may be nil; events are then dropped.
	Publisher *kafka.Publisher
}

// Router is an alias for gin.Engine for convenience
type Router = gin.Engine

// New creates a new game service application
func New(opts Options) *App {
	// Configure decimal.Decimal to marshal as JSON number instead of string
	// WARNING: This may cause precision loss for decimals with many digits when
	// unmarshaled by clients using IEEE 754 double-precision (e.g., JavaScript)
	decimal.MarshalJSONWithoutQuotes = true

	// Set Gin mode
	if opts.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ginEngine := gin.New()

	app := &App{
		engine:     ginEngine,
		config:     opts.Config,
		logger:     opts.Logger,
		gameConfig: opts.GameConfig,
	}

	// Live win feed (buffered + broadcast interval)
	app.feedService = feed.NewService(feed.ServiceConfig{
		BroadcastInterval: 2 * time.Second,
		Logger:            opts.Logger,
		GameCode:          opts.GameConfig.GameCode,
	})

	app.spinService = NewSpinService(SpinServiceDeps{
		Config:    opts.GameConfig,
		Store:     opts.Store,
		Locker:    opts.Locker,
		Ledger:    opts.Ledger,
		Publisher: opts.Publisher,
		Feed:      app.feedService,
		LeaseTTL:  opts.Config.Session.LeaseTTL,
		Logger:    opts.Logger,
	})

	// Create handlers
	app.gameHandler = NewGameHandler(app)
	app.feedHandler = NewFeedHandler(app, app.feedService)

	app.OnShutdown(app.feedService.Stop)

	return app
}

// UseCommonMiddlewares adds common middlewares to the application
func (a *App) UseCommonMiddlewares() {
	// Recovery middleware (must be first)
	a.engine.Use(middleware.Recovery(a.logger))

	// Trace ID middleware
	a.engine.Use(middleware.TraceID())

	// Logging middleware
	a.engine.Use(middleware.Logging(a.logger))

	// Request timeout middleware
	if a.config.Server.WriteTimeout > 0 {
		a.engine.Use(middleware.Timeout(a.config.Server.WriteTimeout))
	}

	// CORS middleware if enabled
	if a.config.Server.EnableCORS {
		a.engine.Use(middleware.CORS())
	}
}

// UseMiddleware adds a custom middleware
func (a *App) UseMiddleware(m gin.HandlerFunc) {
	a.engine.Use(m)
}

// GameCode returns the configured game code
func (a *App) GameCode() string {
	return a.gameConfig.GameCode
}

// SpinService returns the spin orchestration service
func (a *App) SpinService() *SpinService {
	return a.spinService
}

// FeedService returns the live win feed service
func (a *App) FeedService() *feed.Service {
	return a.feedService
}

// RegisterHealthCheck adds health check endpoints
func (a *App) RegisterHealthCheck() {
	a.engine.GET("/health", a.healthCheck)
	a.engine.GET("/api/health", a.healthCheck)
}

func (a *App) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   a.config.Environment,
		"game_code": a.GameCode(),
	})
}

// RegisterGameRoutes registers the game API routes.
//
// Routes registered:
//   - POST /api/games/{game_code}/authorize-game   -> GameHandler.Authorize
//   - POST /api/games/{game_code}/spin             -> GameHandler.Spin
//   - POST /api/games/{game_code}/bonus-buy        -> GameHandler.BonusBuy
//   - GET  /api/games/{game_code}/config           -> GameHandler.GetConfig
//   - GET  /api/games/{game_code}/get-player-state -> GameHandler.GetState
//   - GET  /api/games/{game_code}/feed/updates     -> FeedHandler.StreamUpdates (SSE)
//   - GET  /api/games/{game_code}/feed/updates/ws  -> FeedHandler.StreamUpdatesWebSocket
func (a *App) RegisterGameRoutes() {
	gameCode := a.GameCode()

	games := a.engine.Group("/api/games")
	games.Use(auth.JWTMiddleware(a.config.JWT.Secret, a.logger)) // JWT middleware sets user info
	{
		gameRoutes := games.Group("/" + gameCode)
		{
			gameRoutes.POST("/authorize-game", a.gameHandler.Authorize)
			gameRoutes.POST("/spin", a.gameHandler.Spin)
			gameRoutes.POST("/bonus-buy", a.gameHandler.BonusBuy)
			gameRoutes.GET("/config", a.gameHandler.GetConfig)
			gameRoutes.GET("/get-player-state", a.gameHandler.GetState)

			// Live win feed (SSE and WebSocket streams)
			gameRoutes.GET("/feed/updates", a.feedHandler.StreamUpdates)
			gameRoutes.GET("/feed/updates/ws", a.feedHandler.StreamUpdatesWebSocket)
		}
	}

	a.logger.Info().
		Str("game_code", gameCode).
		Msg("Game routes registered: /api/games/" + gameCode)
}

// Router returns the Gin engine for custom route registration
func (a *App) Router() *gin.Engine {
	return a.engine
}

// Group creates a route group
func (a *App) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return a.engine.Group(path, handlers...)
}

// AuthGroup creates a route group with JWT authentication
func (a *App) AuthGroup(path string) *gin.RouterGroup {
	return a.engine.Group(path, auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
}

// OnShutdown registers a function to be called on shutdown
func (a *App) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

// Run starts the HTTP server
func (a *App) Run() error {
	addr := fmt.Sprintf(":%d", a.config.Server.Port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Str("game_code", a.GameCode()).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	return a.waitForShutdown()
}

// RunWithContext starts the HTTP server with context
func (a *App) RunWithContext(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.config.Server.Port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Str("game_code", a.GameCode()).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return a.shutdown()
}

func (a *App) shutdown() error {
	a.logger.Info().Msg("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Call registered shutdown handlers
	for _, fn := range a.onShutdown {
		fn()
	}

	// Shutdown HTTP server
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Error during server shutdown")
		return err
	}

	a.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}
