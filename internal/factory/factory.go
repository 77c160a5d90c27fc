package factory

import (
	"io"
	"log/slog"

	"github.com/Levii22/planning-poker/internal/dependencies/clock"
	"github.com/Levii22/planning-poker/internal/dependencies/random"
	"github.com/Levii22/planning-poker/internal/services/room"
	"github.com/Levii22/planning-poker/internal/services/session"
	"github.com/Levii22/planning-poker/internal/storage"
	"github.com/Levii22/planning-poker/internal/storage/memory"
	"github.com/Levii22/planning-poker/internal/web/ws"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	RoomController *room.Controller
	SessionService *session.Service
	Hub            *ws.Hub
	Dispatcher     *ws.Dispatcher
}

// Config holds configuration for the application factory
type Config struct {
	// RoomConfig bounds rooms and players (optional)
	// Zero values fall back to room.DefaultConfig()
	RoomConfig room.Config
	// SessionConfig controls token lifetime and sweeping (optional)
	// Zero values fall back to session.DefaultConfig()
	SessionConfig session.Config
	// AllowedOrigins restricts WebSocket upgrades (optional)
	// Empty means any origin is accepted
	AllowedOrigins []string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired.
// Rooms live in process memory and die with it.
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store := memory.New()
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	roomController := room.NewController(store, clk, rnd, cfg.RoomConfig, logger)
	sessionService := session.New(clk, cfg.SessionConfig, logger)
	hub := ws.NewHub(logger)
	dispatcher := ws.NewDispatcher(roomController, sessionService, hub, clk,
		ws.Config{AllowedOrigins: cfg.AllowedOrigins}, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		RoomController: roomController,
		SessionService: sessionService,
		Hub:            hub,
		Dispatcher:     dispatcher,
	}
}
