package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Levii22/planning-poker/internal/api/handler"
	apimiddleware "github.com/Levii22/planning-poker/internal/api/middleware"
	"github.com/Levii22/planning-poker/internal/middleware"
	"github.com/Levii22/planning-poker/internal/services/room"
	"github.com/Levii22/planning-poker/internal/services/session"
	"github.com/Levii22/planning-poker/internal/web/ws"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger     *slog.Logger
	Rooms      room.ControllerInterface
	Sessions   *session.Service
	Hub        *ws.Hub
	Dispatcher *ws.Dispatcher
}

// NewRouter creates the HTTP router: the WebSocket endpoint plus the
// small read-only REST surface
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Rooms, cfg.Sessions, cfg.Hub)
	roomHandler := handler.NewRoomHandler(cfg.Rooms)

	// Common middleware. The logging wrapper passes hijacking through,
	// so the WebSocket upgrade works behind it.
	r.Use(apimiddleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Game traffic runs over a single WebSocket endpoint
	r.HandleFunc("/ws", cfg.Dispatcher.HandleWS)

	// Liveness probe
	r.HandleFunc("/healthz", healthHandler.Get).Methods(http.MethodGet)

	// Read-only REST surface
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)

	return r
}
