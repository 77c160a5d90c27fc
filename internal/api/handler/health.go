package handler

import (
	"net/http"

	"github.com/Levii22/planning-poker/internal/api/apierr"
	"github.com/Levii22/planning-poker/internal/api/response"
	"github.com/Levii22/planning-poker/internal/services/room"
	"github.com/Levii22/planning-poker/internal/services/session"
	"github.com/Levii22/planning-poker/internal/web/ws"
)

// HealthHandler serves the liveness probe
type HealthHandler struct {
	rooms    room.ControllerInterface
	sessions *session.Service
	hub      *ws.Hub
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(rooms room.ControllerInterface, sessions *session.Service, hub *ws.Hub) *HealthHandler {
	return &HealthHandler{
		rooms:    rooms,
		sessions: sessions,
		hub:      hub,
	}
}

// Get reports liveness along with room, session and connection counts
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomCount, err := h.rooms.CountRooms(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Health{
		Status:   "ok",
		Rooms:    roomCount,
		Sessions: h.sessions.Count(),
		Clients:  h.hub.ClientCount(),
	})
}
