package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Levii22/planning-poker/internal/api/apierr"
	"github.com/Levii22/planning-poker/internal/api/response"
	"github.com/Levii22/planning-poker/internal/model"
	"github.com/Levii22/planning-poker/internal/services/room"
	"github.com/Levii22/planning-poker/internal/validation"
)

// RoomHandler serves read-only room lookups
type RoomHandler struct {
	rooms room.ControllerInterface
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(rooms room.ControllerInterface) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Get returns a summary of one room, so a client can check a code
// before opening a WebSocket connection
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := strings.TrimSpace(vars["code"])
	if !validation.ValidRoomCode(code) {
		apierr.WriteError(w, model.ErrInvalidRoomCode)
		return
	}

	info, err := h.rooms.RoomInfo(r.Context(), model.RoomCode(strings.ToUpper(code)))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomSummaryFromInfo(info))
}
