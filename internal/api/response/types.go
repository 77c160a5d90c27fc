package response

import (
	"time"

	"github.com/Levii22/planning-poker/internal/services/room"
)

// Health reports process liveness and coarse usage counters
type Health struct {
	Status   string `json:"status"`
	Rooms    int    `json:"rooms"`
	Sessions int    `json:"sessions"`
	Clients  int    `json:"clients"`
}

// RoomSummary describes a room without exposing its members' votes or
// identities. It is what a prospective joiner sees before connecting.
type RoomSummary struct {
	RoomCode    string    `json:"roomCode"`
	State       string    `json:"state"`
	PlayerCount int       `json:"playerCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RoomSummaryFromInfo converts a room.Info to a RoomSummary
func RoomSummaryFromInfo(info *room.Info) RoomSummary {
	return RoomSummary{
		RoomCode:    string(info.Code),
		State:       string(info.State),
		PlayerCount: info.PlayerCount,
		CreatedAt:   info.CreatedAt,
	}
}
