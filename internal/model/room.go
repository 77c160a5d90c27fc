package model

import "time"

// RoomCode is the short human-readable identifier for joining rooms
type RoomCode string

// RoomState represents where a room is in the voting round lifecycle
type RoomState string

const (
	RoomStateWaiting  RoomState = "waiting"  // No round in progress, accepting joins
	RoomStateVoting   RoomState = "voting"   // Members are privately selecting cards
	RoomStateRevealed RoomState = "revealed" // Selections are visible to everyone
)

// Room represents a group of players sharing one voting session.
// Players is ordered by join time and is the source of truth for
// membership; a room with zero players must be deleted immediately.
type Room struct {
	Code      RoomCode
	State     RoomState
	Players   []*Player // join order
	CreatedAt time.Time
}

// Host returns the current host, or nil if the room is empty
func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// GetPlayer returns the player with the given ID, or nil if not a member
func (r *Room) GetPlayer(id PlayerID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Snapshot serializes the room for delivery to clients. Individual card
// values are included only when withVotes is true or the room has reached
// the revealed state; otherwise selectedCard is nulled so that no member
// can observe another member's vote before the reveal.
func (r *Room) Snapshot(withVotes bool) *RoomSnapshot {
	showVotes := withVotes || r.State == RoomStateRevealed

	players := make([]PlayerSnapshot, 0, len(r.Players))
	for _, p := range r.Players {
		ps := PlayerSnapshot{
			ID:          p.ID,
			Name:        p.Name,
			IsHost:      p.IsHost,
			HasSelected: p.HasSelected(),
		}
		if showVotes {
			ps.SelectedCard = p.SelectedCard
		}
		players = append(players, ps)
	}

	return &RoomSnapshot{
		RoomCode: r.Code,
		State:    r.State,
		Cards:    CardSet(),
		Players:  players,
	}
}

// RevealOrder returns every player's selection in join order
func (r *Room) RevealOrder() []RevealEntry {
	order := make([]RevealEntry, 0, len(r.Players))
	for _, p := range r.Players {
		order = append(order, RevealEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Card:     p.SelectedCard,
		})
	}
	return order
}

// Consensus reports whether the revealed votes agree: at least two
// players selected a card, every selection is identical, and the card
// is a numeric estimate rather than ? or ☕.
func (r *Room) Consensus() bool {
	var first *Card
	count := 0
	for _, p := range r.Players {
		if p.SelectedCard == nil {
			continue
		}
		count++
		if first == nil {
			first = p.SelectedCard
			continue
		}
		if *p.SelectedCard != *first {
			return false
		}
	}
	return count >= 2 && first.IsEstimate()
}
