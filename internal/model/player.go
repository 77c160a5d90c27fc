package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a room member. Players are owned by their Room in
// join order; the live connection is tracked separately by the ws layer.
type Player struct {
	ID           PlayerID
	Name         string // sanitized display name
	IsHost       bool
	SelectedCard *Card // nil until the player picks during voting
	JoinedAt     time.Time
}

// HasSelected reports whether the player has picked a card this round
func (p *Player) HasSelected() bool {
	return p.SelectedCard != nil
}
