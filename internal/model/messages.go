package model

import "encoding/json"

// MessageType discriminates messages on the wire
type MessageType string

// Client-to-server message types
const (
	MessageCreateRoom  MessageType = "create_room"
	MessageJoinRoom    MessageType = "join_room"
	MessageStartRound  MessageType = "start_round"
	MessageSelectCard  MessageType = "select_card"
	MessageRevealCards MessageType = "reveal_cards"
	MessageResetRound  MessageType = "reset_round"
	MessageCloseReveal MessageType = "close_reveal"
)

// Server-to-client message types
const (
	MessageRoomCreated    MessageType = "room_created"
	MessageJoinedRoom     MessageType = "joined_room"
	MessageRoundStarted   MessageType = "round_started"
	MessagePlayerSelected MessageType = "player_selected"
	MessageCardsRevealed  MessageType = "cards_revealed"
	MessageRoundReset     MessageType = "round_reset"
	MessageRevealClosed   MessageType = "reveal_closed"
	MessageBecameHost     MessageType = "became_host"
	MessagePlayerJoined   MessageType = "player_joined"
	MessagePlayerLeft     MessageType = "player_left"
	MessageError          MessageType = "error"
)

// Message is the envelope every wire message travels in. Payload holds
// the type-specific body and is absent for types that carry none.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeMessage builds the wire bytes for an outbound message
func EncodeMessage(t MessageType, payload any) ([]byte, error) {
	msg := Message{Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return json.Marshal(&msg)
}

// Client-to-server payloads

// CreateRoomPayload opens a new room with the sender as host
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// JoinRoomPayload adds the sender to an existing room
type JoinRoomPayload struct {
	Name     string `json:"name"`
	RoomCode string `json:"roomCode"`
}

// SelectCardPayload records the sender's pick; a null card clears it
type SelectCardPayload struct {
	Card *Card `json:"card"`
}

// Server-to-client payloads

// RoomCreatedPayload acknowledges create_room to the new host
type RoomCreatedPayload struct {
	RoomCode     RoomCode      `json:"roomCode"`
	PlayerID     PlayerID      `json:"playerId"`
	SessionToken string        `json:"sessionToken"`
	RoomState    *RoomSnapshot `json:"roomState"`
}

// JoinedRoomPayload acknowledges join_room to the joining player
type JoinedRoomPayload struct {
	RoomCode     RoomCode      `json:"roomCode"`
	PlayerID     PlayerID      `json:"playerId"`
	SessionToken string        `json:"sessionToken"`
	RoomState    *RoomSnapshot `json:"roomState"`
}

// RoundStartedPayload is broadcast when the host starts a round
type RoundStartedPayload struct {
	RoomState *RoomSnapshot `json:"roomState"`
}

// PlayerSelectedPayload is broadcast when a member picks a card.
// The snapshot reveals who has selected, never what they selected.
type PlayerSelectedPayload struct {
	PlayerID  PlayerID      `json:"playerId"`
	RoomState *RoomSnapshot `json:"roomState"`
}

// CardsRevealedPayload is broadcast when the host reveals the round
type CardsRevealedPayload struct {
	RevealOrder []RevealEntry `json:"revealOrder"`
	Consensus   bool          `json:"consensus"`
	RoomState   *RoomSnapshot `json:"roomState"`
}

// RoundResetPayload is broadcast when the host resets to waiting
type RoundResetPayload struct {
	RoomState *RoomSnapshot `json:"roomState"`
}

// PlayerJoinedPayload is broadcast when a member joins
type PlayerJoinedPayload struct {
	PlayerID  PlayerID      `json:"playerId"`
	RoomState *RoomSnapshot `json:"roomState"`
}

// PlayerLeftPayload is broadcast when a member leaves or disconnects
type PlayerLeftPayload struct {
	PlayerID  PlayerID      `json:"playerId"`
	RoomState *RoomSnapshot `json:"roomState"`
}

// ErrorPayload reports a per-message failure to the sender
type ErrorPayload struct {
	Message string `json:"message"`
}

// RoomSnapshot is the secrecy-filtered view of a room sent to clients
type RoomSnapshot struct {
	RoomCode RoomCode         `json:"roomCode"`
	State    RoomState        `json:"state"`
	Cards    []Card           `json:"cards"`
	Players  []PlayerSnapshot `json:"players"`
}

// PlayerSnapshot is one member's entry within a RoomSnapshot
type PlayerSnapshot struct {
	ID           PlayerID `json:"id"`
	Name         string   `json:"name"`
	IsHost       bool     `json:"isHost"`
	HasSelected  bool     `json:"hasSelected"`
	SelectedCard *Card    `json:"selectedCard"`
}

// RevealEntry is one member's vote within a cards_revealed broadcast
type RevealEntry struct {
	PlayerID PlayerID `json:"playerId"`
	Name     string   `json:"name"`
	Card     *Card    `json:"card"`
}
