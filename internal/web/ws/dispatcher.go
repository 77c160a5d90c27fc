package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Levii22/planning-poker/internal/dependencies/clock"
	"github.com/Levii22/planning-poker/internal/model"
	"github.com/Levii22/planning-poker/internal/services/room"
	"github.com/Levii22/planning-poker/internal/services/session"
	"github.com/Levii22/planning-poker/internal/validation"
)

// Config holds dispatcher settings
type Config struct {
	// Origins allowed to open connections. Empty means any origin.
	AllowedOrigins []string
}

// Dispatcher owns the WebSocket endpoint. It upgrades connections,
// parses inbound messages, routes them to the room controller, and
// fans the resulting events out through the hub.
//
// Each connection's messages are handled sequentially on its own read
// loop; the controller serializes the actual room mutations.
type Dispatcher struct {
	rooms    room.ControllerInterface
	sessions *session.Service
	hub      *Hub
	clock    clock.Clock
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewDispatcher creates a Dispatcher wired to the given services
func NewDispatcher(
	rooms room.ControllerInterface,
	sessions *session.Service,
	hub *Hub,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		rooms:    rooms,
		sessions: sessions,
		hub:      hub,
		clock:    clk,
		logger:   logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

// originChecker builds the upgrade origin check. Browsers always send
// an Origin header; non-browser clients without one are let through.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		allowedSet[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowedSet[origin]
		return ok
	}
}

// HandleWS upgrades the HTTP request and starts the connection's pumps
func (d *Dispatcher) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		d.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(conn, d)
	go client.writePump()
	go client.readPump()
}

// handleMessage processes one inbound frame. A failure in one message
// is reported on the sender's connection and never tears it down.
func (d *Dispatcher) handleMessage(c *Client, raw []byte) {
	if !c.limiter.Allow() {
		d.sendError(c, model.ErrRateLimited)
		return
	}

	var msg model.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		d.sendError(c, model.ErrMalformedMessage)
		return
	}

	ctx := context.Background()

	var err error
	switch msg.Type {
	case model.MessageCreateRoom:
		err = d.handleCreateRoom(ctx, c, msg.Payload)
	case model.MessageJoinRoom:
		err = d.handleJoinRoom(ctx, c, msg.Payload)
	case model.MessageStartRound:
		err = d.handleStartRound(ctx, c)
	case model.MessageSelectCard:
		err = d.handleSelectCard(ctx, c, msg.Payload)
	case model.MessageRevealCards:
		err = d.handleRevealCards(ctx, c)
	case model.MessageResetRound:
		err = d.handleResetRound(ctx, c)
	case model.MessageCloseReveal:
		err = d.handleCloseReveal(ctx, c)
	default:
		d.logger.Debug("ignoring unknown message type", slog.String("type", string(msg.Type)))
		return
	}

	if err != nil {
		d.sendError(c, err)
	}
}

// handleCreateRoom opens a room with the sender as host
func (d *Dispatcher) handleCreateRoom(ctx context.Context, c *Client, raw json.RawMessage) error {
	if c.joined() {
		return model.ErrAlreadyInRoom
	}

	var payload model.CreateRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.ErrMalformedMessage
	}
	name, err := validation.SanitizeName(payload.Name)
	if err != nil {
		return err
	}

	result, err := d.rooms.CreateRoom(ctx, name)
	if err != nil {
		return err
	}
	token := d.sessions.Issue(result.PlayerID, result.RoomCode, name)

	c.playerID = result.PlayerID
	c.roomCode = result.RoomCode
	d.hub.Register(c)

	reply, err := model.EncodeMessage(model.MessageRoomCreated, model.RoomCreatedPayload{
		RoomCode:     result.RoomCode,
		PlayerID:     result.PlayerID,
		SessionToken: token,
		RoomState:    result.Snapshot,
	})
	if err != nil {
		return err
	}
	c.enqueue(reply)
	return nil
}

// handleJoinRoom adds the sender to an existing room
func (d *Dispatcher) handleJoinRoom(ctx context.Context, c *Client, raw json.RawMessage) error {
	if c.joined() {
		return model.ErrAlreadyInRoom
	}

	var payload model.JoinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.ErrMalformedMessage
	}
	name, err := validation.SanitizeName(payload.Name)
	if err != nil {
		return err
	}
	code := strings.TrimSpace(payload.RoomCode)
	if !validation.ValidRoomCode(code) {
		return model.ErrInvalidRoomCode
	}
	roomCode := model.RoomCode(strings.ToUpper(code))

	result, err := d.rooms.JoinRoom(ctx, roomCode, name)
	if err != nil {
		return err
	}
	token := d.sessions.Issue(result.PlayerID, result.RoomCode, name)

	// Announce to existing members before registering the joiner, so
	// the joiner's first event is its own joined_room
	event, err := model.EncodeMessage(model.MessagePlayerJoined, model.PlayerJoinedPayload{
		PlayerID:  result.PlayerID,
		RoomState: result.Snapshot,
	})
	if err == nil {
		d.hub.Broadcast(result.RoomCode, event)
	}

	c.playerID = result.PlayerID
	c.roomCode = result.RoomCode
	d.hub.Register(c)

	reply, err := model.EncodeMessage(model.MessageJoinedRoom, model.JoinedRoomPayload{
		RoomCode:     result.RoomCode,
		PlayerID:     result.PlayerID,
		SessionToken: token,
		RoomState:    result.Snapshot,
	})
	if err != nil {
		return err
	}
	c.enqueue(reply)
	return nil
}

// handleStartRound moves the room into voting
func (d *Dispatcher) handleStartRound(ctx context.Context, c *Client) error {
	if !c.joined() {
		return model.ErrNotInRoom
	}

	snapshot, err := d.rooms.StartRound(ctx, c.roomCode, c.playerID)
	if err != nil {
		return err
	}

	event, err := model.EncodeMessage(model.MessageRoundStarted, model.RoundStartedPayload{
		RoomState: snapshot,
	})
	if err != nil {
		return err
	}
	d.hub.Broadcast(c.roomCode, event)
	return nil
}

// handleSelectCard records the sender's pick for the current round
func (d *Dispatcher) handleSelectCard(ctx context.Context, c *Client, raw json.RawMessage) error {
	if !c.joined() {
		return model.ErrNotInRoom
	}

	var payload model.SelectCardPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.ErrMalformedMessage
	}

	snapshot, err := d.rooms.SelectCard(ctx, c.roomCode, c.playerID, payload.Card)
	if err != nil {
		return err
	}

	event, err := model.EncodeMessage(model.MessagePlayerSelected, model.PlayerSelectedPayload{
		PlayerID:  c.playerID,
		RoomState: snapshot,
	})
	if err != nil {
		return err
	}
	d.hub.Broadcast(c.roomCode, event)
	return nil
}

// handleRevealCards flips the round to revealed and shows all votes
func (d *Dispatcher) handleRevealCards(ctx context.Context, c *Client) error {
	if !c.joined() {
		return model.ErrNotInRoom
	}

	result, err := d.rooms.RevealCards(ctx, c.roomCode, c.playerID)
	if err != nil {
		return err
	}

	event, err := model.EncodeMessage(model.MessageCardsRevealed, model.CardsRevealedPayload{
		RevealOrder: result.Order,
		Consensus:   result.Consensus,
		RoomState:   result.Snapshot,
	})
	if err != nil {
		return err
	}
	d.hub.Broadcast(c.roomCode, event)
	return nil
}

// handleResetRound returns the room to waiting
func (d *Dispatcher) handleResetRound(ctx context.Context, c *Client) error {
	if !c.joined() {
		return model.ErrNotInRoom
	}

	snapshot, err := d.rooms.ResetRound(ctx, c.roomCode, c.playerID)
	if err != nil {
		return err
	}

	event, err := model.EncodeMessage(model.MessageRoundReset, model.RoundResetPayload{
		RoomState: snapshot,
	})
	if err != nil {
		return err
	}
	d.hub.Broadcast(c.roomCode, event)
	return nil
}

// handleCloseReveal relays the host's cue to dismiss the reveal view
func (d *Dispatcher) handleCloseReveal(ctx context.Context, c *Client) error {
	if !c.joined() {
		return model.ErrNotInRoom
	}

	if err := d.rooms.CloseReveal(ctx, c.roomCode, c.playerID); err != nil {
		return err
	}

	event, err := model.EncodeMessage(model.MessageRevealClosed, nil)
	if err != nil {
		return err
	}
	d.hub.Broadcast(c.roomCode, event)
	return nil
}

// disconnect tears down a client after its read loop exits. The new
// host, if the departure promoted one, hears became_host before anyone
// hears player_left.
func (d *Dispatcher) disconnect(c *Client) {
	if !c.joined() {
		c.closeSend()
		return
	}

	d.hub.Unregister(c)

	result, err := d.rooms.Leave(context.Background(), c.roomCode, c.playerID)
	if err != nil {
		d.logger.Debug("leave on disconnect failed",
			slog.String("room_code", string(c.roomCode)),
			slog.String("player_id", string(c.playerID)),
			slog.Any("error", err))
		return
	}
	if result.Deleted {
		return
	}

	if result.NewHostID != "" {
		event, err := model.EncodeMessage(model.MessageBecameHost, nil)
		if err == nil {
			d.hub.Send(c.roomCode, result.NewHostID, event)
		}
	}

	event, err := model.EncodeMessage(model.MessagePlayerLeft, model.PlayerLeftPayload{
		PlayerID:  c.playerID,
		RoomState: result.Snapshot,
	})
	if err == nil {
		d.hub.Broadcast(c.roomCode, event)
	}
}

// sendError reports a failure on the sender's connection. Host-gate
// failures are dropped without a reply so non-hosts learn nothing from
// probing host actions.
func (d *Dispatcher) sendError(c *Client, err error) {
	if errors.Is(err, model.ErrNotHost) {
		d.logger.Debug("dropping non-host action",
			slog.String("room_code", string(c.roomCode)),
			slog.String("player_id", string(c.playerID)))
		return
	}

	payload, encodeErr := model.EncodeMessage(model.MessageError, model.ErrorPayload{
		Message: userMessage(err),
	})
	if encodeErr != nil {
		d.logger.Error("failed to encode error event", slog.Any("error", encodeErr))
		return
	}
	c.enqueue(payload)
}

// userMessage translates internal errors into client-facing text
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, model.ErrRoomFull):
		return "room is full"
	case errors.Is(err, model.ErrServerFull):
		return "server is at capacity, try again later"
	case errors.Is(err, model.ErrNotInRoom):
		return "you are not in a room"
	case errors.Is(err, model.ErrAlreadyInRoom):
		return "you are already in a room"
	case errors.Is(err, model.ErrNotVoting):
		return "no voting round is in progress"
	case errors.Is(err, model.ErrInvalidName):
		return "invalid name"
	case errors.Is(err, model.ErrInvalidRoomCode):
		return "invalid room code"
	case errors.Is(err, model.ErrInvalidCard):
		return "invalid card"
	case errors.Is(err, model.ErrRateLimited):
		return "too many messages, slow down"
	case errors.Is(err, model.ErrMalformedMessage):
		return "malformed message"
	default:
		return "internal error"
	}
}
