package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Levii22/planning-poker/internal/dependencies/clock"
	"github.com/Levii22/planning-poker/internal/dependencies/random"
	"github.com/Levii22/planning-poker/internal/model"
	"github.com/Levii22/planning-poker/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 4
	// RoomCodeAlphabet is the 33 symbols room codes are drawn from.
	// I, O and 0 are excluded as visually confusable.
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ123456789"
)

// Config holds the capacity ceilings for the room controller
type Config struct {
	// MaxRooms caps how many rooms may be live at once
	MaxRooms int
	// MaxPlayersPerRoom caps membership of a single room
	MaxPlayersPerRoom int
}

// DefaultConfig returns the default capacity configuration
func DefaultConfig() Config {
	return Config{
		MaxRooms:          1000,
		MaxPlayersPerRoom: 50,
	}
}

// JoinResult is returned by CreateRoom and JoinRoom
type JoinResult struct {
	RoomCode model.RoomCode
	PlayerID model.PlayerID
	Snapshot *model.RoomSnapshot
}

// RevealResult is returned by RevealCards
type RevealResult struct {
	Order     []model.RevealEntry
	Consensus bool
	Snapshot  *model.RoomSnapshot
}

// LeaveResult describes what happened when a player left a room
type LeaveResult struct {
	// Deleted is true when the room emptied and was removed
	Deleted bool
	// NewHostID is set when host authority was handed over
	NewHostID model.PlayerID
	// Snapshot of the room after removal; nil when Deleted
	Snapshot *model.RoomSnapshot
}

// Info is a point-in-time description of a room for read-only lookups
type Info struct {
	Code        model.RoomCode
	State       model.RoomState
	PlayerCount int
	CreatedAt   time.Time
}

// Controller owns the room store and the voting state machine. Every
// mutation runs under a single mutex so that no operation can observe
// another one mid-change.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu sync.Mutex

	maxRooms   int
	maxPlayers int
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.MaxRooms == 0 {
		cfg.MaxRooms = DefaultConfig().MaxRooms
	}
	if cfg.MaxPlayersPerRoom == 0 {
		cfg.MaxPlayersPerRoom = DefaultConfig().MaxPlayersPerRoom
	}
	return &Controller{
		storage:    storage,
		clock:      clock,
		random:     random,
		logger:     logger.With(slog.String("component", "room")),
		maxRooms:   cfg.MaxRooms,
		maxPlayers: cfg.MaxPlayersPerRoom,
	}
}

// CreateRoom allocates a fresh room with the given player as host.
// The display name must already be sanitized.
func (c *Controller) CreateRoom(ctx context.Context, hostName string) (*JoinResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count, err := c.storage.CountRooms(ctx)
	if err != nil {
		return nil, err
	}
	if count >= c.maxRooms {
		return nil, model.ErrServerFull
	}

	code, err := c.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	host := &model.Player{
		ID:       model.PlayerID(uuid.NewString()),
		Name:     hostName,
		IsHost:   true,
		JoinedAt: now,
	}
	room := &model.Room{
		Code:      code,
		State:     model.RoomStateWaiting,
		Players:   []*model.Player{host},
		CreatedAt: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("player_id", string(host.ID)))

	return &JoinResult{
		RoomCode: code,
		PlayerID: host.ID,
		Snapshot: room.Snapshot(false),
	}, nil
}

// JoinRoom adds a player to an existing room, preserving its state
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, name string) (*JoinResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if len(room.Players) >= c.maxPlayers {
		return nil, model.ErrRoomFull
	}

	player := &model.Player{
		ID:       model.PlayerID(uuid.NewString()),
		Name:     name,
		IsHost:   false,
		JoinedAt: c.clock.Now(),
	}
	room.Players = append(room.Players, player)

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("player joined",
		slog.String("room", string(code)),
		slog.String("player_id", string(player.ID)),
		slog.Int("players", len(room.Players)))

	return &JoinResult{
		RoomCode: code,
		PlayerID: player.ID,
		Snapshot: room.Snapshot(false),
	}, nil
}

// Leave removes a player from a room. An emptied room is deleted on the
// spot; when the departing player held host authority it passes to the
// next-joined remaining member.
func (c *Controller) Leave(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*LeaveResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	player := room.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrNotInRoom
	}
	wasHost := player.IsHost

	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}

	if len(room.Players) == 0 {
		if err := c.storage.DeleteRoom(ctx, code); err != nil {
			return nil, err
		}
		c.logger.Info("room deleted", slog.String("room", string(code)))
		return &LeaveResult{Deleted: true}, nil
	}

	result := &LeaveResult{}
	if wasHost {
		room.Players[0].IsHost = true
		result.NewHostID = room.Players[0].ID
		c.logger.Info("host transferred",
			slog.String("room", string(code)),
			slog.String("player_id", string(result.NewHostID)))
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	result.Snapshot = room.Snapshot(false)
	return result, nil
}

// StartRound clears every selection and moves the room into voting.
// Host only.
func (c *Controller) StartRound(ctx context.Context, code model.RoomCode, callerID model.PlayerID) (*model.RoomSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.hostRoom(ctx, code, callerID)
	if err != nil {
		return nil, err
	}

	clearSelections(room)
	room.State = model.RoomStateVoting

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room.Snapshot(false), nil
}

// SelectCard records the caller's pick. Legal only while voting; the
// card must be in the deck (nil clears the pick, last write wins).
func (c *Controller) SelectCard(ctx context.Context, code model.RoomCode, playerID model.PlayerID, card *model.Card) (*model.RoomSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.State != model.RoomStateVoting {
		return nil, model.ErrNotVoting
	}
	if !model.IsValidCard(card) {
		return nil, model.ErrInvalidCard
	}

	player := room.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrNotInRoom
	}
	player.SelectedCard = card

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room.Snapshot(false), nil
}

// RevealCards moves the room to revealed and reports every selection in
// join order together with the consensus hint. Host only.
func (c *Controller) RevealCards(ctx context.Context, code model.RoomCode, callerID model.PlayerID) (*RevealResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.hostRoom(ctx, code, callerID)
	if err != nil {
		return nil, err
	}

	room.State = model.RoomStateRevealed

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	return &RevealResult{
		Order:     room.RevealOrder(),
		Consensus: room.Consensus(),
		Snapshot:  room.Snapshot(false),
	}, nil
}

// ResetRound clears every selection and returns the room to waiting.
// Host only.
func (c *Controller) ResetRound(ctx context.Context, code model.RoomCode, callerID model.PlayerID) (*model.RoomSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.hostRoom(ctx, code, callerID)
	if err != nil {
		return nil, err
	}

	clearSelections(room)
	room.State = model.RoomStateWaiting

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room.Snapshot(false), nil
}

// CloseReveal authorizes the reveal-closed cue. It changes no room
// state; the broadcast is purely presentational. Host only.
func (c *Controller) CloseReveal(ctx context.Context, code model.RoomCode, callerID model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.hostRoom(ctx, code, callerID)
	return err
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, code)
}

// RoomInfo describes a room without handing out a live reference
func (c *Controller) RoomInfo(ctx context.Context, code model.RoomCode) (*Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return &Info{
		Code:        room.Code,
		State:       room.State,
		PlayerCount: len(room.Players),
		CreatedAt:   room.CreatedAt,
	}, nil
}

// CountRooms returns the number of live rooms
func (c *Controller) CountRooms(ctx context.Context) (int, error) {
	return c.storage.CountRooms(ctx)
}

// hostRoom loads a room and verifies the caller holds host authority.
// Callers must hold c.mu.
func (c *Controller) hostRoom(ctx context.Context, code model.RoomCode, callerID model.PlayerID) (*model.Room, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	host := room.Host()
	if host == nil || host.ID != callerID {
		return nil, model.ErrNotHost
	}
	return room, nil
}

// generateCode draws codes until one is free. Callers must hold c.mu.
func (c *Controller) generateCode(ctx context.Context) (model.RoomCode, error) {
	for {
		code := model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		exists, err := c.storage.RoomExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

func clearSelections(room *model.Room) {
	for _, p := range room.Players {
		p.SelectedCard = nil
	}
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, hostName string) (*JoinResult, error)
	JoinRoom(ctx context.Context, code model.RoomCode, name string) (*JoinResult, error)
	Leave(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*LeaveResult, error)
	StartRound(ctx context.Context, code model.RoomCode, callerID model.PlayerID) (*model.RoomSnapshot, error)
	SelectCard(ctx context.Context, code model.RoomCode, playerID model.PlayerID, card *model.Card) (*model.RoomSnapshot, error)
	RevealCards(ctx context.Context, code model.RoomCode, callerID model.PlayerID) (*RevealResult, error)
	ResetRound(ctx context.Context, code model.RoomCode, callerID model.PlayerID) (*model.RoomSnapshot, error)
	CloseReveal(ctx context.Context, code model.RoomCode, callerID model.PlayerID) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	RoomInfo(ctx context.Context, code model.RoomCode) (*Info, error)
	CountRooms(ctx context.Context) (int, error)
}

var _ ControllerInterface = (*Controller)(nil)
