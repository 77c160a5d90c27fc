package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Levii22/planning-poker/internal/model"
	"github.com/Levii22/planning-poker/internal/services/room"
	"github.com/Levii22/planning-poker/internal/services/session"
	"github.com/Levii22/planning-poker/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func card(v string) *model.Card {
	c := model.Card(v)
	return &c
}

// Test: a full estimation round from room creation to reset
func (s *IntegrationSuite) TestFullRoundFlow() {
	s.app.MockRandom.QueueString("AB12")

	// Host opens the room, two players join
	host, err := s.app.RoomController.CreateRoom(s.ctx, "Host")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("AB12"), host.RoomCode)
	hostToken := s.app.SessionService.Issue(host.PlayerID, host.RoomCode, "Host")
	s.Regexp("^sess_", hostToken)

	p2, err := s.app.RoomController.JoinRoom(s.ctx, "AB12", "Alice")
	s.Require().NoError(err)
	p3, err := s.app.RoomController.JoinRoom(s.ctx, "AB12", "Bob")
	s.Require().NoError(err)

	// Host starts the round and everyone votes
	snap, err := s.app.RoomController.StartRound(s.ctx, "AB12", host.PlayerID)
	s.Require().NoError(err)
	s.Equal(model.RoomStateVoting, snap.State)

	_, err = s.app.RoomController.SelectCard(s.ctx, "AB12", host.PlayerID, card("5"))
	s.Require().NoError(err)
	_, err = s.app.RoomController.SelectCard(s.ctx, "AB12", p2.PlayerID, card("5"))
	s.Require().NoError(err)
	snap, err = s.app.RoomController.SelectCard(s.ctx, "AB12", p3.PlayerID, card("5"))
	s.Require().NoError(err)

	// Votes stay hidden until reveal
	for _, p := range snap.Players {
		s.True(p.HasSelected)
		s.Nil(p.SelectedCard)
	}

	// Reveal shows every vote in join order and flags consensus
	result, err := s.app.RoomController.RevealCards(s.ctx, "AB12", host.PlayerID)
	s.Require().NoError(err)
	s.True(result.Consensus)
	s.Require().Len(result.Order, 3)
	s.Equal(host.PlayerID, result.Order[0].PlayerID)
	s.Equal(p2.PlayerID, result.Order[1].PlayerID)
	s.Equal(p3.PlayerID, result.Order[2].PlayerID)

	// Reset puts the room back to waiting with clean slates
	snap, err = s.app.RoomController.ResetRound(s.ctx, "AB12", host.PlayerID)
	s.Require().NoError(err)
	s.Equal(model.RoomStateWaiting, snap.State)
	for _, p := range snap.Players {
		s.False(p.HasSelected)
	}
}

// Test: host authority walks down the join order as players leave
func (s *IntegrationSuite) TestHostHandoverChain() {
	s.app.MockRandom.QueueString("AB12")

	host, _ := s.app.RoomController.CreateRoom(s.ctx, "Host")
	p2, _ := s.app.RoomController.JoinRoom(s.ctx, "AB12", "Alice")
	s.app.MockClock.Advance(time.Second)
	p3, _ := s.app.RoomController.JoinRoom(s.ctx, "AB12", "Bob")

	left, err := s.app.RoomController.Leave(s.ctx, "AB12", host.PlayerID)
	s.Require().NoError(err)
	s.Equal(p2.PlayerID, left.NewHostID)

	left, err = s.app.RoomController.Leave(s.ctx, "AB12", p2.PlayerID)
	s.Require().NoError(err)
	s.Equal(p3.PlayerID, left.NewHostID)

	left, err = s.app.RoomController.Leave(s.ctx, "AB12", p3.PlayerID)
	s.Require().NoError(err)
	s.True(left.Deleted)

	count, err := s.app.RoomController.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
}

// Test: rounds in one room never touch another
func (s *IntegrationSuite) TestRoomsAreIsolated() {
	s.app.MockRandom.QueueString("AB12", "CD34")

	roomA, _ := s.app.RoomController.CreateRoom(s.ctx, "Ann")
	roomB, _ := s.app.RoomController.CreateRoom(s.ctx, "Bob")

	_, err := s.app.RoomController.StartRound(s.ctx, roomA.RoomCode, roomA.PlayerID)
	s.Require().NoError(err)

	infoA, err := s.app.RoomController.RoomInfo(s.ctx, roomA.RoomCode)
	s.Require().NoError(err)
	s.Equal(model.RoomStateVoting, infoA.State)

	infoB, err := s.app.RoomController.RoomInfo(s.ctx, roomB.RoomCode)
	s.Require().NoError(err)
	s.Equal(model.RoomStateWaiting, infoB.State)
}

// Test: sessions expire on the shared clock
func (s *IntegrationSuite) TestSessionExpiryFollowsClock() {
	s.app.MockRandom.QueueString("AB12")
	host, _ := s.app.RoomController.CreateRoom(s.ctx, "Host")

	s.app.SessionService.Issue(host.PlayerID, host.RoomCode, "Host")
	s.Equal(1, s.app.SessionService.Count())

	s.app.MockClock.Advance(31 * time.Minute)
	swept := s.app.SessionService.Sweep()
	s.Equal(1, swept)
	s.Equal(0, s.app.SessionService.Count())
}

// Test: the room ceiling holds across create and delete churn
func (s *IntegrationSuite) TestRoomCeilingWithChurn() {
	app := newWithDependencies(
		s.app.Storage,
		s.app.MockClock,
		s.app.MockRandom,
		Config{RoomConfig: room.Config{MaxRooms: 2, MaxPlayersPerRoom: 50}},
		testutil.NopLogger(),
	)

	s.app.MockRandom.QueueString("AB12", "CD34")
	first, err := app.RoomController.CreateRoom(s.ctx, "Ann")
	s.Require().NoError(err)
	_, err = app.RoomController.CreateRoom(s.ctx, "Bob")
	s.Require().NoError(err)

	s.app.MockRandom.QueueString("EF56")
	_, err = app.RoomController.CreateRoom(s.ctx, "Cat")
	s.ErrorIs(err, model.ErrServerFull)

	// Deleting a room frees a slot
	left, err := app.RoomController.Leave(s.ctx, first.RoomCode, first.PlayerID)
	s.Require().NoError(err)
	s.True(left.Deleted)

	s.app.MockRandom.QueueString("EF56")
	_, err = app.RoomController.CreateRoom(s.ctx, "Cat")
	s.Require().NoError(err)
}

// Test: factory defaults produce a working app
func (s *IntegrationSuite) TestProductionFactoryDefaults() {
	app, err := New(Config{
		SessionConfig: session.Config{TTL: time.Hour},
	})
	s.Require().NoError(err)
	s.NotNil(app.RoomController)
	s.NotNil(app.SessionService)
	s.NotNil(app.Hub)
	s.NotNil(app.Dispatcher)

	// Real random draws codes from the room alphabet
	result, err := app.RoomController.CreateRoom(s.ctx, "Ann")
	s.Require().NoError(err)
	s.Regexp("^[A-HJ-NP-Z1-9]{4}$", string(result.RoomCode))
}
