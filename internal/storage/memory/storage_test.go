package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Levii22/planning-poker/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) testRoom(code string) *model.Room {
	return &model.Room{
		Code:      model.RoomCode(code),
		State:     model.RoomStateWaiting,
		Players:   []*model.Player{{ID: "p1", Name: "Ann", IsHost: true}},
		CreatedAt: time.Now(),
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.testRoom("AB12")

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "AB12")
	s.Require().NoError(err)
	s.Equal(room.Code, retrieved.Code)
	s.Equal(model.RoomStateWaiting, retrieved.State)
	s.Len(retrieved.Players, 1)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "ZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, s.testRoom("AB12"))

	err := s.storage.DeleteRoom(s.ctx, "AB12")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "AB12")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoomIsIdempotent() {
	s.NoError(s.storage.DeleteRoom(s.ctx, "AB12"))
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "AB12")
	s.Require().NoError(err)
	s.False(exists)

	_ = s.storage.SaveRoom(s.ctx, s.testRoom("AB12"))

	exists, err = s.storage.RoomExists(s.ctx, "AB12")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestCountRooms() {
	count, err := s.storage.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)

	_ = s.storage.SaveRoom(s.ctx, s.testRoom("AB12"))
	_ = s.storage.SaveRoom(s.ctx, s.testRoom("CD34"))

	count, err = s.storage.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	_ = s.storage.DeleteRoom(s.ctx, "AB12")

	count, _ = s.storage.CountRooms(s.ctx)
	s.Equal(1, count)
}
