package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/avetrov/gamebank/internal/model"
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

func (s *StorageSuite) identity(id string) *model.PlayerIdentity {
	return &model.PlayerIdentity{
		ID:           model.IdentityID(id),
		AccountID:    id + "@example.com",
		DisplayName:  id,
		RegisteredAt: time.Now(),
		LastSeenAt:   time.Now(),
		Connections:  make(map[model.ConnectionID]struct{}),
	}
}

// Identity tests

func (s *StorageSuite) TestSaveAndGetIdentity() {
	identity := s.identity("alice")
	s.Require().NoError(s.storage.SaveIdentity(s.ctx, identity))

	got, err := s.storage.GetIdentity(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(identity.AccountID, got.AccountID)
}

func (s *StorageSuite) TestGetIdentityNotFound() {
	_, err := s.storage.GetIdentity(s.ctx, "nope")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *StorageSuite) TestDeleteIdentity() {
	s.Require().NoError(s.storage.SaveIdentity(s.ctx, s.identity("alice")))
	s.Require().NoError(s.storage.DeleteIdentity(s.ctx, "alice"))

	_, err := s.storage.GetIdentity(s.ctx, "alice")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *StorageSuite) TestDeleteUnknownIdentityIsNoOp() {
	s.NoError(s.storage.DeleteIdentity(s.ctx, "nope"))
}

func (s *StorageSuite) TestListAndCountIdentities() {
	s.Require().NoError(s.storage.SaveIdentity(s.ctx, s.identity("alice")))
	s.Require().NoError(s.storage.SaveIdentity(s.ctx, s.identity("bob")))

	identities, err := s.storage.ListIdentities(s.ctx)
	s.Require().NoError(err)
	s.Len(identities, 2)

	count, err := s.storage.CountIdentities(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *StorageSuite) TestSaveIdentityOverwrites() {
	identity := s.identity("alice")
	s.Require().NoError(s.storage.SaveIdentity(s.ctx, identity))

	identity.DisplayName = "Alice B"
	s.Require().NoError(s.storage.SaveIdentity(s.ctx, identity))

	got, err := s.storage.GetIdentity(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice B", got.DisplayName)

	count, err := s.storage.CountIdentities(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		Code: "ABC234",
		Players: []model.RoomPlayer{
			{IdentityID: "alice", DisplayName: "Alice", JoinedAt: time.Now()},
		},
		Balances: []int{1000},
		Credits:  []int{1000},
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	got, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal([]int{1000}, got.Balances)
	s.Len(got.Players, 1)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE11")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, &model.Room{Code: "ABC234"}))

	exists, err = s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestDeleteRoom() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, &model.Room{Code: "ABC234"}))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC234"))

	_, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)
}
