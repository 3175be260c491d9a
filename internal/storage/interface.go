package storage

import (
	"context"

	"github.com/avetrov/gamebank/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Identity operations
	SaveIdentity(ctx context.Context, identity *model.PlayerIdentity) error
	GetIdentity(ctx context.Context, id model.IdentityID) (*model.PlayerIdentity, error)
	DeleteIdentity(ctx context.Context, id model.IdentityID) error
	ListIdentities(ctx context.Context) ([]*model.PlayerIdentity, error)
	CountIdentities(ctx context.Context) (int, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
}
