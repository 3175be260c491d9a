package memory

import (
	"context"
	"sync"

	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	identities map[model.IdentityID]*model.PlayerIdentity
	rooms      map[model.RoomCode]*model.Room
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		identities: make(map[model.IdentityID]*model.PlayerIdentity),
		rooms:      make(map[model.RoomCode]*model.Room),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.PlayerIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.ID] = identity
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.PlayerIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return identity, nil
}

func (s *Storage) DeleteIdentity(ctx context.Context, id model.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, id)
	return nil
}

func (s *Storage) ListIdentities(ctx context.Context) ([]*model.PlayerIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identities := make([]*model.PlayerIdentity, 0, len(s.identities))
	for _, identity := range s.identities {
		identities = append(identities, identity)
	}
	return identities, nil
}

func (s *Storage) CountIdentities(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities), nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code] = room
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}
