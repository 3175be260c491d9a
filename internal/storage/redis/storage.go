package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.PlayerIdentity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, identityKey(identity.ID), data, 0)
	pipe.SAdd(ctx, identityIndexKey(), string(identity.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.PlayerIdentity, error) {
	data, err := s.client.Get(ctx, identityKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}

	var identity model.PlayerIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *Storage) DeleteIdentity(ctx context.Context, id model.IdentityID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, identityKey(id))
	pipe.SRem(ctx, identityIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListIdentities(ctx context.Context) ([]*model.PlayerIdentity, error) {
	ids, err := s.client.SMembers(ctx, identityIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	identities := make([]*model.PlayerIdentity, 0, len(ids))
	for _, id := range ids {
		identity, err := s.GetIdentity(ctx, model.IdentityID(id))
		if err != nil {
			// Index may lag a concurrent delete; skip the hole
			if errors.Is(err, model.ErrIdentityNotFound) {
				continue
			}
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

func (s *Storage) CountIdentities(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, identityIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, roomKey(room.Code), data, s.cfg.RoomTTL).Err()
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	return s.client.Del(ctx, roomKey(code)).Err()
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	n, err := s.client.Exists(ctx, roomKey(code)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
