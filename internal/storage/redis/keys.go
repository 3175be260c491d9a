package redis

import (
	"fmt"

	"github.com/avetrov/gamebank/internal/model"
)

// Key prefix for all gamebank data
const keyPrefix = "gamebank"

// identityKey returns the Redis key for a PlayerIdentity
func identityKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:identity:%s", keyPrefix, id)
}

// identityIndexKey returns the Redis key for the SET of all identity ids
func identityIndexKey() string {
	return fmt.Sprintf("%s:idx:identities", keyPrefix)
}

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}
