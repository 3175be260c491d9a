package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avetrov/gamebank/internal/dependencies/clock"
	"github.com/avetrov/gamebank/internal/dependencies/random"
	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/services/credit"
	"github.com/avetrov/gamebank/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// TransferResult is the snapshot returned by a player-to-player transfer
type TransferResult struct {
	SenderBalance    int
	RecipientBalance int
	Amount           int
}

// Controller owns room lifecycle and is the serialization point for all
// economy mutations: every operation on a room runs under that room's
// lock, so the ledger's multi-collection updates are never interleaved.
type Controller struct {
	storage storage.Storage
	ledger  *credit.Service
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.RoomCode]*sync.Mutex
}

// NewController creates a new room Controller
func NewController(
	store storage.Storage,
	ledger *credit.Service,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: store,
		ledger:  ledger,
		clock:   clk,
		random:  rnd,
		logger:  logger.With(slog.String("component", "room")),
		locks:   make(map[model.RoomCode]*sync.Mutex),
	}
}

// CreateRoom creates a new room with the given identity seated at index 0
func (c *Controller) CreateRoom(ctx context.Context, host *model.PlayerIdentity) (*model.Room, error) {
	now := c.clock.Now()

	// Generate unique room code
	var code model.RoomCode
	for {
		code = model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		exists, err := c.storage.RoomExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room := &model.Room{
		Code: code,
		Players: []model.RoomPlayer{
			{
				IdentityID:  host.ID,
				DisplayName: host.DisplayName,
				JoinedAt:    now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("host", string(host.ID)))

	return room, nil
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, code)
}

// JoinRoom seats an identity in a room and returns its player index.
// An identity holds at most one seat per room.
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, player *model.PlayerIdentity) (int, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return 0, err
	}

	if room.GetPlayerByIdentity(player.ID) >= 0 {
		return 0, model.ErrAlreadyInRoom
	}

	room.Players = append(room.Players, model.RoomPlayer{
		IdentityID:  player.ID,
		DisplayName: player.DisplayName,
		JoinedAt:    c.clock.Now(),
	})
	room.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return 0, err
	}

	return len(room.Players) - 1, nil
}

// TakeCredit issues a loan to a seated player and persists the room
func (c *Controller) TakeCredit(ctx context.Context, code model.RoomCode, playerIndex, amount int) (*credit.TakeResult, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	result, err := c.ledger.Take(room, playerIndex, amount)
	if err != nil {
		return nil, err
	}

	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return result, nil
}

// PayoffCredit retires loan principal and persists the room.
// amount 0 means full payoff.
func (c *Controller) PayoffCredit(ctx context.Context, code model.RoomCode, playerIndex, amount int) (*credit.PayoffResult, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	result, err := c.ledger.Payoff(room, playerIndex, amount)
	if err != nil {
		return nil, err
	}

	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return result, nil
}

// PlayerCredit returns a player's credit position without mutating anything
func (c *Controller) PlayerCredit(ctx context.Context, code model.RoomCode, playerIndex int) (*credit.Status, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.ledger.GetStatus(room, playerIndex)
}

// Transfer moves money between two seated players and records it in the
// transfer history. Loans are not involved; this is plain cash movement.
func (c *Controller) Transfer(ctx context.Context, code model.RoomCode, senderIndex, recipientIndex, amount int) (*TransferResult, error) {
	lock := c.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if !room.HasPlayerIndex(senderIndex) || !room.HasPlayerIndex(recipientIndex) {
		return nil, model.ErrInvalidPlayerIndex
	}
	if senderIndex == recipientIndex || amount <= 0 {
		return nil, model.ErrInvalidTransfer
	}

	room.EnsureEconomy()
	if amount > room.Balances[senderIndex] {
		return nil, model.ErrInsufficientFunds
	}

	sender := room.Players[senderIndex].DisplayName
	recipient := room.Players[recipientIndex].DisplayName
	now := c.clock.Now()

	room.Balances[senderIndex] -= amount
	room.Balances[recipientIndex] += amount
	room.TransferHistory = append(room.TransferHistory, model.TransferEntry{
		Sender:         sender,
		Recipient:      recipient,
		Amount:         amount,
		Timestamp:      now,
		SenderIndex:    senderIndex,
		RecipientIndex: recipientIndex,
		Kind:           model.TransferKindPlayer,
		Description:    fmt.Sprintf("%s sent %d to %s", sender, amount, recipient),
	})
	room.UpdatedAt = now

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("transfer",
		slog.String("room", string(code)),
		slog.Int("sender", senderIndex),
		slog.Int("recipient", recipientIndex),
		slog.Int("amount", amount))

	return &TransferResult{
		SenderBalance:    room.Balances[senderIndex],
		RecipientBalance: room.Balances[recipientIndex],
		Amount:           amount,
	}, nil
}

// roomLock returns the mutex guarding a room's economy, creating it on
// first use. Locks are never discarded; rooms are few and short-lived.
func (c *Controller) roomLock(code model.RoomCode) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[code] = lock
	}
	return lock
}
