package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/avetrov/gamebank/internal/model"
)

// Broadcaster publishes economy and presence events to a room's SSE
// clients. Payloads are JSON; if a room has no hub (nobody listening),
// publishing is a silent no-op.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "broadcaster")),
	}
}

func (b *Broadcaster) publish(roomCode model.RoomCode, eventType model.EventType, payload any) {
	hub := b.hubManager.GetHub(roomCode)
	if hub == nil {
		return
	}

	event := model.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		RoomCode:  roomCode,
		Payload:   payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to marshal event",
			slog.String("type", string(eventType)),
			slog.Any("error", err))
		return
	}

	hub.BroadcastEvent(string(eventType), string(data))
}

// PlayerJoined announces a new seat in the room
func (b *Broadcaster) PlayerJoined(roomCode model.RoomCode, identity *model.PlayerIdentity, playerIndex int) {
	b.publish(roomCode, model.EventPlayerJoined, model.PlayerJoinedPayload{
		IdentityID:  identity.ID,
		DisplayName: identity.DisplayName,
		PlayerIndex: playerIndex,
	})
}

// PresenceChanged announces an identity going online or offline
func (b *Broadcaster) PresenceChanged(roomCode model.RoomCode, identity *model.PlayerIdentity) {
	eventType := model.EventPlayerOffline
	if identity.IsOnline() {
		eventType = model.EventPlayerOnline
	}
	b.publish(roomCode, eventType, model.PresencePayload{
		IdentityID:      identity.ID,
		DisplayName:     identity.DisplayName,
		ConnectionCount: identity.ConnectionCount(),
	})
}

// CreditTaken announces a loan draw
func (b *Broadcaster) CreditTaken(roomCode model.RoomCode, playerIndex, amount, totalCredit, totalMonthlyPayment int) {
	b.publish(roomCode, model.EventCreditTaken, model.CreditTakenPayload{
		PlayerIndex:         playerIndex,
		Amount:              amount,
		TotalCredit:         totalCredit,
		TotalMonthlyPayment: totalMonthlyPayment,
	})
}

// CreditPaid announces a loan repayment
func (b *Broadcaster) CreditPaid(roomCode model.RoomCode, playerIndex, paidAmount, remainingCredit int) {
	b.publish(roomCode, model.EventCreditPaid, model.CreditPaidPayload{
		PlayerIndex:     playerIndex,
		PaidAmount:      paidAmount,
		RemainingCredit: remainingCredit,
	})
}

// MoneyTransferred announces a player-to-player transfer
func (b *Broadcaster) MoneyTransferred(roomCode model.RoomCode, senderIndex, recipientIndex, amount int) {
	b.publish(roomCode, model.EventMoneyTransfer, model.MoneyTransferPayload{
		SenderIndex:    senderIndex,
		RecipientIndex: recipientIndex,
		Amount:         amount,
	})
}
