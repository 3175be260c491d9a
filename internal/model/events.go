package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Room events
	EventPlayerJoined EventType = "player_joined"

	// Presence events
	EventPlayerOnline  EventType = "player_online"
	EventPlayerOffline EventType = "player_offline"

	// Economy events
	EventCreditTaken   EventType = "credit_taken"
	EventCreditPaid    EventType = "credit_paid"
	EventMoneyTransfer EventType = "money_transfer"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RoomCode  RoomCode  `json:"room_code,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	IdentityID  IdentityID `json:"identity_id"`
	DisplayName string     `json:"display_name"`
	PlayerIndex int        `json:"player_index"`
}

// PresencePayload contains data for online/offline events
type PresencePayload struct {
	IdentityID      IdentityID `json:"identity_id"`
	DisplayName     string     `json:"display_name"`
	ConnectionCount int        `json:"connection_count"`
}

// CreditTakenPayload contains data for credit taken events
type CreditTakenPayload struct {
	PlayerIndex         int `json:"player_index"`
	Amount              int `json:"amount"`
	TotalCredit         int `json:"total_credit"`
	TotalMonthlyPayment int `json:"total_monthly_payment"`
}

// CreditPaidPayload contains data for credit payoff events
type CreditPaidPayload struct {
	PlayerIndex     int `json:"player_index"`
	PaidAmount      int `json:"paid_amount"`
	RemainingCredit int `json:"remaining_credit"`
}

// MoneyTransferPayload contains data for player-to-player transfers
type MoneyTransferPayload struct {
	SenderIndex    int `json:"sender_index"`
	RecipientIndex int `json:"recipient_index"`
	Amount         int `json:"amount"`
}
