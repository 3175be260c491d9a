package model

import "time"

// RoomCode is a human-readable identifier for joining rooms
type RoomCode string

// BankIndex is the player index used in transfer history entries for the
// issuing bank, the non-player counterparty of loans.
const BankIndex = -1

// BankName is the display name recorded for the bank side of a transfer
const BankName = "Bank"

// RoomPlayer represents one seat in a room. The slice index of a player
// is the stable "player index" used by balances, credits and histories.
type RoomPlayer struct {
	IdentityID  IdentityID
	DisplayName string
	JoinedAt    time.Time
}

// CreditEntryKind distinguishes loan draws from repayments
type CreditEntryKind string

const (
	CreditEntryTake   CreditEntryKind = "take"
	CreditEntryPayoff CreditEntryKind = "payoff"
)

// CreditEntry is one immutable row in a room's credit history
type CreditEntry struct {
	PlayerIndex         int
	Kind                CreditEntryKind
	Amount              int
	MonthlyPayment      int // payment attributable to this draw alone
	TotalCredit         int // outstanding principal after this entry
	TotalMonthlyPayment int // payment on the full outstanding principal
	Timestamp           time.Time
	Description         string
}

// TransferKind classifies transfer history entries
type TransferKind string

const (
	TransferKindCredit       TransferKind = "credit"        // bank -> player loan issue
	TransferKindCreditPayoff TransferKind = "credit_payoff" // player -> bank repayment
	TransferKindPlayer       TransferKind = "transfer"      // player -> player
)

// TransferEntry is one immutable row in a room's transfer history.
// SenderIndex/RecipientIndex of BankIndex denote the bank.
type TransferEntry struct {
	Sender         string
	Recipient      string
	Amount         int
	Timestamp      time.Time
	SenderIndex    int
	RecipientIndex int
	Kind           TransferKind
	Description    string
}

// Room is a single game session's economic state: the ordered roster plus
// the four linked collections the credit ledger keeps consistent.
type Room struct {
	Code    RoomCode
	Players []RoomPlayer

	// Balances and Credits are indexed by player index. They start nil and
	// are grown to the roster size on first economic activity; a nil
	// Credits slice means no credit has ever been issued in this room.
	Balances []int
	Credits  []int

	CreditHistory   []CreditEntry
	TransferHistory []TransferEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPlayerIndex reports whether idx refers to a seat in the roster
func (r *Room) HasPlayerIndex(idx int) bool {
	return idx >= 0 && idx < len(r.Players)
}

// GetPlayerByIdentity returns the seat index for an identity, or -1
func (r *Room) GetPlayerByIdentity(id IdentityID) int {
	for i := range r.Players {
		if r.Players[i].IdentityID == id {
			return i
		}
	}
	return -1
}

// EnsureEconomy grows Balances and Credits with zeroes up to the roster
// size. Growth is bounded by len(Players): callers must validate player
// indexes first, so a stray index can never stretch the arrays.
func (r *Room) EnsureEconomy() {
	for len(r.Balances) < len(r.Players) {
		r.Balances = append(r.Balances, 0)
	}
	for len(r.Credits) < len(r.Players) {
		r.Credits = append(r.Credits, 0)
	}
}

// HasCreditData reports whether credit has ever been initialized here
func (r *Room) HasCreditData() bool {
	return r.Credits != nil
}
