package response

import (
	"time"

	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/services/credit"
	"github.com/avetrov/gamebank/internal/services/identity"
	"github.com/avetrov/gamebank/internal/services/room"
	"github.com/avetrov/gamebank/internal/services/session"
)

// Identity represents a player identity in API responses
type Identity struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	DisplayName     string    `json:"display_name"`
	GivenName       string    `json:"given_name,omitempty"`
	FamilyName      string    `json:"family_name,omitempty"`
	RegisteredAt    time.Time `json:"registered_at"`
	LastSeenAt      time.Time `json:"last_seen_at"`
	IsOnline        bool      `json:"is_online"`
	ConnectionCount int       `json:"connection_count"`
}

// IdentityFromModel converts a model.PlayerIdentity to a response Identity
func IdentityFromModel(p *model.PlayerIdentity) Identity {
	return Identity{
		ID:              string(p.ID),
		AccountID:       p.AccountID,
		DisplayName:     p.DisplayName,
		GivenName:       p.GivenName,
		FamilyName:      p.FamilyName,
		RegisteredAt:    p.RegisteredAt,
		LastSeenAt:      p.LastSeenAt,
		IsOnline:        p.IsOnline(),
		ConnectionCount: p.ConnectionCount(),
	}
}

// AuthResponse is returned by registration
type AuthResponse struct {
	Identity     Identity  `json:"identity"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession builds an AuthResponse
func AuthResponseFromSession(p *model.PlayerIdentity, s *session.Session) AuthResponse {
	return AuthResponse{
		Identity:     IdentityFromModel(p),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// OnlineIdentity is the reduced view used in registry stats
type OnlineIdentity struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	AccountID       string    `json:"account_id"`
	LastSeenAt      time.Time `json:"last_seen_at"`
	ConnectionCount int       `json:"connection_count"`
}

// RegistryStats is the registry aggregate view
type RegistryStats struct {
	Total     int              `json:"total"`
	Online    int              `json:"online"`
	Offline   int              `json:"offline"`
	TopOnline []OnlineIdentity `json:"top_online"`
}

// StatsFromService converts identity.Stats to a response
func StatsFromService(s *identity.Stats) RegistryStats {
	top := make([]OnlineIdentity, 0, len(s.TopOnline))
	for _, o := range s.TopOnline {
		top = append(top, OnlineIdentity{
			ID:              string(o.ID),
			DisplayName:     o.DisplayName,
			AccountID:       o.AccountID,
			LastSeenAt:      o.LastSeenAt,
			ConnectionCount: o.ConnectionCount,
		})
	}
	return RegistryStats{
		Total:     s.Total,
		Online:    s.Online,
		Offline:   s.Offline,
		TopOnline: top,
	}
}

// CleanupResponse reports an inactivity sweep
type CleanupResponse struct {
	Removed int `json:"removed"`
}

// RoomPlayer represents one seat in API responses
type RoomPlayer struct {
	IdentityID  string    `json:"identity_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Room represents a room in API responses
type Room struct {
	Code      string       `json:"code"`
	Players   []RoomPlayer `json:"players"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	players := make([]RoomPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, RoomPlayer{
			IdentityID:  string(p.IdentityID),
			DisplayName: p.DisplayName,
			JoinedAt:    p.JoinedAt,
		})
	}
	return Room{
		Code:      string(r.Code),
		Players:   players,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// JoinResponse reports the seat assigned to a joining player
type JoinResponse struct {
	Room        Room `json:"room"`
	PlayerIndex int  `json:"player_index"`
}

// CreditEntry is one credit history row in API responses
type CreditEntry struct {
	PlayerIndex         int       `json:"player_index"`
	Kind                string    `json:"kind"`
	Amount              int       `json:"amount"`
	MonthlyPayment      int       `json:"monthly_payment"`
	TotalCredit         int       `json:"total_credit"`
	TotalMonthlyPayment int       `json:"total_monthly_payment"`
	Timestamp           time.Time `json:"timestamp"`
	Description         string    `json:"description"`
}

// TransferEntry is one transfer history row in API responses
type TransferEntry struct {
	Sender         string    `json:"sender"`
	Recipient      string    `json:"recipient"`
	Amount         int       `json:"amount"`
	Timestamp      time.Time `json:"timestamp"`
	SenderIndex    int       `json:"sender_index"`
	RecipientIndex int       `json:"recipient_index"`
	Kind           string    `json:"kind"`
	Description    string    `json:"description"`
}

// Economy is the full economic view of a room
type Economy struct {
	Balances        []int           `json:"balances"`
	Credits         []int           `json:"credits"`
	CreditHistory   []CreditEntry   `json:"credit_history"`
	TransferHistory []TransferEntry `json:"transfer_history"`
}

// EconomyFromModel converts a room's economic state to a response
func EconomyFromModel(r *model.Room) Economy {
	creditHistory := make([]CreditEntry, 0, len(r.CreditHistory))
	for _, e := range r.CreditHistory {
		creditHistory = append(creditHistory, CreditEntry{
			PlayerIndex:         e.PlayerIndex,
			Kind:                string(e.Kind),
			Amount:              e.Amount,
			MonthlyPayment:      e.MonthlyPayment,
			TotalCredit:         e.TotalCredit,
			TotalMonthlyPayment: e.TotalMonthlyPayment,
			Timestamp:           e.Timestamp,
			Description:         e.Description,
		})
	}
	transferHistory := make([]TransferEntry, 0, len(r.TransferHistory))
	for _, e := range r.TransferHistory {
		transferHistory = append(transferHistory, TransferEntry{
			Sender:         e.Sender,
			Recipient:      e.Recipient,
			Amount:         e.Amount,
			Timestamp:      e.Timestamp,
			SenderIndex:    e.SenderIndex,
			RecipientIndex: e.RecipientIndex,
			Kind:           string(e.Kind),
			Description:    e.Description,
		})
	}
	return Economy{
		Balances:        r.Balances,
		Credits:         r.Credits,
		CreditHistory:   creditHistory,
		TransferHistory: transferHistory,
	}
}

// TakeCreditResponse is the snapshot returned by a loan draw
type TakeCreditResponse struct {
	NewBalance          int `json:"new_balance"`
	NewCreditAmount     int `json:"new_credit_amount"`
	TotalCredit         int `json:"total_credit"`
	NewMonthlyPayment   int `json:"new_monthly_payment"`
	TotalMonthlyPayment int `json:"total_monthly_payment"`
}

// TakeCreditFromResult converts a credit.TakeResult
func TakeCreditFromResult(r *credit.TakeResult) TakeCreditResponse {
	return TakeCreditResponse{
		NewBalance:          r.NewBalance,
		NewCreditAmount:     r.NewCreditAmount,
		TotalCredit:         r.TotalCredit,
		NewMonthlyPayment:   r.NewMonthlyPayment,
		TotalMonthlyPayment: r.TotalMonthlyPayment,
	}
}

// PayoffCreditResponse is the snapshot returned by a repayment
type PayoffCreditResponse struct {
	NewBalance      int `json:"new_balance"`
	RemainingCredit int `json:"remaining_credit"`
	PaidAmount      int `json:"paid_amount"`
}

// PayoffCreditFromResult converts a credit.PayoffResult
func PayoffCreditFromResult(r *credit.PayoffResult) PayoffCreditResponse {
	return PayoffCreditResponse{
		NewBalance:      r.NewBalance,
		RemainingCredit: r.RemainingCredit,
		PaidAmount:      r.PaidAmount,
	}
}

// CreditStatus is a player's credit position
type CreditStatus struct {
	CurrentCredit   int  `json:"current_credit"`
	MonthlyPayment  int  `json:"monthly_payment"`
	MaxCredit       int  `json:"max_credit"`
	AvailableCredit int  `json:"available_credit"`
	CanTakeCredit   bool `json:"can_take_credit"`
}

// CreditStatusFromService converts a credit.Status
func CreditStatusFromService(s *credit.Status) CreditStatus {
	return CreditStatus{
		CurrentCredit:   s.CurrentCredit,
		MonthlyPayment:  s.MonthlyPayment,
		MaxCredit:       s.MaxCredit,
		AvailableCredit: s.AvailableCredit,
		CanTakeCredit:   s.CanTakeCredit,
	}
}

// TransferResponse reports a completed player-to-player transfer
type TransferResponse struct {
	SenderBalance    int `json:"sender_balance"`
	RecipientBalance int `json:"recipient_balance"`
	Amount           int `json:"amount"`
}

// TransferFromResult converts a room.TransferResult
func TransferFromResult(r *room.TransferResult) TransferResponse {
	return TransferResponse{
		SenderBalance:    r.SenderBalance,
		RecipientBalance: r.RecipientBalance,
		Amount:           r.Amount,
	}
}
