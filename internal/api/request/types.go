package request

// RegisterRequest is the request body for registering an identity
type RegisterRequest struct {
	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name,omitempty"`
	GivenName   string `json:"given_name,omitempty"`
	FamilyName  string `json:"family_name,omitempty"`
}

// UpdateIdentityRequest is the request body for updating identity fields.
// Absent fields are left untouched.
type UpdateIdentityRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	GivenName   *string `json:"given_name,omitempty"`
	FamilyName  *string `json:"family_name,omitempty"`
}

// CleanupRequest is the request body for the inactivity sweep
type CleanupRequest struct {
	MaxInactiveHours int `json:"max_inactive_hours"`
}

// TakeCreditRequest is the request body for drawing a loan
type TakeCreditRequest struct {
	PlayerIndex int `json:"player_index"`
	Amount      int `json:"amount"`
}

// PayoffCreditRequest is the request body for repaying a loan.
// A zero or absent amount pays off the full outstanding credit.
type PayoffCreditRequest struct {
	PlayerIndex int `json:"player_index"`
	Amount      int `json:"amount,omitempty"`
}

// TransferRequest is the request body for a player-to-player transfer
type TransferRequest struct {
	SenderIndex    int `json:"sender_index"`
	RecipientIndex int `json:"recipient_index"`
	Amount         int `json:"amount"`
}
