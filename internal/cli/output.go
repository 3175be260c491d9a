package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Identity:
		o.printIdentity(v)
	case AuthResult:
		o.printAuthResult(v)
	case RegistryStats:
		o.printRegistryStats(v)
	case CleanupResult:
		o.printCleanupResult(v)
	case Room:
		o.printRoom(v)
	case JoinResult:
		o.printJoinResult(v)
	case Economy:
		o.printEconomy(v)
	case TakeCreditResult:
		o.printTakeCreditResult(v)
	case PayoffResult:
		o.printPayoffResult(v)
	case CreditStatus:
		o.printCreditStatus(v)
	case TransferResult:
		o.printTransferResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Identity response type (matches API)
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

// AuthResult combines identity and token
type AuthResult struct {
	Identity     Identity  `json:"identity"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// OnlineIdentity is the reduced view used in registry stats
type OnlineIdentity struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	AccountID       string    `json:"account_id"`
	LastSeenAt      time.Time `json:"last_seen_at"`
	ConnectionCount int       `json:"connection_count"`
}

// RegistryStats response type
type RegistryStats struct {
	Total     int              `json:"total"`
	Online    int              `json:"online"`
	Offline   int              `json:"offline"`
	TopOnline []OnlineIdentity `json:"top_online"`
}

// CleanupResult response type
type CleanupResult struct {
	Removed int `json:"removed"`
}

// RoomPlayer response type
type RoomPlayer struct {
	IdentityID  string    `json:"identity_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Room response type
type Room struct {
	Code      string       `json:"code"`
	Players   []RoomPlayer `json:"players"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// JoinResult response type
type JoinResult struct {
	Room        Room `json:"room"`
	PlayerIndex int  `json:"player_index"`
}

// CreditEntry response type
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

// TransferEntry response type
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

// Economy response type
type Economy struct {
	Balances        []int           `json:"balances"`
	Credits         []int           `json:"credits"`
	CreditHistory   []CreditEntry   `json:"credit_history"`
	TransferHistory []TransferEntry `json:"transfer_history"`
}

// TakeCreditResult response type
type TakeCreditResult struct {
	NewBalance          int `json:"new_balance"`
	NewCreditAmount     int `json:"new_credit_amount"`
	TotalCredit         int `json:"total_credit"`
	NewMonthlyPayment   int `json:"new_monthly_payment"`
	TotalMonthlyPayment int `json:"total_monthly_payment"`
}

// PayoffResult response type
type PayoffResult struct {
	NewBalance      int `json:"new_balance"`
	RemainingCredit int `json:"remaining_credit"`
	PaidAmount      int `json:"paid_amount"`
}

// CreditStatus response type
type CreditStatus struct {
	CurrentCredit   int  `json:"current_credit"`
	MonthlyPayment  int  `json:"monthly_payment"`
	MaxCredit       int  `json:"max_credit"`
	AvailableCredit int  `json:"available_credit"`
	CanTakeCredit   bool `json:"can_take_credit"`
}

// TransferResult response type
type TransferResult struct {
	SenderBalance    int `json:"sender_balance"`
	RecipientBalance int `json:"recipient_balance"`
	Amount           int `json:"amount"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printIdentity(p Identity) {
	onlineStr := "no"
	if p.IsOnline {
		onlineStr = fmt.Sprintf("yes (%d connections)", p.ConnectionCount)
	}
	fmt.Printf("Identity: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Account: %s\n", p.AccountID)
	if p.GivenName != "" || p.FamilyName != "" {
		fmt.Printf("Name: %s %s\n", p.GivenName, p.FamilyName)
	}
	fmt.Printf("Online: %s\n", onlineStr)
	fmt.Printf("Last Seen: %s\n", p.LastSeenAt.Format(time.RFC3339))
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printIdentity(a.Identity)
	fmt.Printf("Token: %s\n", a.SessionToken)
	fmt.Printf("Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printRegistryStats(s RegistryStats) {
	fmt.Printf("Total: %d\n", s.Total)
	fmt.Printf("Online: %d\n", s.Online)
	fmt.Printf("Offline: %d\n", s.Offline)
	if len(s.TopOnline) > 0 {
		fmt.Println("Top Online:")
		for _, p := range s.TopOnline {
			fmt.Printf("  - %s (%s), %d connections, last seen %s\n",
				p.DisplayName, p.AccountID, p.ConnectionCount, p.LastSeenAt.Format(time.RFC3339))
		}
	}
}

func (o *Output) printCleanupResult(c CleanupResult) {
	fmt.Printf("Removed: %d\n", c.Removed)
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Players (%d):\n", len(r.Players))
	for i, p := range r.Players {
		fmt.Printf("  [%d] %s (%s)\n", i, p.DisplayName, p.IdentityID)
	}
}

func (o *Output) printJoinResult(j JoinResult) {
	o.printRoom(j.Room)
	fmt.Printf("Your seat: %d\n", j.PlayerIndex)
}

func (o *Output) printEconomy(e Economy) {
	fmt.Println("Balances:")
	for i, b := range e.Balances {
		fmt.Printf("  [%d] %d (credit %d)\n", i, b, e.Credits[i])
	}

	if len(e.CreditHistory) > 0 {
		fmt.Println("\nCredit History:")
		for _, c := range e.CreditHistory {
			fmt.Printf("  [%s] %s\n", c.Timestamp.Format("2006-01-02 15:04:05"), c.Description)
		}
	}

	if len(e.TransferHistory) > 0 {
		fmt.Println("\nTransfer History:")
		for _, t := range e.TransferHistory {
			fmt.Printf("  [%s] %s\n", t.Timestamp.Format("2006-01-02 15:04:05"), t.Description)
		}
	}
}

func (o *Output) printTakeCreditResult(t TakeCreditResult) {
	fmt.Printf("Loan issued: %d\n", t.NewCreditAmount)
	fmt.Printf("New Balance: %d\n", t.NewBalance)
	fmt.Printf("Total Credit: %d\n", t.TotalCredit)
	fmt.Printf("Monthly Payment: %d (this loan %d)\n", t.TotalMonthlyPayment, t.NewMonthlyPayment)
}

func (o *Output) printPayoffResult(p PayoffResult) {
	fmt.Printf("Paid: %d\n", p.PaidAmount)
	fmt.Printf("Remaining Credit: %d\n", p.RemainingCredit)
	fmt.Printf("New Balance: %d\n", p.NewBalance)
}

func (o *Output) printCreditStatus(c CreditStatus) {
	fmt.Printf("Current Credit: %d\n", c.CurrentCredit)
	fmt.Printf("Monthly Payment: %d\n", c.MonthlyPayment)
	fmt.Printf("Available: %d of %d\n", c.AvailableCredit, c.MaxCredit)
	canStr := "no"
	if c.CanTakeCredit {
		canStr = "yes"
	}
	fmt.Printf("Can Take Credit: %s\n", canStr)
}

func (o *Output) printTransferResult(t TransferResult) {
	fmt.Printf("Transferred: %d\n", t.Amount)
	fmt.Printf("Sender Balance: %d\n", t.SenderBalance)
	fmt.Printf("Recipient Balance: %d\n", t.RecipientBalance)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
