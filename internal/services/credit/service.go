package credit

import (
	"fmt"
	"log/slog"

	"github.com/avetrov/gamebank/internal/dependencies/clock"
	"github.com/avetrov/gamebank/internal/model"
)

// Loan product policy. Configurable per deployment, fixed at runtime.
type Config struct {
	// Step is the granularity of loans; amounts must be multiples of it
	Step int
	// MinAmount is the smallest loan a player may take
	MinAmount int
	// MaxCredit is the cumulative per-player principal cap
	MaxCredit int
	// PaymentRate is the monthly payment charged per Step of principal
	PaymentRate int
}

// DefaultConfig returns the standard loan product
func DefaultConfig() Config {
	return Config{
		Step:        1000,
		MinAmount:   1000,
		MaxCredit:   10000,
		PaymentRate: 100,
	}
}

// TakeResult is the snapshot returned by a successful loan draw
type TakeResult struct {
	NewBalance          int
	NewCreditAmount     int
	TotalCredit         int
	NewMonthlyPayment   int
	TotalMonthlyPayment int
}

// PayoffResult is the snapshot returned by a successful repayment
type PayoffResult struct {
	NewBalance      int
	RemainingCredit int
	PaidAmount      int
}

// Status is a read-only view of one player's credit position
type Status struct {
	CurrentCredit   int
	MonthlyPayment  int
	MaxCredit       int
	AvailableCredit int
	CanTakeCredit   bool
}

// Service enforces the loan product rules and keeps a room's balances,
// credits and the two histories mutually consistent. It never persists
// anything itself: callers own the room object and must serialize access
// to it (see services/room).
type Service struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new credit Service
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Service {
	if cfg.Step == 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		cfg:    cfg,
		clock:  clk,
		logger: logger.With(slog.String("component", "credit")),
	}
}

// Take issues a loan to the player at playerIndex. All validation runs
// before any state is touched; the mutation of credits, balances and both
// histories then happens as one block with no early returns in between.
func (s *Service) Take(room *model.Room, playerIndex, amount int) (*TakeResult, error) {
	if !room.HasPlayerIndex(playerIndex) {
		return nil, model.ErrInvalidPlayerIndex
	}
	if amount < s.cfg.MinAmount || amount%s.cfg.Step != 0 {
		return nil, model.ErrInvalidAmount
	}

	current := 0
	if playerIndex < len(room.Credits) {
		current = room.Credits[playerIndex]
	}

	newTotal := current + amount
	if newTotal > s.cfg.MaxCredit {
		return nil, &model.CreditLimitError{
			Requested: amount,
			Available: s.cfg.MaxCredit - current,
		}
	}

	// Per-draw payment floors this draw alone; the total floors the
	// combined principal. The two can diverge and that is intentional
	// rounding policy, not a bug.
	newMonthlyPayment := (amount / s.cfg.Step) * s.cfg.PaymentRate
	totalMonthlyPayment := (newTotal / s.cfg.Step) * s.cfg.PaymentRate

	now := s.clock.Now()
	player := room.Players[playerIndex].DisplayName

	room.EnsureEconomy()
	room.Credits[playerIndex] = newTotal
	room.CreditHistory = append(room.CreditHistory, model.CreditEntry{
		PlayerIndex:         playerIndex,
		Kind:                model.CreditEntryTake,
		Amount:              amount,
		MonthlyPayment:      newMonthlyPayment,
		TotalCredit:         newTotal,
		TotalMonthlyPayment: totalMonthlyPayment,
		Timestamp:           now,
		Description:         fmt.Sprintf("%s took a loan of %d", player, amount),
	})
	room.Balances[playerIndex] += amount
	room.TransferHistory = append(room.TransferHistory, model.TransferEntry{
		Sender:         model.BankName,
		Recipient:      player,
		Amount:         amount,
		Timestamp:      now,
		SenderIndex:    model.BankIndex,
		RecipientIndex: playerIndex,
		Kind:           model.TransferKindCredit,
		Description:    fmt.Sprintf("Loan of %d issued to %s", amount, player),
	})

	s.logger.Info("credit taken",
		slog.String("room", string(room.Code)),
		slog.Int("player_index", playerIndex),
		slog.Int("amount", amount),
		slog.Int("total_credit", newTotal))

	return &TakeResult{
		NewBalance:          room.Balances[playerIndex],
		NewCreditAmount:     amount,
		TotalCredit:         newTotal,
		NewMonthlyPayment:   newMonthlyPayment,
		TotalMonthlyPayment: totalMonthlyPayment,
	}, nil
}

// Payoff retires loan principal for the player at playerIndex. An amount
// of 0 pays off the full outstanding credit; a negative amount is
// invalid. Validation completes before any state changes.
func (s *Service) Payoff(room *model.Room, playerIndex, amount int) (*PayoffResult, error) {
	if !room.HasPlayerIndex(playerIndex) {
		return nil, model.ErrInvalidPlayerIndex
	}
	if amount < 0 {
		return nil, model.ErrInvalidAmount
	}
	if !room.HasCreditData() {
		return nil, model.ErrNoCreditData
	}

	outstanding := 0
	if playerIndex < len(room.Credits) {
		outstanding = room.Credits[playerIndex]
	}
	if outstanding <= 0 {
		return nil, model.ErrNoActiveCredit
	}

	payoffAmount := amount
	if payoffAmount == 0 {
		payoffAmount = outstanding
	}
	if payoffAmount > outstanding {
		return nil, model.ErrOverpayment
	}

	balance := 0
	if playerIndex < len(room.Balances) {
		balance = room.Balances[playerIndex]
	}
	if payoffAmount > balance {
		return nil, model.ErrInsufficientFunds
	}

	remaining := outstanding - payoffAmount
	now := s.clock.Now()
	player := room.Players[playerIndex].DisplayName

	room.EnsureEconomy()
	room.Credits[playerIndex] = remaining
	room.CreditHistory = append(room.CreditHistory, model.CreditEntry{
		PlayerIndex:         playerIndex,
		Kind:                model.CreditEntryPayoff,
		Amount:              payoffAmount,
		MonthlyPayment:      0,
		TotalCredit:         remaining,
		TotalMonthlyPayment: (remaining / s.cfg.Step) * s.cfg.PaymentRate,
		Timestamp:           now,
		Description:         fmt.Sprintf("%s paid off %d", player, payoffAmount),
	})
	room.Balances[playerIndex] -= payoffAmount
	room.TransferHistory = append(room.TransferHistory, model.TransferEntry{
		Sender:         player,
		Recipient:      model.BankName,
		Amount:         payoffAmount,
		Timestamp:      now,
		SenderIndex:    playerIndex,
		RecipientIndex: model.BankIndex,
		Kind:           model.TransferKindCreditPayoff,
		Description:    fmt.Sprintf("%s repaid %d of loan principal", player, payoffAmount),
	})

	s.logger.Info("credit paid off",
		slog.String("room", string(room.Code)),
		slog.Int("player_index", playerIndex),
		slog.Int("paid", payoffAmount),
		slog.Int("remaining", remaining))

	return &PayoffResult{
		NewBalance:      room.Balances[playerIndex],
		RemainingCredit: remaining,
		PaidAmount:      payoffAmount,
	}, nil
}

// GetStatus is a pure read of one player's credit position. A room with
// no credit data yet gets the all-default snapshot without any mutation.
func (s *Service) GetStatus(room *model.Room, playerIndex int) (*Status, error) {
	if !room.HasPlayerIndex(playerIndex) {
		return nil, model.ErrInvalidPlayerIndex
	}

	current := 0
	if room.HasCreditData() && playerIndex < len(room.Credits) {
		current = room.Credits[playerIndex]
	}

	available := s.cfg.MaxCredit - current
	return &Status{
		CurrentCredit:   current,
		MonthlyPayment:  (current / s.cfg.Step) * s.cfg.PaymentRate,
		MaxCredit:       s.cfg.MaxCredit,
		AvailableCredit: available,
		CanTakeCredit:   available >= s.cfg.MinAmount,
	}, nil
}
