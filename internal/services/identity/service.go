package identity

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avetrov/gamebank/internal/dependencies/clock"
	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/storage"
)

// TopOnlineLimit caps the number of identities reported in Stats
const TopOnlineLimit = 10

// accountIDPattern is a deliberately loose local@domain check; the
// account source is trusted for everything beyond basic shape.
var accountIDPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// Registration carries the fields supplied by the account source at
// registration time. Only AccountID is required.
type Registration struct {
	AccountID   string
	DisplayName string
	GivenName   string
	FamilyName  string
}

// Update carries optional field changes; nil fields are left untouched
type Update struct {
	DisplayName *string
	GivenName   *string
	FamilyName  *string
}

// OnlineIdentity is the reduced identity view used in Stats
type OnlineIdentity struct {
	ID              model.IdentityID
	DisplayName     string
	AccountID       string
	LastSeenAt      time.Time
	ConnectionCount int
}

// Stats is an aggregate snapshot of the registry
type Stats struct {
	Total     int
	Online    int
	Offline   int
	TopOnline []OnlineIdentity
}

// Service is the single source of truth mapping account identifiers to
// stable identities, plus live-presence bookkeeping.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	// mu serializes every read-modify-write cycle on stored identities.
	// Connection add/remove for the same identity must never interleave,
	// or a reconnect racing a disconnect could drop a live handle.
	mu sync.Mutex
}

// New creates a new identity Service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "identity")),
	}
}

// DeriveID maps an account identifier to its canonical identity id.
// The id is a pure function of the normalized (lower-cased, trimmed)
// account id: a 32-bit multiply-add rolling hash rendered in base 36.
// The algorithm is fixed; ids must be stable across process restarts.
func DeriveID(accountID string) (model.IdentityID, error) {
	norm := normalizeAccountID(accountID)
	if norm == "" {
		return "", model.ErrInvalidAccountID
	}

	var h uint32
	for _, r := range norm {
		h = h*31 + uint32(r)
	}
	return model.IdentityID(strconv.FormatUint(uint64(h), 36)), nil
}

func normalizeAccountID(accountID string) string {
	return strings.ToLower(strings.TrimSpace(accountID))
}

// Register creates the identity for an account, or returns the existing
// record unchanged if the account has registered before. Registration is
// idempotent: repeat calls never duplicate identities, overwrite names,
// or touch RegisteredAt/LastSeenAt.
func (s *Service) Register(ctx context.Context, reg Registration) (*model.PlayerIdentity, error) {
	norm := normalizeAccountID(reg.AccountID)
	if norm == "" {
		return nil, model.ErrInvalidAccountID
	}
	if !accountIDPattern.MatchString(norm) {
		return nil, model.ErrInvalidEmail
	}

	id, err := DeriveID(norm)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.storage.GetIdentity(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrIdentityNotFound) {
		return nil, err
	}

	displayName := strings.TrimSpace(reg.DisplayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(norm, "@")
	}
	givenName := strings.TrimSpace(reg.GivenName)
	if givenName == "" {
		givenName = displayName
	}

	now := s.clock.Now()
	identity := &model.PlayerIdentity{
		ID:           id,
		AccountID:    norm,
		DisplayName:  displayName,
		GivenName:    givenName,
		FamilyName:   strings.TrimSpace(reg.FamilyName),
		RegisteredAt: now,
		LastSeenAt:   now,
		Connections:  make(map[model.ConnectionID]struct{}),
	}

	if err := s.storage.SaveIdentity(ctx, identity); err != nil {
		return nil, err
	}

	s.logger.Info("identity registered",
		slog.String("identity_id", string(id)),
		slog.String("account_id", norm))

	return identity, nil
}

// GetByID returns the identity for an id, or model.ErrIdentityNotFound
func (s *Service) GetByID(ctx context.Context, id model.IdentityID) (*model.PlayerIdentity, error) {
	return s.storage.GetIdentity(ctx, id)
}

// GetByAccountID re-derives the id for an account and looks it up
func (s *Service) GetByAccountID(ctx context.Context, accountID string) (*model.PlayerIdentity, error) {
	id, err := DeriveID(accountID)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ApplyUpdate merges non-nil fields into the stored record and refreshes
// LastSeenAt. Updating an unknown identity is a no-op, not an error.
func (s *Service) ApplyUpdate(ctx context.Context, id model.IdentityID, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := s.storage.GetIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return nil
		}
		return err
	}

	if upd.DisplayName != nil {
		identity.DisplayName = *upd.DisplayName
	}
	if upd.GivenName != nil {
		identity.GivenName = *upd.GivenName
	}
	if upd.FamilyName != nil {
		identity.FamilyName = *upd.FamilyName
	}
	identity.LastSeenAt = s.clock.Now()

	return s.storage.SaveIdentity(ctx, identity)
}

// AddConnection records a live connection handle for an identity and
// refreshes LastSeenAt. Unknown identities are a no-op; connections never
// auto-create a registration.
func (s *Service) AddConnection(ctx context.Context, id model.IdentityID, conn model.ConnectionID) error {
	return s.mutateConnections(ctx, id, func(identity *model.PlayerIdentity) {
		identity.AddConnection(conn)
	})
}

// RemoveConnection forgets a connection handle for an identity and
// refreshes LastSeenAt. Unknown identities are a no-op.
func (s *Service) RemoveConnection(ctx context.Context, id model.IdentityID, conn model.ConnectionID) error {
	return s.mutateConnections(ctx, id, func(identity *model.PlayerIdentity) {
		identity.RemoveConnection(conn)
	})
}

func (s *Service) mutateConnections(ctx context.Context, id model.IdentityID, mutate func(*model.PlayerIdentity)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, err := s.storage.GetIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return nil
		}
		return err
	}

	mutate(identity)
	identity.LastSeenAt = s.clock.Now()

	return s.storage.SaveIdentity(ctx, identity)
}

// ListOnline returns every identity with at least one live connection
func (s *Service) ListOnline(ctx context.Context) ([]*model.PlayerIdentity, error) {
	all, err := s.storage.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}

	var online []*model.PlayerIdentity
	for _, identity := range all {
		if identity.IsOnline() {
			online = append(online, identity)
		}
	}
	return online, nil
}

// Count returns the total number of registered identities
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.storage.CountIdentities(ctx)
}

// OnlineCount returns the number of identities currently online
func (s *Service) OnlineCount(ctx context.Context) (int, error) {
	online, err := s.ListOnline(ctx)
	if err != nil {
		return 0, err
	}
	return len(online), nil
}

// CleanupInactive removes every offline identity whose LastSeenAt is
// older than maxInactive and returns how many were removed. Online
// identities survive regardless of age.
func (s *Service) CleanupInactive(ctx context.Context, maxInactive time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.storage.ListIdentities(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.clock.Now().Add(-maxInactive)
	removed := 0
	for _, identity := range all {
		if identity.IsOnline() || !identity.LastSeenAt.Before(cutoff) {
			continue
		}
		if err := s.storage.DeleteIdentity(ctx, identity.ID); err != nil {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("inactive identities removed", slog.Int("count", removed))
	}
	return removed, nil
}

// GetStats returns an aggregate snapshot: totals plus up to
// TopOnlineLimit online identities ordered by most recent activity.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	all, err := s.storage.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}

	var online []*model.PlayerIdentity
	for _, identity := range all {
		if identity.IsOnline() {
			online = append(online, identity)
		}
	}

	sort.Slice(online, func(i, j int) bool {
		return online[i].LastSeenAt.After(online[j].LastSeenAt)
	})

	top := make([]OnlineIdentity, 0, min(len(online), TopOnlineLimit))
	for _, identity := range online {
		if len(top) == TopOnlineLimit {
			break
		}
		top = append(top, OnlineIdentity{
			ID:              identity.ID,
			DisplayName:     identity.DisplayName,
			AccountID:       identity.AccountID,
			LastSeenAt:      identity.LastSeenAt,
			ConnectionCount: identity.ConnectionCount(),
		})
	}

	return &Stats{
		Total:     len(all),
		Online:    len(online),
		Offline:   len(all) - len(online),
		TopOnline: top,
	}, nil
}
