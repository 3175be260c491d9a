package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/avetrov/gamebank/internal/dependencies/mocks"
	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/storage/memory"
	"github.com/avetrov/gamebank/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// DeriveID tests

func (s *ServiceSuite) TestDeriveIDKnownValue() {
	// h("a@b") = (('a'*31)+'@')*31+'b' = 95299 = "21j7" base 36
	id, err := DeriveID("a@b")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("21j7"), id)
}

func (s *ServiceSuite) TestDeriveIDIsStable() {
	first, err := DeriveID("alice@example.com")
	s.Require().NoError(err)
	second, err := DeriveID("alice@example.com")
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *ServiceSuite) TestDeriveIDNormalizes() {
	lower, err := DeriveID("alice@example.com")
	s.Require().NoError(err)

	for _, variant := range []string{"Alice@Example.com", "ALICE@EXAMPLE.COM", "  alice@example.com  "} {
		id, err := DeriveID(variant)
		s.Require().NoError(err)
		s.Equal(lower, id, "variant %q", variant)
	}
}

func (s *ServiceSuite) TestDeriveIDDistinguishesAccounts() {
	a, err := DeriveID("alice@example.com")
	s.Require().NoError(err)
	b, err := DeriveID("bob@example.com")
	s.Require().NoError(err)
	s.NotEqual(a, b)
}

func (s *ServiceSuite) TestDeriveIDRejectsEmpty() {
	_, err := DeriveID("   ")
	s.ErrorIs(err, model.ErrInvalidAccountID)
}

// Register tests

func (s *ServiceSuite) TestRegisterCreatesIdentity() {
	identity, err := s.service.Register(s.ctx, Registration{
		AccountID:   "Alice@Example.com",
		DisplayName: "Alice",
		GivenName:   "Alice",
		FamilyName:  "Smith",
	})
	s.Require().NoError(err)

	s.Equal("alice@example.com", identity.AccountID)
	s.Equal("Alice", identity.DisplayName)
	s.Equal("Smith", identity.FamilyName)
	s.Equal(s.clock.Now(), identity.RegisteredAt)
	s.Equal(s.clock.Now(), identity.LastSeenAt)
	s.False(identity.IsOnline())
}

func (s *ServiceSuite) TestRegisterIsIdempotent() {
	first, err := s.service.Register(s.ctx, Registration{
		AccountID:   "alice@example.com",
		DisplayName: "Alice",
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	second, err := s.service.Register(s.ctx, Registration{
		AccountID:   "ALICE@EXAMPLE.COM",
		DisplayName: "Someone Else",
	})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal("Alice", second.DisplayName)
	s.Equal(first.RegisteredAt, second.RegisteredAt)
	s.Equal(first.LastSeenAt, second.LastSeenAt)

	count, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestRegisterDefaultsNamesFromAccount() {
	identity, err := s.service.Register(s.ctx, Registration{AccountID: "carol@example.com"})
	s.Require().NoError(err)

	s.Equal("carol", identity.DisplayName)
	s.Equal("carol", identity.GivenName)
	s.Empty(identity.FamilyName)
}

func (s *ServiceSuite) TestRegisterRejectsEmptyAccount() {
	_, err := s.service.Register(s.ctx, Registration{AccountID: ""})
	s.ErrorIs(err, model.ErrInvalidAccountID)
}

func (s *ServiceSuite) TestRegisterRejectsMalformedAccount() {
	for _, bad := range []string{"no-at-sign", "two@@ats", "spa ce@example.com", "@nodomain", "nolocal@"} {
		_, err := s.service.Register(s.ctx, Registration{AccountID: bad})
		s.ErrorIs(err, model.ErrInvalidEmail, "account %q", bad)
	}
}

// Lookup tests

func (s *ServiceSuite) TestGetByAccountID() {
	created, err := s.service.Register(s.ctx, Registration{AccountID: "alice@example.com"})
	s.Require().NoError(err)

	found, err := s.service.GetByAccountID(s.ctx, "Alice@Example.COM")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
}

func (s *ServiceSuite) TestGetByIDUnknown() {
	_, err := s.service.GetByID(s.ctx, "nope")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

// ApplyUpdate tests

func (s *ServiceSuite) TestApplyUpdateMergesFields() {
	identity, err := s.service.Register(s.ctx, Registration{
		AccountID:   "alice@example.com",
		DisplayName: "Alice",
		GivenName:   "Alice",
		FamilyName:  "Smith",
	})
	s.Require().NoError(err)

	name := "Alice B"
	s.clock.Advance(time.Minute)
	err = s.service.ApplyUpdate(s.ctx, identity.ID, Update{DisplayName: &name})
	s.Require().NoError(err)

	updated, err := s.service.GetByID(s.ctx, identity.ID)
	s.Require().NoError(err)
	s.Equal("Alice B", updated.DisplayName)
	s.Equal("Alice", updated.GivenName)
	s.Equal("Smith", updated.FamilyName)
	s.Equal(s.clock.Now(), updated.LastSeenAt)
}

func (s *ServiceSuite) TestApplyUpdateUnknownIsNoOp() {
	name := "Ghost"
	err := s.service.ApplyUpdate(s.ctx, "nope", Update{DisplayName: &name})
	s.NoError(err)

	count, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
}

// Presence tests

func (s *ServiceSuite) TestConnectionsDrivePresence() {
	identity, err := s.service.Register(s.ctx, Registration{AccountID: "alice@example.com"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.AddConnection(s.ctx, identity.ID, "conn-1"))
	s.Require().NoError(s.service.AddConnection(s.ctx, identity.ID, "conn-2"))

	got, err := s.service.GetByID(s.ctx, identity.ID)
	s.Require().NoError(err)
	s.True(got.IsOnline())
	s.Equal(2, got.ConnectionCount())

	s.Require().NoError(s.service.RemoveConnection(s.ctx, identity.ID, "conn-1"))
	got, err = s.service.GetByID(s.ctx, identity.ID)
	s.Require().NoError(err)
	s.True(got.IsOnline())
	s.Equal(1, got.ConnectionCount())

	s.Require().NoError(s.service.RemoveConnection(s.ctx, identity.ID, "conn-2"))
	got, err = s.service.GetByID(s.ctx, identity.ID)
	s.Require().NoError(err)
	s.False(got.IsOnline())
}

func (s *ServiceSuite) TestAddConnectionIsIdempotent() {
	identity, err := s.service.Register(s.ctx, Registration{AccountID: "alice@example.com"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.AddConnection(s.ctx, identity.ID, "conn-1"))
	s.Require().NoError(s.service.AddConnection(s.ctx, identity.ID, "conn-1"))

	got, err := s.service.GetByID(s.ctx, identity.ID)
	s.Require().NoError(err)
	s.Equal(1, got.ConnectionCount())
}

func (s *ServiceSuite) TestConnectionsRefreshLastSeen() {
	identity, err := s.service.Register(s.ctx, Registration{AccountID: "alice@example.com"})
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	s.Require().NoError(s.service.AddConnection(s.ctx, identity.ID, "conn-1"))

	got, err := s.service.GetByID(s.ctx, identity.ID)
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), got.LastSeenAt)
}

func (s *ServiceSuite) TestConnectionMutationsForUnknownAreNoOps() {
	s.NoError(s.service.AddConnection(s.ctx, "nope", "conn-1"))
	s.NoError(s.service.RemoveConnection(s.ctx, "nope", "conn-1"))
}

func (s *ServiceSuite) TestListOnline() {
	alice, err := s.service.Register(s.ctx, Registration{AccountID: "alice@example.com"})
	s.Require().NoError(err)
	_, err = s.service.Register(s.ctx, Registration{AccountID: "bob@example.com"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.AddConnection(s.ctx, alice.ID, "conn-1"))

	online, err := s.service.ListOnline(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(online, 1)
	s.Equal(alice.ID, online[0].ID)

	count, err := s.service.OnlineCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// CleanupInactive tests

func (s *ServiceSuite) TestCleanupRemovesStaleOfflineIdentities() {
	stale, err := s.service.Register(s.ctx, Registration{AccountID: "stale@example.com"})
	s.Require().NoError(err)
	online, err := s.service.Register(s.ctx, Registration{AccountID: "online@example.com"})
	s.Require().NoError(err)
	s.Require().NoError(s.service.AddConnection(s.ctx, online.ID, "conn-1"))

	s.clock.Advance(48 * time.Hour)
	fresh, err := s.service.Register(s.ctx, Registration{AccountID: "fresh@example.com"})
	s.Require().NoError(err)

	removed, err := s.service.CleanupInactive(s.ctx, 24*time.Hour)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.service.GetByID(s.ctx, stale.ID)
	s.ErrorIs(err, model.ErrIdentityNotFound)
	_, err = s.service.GetByID(s.ctx, online.ID)
	s.NoError(err)
	_, err = s.service.GetByID(s.ctx, fresh.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestCleanupKeepsIdentitiesAtTheCutoff() {
	identity, err := s.service.Register(s.ctx, Registration{AccountID: "edge@example.com"})
	s.Require().NoError(err)

	s.clock.Advance(24 * time.Hour)
	removed, err := s.service.CleanupInactive(s.ctx, 24*time.Hour)
	s.Require().NoError(err)
	s.Equal(0, removed)

	_, err = s.service.GetByID(s.ctx, identity.ID)
	s.NoError(err)
}

// GetStats tests

func (s *ServiceSuite) TestGetStatsCounts() {
	alice, err := s.service.Register(s.ctx, Registration{AccountID: "alice@example.com"})
	s.Require().NoError(err)
	_, err = s.service.Register(s.ctx, Registration{AccountID: "bob@example.com"})
	s.Require().NoError(err)
	s.Require().NoError(s.service.AddConnection(s.ctx, alice.ID, "conn-1"))

	stats, err := s.service.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, stats.Total)
	s.Equal(1, stats.Online)
	s.Equal(1, stats.Offline)
	s.Require().Len(stats.TopOnline, 1)
	s.Equal(alice.ID, stats.TopOnline[0].ID)
}

func (s *ServiceSuite) TestGetStatsOrdersByRecentActivity() {
	var ids []model.IdentityID
	for i := 0; i < 3; i++ {
		identity, err := s.service.Register(s.ctx, Registration{
			AccountID: fmt.Sprintf("player%d@example.com", i),
		})
		s.Require().NoError(err)
		ids = append(ids, identity.ID)
	}

	// Connect in order, each an hour apart: the last to connect is the
	// most recently seen and must come first.
	for i, id := range ids {
		s.clock.Advance(time.Hour)
		s.Require().NoError(s.service.AddConnection(s.ctx, id, model.ConnectionID(fmt.Sprintf("conn-%d", i))))
	}

	stats, err := s.service.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(stats.TopOnline, 3)
	s.Equal(ids[2], stats.TopOnline[0].ID)
	s.Equal(ids[1], stats.TopOnline[1].ID)
	s.Equal(ids[0], stats.TopOnline[2].ID)
}

func (s *ServiceSuite) TestGetStatsCapsTopOnline() {
	for i := 0; i < TopOnlineLimit+5; i++ {
		identity, err := s.service.Register(s.ctx, Registration{
			AccountID: fmt.Sprintf("player%d@example.com", i),
		})
		s.Require().NoError(err)
		s.Require().NoError(s.service.AddConnection(s.ctx, identity.ID, model.ConnectionID(fmt.Sprintf("conn-%d", i))))
	}

	stats, err := s.service.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(TopOnlineLimit+5, stats.Online)
	s.Len(stats.TopOnline, TopOnlineLimit)
}
