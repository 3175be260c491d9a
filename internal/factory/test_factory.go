package factory

import (
	"time"

	"github.com/avetrov/gamebank/internal/dependencies/mocks"
	"github.com/avetrov/gamebank/internal/services/credit"
	"github.com/avetrov/gamebank/internal/services/session"
	"github.com/avetrov/gamebank/internal/storage/memory"
	"github.com/avetrov/gamebank/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(
		store,
		mockClock,
		mockRandom,
		credit.DefaultConfig(),
		session.DefaultConfig(),
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
