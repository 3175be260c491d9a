package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/avetrov/gamebank/internal/dependencies/clock"
	"github.com/avetrov/gamebank/internal/dependencies/random"
	"github.com/avetrov/gamebank/internal/events"
	"github.com/avetrov/gamebank/internal/services/credit"
	"github.com/avetrov/gamebank/internal/services/identity"
	"github.com/avetrov/gamebank/internal/services/room"
	"github.com/avetrov/gamebank/internal/services/session"
	"github.com/avetrov/gamebank/internal/storage"
	"github.com/avetrov/gamebank/internal/storage/memory"
	redisstorage "github.com/avetrov/gamebank/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry       *identity.Service
	Ledger         *credit.Service
	RoomController *room.Controller
	Sessions       *session.Service
	HubManager     *events.HubManager
	Broadcaster    *events.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// CreditConfig holds the loan policy (optional)
	// If zero value, defaults to credit.DefaultConfig()
	CreditConfig credit.Config
	// SessionConfig holds session settings (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	creditCfg := cfg.CreditConfig
	if creditCfg.Step == 0 {
		creditCfg = credit.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, creditCfg, cfg.SessionConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	creditCfg credit.Config,
	sessionCfg session.Config,
	logger *slog.Logger,
) *App {
	registry := identity.New(store, clk, logger)
	ledger := credit.New(creditCfg, clk, logger)
	roomController := room.NewController(store, ledger, clk, rnd, logger)
	sessions := session.New(clk, sessionCfg)
	hubManager := events.NewHubManager(logger)
	broadcaster := events.NewBroadcaster(hubManager, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Registry:       registry,
		Ledger:         ledger,
		RoomController: roomController,
		Sessions:       sessions,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
	}
}
