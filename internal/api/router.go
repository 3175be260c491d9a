package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/avetrov/gamebank/internal/api/handler"
	"github.com/avetrov/gamebank/internal/api/middleware"
	"github.com/avetrov/gamebank/internal/events"
	"github.com/avetrov/gamebank/internal/services/identity"
	"github.com/avetrov/gamebank/internal/services/room"
	"github.com/avetrov/gamebank/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Registry       *identity.Service
	Sessions       *session.Service
	RoomController *room.Controller
	HubManager     *events.HubManager
	Broadcaster    *events.Broadcaster
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	identityHandler := handler.NewIdentityHandler(cfg.Registry, cfg.Sessions)
	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.Registry, cfg.HubManager, cfg.Broadcaster)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Sessions, cfg.Registry)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Registration requires no auth; lookup routes are open so clients
	// can resolve peers before authenticating.
	api.HandleFunc("/identities/register", identityHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/identities/lookup", identityHandler.Lookup).Methods(http.MethodGet)
	api.HandleFunc("/identities/online", identityHandler.ListOnline).Methods(http.MethodGet)
	api.HandleFunc("/identities/stats", identityHandler.Stats).Methods(http.MethodGet)

	// Protected identity routes
	identities := api.PathPrefix("/identities").Subrouter()
	identities.Use(authMiddleware)
	identities.HandleFunc("/me", identityHandler.GetMe).Methods(http.MethodGet)
	identities.HandleFunc("/me", identityHandler.UpdateMe).Methods(http.MethodPatch)
	identities.HandleFunc("/cleanup", identityHandler.Cleanup).Methods(http.MethodPost)
	identities.HandleFunc("/{id}", identityHandler.Get).Methods(http.MethodGet)

	// Room routes (all require auth)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/economy", roomHandler.Economy).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/credit", roomHandler.TakeCredit).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/credit/payoff", roomHandler.PayoffCredit).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/credit/{player_index}", roomHandler.CreditStatus).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/transfer", roomHandler.Transfer).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/events", roomHandler.Events).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
