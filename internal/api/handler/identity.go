package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/avetrov/gamebank/internal/api/middleware"
	"github.com/avetrov/gamebank/internal/api/request"
	"github.com/avetrov/gamebank/internal/api/response"
	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/services/identity"
	"github.com/avetrov/gamebank/internal/services/session"
)

// IdentityHandler handles registry endpoints
type IdentityHandler struct {
	registry *identity.Service
	sessions *session.Service
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(registry *identity.Service, sessions *session.Service) *IdentityHandler {
	return &IdentityHandler{
		registry: registry,
		sessions: sessions,
	}
}

// Register handles POST /api/v1/identities/register.
// Registration is idempotent: re-registering an account returns the
// existing identity (with a fresh session token).
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.AccountID == "" {
		WriteError(w, NewInvalidRequestError("account_id is required"))
		return
	}

	ident, err := h.registry.Register(r.Context(), identity.Registration{
		AccountID:   req.AccountID,
		DisplayName: req.DisplayName,
		GivenName:   req.GivenName,
		FamilyName:  req.FamilyName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	sess := h.sessions.Create(ident.ID)
	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(ident, sess))
}

// GetMe handles GET /api/v1/identities/me
func (h *IdentityHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())
	response.JSON(w, http.StatusOK, response.IdentityFromModel(ident))
}

// UpdateMe handles PATCH /api/v1/identities/me
func (h *IdentityHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	ident := middleware.MustGetIdentity(r.Context())
	err := h.registry.ApplyUpdate(r.Context(), ident.ID, identity.Update{
		DisplayName: req.DisplayName,
		GivenName:   req.GivenName,
		FamilyName:  req.FamilyName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	updated, err := h.registry.GetByID(r.Context(), ident.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.IdentityFromModel(updated))
}

// Get handles GET /api/v1/identities/{id}
func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.IdentityID(mux.Vars(r)["id"])

	ident, err := h.registry.GetByID(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.IdentityFromModel(ident))
}

// Lookup handles GET /api/v1/identities/lookup?account_id=...
func (h *IdentityHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		WriteError(w, NewInvalidRequestError("account_id query parameter is required"))
		return
	}

	ident, err := h.registry.GetByAccountID(r.Context(), accountID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.IdentityFromModel(ident))
}

// ListOnline handles GET /api/v1/identities/online
func (h *IdentityHandler) ListOnline(w http.ResponseWriter, r *http.Request) {
	online, err := h.registry.ListOnline(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	identities := make([]response.Identity, 0, len(online))
	for _, ident := range online {
		identities = append(identities, response.IdentityFromModel(ident))
	}
	response.JSON(w, http.StatusOK, identities)
}

// Stats handles GET /api/v1/identities/stats
func (h *IdentityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registry.GetStats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatsFromService(stats))
}

// Cleanup handles POST /api/v1/identities/cleanup
func (h *IdentityHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	var req request.CleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.MaxInactiveHours <= 0 {
		WriteError(w, NewInvalidRequestError("max_inactive_hours must be positive"))
		return
	}

	removed, err := h.registry.CleanupInactive(r.Context(), time.Duration(req.MaxInactiveHours)*time.Hour)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CleanupResponse{Removed: removed})
}
