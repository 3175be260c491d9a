package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/avetrov/gamebank/internal/api/middleware"
	"github.com/avetrov/gamebank/internal/api/request"
	"github.com/avetrov/gamebank/internal/api/response"
	"github.com/avetrov/gamebank/internal/events"
	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/services/identity"
	"github.com/avetrov/gamebank/internal/services/room"
)

// RoomHandler handles room and economy endpoints
type RoomHandler struct {
	rooms       *room.Controller
	registry    *identity.Service
	hubManager  *events.HubManager
	broadcaster *events.Broadcaster
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(
	rooms *room.Controller,
	registry *identity.Service,
	hubManager *events.HubManager,
	broadcaster *events.Broadcaster,
) *RoomHandler {
	return &RoomHandler{
		rooms:       rooms,
		registry:    registry,
		hubManager:  hubManager,
		broadcaster: broadcaster,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	created, err := h.rooms.CreateRoom(r.Context(), ident)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.RoomFromModel(created))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	found, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(found))
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])
	ident := middleware.MustGetIdentity(r.Context())

	playerIndex, err := h.rooms.JoinRoom(r.Context(), code, ident)
	if err != nil {
		WriteError(w, err)
		return
	}

	joined, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.PlayerJoined(code, ident, playerIndex)

	response.JSON(w, http.StatusOK, response.JoinResponse{
		Room:        response.RoomFromModel(joined),
		PlayerIndex: playerIndex,
	})
}

// Economy handles GET /api/v1/rooms/{code}/economy
func (h *RoomHandler) Economy(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	found, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EconomyFromModel(found))
}

// TakeCredit handles POST /api/v1/rooms/{code}/credit
func (h *RoomHandler) TakeCredit(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.TakeCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	result, err := h.rooms.TakeCredit(r.Context(), code, req.PlayerIndex, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.CreditTaken(code, req.PlayerIndex, req.Amount, result.TotalCredit, result.TotalMonthlyPayment)

	response.JSON(w, http.StatusOK, response.TakeCreditFromResult(result))
}

// PayoffCredit handles POST /api/v1/rooms/{code}/credit/payoff
func (h *RoomHandler) PayoffCredit(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.PayoffCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	result, err := h.rooms.PayoffCredit(r.Context(), code, req.PlayerIndex, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.CreditPaid(code, req.PlayerIndex, result.PaidAmount, result.RemainingCredit)

	response.JSON(w, http.StatusOK, response.PayoffCreditFromResult(result))
}

// CreditStatus handles GET /api/v1/rooms/{code}/credit/{player_index}
func (h *RoomHandler) CreditStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code := model.RoomCode(vars["code"])

	playerIndex, err := strconv.Atoi(vars["player_index"])
	if err != nil {
		WriteError(w, NewInvalidRequestError("player_index must be an integer"))
		return
	}

	status, err := h.rooms.PlayerCredit(r.Context(), code, playerIndex)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CreditStatusFromService(status))
}

// Transfer handles POST /api/v1/rooms/{code}/transfer
func (h *RoomHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	var req request.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	result, err := h.rooms.Transfer(r.Context(), code, req.SenderIndex, req.RecipientIndex, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcaster.MoneyTransferred(code, req.SenderIndex, req.RecipientIndex, req.Amount)

	response.JSON(w, http.StatusOK, response.TransferFromResult(result))
}

// Events handles GET /api/v1/rooms/{code}/events (SSE).
// Each subscription is one live connection for presence purposes: it
// mints an opaque handle, registers it with the identity registry, and
// removes it when the stream ends.
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])
	ident := middleware.MustGetIdentity(r.Context())

	if _, err := h.rooms.GetRoom(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	conn := model.ConnectionID(uuid.NewString())
	if err := h.registry.AddConnection(r.Context(), ident.ID, conn); err != nil {
		WriteError(w, err)
		return
	}
	h.announcePresence(r.Context(), code, ident.ID)

	defer func() {
		// The request context is done once the stream ends; detach so
		// the connection is still removed.
		ctx := context.WithoutCancel(r.Context())
		_ = h.registry.RemoveConnection(ctx, ident.ID, conn)
		h.announcePresence(ctx, code, ident.ID)
	}()

	hub := h.hubManager.GetOrCreateHub(code)
	events.ServeSSE(w, r, hub, ident.ID)
}

func (h *RoomHandler) announcePresence(ctx context.Context, code model.RoomCode, id model.IdentityID) {
	ident, err := h.registry.GetByID(ctx, id)
	if err != nil {
		return
	}
	h.broadcaster.PresenceChanged(code, ident)
}
