package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov/gamebank/internal/api"
	"github.com/avetrov/gamebank/internal/api/apierr"
	"github.com/avetrov/gamebank/internal/api/response"
	"github.com/avetrov/gamebank/internal/factory"
)

// testServer wires a full router over in-memory storage
type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Registry:       app.Registry,
		Sessions:       app.Sessions,
		RoomController: app.RoomController,
		HubManager:     app.HubManager,
		Broadcaster:    app.Broadcaster,
	})

	return &testServer{handler: router}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// register creates an identity and returns its auth response
func (ts *testServer) register(t *testing.T, accountID, displayName string) response.AuthResponse {
	t.Helper()

	body := map[string]string{"account_id": accountID, "display_name": displayName}
	rr := ts.request(http.MethodPost, "/api/v1/identities/register", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// createRoom creates a room and joins a second player into seat 1
func (ts *testServer) createRoom(t *testing.T, hostToken, guestToken string) string {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/rooms", nil, hostToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+created.Code+"/join", nil, guestToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	return created.Code
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterIdentity(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.register(t, "alice@example.com", "Alice")
	assert.Equal(t, "alice@example.com", resp.Identity.AccountID)
	assert.Equal(t, "Alice", resp.Identity.DisplayName)
	assert.NotEmpty(t, resp.Identity.ID)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestRegisterIsIdempotent(t *testing.T) {
	ts := newTestServer(t)

	first := ts.register(t, "alice@example.com", "Alice")

	// Re-registering the same account (case-insensitively) returns the
	// same identity with its original profile, plus a fresh token.
	second := ts.register(t, "ALICE@Example.COM", "Someone Else")
	assert.Equal(t, first.Identity.ID, second.Identity.ID)
	assert.Equal(t, "Alice", second.Identity.DisplayName)
	assert.NotEqual(t, first.SessionToken, second.SessionToken)
}

func TestRegisterRejectsNonEmail(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"account_id": "not-an-email"}
	rr := ts.request(http.MethodPost, "/api/v1/identities/register", body, "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidEmail, decodeError(t, rr).Code)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/identities/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/v1/identities/me", nil, "sess_bogus")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetAndUpdateMe(t *testing.T) {
	ts := newTestServer(t)
	auth := ts.register(t, "alice@example.com", "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/identities/me", nil, auth.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var me response.Identity
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, auth.Identity.ID, me.ID)

	update := map[string]string{"display_name": "Alice B", "family_name": "Brown"}
	rr = ts.request(http.MethodPatch, "/api/v1/identities/me", update, auth.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var updated response.Identity
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "Alice B", updated.DisplayName)
	assert.Equal(t, "Brown", updated.FamilyName)
}

func TestLookupByAccountID(t *testing.T) {
	ts := newTestServer(t)
	auth := ts.register(t, "alice@example.com", "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/identities/lookup?account_id=alice@example.com", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var found response.Identity
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &found))
	assert.Equal(t, auth.Identity.ID, found.ID)

	rr = ts.request(http.MethodGet, "/api/v1/identities/lookup?account_id=nobody@example.com", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeIdentityNotFound, decodeError(t, rr).Code)
}

func TestRegistryStats(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com", "Alice")
	ts.register(t, "bob@example.com", "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/identities/stats", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var stats response.RegistryStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 0, stats.Online)
	assert.Equal(t, 2, stats.Offline)
}

func TestRoomLifecycle(t *testing.T) {
	ts := newTestServer(t)
	host := ts.register(t, "alice@example.com", "Alice")
	guest := ts.register(t, "bob@example.com", "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/rooms", nil, host.SessionToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Len(t, created.Players, 1)
	assert.Equal(t, "Alice", created.Players[0].DisplayName)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+created.Code+"/join", nil, guest.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var joined response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &joined))
	assert.Equal(t, 1, joined.PlayerIndex)
	assert.Len(t, joined.Room.Players, 2)

	// Joining twice is rejected
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+created.Code+"/join", nil, guest.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeAlreadyInRoom, decodeError(t, rr).Code)
}

func TestRoomNotFound(t *testing.T) {
	ts := newTestServer(t)
	auth := ts.register(t, "alice@example.com", "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/rooms/NOPE11", nil, auth.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeRoomNotFound, decodeError(t, rr).Code)
}

func TestCreditFlow(t *testing.T) {
	ts := newTestServer(t)
	host := ts.register(t, "alice@example.com", "Alice")
	guest := ts.register(t, "bob@example.com", "Bob")
	code := ts.createRoom(t, host.SessionToken, guest.SessionToken)

	body := map[string]int{"player_index": 0, "amount": 3000}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/credit", body, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var taken response.TakeCreditResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &taken))
	assert.Equal(t, 3000, taken.NewBalance)
	assert.Equal(t, 3000, taken.TotalCredit)
	assert.Equal(t, 300, taken.TotalMonthlyPayment)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+code+"/credit/0", nil, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var status response.CreditStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, 3000, status.CurrentCredit)
	assert.Equal(t, 7000, status.AvailableCredit)
	assert.True(t, status.CanTakeCredit)

	body = map[string]int{"player_index": 0, "amount": 2000}
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/credit/payoff", body, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var paid response.PayoffCreditResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &paid))
	assert.Equal(t, 2000, paid.PaidAmount)
	assert.Equal(t, 1000, paid.RemainingCredit)
	assert.Equal(t, 1000, paid.NewBalance)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+code+"/economy", nil, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var economy response.Economy
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &economy))
	assert.Equal(t, []int{1000, 0}, economy.Balances)
	assert.Equal(t, []int{1000, 0}, economy.Credits)
	assert.Len(t, economy.CreditHistory, 2)
	assert.Len(t, economy.TransferHistory, 2)
}

func TestCreditLimitExceeded(t *testing.T) {
	ts := newTestServer(t)
	host := ts.register(t, "alice@example.com", "Alice")
	guest := ts.register(t, "bob@example.com", "Bob")
	code := ts.createRoom(t, host.SessionToken, guest.SessionToken)

	body := map[string]int{"player_index": 0, "amount": 10000}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/credit", body, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body = map[string]int{"player_index": 0, "amount": 1000}
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/credit", body, host.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)

	apiErr := decodeError(t, rr)
	assert.Equal(t, apierr.CodeCreditLimitExceeded, apiErr.Code)
	require.NotNil(t, apiErr.AvailableCredit)
	assert.Equal(t, 0, *apiErr.AvailableCredit)
}

func TestCreditInvalidAmount(t *testing.T) {
	ts := newTestServer(t)
	host := ts.register(t, "alice@example.com", "Alice")
	guest := ts.register(t, "bob@example.com", "Bob")
	code := ts.createRoom(t, host.SessionToken, guest.SessionToken)

	for _, amount := range []int{1500, 500, 0, -1000} {
		body := map[string]int{"player_index": 0, "amount": amount}
		rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/credit", body, host.SessionToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code, fmt.Sprintf("amount %d", amount))
		assert.Equal(t, apierr.CodeInvalidAmount, decodeError(t, rr).Code)
	}
}

func TestPayoffWithoutCredit(t *testing.T) {
	ts := newTestServer(t)
	host := ts.register(t, "alice@example.com", "Alice")
	guest := ts.register(t, "bob@example.com", "Bob")
	code := ts.createRoom(t, host.SessionToken, guest.SessionToken)

	body := map[string]int{"player_index": 0, "amount": 1000}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/credit/payoff", body, host.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNoCreditData, decodeError(t, rr).Code)
}

func TestTransfer(t *testing.T) {
	ts := newTestServer(t)
	host := ts.register(t, "alice@example.com", "Alice")
	guest := ts.register(t, "bob@example.com", "Bob")
	code := ts.createRoom(t, host.SessionToken, guest.SessionToken)

	// Fund the sender first
	body := map[string]int{"player_index": 0, "amount": 2000}
	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/credit", body, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	transfer := map[string]int{"sender_index": 0, "recipient_index": 1, "amount": 1500}
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/transfer", transfer, host.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result response.TransferResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 500, result.SenderBalance)
	assert.Equal(t, 1500, result.RecipientBalance)
	assert.Equal(t, 1500, result.Amount)

	// Sender only has 500 left
	transfer = map[string]int{"sender_index": 0, "recipient_index": 1, "amount": 1000}
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/transfer", transfer, host.SessionToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeInsufficientFunds, decodeError(t, rr).Code)

	// Self-transfers are rejected
	transfer = map[string]int{"sender_index": 0, "recipient_index": 0, "amount": 500}
	rr = ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/transfer", transfer, host.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidTransfer, decodeError(t, rr).Code)
}
