package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/services/session"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// AvailableCredit carries the remaining headroom for
	// CREDIT_LIMIT_EXCEEDED responses
	AvailableCredit *int `json:"available_credit,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidAccountID    = "INVALID_ACCOUNT_ID"
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeIdentityNotFound    = "IDENTITY_NOT_FOUND"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeAlreadyInRoom       = "ALREADY_IN_ROOM"
	CodeInvalidPlayerIndex  = "INVALID_PLAYER_INDEX"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeCreditLimitExceeded = "CREDIT_LIMIT_EXCEEDED"
	CodeNoCreditData        = "NO_CREDIT_DATA"
	CodeNoActiveCredit      = "NO_ACTIVE_CREDIT"
	CodeOverpayment         = "OVERPAYMENT_NOT_ALLOWED"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeInvalidTransfer     = "INVALID_TRANSFER"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var limitErr *model.CreditLimitError
	if errors.As(err, &limitErr) {
		available := limitErr.Available
		return &httpError{http.StatusConflict, APIError{
			Code:            CodeCreditLimitExceeded,
			Message:         fmt.Sprintf("Credit limit exceeded, %d available", available),
			AvailableCredit: &available,
		}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrInvalidAccountID):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidAccountID, Message: "Account id is required"}}
	case errors.Is(err, model.ErrInvalidEmail):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidEmail, Message: "Account id must be an email address"}}
	case errors.Is(err, model.ErrIdentityNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeIdentityNotFound, Message: "Identity not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeRoomNotFound, Message: "Room not found"}}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyInRoom, Message: "Already seated in this room"}}
	case errors.Is(err, model.ErrInvalidPlayerIndex):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidPlayerIndex, Message: "Player index out of range"}}
	case errors.Is(err, model.ErrInvalidAmount):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidAmount, Message: "Amount must be a positive multiple of the loan step"}}
	case errors.Is(err, model.ErrNoCreditData):
		return &httpError{http.StatusConflict, APIError{Code: CodeNoCreditData, Message: "No credit has been issued in this room"}}
	case errors.Is(err, model.ErrNoActiveCredit):
		return &httpError{http.StatusConflict, APIError{Code: CodeNoActiveCredit, Message: "No active credit to pay off"}}
	case errors.Is(err, model.ErrOverpayment):
		return &httpError{http.StatusConflict, APIError{Code: CodeOverpayment, Message: "Payoff amount exceeds outstanding credit"}}
	case errors.Is(err, model.ErrInsufficientFunds):
		return &httpError{http.StatusConflict, APIError{Code: CodeInsufficientFunds, Message: "Insufficient balance"}}
	case errors.Is(err, model.ErrInvalidTransfer):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidTransfer, Message: "Invalid transfer"}}

	// Map session errors
	case errors.Is(err, session.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
