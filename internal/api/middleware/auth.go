package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/avetrov/gamebank/internal/api/apierr"
	"github.com/avetrov/gamebank/internal/model"
	"github.com/avetrov/gamebank/internal/services/identity"
	"github.com/avetrov/gamebank/internal/services/session"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	sessionContextKey  contextKey = "session"
)

// Auth creates authentication middleware. The identity is re-fetched from
// the registry on every request, so a token whose identity was removed by
// the inactivity sweep is rejected.
func Auth(sessions *session.Service, registry *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			sess, err := sessions.Validate(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ident, err := registry.GetByID(r.Context(), sess.IdentityID)
			if err != nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, sessionContextKey, sess)
			ctx = context.WithValue(ctx, identityContextKey, ident)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetIdentity returns the authenticated identity from the request context
func GetIdentity(ctx context.Context) *model.PlayerIdentity {
	ident, _ := ctx.Value(identityContextKey).(*model.PlayerIdentity)
	return ident
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// MustGetIdentity returns the authenticated identity or panics
func MustGetIdentity(ctx context.Context) *model.PlayerIdentity {
	ident := GetIdentity(ctx)
	if ident == nil {
		panic("no identity in context - auth middleware not applied?")
	}
	return ident
}
