package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/handler"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

// TokenHeader is the header the web client sends its token in
const TokenHeader = "x-auth-token"

// Authenticator resolves a token to the current caller
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// tokenFrom reads x-auth-token, falling back to an Authorization bearer token
func tokenFrom(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// AuthMiddleware validates the caller's token and stores the identity in the request context
func AuthMiddleware(authn Authenticator, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				handler.WriteFailure(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}

			identity, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				handler.WriteError(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), *identity)))
		})
	}
}

// RequireRole refuses callers without role. It must run after AuthMiddleware.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.FromContext(r.Context())
			if !ok {
				handler.WriteFailure(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			if identity.Role != role {
				handler.WriteFailure(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
