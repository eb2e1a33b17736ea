package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/shopit-api/shared/apperror"
	"github.com/vasapolrittideah/shopit-api/shared/auth"
	"github.com/vasapolrittideah/shopit-api/shared/response"
)

// SessionCookieName is the cookie carrying the session credential.
const SessionCookieName = "token"

type contextKey struct{}

var sessionClaimsKey = contextKey{}

// TokenVerifier verifies session credentials. *auth.SessionIssuer satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.SessionClaims, error)
}

// RoleResolver returns the current role of a user. The role is looked up on every
// request so that a demotion takes effect before the credential expires.
type RoleResolver func(ctx context.Context, userID string) (string, error)

var errMissingCredential = errors.New("missing credential")

// Authenticate rejects requests without a valid session credential and stores the
// claims of valid ones in the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, verifier)
			if err != nil {
				response.Error(w, apperror.Unauthorized("Login first to access this resource"))
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when the authenticated user currently
// holds one of roles. It must run after Authenticate.
func RequireRole(resolve RoleResolver, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, apperror.Unauthorized("Login first to access this resource"))
				return
			}

			role, err := resolve(r.Context(), claims.UserID)
			if err != nil {
				appErr := apperror.From(err)
				if appErr.Kind == apperror.KindInternal {
					apperror.Log(hlog.FromRequest(r), "failed to resolve user role", appErr)
				}
				response.Error(w, appErr)
				return
			}

			if !slices.Contains(roles, role) {
				response.Error(w, apperror.Forbidden(
					fmt.Sprintf("Role (%s) is not allowed to access this resource", role),
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(*auth.SessionClaims)
	return claims, ok
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.SessionClaims) context.Context {
	return context.WithValue(ctx, sessionClaimsKey, claims)
}

func extractAndValidate(r *http.Request, verifier TokenVerifier) (*auth.SessionClaims, error) {
	token := ""

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		token = cookie.Value
	}

	if token == "" {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = strings.TrimSpace(parts[1])
		}
	}

	if token == "" {
		return nil, errMissingCredential
	}

	return verifier.Verify(token)
}
