package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"cardtrack/pkg/domain"
)

// TokenValidator validates a bearer token and returns the claims we need to
// resolve the acting user.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims are the claims the auth service puts in access tokens.
type TokenClaims struct {
	Username  string
	Level     int
	SessionID string
}

// SessionChecker reports whether a session is still live. Logout and session
// expiry revoke tokens before their JWT expiry.
type SessionChecker interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// RequireAuth resolves the actor from the Authorization header and stores it
// in the request context. Requests without a valid live session get a 401.
func RequireAuth(validator TokenValidator, sessions SessionChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			live, err := sessions.Exists(r.Context(), claims.SessionID)
			if err != nil {
				logger.ErrorContext(r.Context(), "session lookup failed",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				writeAuthError(w, http.StatusInternalServerError, "session lookup failed")
				return
			}
			if !live {
				writeAuthError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyActor, domain.Actor{
				Name:  claims.Username,
				Level: claims.Level,
			})
			ctx = context.WithValue(ctx, ContextKeySessionID, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLevel gates a subtree on the actor's permission level. Must run
// after RequireAuth.
func RequireLevel(required int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := GetActor(r.Context())
			if !actor.Can(required) {
				writeAuthError(w, http.StatusForbidden, "insufficient permission level")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
