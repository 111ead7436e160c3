package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"cardtrack/internal/platform/logger"
	"cardtrack/pkg/domain"
)

type fakeValidator struct {
	claims *TokenClaims
	err    error
}

func (f *fakeValidator) ValidateToken(string) (*TokenClaims, error) {
	return f.claims, f.err
}

type fakeSessions struct {
	live bool
	err  error
}

func (f *fakeSessions) Exists(context.Context, string) (bool, error) {
	return f.live, f.err
}

func runAuth(t *testing.T, validator TokenValidator, sessions SessionChecker, authHeader string) (*httptest.ResponseRecorder, domain.Actor) {
	t.Helper()

	var seen domain.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetActor(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	RequireAuth(validator, sessions, logger.New())(next).ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireAuth(t *testing.T) {
	valid := &fakeValidator{claims: &TokenClaims{Username: "alice", Level: 48, SessionID: "s1"}}

	t.Run("valid token with live session passes the actor through", func(t *testing.T) {
		rec, actor := runAuth(t, valid, &fakeSessions{live: true}, "Bearer token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", actor.Name)
		assert.Equal(t, 48, actor.Level)
	})

	t.Run("missing header", func(t *testing.T) {
		rec, _ := runAuth(t, valid, &fakeSessions{live: true}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		rec, _ := runAuth(t, valid, &fakeSessions{live: true}, "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec, _ := runAuth(t, &fakeValidator{err: errors.New("bad token")}, &fakeSessions{live: true}, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("dead session revokes an otherwise valid token", func(t *testing.T) {
		rec, _ := runAuth(t, valid, &fakeSessions{live: false}, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("session lookup failure is a server error", func(t *testing.T) {
		rec, _ := runAuth(t, valid, &fakeSessions{err: errors.New("redis down")}, "Bearer token")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRequireLevel(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(actor domain.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), ContextKeyActor, actor))
		rec := httptest.NewRecorder()
		RequireLevel(domain.LevelAdmin)(next).ServeHTTP(rec, req)
		return rec
	}

	t.Run("level at the threshold passes", func(t *testing.T) {
		rec := serve(domain.Actor{Name: "root", Level: domain.LevelAdmin})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("level above the threshold passes", func(t *testing.T) {
		rec := serve(domain.Actor{Name: "root", Level: domain.LevelAdmin + 1})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("level below the threshold is forbidden", func(t *testing.T) {
		rec := serve(domain.Actor{Name: "operator", Level: 1})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
