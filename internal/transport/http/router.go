// Package httptransport assembles the HTTP surface. Handlers stay thin
// and delegate to domain services; this file only does the wiring.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authHandler "cardtrack/internal/auth/handler"
	cardHandler "cardtrack/internal/card/handler"
	ledgerHandler "cardtrack/internal/ledger/handler"
	"cardtrack/internal/platform/middleware"
	"cardtrack/internal/transport/http/shared"
	vocabHandler "cardtrack/internal/vocab/handler"
)

// Deps carries everything the router needs.
type Deps struct {
	Logger    *slog.Logger
	Auth      *authHandler.Handler
	Cards     *cardHandler.Handler
	Ledger    *ledgerHandler.Handler
	Vocab     *vocabHandler.Handler
	Validator middleware.TokenValidator
	Sessions  middleware.SessionChecker
	Health    func() error
}

// NewRouter wires all endpoints. Everything except login, health, and
// metrics sits behind bearer auth.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", healthHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	deps.Auth.RegisterPublic(r)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(deps.Validator, deps.Sessions, deps.Logger))
		deps.Auth.Register(authed)
		deps.Cards.Register(authed)
		deps.Ledger.Register(authed)
		deps.Vocab.Register(authed)
	})

	return r
}

func healthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
