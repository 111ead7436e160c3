package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	cardModel "cardtrack/internal/card/models"
	ledgerModel "cardtrack/internal/ledger/models"
	"cardtrack/internal/platform/middleware"
	"cardtrack/internal/transport/http/shared"
	"cardtrack/pkg/domain"
	dErrors "cardtrack/pkg/domain-errors"
)

// Service defines the card catalog operations.
type Service interface {
	Create(ctx context.Context, req cardModel.CreateRequest, now time.Time) (cardModel.Card, error)
	Get(ctx context.Context, name string) (cardModel.Card, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]cardModel.Card, error)
	ListByGeoStatus(ctx context.Context, status string) ([]cardModel.Card, error)
	ListByOffloadStatus(ctx context.Context, status string) ([]cardModel.Card, error)
	Search(ctx context.Context, query string) ([]cardModel.Card, error)
}

// Ledger exposes the per-card history and the admin override.
type Ledger interface {
	History(ctx context.Context, cardName string) ([]ledgerModel.Operation, error)
	Override(ctx context.Context, actor domain.Actor, req ledgerModel.OverrideRequest, now time.Time) (cardModel.Card, error)
}

// Handler handles card catalog endpoints.
type Handler struct {
	logger *slog.Logger
	cards  Service
	ledger Ledger
}

// New creates a new card Handler.
func New(cards Service, ledger Ledger, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		cards:  cards,
		ledger: ledger,
	}
}

// Register registers the card routes with the chi router. Mutating
// routes require admin level; the group gate covers them.
func (h *Handler) Register(r chi.Router) {
	r.Get("/cards", h.handleList)
	r.Get("/cards/search", h.handleSearch)
	r.Get("/cards/by-geo/{status}", h.handleListByGeo)
	r.Get("/cards/by-offload/{status}", h.handleListByOffload)
	r.Get("/cards/{name}", h.handleGet)
	r.Get("/cards/{name}/history", h.handleHistory)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireLevel(domain.LevelAdmin))
		admin.Post("/cards", h.handleCreate)
		admin.Put("/cards/{name}", h.handleOverride)
		admin.Delete("/cards/{name}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cards, err := h.cards.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "card list failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list cards"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cards, err := h.cards.Search(ctx, r.URL.Query().Get("query"))
	if err != nil {
		h.logger.ErrorContext(ctx, "card search failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to search cards"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

func (h *Handler) handleListByGeo(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, h.cards.ListByGeoStatus)
}

func (h *Handler) handleListByOffload(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, h.cards.ListByOffloadStatus)
}

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request, list func(context.Context, string) ([]cardModel.Card, error)) {
	ctx := r.Context()

	status := pathParam(r, "status")
	cards, err := list(ctx, status)
	if err != nil {
		h.logger.ErrorContext(ctx, "card status listing failed",
			"request_id", middleware.GetRequestID(ctx),
			"status", status,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list cards"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	card, err := h.cards.Get(ctx, pathParam(r, "name"))
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "card lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to load card"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, card)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ops, err := h.ledger.History(ctx, pathParam(r, "name"))
	if err != nil {
		h.logger.ErrorContext(ctx, "card history lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to load history"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"operations": ops})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req cardModel.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	card, err := h.cards.Create(ctx, req, time.Now())
	if err != nil {
		if dErrors.Is(err, dErrors.CodeValidation) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "card create failed",
			"request_id", middleware.GetRequestID(ctx),
			"card", req.Name,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create card"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, card)
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)

	var req ledgerModel.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.CardName = pathParam(r, "name")

	card, err := h.ledger.Override(ctx, actor, req, time.Now())
	if err != nil {
		if dErrors.Is(err, dErrors.CodeValidation) || dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "card override failed",
			"request_id", middleware.GetRequestID(ctx),
			"card", req.CardName,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to override card"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, card)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := pathParam(r, "name")
	if err := h.cards.Delete(ctx, name); err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "card delete failed",
			"request_id", middleware.GetRequestID(ctx),
			"card", name,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to delete card"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathParam decodes a chi URL parameter. Card and status names may
// contain spaces, which arrive percent-encoded.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
