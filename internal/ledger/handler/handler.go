package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	cardmodels "cardtrack/internal/card/models"
	"cardtrack/internal/ledger/models"
	"cardtrack/internal/platform/middleware"
	"cardtrack/internal/transport/http/shared"
	"cardtrack/pkg/domain"
	dErrors "cardtrack/pkg/domain-errors"
)

// Service defines the ledger operations exposed over HTTP.
type Service interface {
	ApplyMove(ctx context.Context, actor domain.Actor, req models.MoveRequest, now time.Time) (models.Operation, error)
	Cancel(ctx context.Context, actor domain.Actor, operationID int64) (cardmodels.Card, error)
	Recent(ctx context.Context, limit int) ([]models.Operation, error)
	RecentCanceled(ctx context.Context, limit int) ([]models.CanceledOperation, error)
}

// Handler handles status-transition endpoints.
type Handler struct {
	logger *slog.Logger
	ledger Service
}

// New creates a new ledger Handler.
func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		ledger: ledger,
	}
}

// Register registers the tracking routes with the chi router. The
// caller is expected to have already applied the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/track/move", h.handleMove)
	r.Post("/track/cancel/{operationID}", h.handleCancel)
	r.Get("/track/operations", h.handleRecent)
	r.Get("/track/canceled", h.handleRecentCanceled)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)

	var req models.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	op, err := h.ledger.ApplyMove(ctx, actor, req, time.Now())
	if err != nil {
		if dErrors.Is(err, dErrors.CodeQuarantined) || dErrors.Is(err, dErrors.CodeValidation) || dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "move failed",
			"request_id", middleware.GetRequestID(ctx),
			"card", req.CardName,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to apply move"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, op)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetActor(ctx)

	operationID, err := strconv.ParseInt(chi.URLParam(r, "operationID"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid operation id"))
		return
	}

	card, err := h.ledger.Cancel(ctx, actor, operationID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "cancel failed",
			"request_id", middleware.GetRequestID(ctx),
			"operation_id", operationID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to cancel operation"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, card)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := parseLimit(r)
	ops, err := h.ledger.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "recent operations lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list operations"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"operations": ops})
}

func (h *Handler) handleRecentCanceled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := parseLimit(r)
	ops, err := h.ledger.RecentCanceled(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "canceled operations lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list canceled operations"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"operations": ops})
}

// parseLimit reads an optional ?limit= query parameter. Zero means
// "use the server default"; the service clamps the value.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
