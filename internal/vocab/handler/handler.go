package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cardtrack/internal/platform/middleware"
	"cardtrack/internal/transport/http/shared"
	"cardtrack/internal/vocab/models"
	"cardtrack/pkg/domain"
	dErrors "cardtrack/pkg/domain-errors"
)

// Service defines the status vocabulary operations.
type Service interface {
	List(ctx context.Context, axis models.Axis) ([]models.Entry, error)
	Create(ctx context.Context, axis models.Axis, name string) (models.Entry, error)
	Rename(ctx context.Context, axis models.Axis, id int64, name string) (models.Entry, error)
	Delete(ctx context.Context, axis models.Axis, id int64) error
}

type entryRequest struct {
	Name string `json:"name"`
}

// Handler handles status vocabulary endpoints.
type Handler struct {
	logger *slog.Logger
	vocab  Service
}

// New creates a new vocab Handler.
func New(vocab Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		vocab:  vocab,
	}
}

// Register registers the vocabulary routes with the chi router.
// Listing is open to any authenticated user; mutations are admin-only.
func (h *Handler) Register(r chi.Router) {
	r.Get("/statuses/geo", h.axisList(models.AxisGeo))
	r.Get("/statuses/offload", h.axisList(models.AxisOffload))

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireLevel(domain.LevelAdmin))
		admin.Post("/statuses/geo", h.axisCreate(models.AxisGeo))
		admin.Put("/statuses/geo/{id}", h.axisRename(models.AxisGeo))
		admin.Delete("/statuses/geo/{id}", h.axisDelete(models.AxisGeo))
		admin.Post("/statuses/offload", h.axisCreate(models.AxisOffload))
		admin.Put("/statuses/offload/{id}", h.axisRename(models.AxisOffload))
		admin.Delete("/statuses/offload/{id}", h.axisDelete(models.AxisOffload))
	})
}

func (h *Handler) axisList(axis models.Axis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entries, err := h.vocab.List(ctx, axis)
		if err != nil {
			h.logger.ErrorContext(ctx, "status list failed",
				"request_id", middleware.GetRequestID(ctx),
				"axis", string(axis),
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list statuses"))
			return
		}

		shared.WriteJSON(w, http.StatusOK, map[string]any{"statuses": entries})
	}
}

func (h *Handler) axisCreate(axis models.Axis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}

		entry, err := h.vocab.Create(ctx, axis, req.Name)
		if err != nil {
			if dErrors.Is(err, dErrors.CodeValidation) {
				shared.WriteError(w, err)
				return
			}
			h.logger.ErrorContext(ctx, "status create failed",
				"request_id", middleware.GetRequestID(ctx),
				"axis", string(axis),
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create status"))
			return
		}

		shared.WriteJSON(w, http.StatusCreated, entry)
	}
}

func (h *Handler) axisRename(axis models.Axis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid status id"))
			return
		}

		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}

		entry, err := h.vocab.Rename(ctx, axis, id, req.Name)
		if err != nil {
			if dErrors.Is(err, dErrors.CodeValidation) || dErrors.Is(err, dErrors.CodeNotFound) {
				shared.WriteError(w, err)
				return
			}
			h.logger.ErrorContext(ctx, "status rename failed",
				"request_id", middleware.GetRequestID(ctx),
				"axis", string(axis),
				"status_id", id,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to rename status"))
			return
		}

		shared.WriteJSON(w, http.StatusOK, entry)
	}
}

func (h *Handler) axisDelete(axis models.Axis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid status id"))
			return
		}

		if err := h.vocab.Delete(ctx, axis, id); err != nil {
			if dErrors.Is(err, dErrors.CodeNotFound) {
				shared.WriteError(w, err)
				return
			}
			h.logger.ErrorContext(ctx, "status delete failed",
				"request_id", middleware.GetRequestID(ctx),
				"axis", string(axis),
				"status_id", id,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to delete status"))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
