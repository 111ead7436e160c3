package service

import (
	"context"
	"errors"
	"time"

	"cardtrack/internal/card/models"
	"cardtrack/pkg/domain"
	dErrors "cardtrack/pkg/domain-errors"
	"cardtrack/pkg/platform/sentinel"
)

// Store is the registry persistence surface the service needs. Status-field
// writes are deliberately absent: those belong to the transition engine.
type Store interface {
	Create(ctx context.Context, card models.Card) (models.Card, error)
	FindByName(ctx context.Context, name string) (models.Card, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]models.Card, error)
	ListByGeoStatus(ctx context.Context, status string) ([]models.Card, error)
	ListByOffloadStatus(ctx context.Context, status string) ([]models.Card, error)
	SearchByPrefix(ctx context.Context, prefix string) ([]models.Card, error)
}

// Service owns card lifecycle (create/delete) and the read surface. Current
// status fields are only initialized here; afterwards they change solely
// through engine operations.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers a new card with a unique name. Initial statuses are
// creation attributes, not operations: usage starts at zero.
func (s *Service) Create(ctx context.Context, req models.CreateRequest, now time.Time) (models.Card, error) {
	if req.Name == "" {
		return models.Card{}, dErrors.New(dErrors.CodeValidation, "card name is required")
	}
	if req.Capacity < 0 {
		return models.Card{}, dErrors.New(dErrors.CodeValidation, "capacity must not be negative")
	}

	geo := req.GeoStatus
	if geo == "" {
		geo = domain.StatusUnknown
	}
	offload := req.OffloadStatus
	if offload == "" {
		offload = domain.OffloadNotStarted
	}

	card, err := s.store.Create(ctx, models.Card{
		Name:          req.Name,
		Birth:         req.Birth,
		Quarantine:    req.Quarantine,
		GeoStatus:     geo,
		OffloadStatus: offload,
		Capacity:      req.Capacity,
		Brand:         req.Brand,
		Type:          req.Type,
		CreatedAt:     now,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.Card{}, dErrors.New(dErrors.CodeValidation, "card already exists: "+req.Name)
		}
		return models.Card{}, dErrors.Wrap(dErrors.CodeStorage, "create card", err)
	}
	return card, nil
}

// Get returns one card by name.
func (s *Service) Get(ctx context.Context, name string) (models.Card, error) {
	card, err := s.store.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Card{}, dErrors.New(dErrors.CodeNotFound, "card not found: "+name)
		}
		return models.Card{}, dErrors.Wrap(dErrors.CodeStorage, "find card", err)
	}
	return card, nil
}

// Delete removes a card. Ledger history referencing the name stays in
// place: operations reference cards by name, they do not own them.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "card not found: "+name)
		}
		return dErrors.Wrap(dErrors.CodeStorage, "delete card", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.Card, error) {
	cards, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "list cards", err)
	}
	return cards, nil
}

func (s *Service) ListByGeoStatus(ctx context.Context, status string) ([]models.Card, error) {
	cards, err := s.store.ListByGeoStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "list cards by geo status", err)
	}
	return cards, nil
}

func (s *Service) ListByOffloadStatus(ctx context.Context, status string) ([]models.Card, error) {
	cards, err := s.store.ListByOffloadStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "list cards by offload status", err)
	}
	return cards, nil
}

// Search supports the name autocomplete box: prefix match, empty query
// yields an empty result rather than the whole registry.
func (s *Service) Search(ctx context.Context, query string) ([]models.Card, error) {
	if query == "" {
		return nil, nil
	}
	cards, err := s.store.SearchByPrefix(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "search cards", err)
	}
	return cards, nil
}
