package service

import (
	"context"
	"errors"

	"cardtrack/internal/vocab/models"
	dErrors "cardtrack/pkg/domain-errors"
	"cardtrack/pkg/platform/sentinel"
)

// Store is one vocabulary axis.
type Store interface {
	Create(ctx context.Context, name string) (models.Entry, error)
	Rename(ctx context.Context, id int64, name string) (models.Entry, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Entry, error)
}

// Service manages both status vocabularies. Deleting or renaming an entry
// never rewrites ledger history: operations store status names as opaque
// text precisely so the vocabulary can evolve under them.
type Service struct {
	geo     Store
	offload Store
}

func NewService(geo, offload Store) *Service {
	return &Service{geo: geo, offload: offload}
}

func (s *Service) axis(a models.Axis) (Store, error) {
	switch a {
	case models.AxisGeo:
		return s.geo, nil
	case models.AxisOffload:
		return s.offload, nil
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown vocabulary axis: "+string(a))
	}
}

func (s *Service) Create(ctx context.Context, a models.Axis, name string) (models.Entry, error) {
	store, err := s.axis(a)
	if err != nil {
		return models.Entry{}, err
	}
	if name == "" {
		return models.Entry{}, dErrors.New(dErrors.CodeValidation, "status name is required")
	}
	entry, err := store.Create(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.Entry{}, dErrors.New(dErrors.CodeValidation, "status already exists: "+name)
		}
		return models.Entry{}, dErrors.Wrap(dErrors.CodeStorage, "create status", err)
	}
	return entry, nil
}

func (s *Service) Rename(ctx context.Context, a models.Axis, id int64, name string) (models.Entry, error) {
	store, err := s.axis(a)
	if err != nil {
		return models.Entry{}, err
	}
	if name == "" {
		return models.Entry{}, dErrors.New(dErrors.CodeValidation, "status name is required")
	}
	entry, err := store.Rename(ctx, id, name)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return models.Entry{}, dErrors.New(dErrors.CodeNotFound, "status not found")
		case errors.Is(err, sentinel.ErrConflict):
			return models.Entry{}, dErrors.New(dErrors.CodeValidation, "status already exists: "+name)
		}
		return models.Entry{}, dErrors.Wrap(dErrors.CodeStorage, "rename status", err)
	}
	return entry, nil
}

func (s *Service) Delete(ctx context.Context, a models.Axis, id int64) error {
	store, err := s.axis(a)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "status not found")
		}
		return dErrors.Wrap(dErrors.CodeStorage, "delete status", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, a models.Axis) ([]models.Entry, error) {
	store, err := s.axis(a)
	if err != nil {
		return nil, err
	}
	entries, err := store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeStorage, "list statuses", err)
	}
	return entries, nil
}
