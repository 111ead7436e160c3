package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cardtrack/internal/card/models"
	cardStore "cardtrack/internal/card/store"
	"cardtrack/pkg/domain"
	dErrors "cardtrack/pkg/domain-errors"
)

type CardServiceSuite struct {
	suite.Suite
	store   *cardStore.MemoryStore
	service *Service
	now     time.Time
}

func TestCardServiceSuite(t *testing.T) {
	suite.Run(t, new(CardServiceSuite))
}

func (s *CardServiceSuite) SetupTest() {
	s.store = cardStore.NewMemoryStore()
	s.service = NewService(s.store)
	s.now = time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
}

func (s *CardServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("defaults statuses and zero usage", func() {
		card, err := s.service.Create(ctx, models.CreateRequest{Name: "alpha"}, s.now)
		s.Require().NoError(err)
		s.NotZero(card.ID)
		s.Equal(domain.StatusUnknown, card.GeoStatus)
		s.Equal(domain.OffloadNotStarted, card.OffloadStatus)
		s.Equal(0, card.Usage)
		s.True(card.CreatedAt.Equal(s.now))
	})

	s.Run("keeps explicit initial statuses", func() {
		card, err := s.service.Create(ctx, models.CreateRequest{
			Name:          "beta",
			GeoStatus:     "ON SITE",
			OffloadStatus: "In Progress",
			Capacity:      128,
		}, s.now)
		s.Require().NoError(err)
		s.Equal("ON SITE", card.GeoStatus)
		s.Equal("In Progress", card.OffloadStatus)
		s.Equal(128, card.Capacity)
	})

	s.Run("rejects empty name", func() {
		_, err := s.service.Create(ctx, models.CreateRequest{}, s.now)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("rejects negative capacity", func() {
		_, err := s.service.Create(ctx, models.CreateRequest{Name: "gamma", Capacity: -1}, s.now)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("rejects duplicate name", func() {
		_, err := s.service.Create(ctx, models.CreateRequest{Name: "dup"}, s.now)
		s.Require().NoError(err)
		_, err = s.service.Create(ctx, models.CreateRequest{Name: "dup"}, s.now)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})
}

func (s *CardServiceSuite) TestGetAndDelete() {
	ctx := context.Background()

	_, err := s.service.Create(ctx, models.CreateRequest{Name: "alpha"}, s.now)
	s.Require().NoError(err)

	s.Run("get returns the card", func() {
		card, err := s.service.Get(ctx, "alpha")
		s.Require().NoError(err)
		s.Equal("alpha", card.Name)
	})

	s.Run("get unknown card", func() {
		_, err := s.service.Get(ctx, "ghost")
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("delete removes the card", func() {
		s.Require().NoError(s.service.Delete(ctx, "alpha"))
		_, err := s.service.Get(ctx, "alpha")
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("delete unknown card", func() {
		err := s.service.Delete(ctx, "ghost")
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *CardServiceSuite) TestListAndSearch() {
	ctx := context.Background()

	for _, req := range []models.CreateRequest{
		{Name: "sd-001", GeoStatus: "ON SITE"},
		{Name: "sd-002", GeoStatus: "ON SITE", OffloadStatus: "Done"},
		{Name: "cf-001", GeoStatus: "IN TRANSIT"},
	} {
		_, err := s.service.Create(ctx, req, s.now)
		s.Require().NoError(err)
	}

	s.Run("list returns all cards sorted by name", func() {
		cards, err := s.service.List(ctx)
		s.Require().NoError(err)
		s.Require().Len(cards, 3)
		s.Equal("cf-001", cards[0].Name)
		s.Equal("sd-001", cards[1].Name)
	})

	s.Run("filter by geo status", func() {
		cards, err := s.service.ListByGeoStatus(ctx, "ON SITE")
		s.Require().NoError(err)
		s.Len(cards, 2)
	})

	s.Run("filter by offload status", func() {
		cards, err := s.service.ListByOffloadStatus(ctx, "Done")
		s.Require().NoError(err)
		s.Require().Len(cards, 1)
		s.Equal("sd-002", cards[0].Name)
	})

	s.Run("search matches by prefix", func() {
		cards, err := s.service.Search(ctx, "sd-")
		s.Require().NoError(err)
		s.Len(cards, 2)
	})

	s.Run("empty search query yields nothing", func() {
		cards, err := s.service.Search(ctx, "")
		s.Require().NoError(err)
		s.Empty(cards)
	})
}
