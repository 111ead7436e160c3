//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cardtrack/internal/ledger/models"
	"cardtrack/internal/ledger/store"
	"cardtrack/pkg/domain"
	"cardtrack/pkg/platform/sentinel"
	"cardtrack/pkg/testutil/containers"
)

type PostgresLedgerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	ops      *store.PostgresOperationStore
	canceled *store.PostgresCanceledStore
}

func TestPostgresLedgerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLedgerSuite))
}

func (s *PostgresLedgerSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.ops = store.NewPostgresOperationStore(s.postgres.DB)
	s.canceled = store.NewPostgresCanceledStore(s.postgres.DB)
}

func (s *PostgresLedgerSuite) SetupTest() {
	err := s.postgres.Truncate(context.Background(), "operations", "canceled_operations")
	s.Require().NoError(err)
}

func (s *PostgresLedgerSuite) append(card, geo, offload string) models.Operation {
	op := models.Operation{
		Actor:         "operator",
		CardName:      card,
		GeoStatus:     geo,
		OffloadStatus: offload,
		Timestamp:     domain.NewTimestamp(time.Now()),
	}
	s.Require().NoError(s.ops.Append(context.Background(), &op))
	s.Require().NotZero(op.ID)
	return op
}

func (s *PostgresLedgerSuite) TestAppendAndFind() {
	ctx := context.Background()
	op := s.append("alpha", "ON SITE", "In Progress")

	found, err := s.ops.FindByID(ctx, op.ID)
	s.Require().NoError(err)
	s.Equal(op, found)

	_, err = s.ops.FindByID(ctx, op.ID+1)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresLedgerSuite) TestAppendAssignsIncreasingIDs() {
	first := s.append("alpha", "ON SITE", "")
	second := s.append("alpha", "IN TRANSIT", "")
	s.Greater(second.ID, first.ID)
}

func (s *PostgresLedgerSuite) TestDeleteByID() {
	ctx := context.Background()
	op := s.append("alpha", "ON SITE", "")

	s.Require().NoError(s.ops.DeleteByID(ctx, op.ID))
	_, err := s.ops.FindByID(ctx, op.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	err = s.ops.DeleteByID(ctx, op.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresLedgerSuite) TestLatestAndListForCard() {
	ctx := context.Background()
	first := s.append("alpha", "ON SITE", "")
	s.append("beta", "ON SITE", "")
	second := s.append("alpha", "IN TRANSIT", "")

	latest, err := s.ops.LatestForCard(ctx, "alpha")
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)

	history, err := s.ops.ListForCard(ctx, "alpha")
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(first.ID, history[0].ID)
	s.Equal(second.ID, history[1].ID)

	_, err = s.ops.LatestForCard(ctx, "ghost")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresLedgerSuite) TestListRecentAndCount() {
	ctx := context.Background()
	s.append("alpha", "ON SITE", "")
	s.append("alpha", "IN TRANSIT", "")
	last := s.append("beta", "ON SITE", "")

	recent, err := s.ops.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(last.ID, recent[0].ID)

	count, err := s.ops.CountForCard(ctx, "alpha")
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresLedgerSuite) TestMatchingAfterAndMaxMatchingID() {
	ctx := context.Background()
	const target = "TO BACKUP"

	first := s.append("alpha", "ON SITE", target)
	s.append("beta", "ON SITE", "In Progress")
	second := s.append("gamma", "ON SITE", target)

	maxID, err := s.ops.MaxMatchingID(ctx, target)
	s.Require().NoError(err)
	s.Equal(second.ID, maxID)

	matches, err := s.ops.MatchingAfter(ctx, target, 0)
	s.Require().NoError(err)
	s.Require().Len(matches, 2)
	s.Equal(first.ID, matches[0].ID)

	matches, err = s.ops.MatchingAfter(ctx, target, first.ID)
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(second.ID, matches[0].ID)

	s.Run("no matches yields zero max", func() {
		maxID, err := s.ops.MaxMatchingID(ctx, "NEVER USED")
		s.Require().NoError(err)
		s.Zero(maxID)
	})
}

func (s *PostgresLedgerSuite) TestCanceledArchive() {
	ctx := context.Background()
	first := s.append("alpha", "ON SITE", "")
	second := s.append("alpha", "IN TRANSIT", "")

	for _, op := range []models.Operation{first, second} {
		err := s.canceled.Append(ctx, models.CanceledOperation{
			Operation:  op,
			CanceledBy: "supervisor",
		})
		s.Require().NoError(err)
	}

	archived, err := s.canceled.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(archived, 2)
	s.Equal(second.ID, archived[0].ID)
	s.Equal("supervisor", archived[0].CanceledBy)
}

func (s *PostgresLedgerSuite) TestTxRunnerRollsBackOnError() {
	ctx := context.Background()
	runner := store.NewPostgresTxRunner(s.postgres.DB)

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		op := models.Operation{
			Actor:     "operator",
			CardName:  "alpha",
			GeoStatus: "ON SITE",
			Timestamp: domain.NewTimestamp(time.Now()),
		}
		if err := s.ops.Append(ctx, &op); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	s.Require().Error(err)

	count, err := s.ops.CountForCard(ctx, "alpha")
	s.Require().NoError(err)
	s.Zero(count)
}
