package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/repositories/memory"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return utils.WithLogger(context.Background(), logger)
}

type fixture struct {
	store       *repositories.Store
	holders     map[string]*models.Holder
	instruments map[string]*models.Instrument
}

// newFixture seeds jane@example.com and john@example.com plus AAPL and MSFT.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := testContext()
	store := memory.NewStore()
	f := &fixture{store: store, holders: map[string]*models.Holder{}, instruments: map[string]*models.Instrument{}}

	for _, h := range []models.Holder{
		{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
		{Email: "john@example.com", FirstName: "John", LastName: "Smith"},
	} {
		h := h
		require.NoError(t, store.Holders.Create(ctx, &h, nil))
		require.NoError(t, store.Roles.Grant(ctx, &models.RoleGrant{Email: h.Email, Role: models.RoleUser}, nil))
		f.holders[h.Email] = &h
	}
	for _, i := range []models.Instrument{
		{Ticker: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("190")},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Price: decimal.RequireFromString("400")},
	} {
		i := i
		require.NoError(t, store.Instruments.Create(ctx, &i, nil))
		f.instruments[i.Ticker] = &i
	}
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// staleLookupPositions hides existing positions from the first lookups, the
// way a concurrent insert that committed after our read would look.
type staleLookupPositions struct {
	repositories.PositionRepository
	staleReads int32
	creates    int32
}

func (r *staleLookupPositions) GetByHolderAndInstrument(ctx context.Context, holderID, instrumentID int, tx pgx.Tx) (*models.Position, error) {
	if atomic.AddInt32(&r.staleReads, -1) >= 0 {
		return nil, nil
	}
	return r.PositionRepository.GetByHolderAndInstrument(ctx, holderID, instrumentID, tx)
}

func (r *staleLookupPositions) Create(ctx context.Context, p *models.Position, tx pgx.Tx) error {
	atomic.AddInt32(&r.creates, 1)
	return r.PositionRepository.Create(ctx, p, tx)
}

var errLinkFailed = errors.New("link write failed")

type failingLinks struct {
	repositories.LinkRepository
}

func (failingLinks) Link(context.Context, models.LinkSide, int, int, pgx.Tx) error {
	return errLinkFailed
}
