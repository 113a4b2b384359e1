package repositories_test

import (
	"context"
	"errors"
	"testing"

	"investmentapp/src/database/dbtest"
	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore(t *testing.T) {
	db := dbtest.SetupTestDB(t)
	store := repositories.NewPostgresStore(db)
	ctx := context.Background()

	holder := &models.Holder{Email: "Jane@Example.com", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, store.Holders.Create(ctx, holder, nil))

	// The seed migration already loaded AAPL.
	aapl, err := store.Instruments.GetByTicker(ctx, "aapl", nil)
	require.NoError(t, err)
	if aapl == nil {
		aapl = &models.Instrument{Ticker: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("190")}
		require.NoError(t, store.Instruments.Create(ctx, aapl, nil))
	}

	t.Run("looks up holders case-insensitively", func(t *testing.T) {
		found, err := store.Holders.GetByEmail(ctx, "jane@example.com", nil)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, holder.ID, found.ID)

		missing, err := store.Holders.GetByEmail(ctx, "ghost@example.com", nil)
		require.NoError(t, err)
		assert.Nil(t, missing)

		err = store.Holders.Create(ctx, &models.Holder{Email: "JANE@example.com", FirstName: "Jane", LastName: "Doe"}, nil)
		assert.True(t, utils.IsConflict(err))
	})

	t.Run("enforces one position per pair", func(t *testing.T) {
		p := &models.Position{HolderID: holder.ID, InstrumentID: aapl.ID, Shares: decimal.RequireFromString("1.5")}
		require.NoError(t, store.Positions.Create(ctx, p, nil))

		dup := &models.Position{HolderID: holder.ID, InstrumentID: aapl.ID, Shares: decimal.NewFromInt(2)}
		assert.True(t, utils.IsConflict(store.Positions.Create(ctx, dup, nil)))

		loaded, err := store.Positions.GetByHolderWithInstrument(ctx, holder.ID, nil)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.True(t, loaded[0].Shares.Equal(decimal.RequireFromString("1.5")))
		assert.Equal(t, "AAPL", loaded[0].Instrument.Ticker)

		require.NoError(t, store.Positions.Delete(ctx, p.ID, nil))
		assert.True(t, utils.IsNotFound(store.Positions.Delete(ctx, p.ID, nil)))
	})

	t.Run("rolls back a failed transaction", func(t *testing.T) {
		boom := errors.New("boom")
		var created *models.Position
		err := store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
			created = &models.Position{HolderID: holder.ID, InstrumentID: aapl.ID, Shares: decimal.NewFromInt(3)}
			if err := store.Positions.Create(ctx, created, tx); err != nil {
				return err
			}
			if err := store.Links.Link(ctx, models.HolderSide, holder.ID, created.ID, tx); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		found, err := store.Positions.GetByID(ctx, created.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, found)

		ids, err := store.Links.PositionIDs(ctx, models.HolderSide, holder.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("grants roles idempotently", func(t *testing.T) {
		require.NoError(t, store.Roles.Grant(ctx, &models.RoleGrant{Email: holder.Email, Role: models.RoleUser}, nil))
		require.NoError(t, store.Roles.Grant(ctx, &models.RoleGrant{Email: "jane@example.com", Role: models.RoleUser}, nil))

		grants, err := store.Roles.GetByEmail(ctx, "JANE@EXAMPLE.COM", nil)
		require.NoError(t, err)
		assert.Len(t, grants, 1)
	})

	t.Run("keeps one address per holder", func(t *testing.T) {
		address := &models.Address{Street: "1 Main St", State: "CA", Zipcode: "90210"}
		require.NoError(t, store.Addresses.Create(ctx, address, nil))
		require.NoError(t, store.Holders.SetAddress(ctx, holder.ID, address.ID, nil))

		other := &models.Holder{Email: "john@example.com", FirstName: "John", LastName: "Smith"}
		require.NoError(t, store.Holders.Create(ctx, other, nil))
		assert.True(t, utils.IsConflict(store.Holders.SetAddress(ctx, other.ID, address.ID, nil)))
	})
}
