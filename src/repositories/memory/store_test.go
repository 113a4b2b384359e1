package memory_test

import (
	"context"
	"errors"
	"testing"

	"investmentapp/src/models"
	"investmentapp/src/repositories/memory"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("rolls back every write of a failed transaction", func(t *testing.T) {
		store := memory.NewStore()
		boom := errors.New("boom")

		err := store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
			h := &models.Holder{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}
			if err := store.Holders.Create(ctx, h, tx); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		h, err := store.Holders.GetByEmail(ctx, "jane@example.com", nil)
		require.NoError(t, err)
		assert.Nil(t, h)
	})

	t.Run("hides uncommitted writes from readers outside the transaction", func(t *testing.T) {
		store := memory.NewStore()

		err := store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
			h := &models.Holder{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}
			if err := store.Holders.Create(ctx, h, tx); err != nil {
				return err
			}

			inside, err := store.Holders.GetByEmail(ctx, "jane@example.com", tx)
			require.NoError(t, err)
			assert.NotNil(t, inside)

			outside := make(chan *models.Holder)
			go func() {
				h, _ := store.Holders.GetByEmail(ctx, "jane@example.com", nil)
				outside <- h
			}()
			assert.Nil(t, <-outside)
			return nil
		})
		require.NoError(t, err)

		committed, err := store.Holders.GetByEmail(ctx, "jane@example.com", nil)
		require.NoError(t, err)
		assert.NotNil(t, committed)
	})

	t.Run("a write outside a transaction waits for the open one", func(t *testing.T) {
		store := memory.NewStore()
		release := make(chan struct{})
		done := make(chan error)

		go func() {
			done <- store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
				<-release
				return store.Instruments.Create(ctx, &models.Instrument{Ticker: "AAPL"}, tx)
			})
		}()

		written := make(chan error)
		go func() {
			// Must not be lost when the transaction swaps in its copy.
			written <- store.Instruments.Create(ctx, &models.Instrument{Ticker: "MSFT"}, nil)
		}()

		close(release)
		require.NoError(t, <-done)
		require.NoError(t, <-written)

		all, err := store.Instruments.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		store := memory.NewStore()

		assert.Panics(t, func() {
			_ = store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
				_ = store.Addresses.Create(ctx, &models.Address{Street: "x", State: "CA", Zipcode: "12345"}, tx)
				panic("boom")
			})
		})

		a, err := store.Addresses.GetByID(ctx, 1, nil)
		require.NoError(t, err)
		assert.Nil(t, a)
	})

	t.Run("refuses a cancelled context", func(t *testing.T) {
		store := memory.NewStore()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		called := false
		err := store.Transactor.WithTx(cancelled, func(pgx.Tx) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("enforces uniqueness case-insensitively", func(t *testing.T) {
		store := memory.NewStore()

		require.NoError(t, store.Holders.Create(ctx, &models.Holder{Email: "jane@example.com"}, nil))
		assert.True(t, utils.IsConflict(store.Holders.Create(ctx, &models.Holder{Email: "JANE@example.com"}, nil)))

		aapl := &models.Instrument{Ticker: "AAPL", Price: decimal.NewFromInt(1)}
		require.NoError(t, store.Instruments.Create(ctx, aapl, nil))
		assert.True(t, utils.IsConflict(store.Instruments.Create(ctx, &models.Instrument{Ticker: "aapl"}, nil)))

		holder, err := store.Holders.GetByEmail(ctx, "Jane@Example.com", nil)
		require.NoError(t, err)

		p := &models.Position{HolderID: holder.ID, InstrumentID: aapl.ID, Shares: decimal.NewFromInt(1)}
		require.NoError(t, store.Positions.Create(ctx, p, nil))
		dup := &models.Position{HolderID: holder.ID, InstrumentID: aapl.ID, Shares: decimal.NewFromInt(2)}
		assert.True(t, utils.IsConflict(store.Positions.Create(ctx, dup, nil)))
	})

	t.Run("deleting a position drops its links", func(t *testing.T) {
		store := memory.NewStore()
		h := &models.Holder{Email: "jane@example.com"}
		require.NoError(t, store.Holders.Create(ctx, h, nil))
		i := &models.Instrument{Ticker: "AAPL"}
		require.NoError(t, store.Instruments.Create(ctx, i, nil))
		p := &models.Position{HolderID: h.ID, InstrumentID: i.ID}
		require.NoError(t, store.Positions.Create(ctx, p, nil))

		require.NoError(t, store.Links.Link(ctx, models.HolderSide, h.ID, p.ID, nil))
		require.NoError(t, store.Links.Link(ctx, models.HolderSide, h.ID, p.ID, nil))
		require.NoError(t, store.Links.Link(ctx, models.InstrumentSide, i.ID, p.ID, nil))

		ids, err := store.Links.PositionIDs(ctx, models.HolderSide, h.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{p.ID}, ids)

		require.NoError(t, store.Positions.Delete(ctx, p.ID, nil))
		assert.True(t, utils.IsNotFound(store.Positions.Delete(ctx, p.ID, nil)))

		links, err := store.Links.All(ctx, models.InstrumentSide, nil)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("does not alias stored holders", func(t *testing.T) {
		store := memory.NewStore()
		h := &models.Holder{Email: "jane@example.com"}
		require.NoError(t, store.Holders.Create(ctx, h, nil))
		a := &models.Address{Street: "x", State: "CA", Zipcode: "12345"}
		require.NoError(t, store.Addresses.Create(ctx, a, nil))
		require.NoError(t, store.Holders.SetAddress(ctx, h.ID, a.ID, nil))

		loaded, err := store.Holders.GetByID(ctx, h.ID, nil)
		require.NoError(t, err)
		*loaded.AddressID = 999

		again, err := store.Holders.GetByID(ctx, h.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, a.ID, *again.AddressID)
	})
}
