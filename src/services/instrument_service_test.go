package services_test

import (
	"testing"

	"investmentapp/src/models"
	"investmentapp/src/services"
	"investmentapp/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrUpdateInstrument(t *testing.T) {
	f := newFixture(t)
	svc := services.NewInstrumentService(f.store)
	ctx := testContext()

	created, err := svc.CreateOrUpdateInstrument(ctx, models.Instrument{Ticker: " nvda ", Name: "NVIDIA", Price: dec("900.5")})
	require.NoError(t, err)
	assert.Equal(t, "NVDA", created.Ticker)

	updated, err := svc.CreateOrUpdateInstrument(ctx, models.Instrument{Ticker: "NVDA", Name: "NVIDIA Corporation", Price: dec("910")})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.Price.Equal(dec("910")))

	var validationErr *utils.ValidationError
	_, err = svc.CreateOrUpdateInstrument(ctx, models.Instrument{Ticker: "BAD", Name: "Bad", Price: dec("-1")})
	assert.ErrorAs(t, err, &validationErr)
	_, err = svc.CreateOrUpdateInstrument(ctx, models.Instrument{Name: "No ticker"})
	assert.ErrorAs(t, err, &validationErr)

	instruments, err := svc.ListInstruments(ctx)
	require.NoError(t, err)
	tickers := make([]string, 0, len(instruments))
	for _, i := range instruments {
		tickers = append(tickers, i.Ticker)
	}
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, tickers)
}
