package services_test

import (
	"testing"

	"investmentapp/src/models"
	"investmentapp/src/services"
	"investmentapp/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver(t *testing.T) {
	f := newFixture(t)
	resolver := services.NewIdentityResolver(f.store)
	ctx := testContext()

	holder, err := resolver.ResolveHolderByEmail(ctx, "  JANE@EXAMPLE.COM ", nil)
	require.NoError(t, err)
	assert.Equal(t, f.holders["jane@example.com"].ID, holder.ID)

	byID, err := resolver.ResolveHolderByID(ctx, holder.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, holder.Email, byID.Email)

	instrument, err := resolver.ResolveInstrumentByTicker(ctx, "msft", nil)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", instrument.Ticker)

	var notFound *utils.NotFoundError
	_, err = resolver.ResolveHolderByEmail(ctx, "Nobody@Example.com", nil)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nobody@example.com", notFound.Key)

	_, err = resolver.ResolvePositionByID(ctx, 777, nil)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, utils.KindPosition, notFound.Kind)

	var validationErr *utils.ValidationError
	_, err = resolver.ResolveHolderByEmail(ctx, "", nil)
	assert.ErrorAs(t, err, &validationErr)
	_, err = resolver.ResolveInstrumentByTicker(ctx, "   ", nil)
	assert.ErrorAs(t, err, &validationErr)
	_, err = resolver.ResolvePositionByID(ctx, 0, nil)
	assert.ErrorAs(t, err, &validationErr)
	_, err = resolver.ResolveHolderByID(ctx, -1, nil)
	assert.ErrorAs(t, err, &validationErr)
}

func TestAuthorizeOwnership(t *testing.T) {
	holder := &models.Holder{ID: 1}
	assert.NoError(t, services.AuthorizeOwnership(holder, &models.Position{ID: 5, HolderID: 1}))

	var ownershipErr *utils.OwnershipError
	assert.ErrorAs(t, services.AuthorizeOwnership(holder, &models.Position{ID: 5, HolderID: 2}), &ownershipErr)
	assert.ErrorAs(t, services.AuthorizeOwnership(nil, &models.Position{ID: 5}), &ownershipErr)
	assert.ErrorAs(t, services.AuthorizeOwnership(holder, nil), &ownershipErr)
}
