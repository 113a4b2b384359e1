package services_test

import (
	"testing"

	"investmentapp/src/models"
	"investmentapp/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipAuditAndRepair(t *testing.T) {
	f := newFixture(t)
	ctx := testContext()
	positions := services.NewPositionService(f.store, nil)
	maintainer := services.NewRelationshipMaintainer(f.store)

	janes, err := positions.AddOrUpdatePosition(ctx, "jane@example.com", "AAPL", dec("1"))
	require.NoError(t, err)
	johns, err := positions.AddOrUpdatePosition(ctx, "john@example.com", "MSFT", dec("2"))
	require.NoError(t, err)

	discrepancies, err := maintainer.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)

	jane := f.holders["jane@example.com"]
	john := f.holders["john@example.com"]
	require.NoError(t, f.store.Links.Unlink(ctx, models.HolderSide, janes.ID, nil))
	require.NoError(t, f.store.Links.Link(ctx, models.HolderSide, jane.ID, johns.ID, nil))

	discrepancies, err = maintainer.Audit(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.LinkDiscrepancy{
		{Link: models.Link{Side: models.HolderSide, OwnerID: jane.ID, PositionID: janes.ID}, Missing: true},
		{Link: models.Link{Side: models.HolderSide, OwnerID: jane.ID, PositionID: johns.ID}, Missing: false},
	}, discrepancies)

	repaired, err := maintainer.Repair(ctx)
	require.NoError(t, err)
	assert.Len(t, repaired, 2)

	discrepancies, err = maintainer.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)

	ids, err := maintainer.HolderPositionIDs(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{janes.ID}, ids)
	ids, err = maintainer.HolderPositionIDs(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{johns.ID}, ids)
	ids, err = maintainer.InstrumentPositionIDs(ctx, f.instruments["MSFT"].ID)
	require.NoError(t, err)
	assert.Equal(t, []int{johns.ID}, ids)
}

func TestRelationshipLinkRejectsMismatchedPosition(t *testing.T) {
	f := newFixture(t)
	maintainer := services.NewRelationshipMaintainer(f.store)

	position := &models.Position{ID: 1, HolderID: f.holders["john@example.com"].ID, InstrumentID: f.instruments["AAPL"].ID}
	err := maintainer.Link(testContext(), f.holders["jane@example.com"], f.instruments["AAPL"], position, nil)
	assert.Error(t, err)
}
