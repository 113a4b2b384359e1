package worker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"investmentapp/src/config"
	"investmentapp/src/models"
	"investmentapp/src/repositories/memory"
	"investmentapp/src/schemas"
	"investmentapp/src/services"
	"investmentapp/src/worker"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerAudit(t *testing.T) {
	ctx := context.Background()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store := memory.NewStore()
	holder := &models.Holder{Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, store.Holders.Create(ctx, holder, nil))
	require.NoError(t, store.Instruments.Create(ctx, &models.Instrument{Ticker: "AAPL", Price: decimal.NewFromInt(1)}, nil))
	_, err := services.NewPositionService(store, nil).AddOrUpdatePosition(ctx, "jane@example.com", "AAPL", decimal.NewFromInt(1))
	require.NoError(t, err)

	all, err := store.Positions.GetAll(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.Links.Unlink(ctx, models.HolderSide, all[0].ID, nil))

	cfg := &config.Config{Worker: config.WorkerConfig{AuditCron: "@every 1h"}}
	server, err := worker.NewServer(cfg, logger, store)
	require.NoError(t, err)
	defer server.Close()
	assert.Contains(t, server.Handler.Controller.GetSchedulers(), "relationship-audit")

	ts := httptest.NewServer(server)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/alive")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	audit := func(query string) schemas.AuditResponse {
		res, err := http.Post(ts.URL+"/api/relationships/audit"+query, "application/json", nil)
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		var body schemas.AuditResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		return body
	}

	found := audit("")
	assert.False(t, found.Repaired)
	require.Len(t, found.Discrepancies, 1)
	assert.True(t, found.Discrepancies[0].Missing)

	fixed := audit("?repair=true")
	assert.True(t, fixed.Repaired)
	assert.Len(t, fixed.Discrepancies, 1)

	assert.Empty(t, audit("").Discrepancies)

	res, err = http.Post(ts.URL+"/api/relationships/audit?repair=maybe", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
