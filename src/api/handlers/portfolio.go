package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"investmentapp/src/schemas"
	"investmentapp/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	email := SubjectFromContext(ctx)
	positions, err := h.Positions.RetrievePortfolio(ctx, email)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.NewPortfolioResponse(email, positions), http.StatusOK)
}

func (h *Handler) ExportPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	f, err := h.Positions.ExportPortfolioXLSX(ctx, SubjectFromContext(ctx))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "portfolio.xlsx"))
	if err := f.Write(w); err != nil {
		h.Logger.WithError(err).Error("failed to write portfolio export")
	}
}

func (h *Handler) PutPosition(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.PositionRequest
	if err := decode(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	position, err := h.Positions.AddOrUpdatePosition(ctx, SubjectFromContext(ctx), chi.URLParam(r, "ticker"), req.Shares)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.PositionResponse{
		ID:     position.ID,
		Ticker: position.Instrument.Ticker,
		Shares: position.Shares,
	}, http.StatusOK)
}

func (h *Handler) DeletePositionByTicker(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Positions.DeletePositionByTicker(ctx, SubjectFromContext(ctx), chi.URLParam(r, "ticker")); err != nil {
		h.HandleErrors(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePositionByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.NewValidationError("id", "must be an integer"))
		return
	}

	if err := h.Positions.DeletePositionByID(ctx, SubjectFromContext(ctx), id); err != nil {
		h.HandleErrors(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
