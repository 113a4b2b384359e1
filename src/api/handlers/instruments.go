package handlers

import (
	"context"
	"net/http"

	"investmentapp/src/schemas"
)

func (h *Handler) GetInstruments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	instruments, err := h.Instruments.ListInstruments(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, instruments, http.StatusOK)
}

func (h *Handler) PutInstrument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.InstrumentRequest
	if err := decode(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	instrument, err := h.Instruments.CreateOrUpdateInstrument(ctx, req.ToModel())
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, instrument, http.StatusOK)
}
