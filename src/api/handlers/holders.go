package handlers

import (
	"context"
	"net/http"

	"investmentapp/src/schemas"
)

func (h *Handler) GetHolder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	holder, address, err := h.Holders.GetProfile(ctx, SubjectFromContext(ctx))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.NewHolderResponse(holder, address), http.StatusOK)
}

func (h *Handler) PutHolder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.HolderRequest
	if err := decode(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	holder, err := h.Holders.UpdateNames(ctx, SubjectFromContext(ctx), req.FirstName, req.LastName)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.NewHolderResponse(holder, nil), http.StatusOK)
}

func (h *Handler) PutAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.AddressRequest
	if err := decode(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	email := SubjectFromContext(ctx)
	if _, err := h.Holders.AttachOrUpdateAddress(ctx, email, req.ToModel()); err != nil {
		h.HandleErrors(w, err)
		return
	}

	holder, address, err := h.Holders.GetProfile(ctx, email)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.NewHolderResponse(holder, address), http.StatusOK)
}
