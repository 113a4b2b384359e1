package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"investmentapp/src/models"
	"investmentapp/src/schemas"
	"investmentapp/src/utils"
)

func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	repair := false
	if raw := r.URL.Query().Get("repair"); raw != "" {
		var err error
		repair, err = strconv.ParseBool(raw)
		if err != nil {
			h.HandleErrors(w, utils.NewValidationError("repair", "must be a boolean"))
			return
		}
	}

	discrepancies, err := h.Controller.RunAudit(ctx, repair)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	if discrepancies == nil {
		discrepancies = []models.LinkDiscrepancy{}
	}

	h.respond(w, r, schemas.AuditResponse{Repaired: repair, Discrepancies: discrepancies}, http.StatusOK)
}
