package handlers

import (
	"context"
	"net/http"
	"time"

	"investmentapp/src/models"
	"investmentapp/src/schemas"
	"investmentapp/src/utils"

	"github.com/go-chi/jwtauth"
)

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.SignUpRequest
	if err := decode(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}
	if err := utils.RequireNotBlank("password", req.Password); err != nil {
		h.HandleErrors(w, err)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	holder, err := h.Holders.Register(ctx, models.Holder{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.NewHolderResponse(holder, nil), http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.TokenRequest
	if err := decode(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	holder, err := h.Holders.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	token, err := h.IssueToken(holder.Email)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.TokenTTL.Seconds()),
	}, http.StatusOK)
}

// IssueToken signs a token whose subject is email.
func (h *Handler) IssueToken(email string) (string, error) {
	claims := map[string]interface{}{emailClaim: email}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiry(claims, time.Now().Add(h.TokenTTL))
	_, token, err := h.TokenAuth.Encode(claims)
	return token, err
}
