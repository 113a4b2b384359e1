package handlers

import (
	"context"
	"net/http"
	"strings"

	"investmentapp/src/utils"

	"github.com/go-chi/jwtauth"
)

type subjectKey struct{}

const emailClaim = "email"

// WithLogger puts the handler logger on every request context.
func (h *Handler) WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := utils.WithLogger(r.Context(), h.Logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Subject reads the email claim of a verified token. Holder ids are never
// taken from the client.
func (h *Handler) Subject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			h.HandleErrors(w, utils.Unauthorized(err.Error()))
			return
		}
		email, _ := claims[emailClaim].(string)
		if strings.TrimSpace(email) == "" {
			h.HandleErrors(w, utils.Unauthorized("token has no email claim"))
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey{}, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SubjectFromContext(ctx context.Context) string {
	email, _ := ctx.Value(subjectKey{}).(string)
	return email
}

// RequireRole rejects subjects without role. Must run after Subject.
func (h *Handler) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := h.Holders.HasRole(r.Context(), SubjectFromContext(r.Context()), role)
			if err != nil {
				h.HandleErrors(w, err)
				return
			}
			if !ok {
				h.HandleErrors(w, utils.Forbidden("missing role "+role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
