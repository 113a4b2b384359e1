package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"investmentapp/src/services"
	"investmentapp/src/utils"

	"github.com/go-chi/jwtauth"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

type Handler struct {
	Positions   services.PositionServiceI
	Holders     services.HolderServiceI
	Instruments services.InstrumentServiceI
	TokenAuth   *jwtauth.JWTAuth
	TokenTTL    time.Duration
	Logger      *logrus.Logger
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors maps domain errors to their status code and logs server-side
// failures.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	httpErr, ok := utils.ToHTTPError(err).(*utils.HTTPError)
	if !ok {
		httpErr = &utils.HTTPError{Code: http.StatusInternalServerError, Message: "Unhandled error"}
	}
	if httpErr.Code >= http.StatusInternalServerError {
		h.Logger.WithError(err).Error("request failed")
	}
	h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
}

// decode reads a JSON body; undecodable bodies are a 422.
func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return utils.UnprocessableEntity("invalid request body: " + err.Error())
	}
	return nil
}
