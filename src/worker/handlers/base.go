package handlers

import (
	"encoding/json"
	"net/http"

	"investmentapp/src/utils"
	"investmentapp/src/worker/controllers"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	Controller *controllers.Controller
	Logger     *logrus.Logger
}

func NewHandler(controller *controllers.Controller, logger *logrus.Logger) *Handler {
	return &Handler{Controller: controller, Logger: logger}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

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
