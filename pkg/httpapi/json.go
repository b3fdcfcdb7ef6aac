package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/services"
	"github.com/jakechorley/guard-rota/pkg/db"
	"github.com/jakechorley/guard-rota/pkg/runlock"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
		return
	}
	h.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("Internal server error", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	h.errorResponse(w, r, http.StatusInternalServerError, "internal server error")
}

// serviceError maps a service error onto a response status
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, runlock.ErrLocked):
		h.errorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrDataUnavailable), errors.Is(err, services.ErrInvalidSchedule):
		h.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, db.ErrNotFound):
		h.errorResponse(w, r, http.StatusNotFound, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}
