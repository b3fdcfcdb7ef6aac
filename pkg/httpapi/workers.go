package httpapi

import (
	"net/http"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	worker, err := services.GetAvailability(r.Context(), h.store, h.logger, id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.successResponse(w, r, "availability found", worker)
}

func (h *Handler) PutAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days []model.DayAvailability `json:"days" validate:"required,dive"`
	}

	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	days, err := services.SubmitAvailability(r.Context(), h.store, h.logger, id, req.Days)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.successResponse(w, r, "availability saved", days)
}
