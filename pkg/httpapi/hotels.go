package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

const (
	defaultHistoryWeeks = 4
	maxHistoryWeeks     = 52
)

func (h *Handler) GetLatestResult(w http.ResponseWriter, r *http.Request) {
	doc, err := services.ViewSchedule(r.Context(), h.store, h.logger, services.ViewParams{
		Hotel:     chi.URLParam(r, "hotel"),
		WeekStart: r.URL.Query().Get("week"),
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.successResponse(w, r, "schedule found", doc)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	count := defaultHistoryWeeks
	if raw := query.Get("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryWeeks {
			h.badRequest(w, r, fmt.Errorf("weeks must be between 1 and %d", maxHistoryWeeks))
			return
		}
		count = n
	}

	// Default to the week in progress
	lastWeek := services.NextWeekStart(h.now()).AddDate(0, 0, -7)
	if raw := query.Get("last"); raw != "" {
		parsed, err := services.ParseWeekStart(raw)
		if err != nil {
			h.serviceError(w, r, err)
			return
		}
		lastWeek = parsed
	}

	history, err := services.ViewHistory(r.Context(), h.store, h.logger, chi.URLParam(r, "hotel"), lastWeek, count)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.successResponse(w, r, "history found", history)
}

func (h *Handler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	table, err := services.GetRequirements(r.Context(), h.store, h.logger, chi.URLParam(r, "hotel"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.successResponse(w, r, "requirements found", table)
}

func (h *Handler) PutRequirements(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Requirements model.RequirementTable `json:"requirements" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := services.SaveRequirements(r.Context(), h.store, h.logger, chi.URLParam(r, "hotel"), req.Requirements); err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.successResponse(w, r, "requirements saved", req.Requirements)
}
