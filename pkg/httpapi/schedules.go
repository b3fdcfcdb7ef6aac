package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jakechorley/guard-rota/pkg/core/model"
	"github.com/jakechorley/guard-rota/pkg/core/services"
)

type generateResponse struct {
	Result       *model.ResultDocument `json:"result"`
	WeekStart    string                `json:"weekStart"`
	SolverStatus string                `json:"solverStatus"`
	Unfilled     int                   `json:"unfilled"`
	DryRun       bool                  `json:"dryRun"`
	Persisted    bool                  `json:"persisted"`
	PersistError string                `json:"persistError,omitempty"`
	HookErrors   map[string]string     `json:"hookErrors,omitempty"`
}

func pathID(r *http.Request) (model.WorkerID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return model.WorkerID(id), nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", nil)
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Week   string `json:"week" validate:"omitempty,datetime=2006-01-02"`
		DryRun bool   `json:"dryRun"`
	}

	managerID, err := pathID(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	// The body is optional
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	params := services.GenerateParams{ManagerID: managerID, DryRun: req.DryRun}
	if req.Week != "" {
		params.WeekStart, err = services.ParseWeekStart(req.Week)
		if err != nil {
			h.serviceError(w, r, err)
			return
		}
	}

	res, err := services.GenerateSchedule(r.Context(), h.generate, h.logger, params)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	resp := generateResponse{
		Result:       res.Result,
		WeekStart:    res.WeekStart.Format(model.DateFormat),
		SolverStatus: string(res.Outcome.SolverStatus),
		Unfilled:     res.Outcome.Unfilled(),
		DryRun:       req.DryRun,
		Persisted:    res.Persisted,
	}
	if res.PersistErr != nil {
		resp.PersistError = res.PersistErr.Error()
	}
	if len(res.HookErrs) > 0 {
		resp.HookErrors = make(map[string]string, len(res.HookErrs))
		for name, hookErr := range res.HookErrs {
			resp.HookErrors[name] = hookErr.Error()
		}
	}

	h.successResponse(w, r, "schedule generated", resp)
}
