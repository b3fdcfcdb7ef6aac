// Package httpapi exposes the scheduling services over HTTP
package httpapi

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/services"
	"github.com/jakechorley/guard-rota/pkg/db"
)

type Handler struct {
	validate   *validator.Validate
	translator ut.Translator
	store      db.SchedulingStore
	generate   services.GenerateDeps
	logger     *zap.Logger
	now        func() time.Time

	Mux *chi.Mux
}

// NewHandler creates a handler serving the store in deps. Routes are added by
// RegisterRoutes.
func NewHandler(deps services.GenerateDeps, logger *zap.Logger) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Handler{
		validate:   validate,
		translator: trans,
		store:      deps.Store,
		generate:   deps,
		logger:     logger,
		now:        now,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestLogger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Health)

	h.Mux.Route("/hotels/{hotel}", func(r chi.Router) {
		r.Get("/results/latest", h.GetLatestResult)
		r.Get("/history", h.GetHistory)
		r.Get("/requirements", h.GetRequirements)
		r.Put("/requirements", h.PutRequirements)
	})

	h.Mux.Route("/workers/{id}", func(r chi.Router) {
		r.Get("/availability", h.GetAvailability)
		r.Put("/availability", h.PutAvailability)
	})

	h.Mux.Post("/managers/{id}/schedule", h.GenerateSchedule)
}
