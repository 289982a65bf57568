// Package handler exposes the screening service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/consciencex/lhb-ubo/internal/platform/middleware"
	"github.com/consciencex/lhb-ubo/internal/registry"
	"github.com/consciencex/lhb-ubo/internal/ubo/models"
	"github.com/consciencex/lhb-ubo/internal/ubo/service"
	"github.com/consciencex/lhb-ubo/pkg/platform/httputil"
	"github.com/consciencex/lhb-ubo/pkg/requestcontext"
)

// Service defines the screening operations the transport layer needs.
type Service interface {
	Screen(ctx context.Context, req service.ScreenRequest) (*models.ScreeningResult, error)
	Run(ctx context.Context, runID string) (*models.ScreeningResult, error)
	RunsForCompany(ctx context.Context, registrationID string) ([]*models.ScreeningResult, error)
	CompanyRecord(ctx context.Context, registrationID string) (*registry.CompanyRecord, error)
}

// Handler handles screening endpoints.
type Handler struct {
	logger    *slog.Logger
	screening Service
	validator middleware.TokenValidator
}

// New creates a screening Handler.
func New(screening Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		screening: screening,
		validator: validator,
	}
}

// Register registers the screening routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.RequestTime)
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/screenings", h.handleScreen)
		r.Get("/screenings/{runID}", h.handleGetRun)
		r.Get("/companies/{registrationID}/screenings", h.handleListRuns)
		r.Get("/companies/{registrationID}/record", h.handleCompanyRecord)
	})
}

// handleScreen runs a full screening for the requested company.
func (h *Handler) handleScreen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[ScreenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.screening.Screen(ctx, service.ScreenRequest{
		RegistrationID: req.RegistrationID,
		MaxDepth:       req.MaxDepth,
		Threshold:      req.Threshold,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "screening request failed",
			"request_id", requestID,
			"registration_id", req.RegistrationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, ScreenResponse{Run: result})
}

// handleGetRun fetches one stored screening run.
func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.screening.Run(ctx, chi.URLParam(r, "runID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ScreenResponse{Run: result})
}

// handleListRuns lists stored runs for a company, newest first.
func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results, err := h.screening.RunsForCompany(ctx, chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if results == nil {
		results = []*models.ScreeningResult{}
	}

	httputil.WriteJSON(w, http.StatusOK, RunListResponse{Runs: results})
}

// handleCompanyRecord proxies a single registry lookup.
func (h *Handler) handleCompanyRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.screening.CompanyRecord(ctx, chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, record)
}
