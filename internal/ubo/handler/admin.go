package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/consciencex/lhb-ubo/internal/audit"
	"github.com/consciencex/lhb-ubo/internal/platform/middleware"
	dErrors "github.com/consciencex/lhb-ubo/pkg/domain-errors"
	"github.com/consciencex/lhb-ubo/pkg/platform/httputil"
)

// AdminHandler exposes the audit trail behind the admin token.
type AdminHandler struct {
	logger     *slog.Logger
	audit      *audit.Publisher
	adminToken string
}

// NewAdmin creates the admin Handler.
func NewAdmin(publisher *audit.Publisher, adminToken string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		logger:     logger,
		audit:      publisher,
		adminToken: adminToken,
	}
}

// Register registers the admin routes with the chi router.
func (h *AdminHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/admin/companies/{registrationID}/audit", h.handleAuditTrail)
	})
}

// handleAuditTrail lists audit events recorded for one company.
func (h *AdminHandler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.audit.List(ctx, chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list audit events"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string][]audit.Event{"events": events})
}
