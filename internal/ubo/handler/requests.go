package handler

import (
	"github.com/consciencex/lhb-ubo/internal/ubo/models"
)

// ScreenRequest is the POST /screenings body.
type ScreenRequest struct {
	RegistrationID string  `json:"registration_id"`
	MaxDepth       int     `json:"max_depth,omitempty"`
	Threshold      float64 `json:"threshold,omitempty"`
}

// ScreenResponse wraps a completed run for transport.
type ScreenResponse struct {
	Run *models.ScreeningResult `json:"run"`
}

// RunListResponse is the GET /companies/{id}/screenings body.
type RunListResponse struct {
	Runs []*models.ScreeningResult `json:"runs"`
}
