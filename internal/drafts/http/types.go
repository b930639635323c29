package http

import "github.com/pcbuildsite/pcbuild-backend/internal/drafts/service"

// Handler bundles the dependencies for draft HTTP endpoints.
type Handler struct {
	svc *service.DraftService
}

func New(svc *service.DraftService) *Handler {
	return &Handler{svc: svc}
}

type saveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	BuildID int    `json:"build_id,omitempty"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
