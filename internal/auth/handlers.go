package auth

import (
	"net/http"

	"github.com/fdg312/ops-dashboard/internal/apierr"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleDevAuth handles POST /api/auth/dev
func (h *Handlers) HandleDevAuth(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.IssueDevToken()
	if err != nil {
		apierr.Write(w, http.StatusInternalServerError, apierr.CodeInternal, "Failed to issue token", "")
		return
	}

	apierr.WriteJSON(w, http.StatusOK, resp)
}
