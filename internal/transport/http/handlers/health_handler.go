package handlers

import (
	"net/http"

	httperrors "github.com/mohammadarifzafra/topgrade-api/internal/transport/http/errors"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	httperrors.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}
