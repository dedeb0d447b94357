package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
	"github.com/mohammadarifzafra/topgrade-api/internal/transport/http/dto"
	httperrors "github.com/mohammadarifzafra/topgrade-api/internal/transport/http/errors"
)

type AuthHandler struct {
	service *authsvc.Service
}

func NewAuthHandler(service *authsvc.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), identity.SID); err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput):
			writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}
