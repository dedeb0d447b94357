package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
	contentsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/content"
	"github.com/mohammadarifzafra/topgrade-api/internal/transport/http/dto"
	httperrors "github.com/mohammadarifzafra/topgrade-api/internal/transport/http/errors"
)

type ContentHandler struct {
	service *contentsvc.Service
}

func NewContentHandler(service *contentsvc.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

func (h *ContentHandler) VideoURL(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	ref, ok := topicRefFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid topic reference")
		return
	}

	link, err := h.service.VideoURL(r.Context(), identity.UserID, ref)
	if err != nil {
		switch {
		case errors.Is(err, contentsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid video request")
		case errors.Is(err, contentsvc.ErrTopicNotFound):
			writeNotFound(w, "TOPIC_NOT_FOUND", "topic not found")
		case errors.Is(err, contentsvc.ErrAccessDenied):
			writeForbidden(w, "ACCESS_DENIED", "course is not purchased")
		case errors.Is(err, contentsvc.ErrVideoUnavailable):
			writeNotFound(w, "VIDEO_UNAVAILABLE", "video is not available for this topic")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to sign video url")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.VideoURLResponse{
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt,
	})
}
