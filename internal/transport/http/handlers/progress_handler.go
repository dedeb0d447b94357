package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
	progresssvc "github.com/mohammadarifzafra/topgrade-api/internal/services/progress"
	"github.com/mohammadarifzafra/topgrade-api/internal/transport/http/dto"
	httperrors "github.com/mohammadarifzafra/topgrade-api/internal/transport/http/errors"
)

// ReportLimiter throttles report writes per user. A nil limiter disables
// throttling, which the handler treats as unlimited.
type ReportLimiter interface {
	AllowReport(ctx context.Context, userID int64) (int64, bool, error)
}

type ProgressHandler struct {
	service *progresssvc.Service
	limiter ReportLimiter
}

func NewProgressHandler(service *progresssvc.Service, limiter ReportLimiter) *ProgressHandler {
	return &ProgressHandler{service: service, limiter: limiter}
}

func (h *ProgressHandler) Report(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROGRESS_SERVICE_UNAVAILABLE", "progress service is unavailable")
		return
	}

	if h.limiter != nil {
		retryAfter, allowed, err := h.limiter.AllowReport(r.Context(), identity.UserID)
		if err != nil {
			writeInternal(w, "INTERNAL_ERROR", "failed to check report rate")
			return
		}
		if !allowed {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_MANY_REPORTS",
				Message:       "too many progress reports, slow down",
				RetryAfterSec: retryAfter,
			})
			return
		}
	}

	var req dto.ProgressReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	kind, ok := enums.ParseCourseKind(req.Kind)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown course kind")
		return
	}

	result, err := h.service.Report(r.Context(), identity.UserID, progresssvc.ReportInput{
		Topic:          model.TopicRef{Kind: kind, ID: req.TopicID},
		WatchedSeconds: req.WatchedSeconds,
		TotalSeconds:   req.TotalSeconds,
	})
	if err != nil {
		switch {
		case errors.Is(err, progresssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid progress report")
		case errors.Is(err, progresssvc.ErrTopicNotFound):
			writeNotFound(w, "TOPIC_NOT_FOUND", "topic not found")
		case errors.Is(err, progresssvc.ErrAccessDenied):
			writeForbidden(w, "ACCESS_DENIED", "course is not purchased")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to record progress")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProgressReportResponse{
		Topic:  dto.MapTopicProgress(result.Topic),
		Course: dto.MapCourseProgress(result.Course),
	})
}

func (h *ProgressHandler) Course(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROGRESS_SERVICE_UNAVAILABLE", "progress service is unavailable")
		return
	}

	ref, ok := courseRefFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid course reference")
		return
	}

	result, err := h.service.Course(r.Context(), identity.UserID, ref)
	if err != nil {
		switch {
		case errors.Is(err, progresssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid progress request")
		case errors.Is(err, progresssvc.ErrAccessDenied):
			writeForbidden(w, "ACCESS_DENIED", "course is not purchased")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load progress")
		}
		return
	}

	topics := make([]dto.TopicProgressResponse, 0, len(result.Topics))
	for _, topic := range result.Topics {
		topics = append(topics, dto.MapTopicProgress(topic))
	}

	httperrors.Write(w, http.StatusOK, dto.CourseProgressDetailResponse{
		Course: dto.MapCourseProgress(result.Course),
		Topics: topics,
	})
}
