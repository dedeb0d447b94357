package handlers

import (
	"errors"
	"net/http"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
	purchasesvc "github.com/mohammadarifzafra/topgrade-api/internal/services/purchases"
	"github.com/mohammadarifzafra/topgrade-api/internal/transport/http/dto"
	httperrors "github.com/mohammadarifzafra/topgrade-api/internal/transport/http/errors"
)

type PurchaseHandler struct {
	service *purchasesvc.Service
}

func NewPurchaseHandler(service *purchasesvc.Service) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PURCHASES_SERVICE_UNAVAILABLE", "purchases service is unavailable")
		return
	}

	var req dto.PurchaseCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	kind, ok := enums.ParseCourseKind(req.Kind)
	if !ok || req.CourseID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid course reference")
		return
	}

	result, err := h.service.Record(r.Context(), identity.UserID, model.CourseRef{Kind: kind, ID: req.CourseID})
	if err != nil {
		switch {
		case errors.Is(err, purchasesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase payload")
		case errors.Is(err, purchasesvc.ErrCourseNotFound):
			writeNotFound(w, "COURSE_NOT_FOUND", "course not found")
		case errors.Is(err, purchasesvc.ErrAlreadyPurchased):
			writeConflict(w, "ALREADY_PURCHASED", "course already purchased")
		case errors.Is(err, purchasesvc.ErrPaymentFailed):
			httperrors.Write(w, http.StatusPaymentRequired, httperrors.APIError{
				Code:    "PAYMENT_FAILED",
				Message: "payment was not completed",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to record purchase")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.PurchaseCreateResponse{
		Purchase: dto.MapPurchase(result.Purchase),
		Course:   dto.MapCourse(result.Course),
	})
}

func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PURCHASES_SERVICE_UNAVAILABLE", "purchases service is unavailable")
		return
	}

	views, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, purchasesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid purchases request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to list purchases")
		}
		return
	}

	items := make([]dto.PurchaseListItemResponse, 0, len(views))
	for _, view := range views {
		item := dto.PurchaseListItemResponse{
			Purchase: dto.MapPurchase(view.Purchase),
			Course:   dto.MapSnapshot(view.Course),
		}
		if view.Progress != nil {
			progress := dto.MapCourseProgress(*view.Progress)
			item.Progress = &progress
		}
		items = append(items, item)
	}

	httperrors.Write(w, http.StatusOK, dto.PurchaseListResponse{Purchases: items})
}

func (h *PurchaseHandler) Access(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PURCHASES_SERVICE_UNAVAILABLE", "purchases service is unavailable")
		return
	}

	ref, ok := courseRefFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid course reference")
		return
	}

	hasAccess, err := h.service.HasAccess(r.Context(), identity.UserID, ref)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to check course access")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CourseAccessResponse{
		Kind:      string(ref.Kind),
		CourseID:  ref.ID,
		HasAccess: hasAccess,
	})
}
