package handlers

import (
	"errors"
	"net/http"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
	bookmarksvc "github.com/mohammadarifzafra/topgrade-api/internal/services/bookmarks"
	"github.com/mohammadarifzafra/topgrade-api/internal/transport/http/dto"
	httperrors "github.com/mohammadarifzafra/topgrade-api/internal/transport/http/errors"
)

type BookmarkHandler struct {
	service *bookmarksvc.Service
}

func NewBookmarkHandler(service *bookmarksvc.Service) *BookmarkHandler {
	return &BookmarkHandler{service: service}
}

func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BOOKMARKS_SERVICE_UNAVAILABLE", "bookmarks service is unavailable")
		return
	}

	var req dto.BookmarkCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	kind, ok := enums.ParseCourseKind(req.Kind)
	if !ok || req.CourseID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid course reference")
		return
	}

	bookmark, err := h.service.Add(r.Context(), identity.UserID, model.CourseRef{Kind: kind, ID: req.CourseID})
	if err != nil {
		switch {
		case errors.Is(err, bookmarksvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid bookmark payload")
		case errors.Is(err, bookmarksvc.ErrCourseNotFound):
			writeNotFound(w, "COURSE_NOT_FOUND", "course not found")
		case errors.Is(err, bookmarksvc.ErrAlreadyBookmarked):
			writeConflict(w, "ALREADY_BOOKMARKED", "course already bookmarked")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create bookmark")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MapBookmark(bookmark))
}

func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BOOKMARKS_SERVICE_UNAVAILABLE", "bookmarks service is unavailable")
		return
	}

	ref, ok := courseRefFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid course reference")
		return
	}

	if err := h.service.Remove(r.Context(), identity.UserID, ref); err != nil {
		switch {
		case errors.Is(err, bookmarksvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid bookmark request")
		case errors.Is(err, bookmarksvc.ErrNotBookmarked):
			writeNotFound(w, "BOOKMARK_NOT_FOUND", "bookmark not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to delete bookmark")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BookmarkDeleteResponse{OK: true})
}

func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BOOKMARKS_SERVICE_UNAVAILABLE", "bookmarks service is unavailable")
		return
	}

	views, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, bookmarksvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid bookmarks request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to list bookmarks")
		}
		return
	}

	items := make([]dto.BookmarkListItemResponse, 0, len(views))
	for _, view := range views {
		items = append(items, dto.BookmarkListItemResponse{
			Bookmark: dto.MapBookmark(view.Bookmark),
			Course:   dto.MapSnapshot(view.Course),
		})
	}

	httperrors.Write(w, http.StatusOK, dto.BookmarkListResponse{Bookmarks: items})
}
