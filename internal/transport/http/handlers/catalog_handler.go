package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	catalogsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/catalog"
	"github.com/mohammadarifzafra/topgrade-api/internal/transport/http/dto"
	httperrors "github.com/mohammadarifzafra/topgrade-api/internal/transport/http/errors"
)

type CatalogHandler struct {
	service *catalogsvc.Service
}

func NewCatalogHandler(service *catalogsvc.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load categories")
		return
	}

	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.CategoryResponse{
			ID:          category.ID,
			Name:        category.Name,
			Description: category.Description,
			Icon:        category.Icon,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.CategoriesResponse{Categories: items})
}

func (h *CatalogHandler) Courses(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	kind, ok := enums.ParseCourseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown course kind")
		return
	}

	var categoryID *int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid category_id")
			return
		}
		categoryID = &id
	}

	courses, err := h.service.Courses(r.Context(), kind, categoryID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load courses")
		return
	}

	items := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		items = append(items, dto.MapCourse(course))
	}

	httperrors.Write(w, http.StatusOK, dto.CoursesResponse{Courses: items})
}

func (h *CatalogHandler) Course(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	ref, ok := courseRefFromURL(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid course reference")
		return
	}

	detail, err := h.service.Course(r.Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, catalogsvc.ErrCourseNotFound):
			writeNotFound(w, "COURSE_NOT_FOUND", "course not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load course")
		}
		return
	}

	syllabus := make([]dto.SyllabusModuleResponse, 0, len(detail.Syllabus))
	for _, module := range detail.Syllabus {
		topics := make([]dto.TopicResponse, 0, len(module.Topics))
		for _, topic := range module.Topics {
			topics = append(topics, dto.MapTopic(topic))
		}
		syllabus = append(syllabus, dto.SyllabusModuleResponse{
			ID:          module.ID,
			ModuleTitle: module.ModuleTitle,
			Topics:      topics,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.CourseDetailResponse{
		Course:   dto.MapCourse(detail.Course),
		Syllabus: syllabus,
	})
}
