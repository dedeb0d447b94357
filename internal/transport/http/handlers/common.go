package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	httperrors "github.com/mohammadarifzafra/topgrade-api/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

// courseRefFromURL parses {kind} and {id} route params into a tagged course
// reference.
func courseRefFromURL(r *http.Request) (model.CourseRef, bool) {
	kind, ok := enums.ParseCourseKind(chi.URLParam(r, "kind"))
	if !ok {
		return model.CourseRef{}, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return model.CourseRef{}, false
	}
	return model.CourseRef{Kind: kind, ID: id}, true
}

func topicRefFromURL(r *http.Request) (model.TopicRef, bool) {
	ref, ok := courseRefFromURL(r)
	if !ok {
		return model.TopicRef{}, false
	}
	return model.TopicRef{Kind: ref.Kind, ID: ref.ID}, true
}
