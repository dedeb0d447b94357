package dto

import (
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

type BookmarkCreateRequest struct {
	Kind     string `json:"kind"`
	CourseID int64  `json:"course_id"`
}

type BookmarkResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	CourseID  int64     `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}

type BookmarkListItemResponse struct {
	Bookmark BookmarkResponse       `json:"bookmark"`
	Course   CourseSnapshotResponse `json:"course"`
}

type BookmarkListResponse struct {
	Bookmarks []BookmarkListItemResponse `json:"bookmarks"`
}

type BookmarkDeleteResponse struct {
	OK bool `json:"ok"`
}

func MapBookmark(bookmark model.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:        bookmark.ID,
		Kind:      string(bookmark.Course.Kind),
		CourseID:  bookmark.Course.ID,
		CreatedAt: bookmark.CreatedAt,
	}
}
