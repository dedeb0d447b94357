package model

import "time"

type Bookmark struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Course    CourseRef `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

// BookmarkView pairs a bookmark with the course snapshot shown in listings.
type BookmarkView struct {
	Bookmark Bookmark       `json:"bookmark"`
	Course   CourseSnapshot `json:"course"`
}
