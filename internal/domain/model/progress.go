package model

import (
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
)

// TopicProgress is the finest-grained mutable entity: one row per
// (user, topic). watched_seconds reflects the latest reported seek
// position, not the maximum ever watched.
type TopicProgress struct {
	ID                   int64                `json:"id"`
	PurchaseID           int64                `json:"purchase_id"`
	UserID               int64                `json:"user_id"`
	Topic                TopicRef             `json:"topic"`
	WatchedSeconds       int64                `json:"watched_seconds"`
	TotalSeconds         int64                `json:"total_seconds"`
	CompletionPercentage float64              `json:"completion_percentage"`
	Status               enums.ProgressStatus `json:"status"`
	StartedAt            *time.Time           `json:"started_at"`
	CompletedAt          *time.Time           `json:"completed_at"`
	LastWatchedAt        time.Time            `json:"last_watched_at"`
}

// CourseProgress is a materialized recount over the topic rows of one
// purchase. It is a cache: the rules package rebuilds it in full after
// every topic mutation, never patches it incrementally.
type CourseProgress struct {
	PurchaseID           int64      `json:"purchase_id"`
	UserID               int64      `json:"user_id"`
	Course               CourseRef  `json:"course"`
	TotalTopics          int        `json:"total_topics"`
	CompletedTopics      int        `json:"completed_topics"`
	InProgressTopics     int        `json:"in_progress_topics"`
	TotalWatchSeconds    int64      `json:"total_watch_seconds"`
	CompletionPercentage float64    `json:"completion_percentage"`
	IsCompleted          bool       `json:"is_completed"`
	StartedAt            *time.Time `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	LastActivityAt       time.Time  `json:"last_activity_at"`
}
