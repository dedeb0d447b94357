package dto

import (
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

type ProgressReportRequest struct {
	Kind           string `json:"kind"`
	TopicID        int64  `json:"topic_id"`
	WatchedSeconds int64  `json:"watched_seconds"`
	TotalSeconds   *int64 `json:"total_seconds,omitempty"`
}

type TopicProgressResponse struct {
	TopicID              int64      `json:"topic_id"`
	Kind                 string     `json:"kind"`
	WatchedSeconds       int64      `json:"watched_seconds"`
	TotalSeconds         int64      `json:"total_seconds"`
	CompletionPercentage float64    `json:"completion_percentage"`
	Status               string     `json:"status"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	LastWatchedAt        time.Time  `json:"last_watched_at"`
}

type CourseProgressResponse struct {
	Kind                 string     `json:"kind"`
	CourseID             int64      `json:"course_id"`
	TotalTopics          int        `json:"total_topics"`
	CompletedTopics      int        `json:"completed_topics"`
	InProgressTopics     int        `json:"in_progress_topics"`
	TotalWatchSeconds    int64      `json:"total_watch_seconds"`
	CompletionPercentage float64    `json:"completion_percentage"`
	IsCompleted          bool       `json:"is_completed"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	LastActivityAt       time.Time  `json:"last_activity_at"`
}

type ProgressReportResponse struct {
	Topic  TopicProgressResponse  `json:"topic"`
	Course CourseProgressResponse `json:"course"`
}

type CourseProgressDetailResponse struct {
	Course CourseProgressResponse  `json:"course"`
	Topics []TopicProgressResponse `json:"topics"`
}

func MapTopicProgress(progress model.TopicProgress) TopicProgressResponse {
	return TopicProgressResponse{
		TopicID:              progress.Topic.ID,
		Kind:                 string(progress.Topic.Kind),
		WatchedSeconds:       progress.WatchedSeconds,
		TotalSeconds:         progress.TotalSeconds,
		CompletionPercentage: progress.CompletionPercentage,
		Status:               string(progress.Status),
		StartedAt:            progress.StartedAt,
		CompletedAt:          progress.CompletedAt,
		LastWatchedAt:        progress.LastWatchedAt,
	}
}

func MapCourseProgress(progress model.CourseProgress) CourseProgressResponse {
	return CourseProgressResponse{
		Kind:                 string(progress.Course.Kind),
		CourseID:             progress.Course.ID,
		TotalTopics:          progress.TotalTopics,
		CompletedTopics:      progress.CompletedTopics,
		InProgressTopics:     progress.InProgressTopics,
		TotalWatchSeconds:    progress.TotalWatchSeconds,
		CompletionPercentage: progress.CompletionPercentage,
		IsCompleted:          progress.IsCompleted,
		StartedAt:            progress.StartedAt,
		CompletedAt:          progress.CompletedAt,
		LastActivityAt:       progress.LastActivityAt,
	}
}
