package dto

import "github.com/mohammadarifzafra/topgrade-api/internal/domain/model"

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type CourseResponse struct {
	Kind                 string  `json:"kind"`
	ID                   int64   `json:"id"`
	CategoryID           int64   `json:"category_id"`
	Title                string  `json:"title"`
	Subtitle             string  `json:"subtitle,omitempty"`
	Description          string  `json:"description,omitempty"`
	Duration             string  `json:"duration,omitempty"`
	BatchStarts          string  `json:"batch_starts,omitempty"`
	AvailableSlots       int     `json:"available_slots"`
	Rating               float64 `json:"rating"`
	IsBestSeller         bool    `json:"is_best_seller"`
	Icon                 string  `json:"icon,omitempty"`
	PriceCents           int64   `json:"price_cents"`
	DiscountPercentage   float64 `json:"discount_percentage"`
	DiscountedPriceCents int64   `json:"discounted_price_cents"`
}

type CoursesResponse struct {
	Courses []CourseResponse `json:"courses"`
}

type TopicResponse struct {
	Kind            string `json:"kind"`
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	IsFreeTrial     bool   `json:"is_free_trial"`
	IsIntro         bool   `json:"is_intro"`
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
}

type SyllabusModuleResponse struct {
	ID          int64           `json:"id"`
	ModuleTitle string          `json:"module_title"`
	Topics      []TopicResponse `json:"topics"`
}

type CourseDetailResponse struct {
	Course   CourseResponse           `json:"course"`
	Syllabus []SyllabusModuleResponse `json:"syllabus"`
}

type CourseSnapshotResponse struct {
	Kind                 string  `json:"kind"`
	ID                   int64   `json:"id"`
	Title                string  `json:"title"`
	Subtitle             string  `json:"subtitle,omitempty"`
	Icon                 string  `json:"icon,omitempty"`
	PriceCents           int64   `json:"price_cents"`
	DiscountPercentage   float64 `json:"discount_percentage"`
	DiscountedPriceCents int64   `json:"discounted_price_cents"`
}

func MapCourse(course model.Course) CourseResponse {
	return CourseResponse{
		Kind:                 string(course.Ref.Kind),
		ID:                   course.Ref.ID,
		CategoryID:           course.CategoryID,
		Title:                course.Title,
		Subtitle:             course.Subtitle,
		Description:          course.Description,
		Duration:             course.Duration,
		BatchStarts:          course.BatchStarts,
		AvailableSlots:       course.AvailableSlots,
		Rating:               course.Rating,
		IsBestSeller:         course.IsBestSeller,
		Icon:                 course.Icon,
		PriceCents:           course.PriceCents,
		DiscountPercentage:   course.DiscountPercentage,
		DiscountedPriceCents: course.DiscountedPriceCents(),
	}
}

func MapTopic(topic model.Topic) TopicResponse {
	return TopicResponse{
		Kind:            string(topic.Ref.Kind),
		ID:              topic.Ref.ID,
		Title:           topic.Title,
		IsFreeTrial:     topic.IsFreeTrial,
		IsIntro:         topic.IsIntro,
		DurationSeconds: topic.DurationSeconds,
	}
}

func MapSnapshot(snapshot model.CourseSnapshot) CourseSnapshotResponse {
	return CourseSnapshotResponse{
		Kind:                 string(snapshot.Ref.Kind),
		ID:                   snapshot.Ref.ID,
		Title:                snapshot.Title,
		Subtitle:             snapshot.Subtitle,
		Icon:                 snapshot.Icon,
		PriceCents:           snapshot.PriceCents,
		DiscountPercentage:   snapshot.DiscountPercentage,
		DiscountedPriceCents: snapshot.DiscountedPriceCents,
	}
}
