package model

import (
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
)

// CourseRef is a tagged reference to a standard or advanced program.
type CourseRef struct {
	Kind enums.CourseKind `json:"kind"`
	ID   int64            `json:"id"`
}

// TopicRef is a tagged reference to a topic within one of the two branches.
// The topic kind always matches the kind of the owning course.
type TopicRef struct {
	Kind enums.CourseKind `json:"kind"`
	ID   int64            `json:"id"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Course struct {
	Ref                CourseRef `json:"ref"`
	CategoryID         int64     `json:"category_id"`
	Title              string    `json:"title"`
	Subtitle           string    `json:"subtitle"`
	Description        string    `json:"description"`
	Duration           string    `json:"duration"`
	BatchStarts        string    `json:"batch_starts"`
	AvailableSlots     int       `json:"available_slots"`
	Rating             float64   `json:"rating"`
	IsBestSeller       bool      `json:"is_best_seller"`
	Icon               string    `json:"icon"`
	PriceCents         int64     `json:"price_cents"`
	DiscountPercentage float64   `json:"discount_percentage"`
	CreatedAt          time.Time `json:"created_at"`
}

// DiscountedPriceCents applies the course discount, rounding to the nearest
// cent. Discount percentages outside [0,100] are clamped.
func (c Course) DiscountedPriceCents() int64 {
	pct := c.DiscountPercentage
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	discounted := float64(c.PriceCents) * (1 - pct/100)
	return int64(discounted + 0.5)
}

type SyllabusModule struct {
	ID          int64   `json:"id"`
	ModuleTitle string  `json:"module_title"`
	Topics      []Topic `json:"topics"`
}

type Topic struct {
	Ref             TopicRef `json:"ref"`
	SyllabusID      int64    `json:"syllabus_id"`
	Title           string   `json:"title"`
	IsFreeTrial     bool     `json:"is_free_trial"`
	IsIntro         bool     `json:"is_intro"`
	VideoObjectKey  string   `json:"-"`
	DurationSeconds *int64   `json:"duration_seconds"`
}

// CourseSnapshot is the denormalized course view carried by bookmark and
// purchase listings.
type CourseSnapshot struct {
	Ref                  CourseRef `json:"ref"`
	Title                string    `json:"title"`
	Subtitle             string    `json:"subtitle"`
	Icon                 string    `json:"icon"`
	PriceCents           int64     `json:"price_cents"`
	DiscountPercentage   float64   `json:"discount_percentage"`
	DiscountedPriceCents int64     `json:"discounted_price_cents"`
}
