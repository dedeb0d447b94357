package dto

import (
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
)

type PurchaseCreateRequest struct {
	Kind     string `json:"kind"`
	CourseID int64  `json:"course_id"`
}

type PurchaseResponse struct {
	ID                 int64     `json:"id"`
	Kind               string    `json:"kind"`
	CourseID           int64     `json:"course_id"`
	Status             string    `json:"status"`
	AmountCents        int64     `json:"amount_cents"`
	DiscountPercentage float64   `json:"discount_percentage"`
	ChargedCents       int64     `json:"charged_cents"`
	SavingsCents       int64     `json:"savings_cents"`
	CreatedAt          time.Time `json:"created_at"`
}

type PurchaseCreateResponse struct {
	Purchase PurchaseResponse `json:"purchase"`
	Course   CourseResponse   `json:"course"`
}

type PurchaseListItemResponse struct {
	Purchase PurchaseResponse        `json:"purchase"`
	Course   CourseSnapshotResponse  `json:"course"`
	Progress *CourseProgressResponse `json:"progress,omitempty"`
}

type PurchaseListResponse struct {
	Purchases []PurchaseListItemResponse `json:"purchases"`
}

type CourseAccessResponse struct {
	Kind      string `json:"kind"`
	CourseID  int64  `json:"course_id"`
	HasAccess bool   `json:"has_access"`
}

func MapPurchase(purchase model.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:                 purchase.ID,
		Kind:               string(purchase.Course.Kind),
		CourseID:           purchase.Course.ID,
		Status:             string(purchase.Status),
		AmountCents:        purchase.AmountCents,
		DiscountPercentage: purchase.DiscountPercentage,
		ChargedCents:       purchase.ChargedCents,
		SavingsCents:       purchase.SavingsCents(),
		CreatedAt:          purchase.CreatedAt,
	}
}
