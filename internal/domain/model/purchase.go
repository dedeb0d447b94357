package model

import (
	"time"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
)

type Purchase struct {
	ID                 int64                `json:"id"`
	UserID             int64                `json:"user_id"`
	Course             CourseRef            `json:"course"`
	Status             enums.PurchaseStatus `json:"status"`
	AmountCents        int64                `json:"amount_cents"`
	DiscountPercentage float64              `json:"discount_percentage"`
	ChargedCents       int64                `json:"charged_cents"`
	ProviderRef        string               `json:"provider_ref"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// SavingsCents is the amount the discount knocked off the list price.
func (p Purchase) SavingsCents() int64 {
	return p.AmountCents - p.ChargedCents
}
