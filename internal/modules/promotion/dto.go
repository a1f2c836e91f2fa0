package promotion

import (
	"time"

	"salonbooking/internal/domain"
)

type CreatePromotionRequest struct {
	Code         string    `json:"code" binding:"required"`
	BranchID     *int64    `json:"branch_id"`
	Kind         string    `json:"kind" binding:"required,oneof=fixed percentage"`
	Value        float64   `json:"value" binding:"required,gt=0"`
	ApplicableTo string    `json:"applicable_to" binding:"required,oneof=all services products items"`
	ItemIDs      []int64   `json:"item_ids"`
	Policy       string    `json:"policy" binding:"required,oneof=one_time repeating"`
	MaxUses      *int64    `json:"max_uses"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
}

type ValidateCodeRequest struct {
	Code     string `json:"code" binding:"required"`
	BranchID int64  `json:"branch_id" binding:"required"`
	ClientID *int64 `json:"client_id"`
}

type TrackUsageRequest struct {
	ClientID *int64 `json:"client_id"`
}

type PromotionResponse struct {
	ID           int64   `json:"id"`
	Code         string  `json:"code"`
	Kind         string  `json:"kind"`
	Value        float64 `json:"value"`
	ApplicableTo string  `json:"applicable_to"`
	Policy       string  `json:"policy"`
}

func toPromotionResponse(p *domain.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:           p.ID,
		Code:         p.Code,
		Kind:         string(p.Kind),
		Value:        p.Value,
		ApplicableTo: string(p.ApplicableTo),
		Policy:       string(p.Policy),
	}
}
