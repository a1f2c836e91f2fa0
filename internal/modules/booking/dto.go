package booking

import (
	"time"

	"salonbooking/internal/domain"
)

type ServiceLineInput struct {
	ServiceID        int64   `json:"service_id" binding:"required"`
	ServiceName      string  `json:"service_name"`
	StylistID        int64   `json:"stylist_id"`
	StylistName      string  `json:"stylist_name"`
	BasePrice        float64 `json:"base_price"`
	AdjustedPrice    float64 `json:"adjusted_price"`
	AdjustmentAmount float64 `json:"adjustment_amount"`
	AdjustmentReason string  `json:"adjustment_reason"`
	ClientType       string  `json:"client_type"`

	// Explicit commission override; normally left empty and derived at
	// completion from the rate table.
	Commission *float64 `json:"commission,omitempty"`
}

type ProductLineInput struct {
	ProductID   int64   `json:"product_id" binding:"required"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
}

type CreateBookingRequest struct {
	BranchID     int64              `json:"branch_id" binding:"required"`
	ClientID     *int64             `json:"client_id"`
	ScheduledAt  time.Time          `json:"scheduled_at" binding:"required"`
	ServiceLines []ServiceLineInput `json:"service_lines" binding:"required,min=1"`
}

// SettlementDraft is what startService stores on the booking: the chosen
// lines, a discount reference and a tax rate. References and rates only,
// totals are always recomputed on read.
type SettlementDraft struct {
	ServiceLines  []ServiceLineInput `json:"service_lines" binding:"required,min=1"`
	ProductLines  []ProductLineInput `json:"product_lines"`
	PromotionCode string             `json:"promotion_code"`
	DiscountKind  string             `json:"discount_kind"`
	DiscountValue float64            `json:"discount_value"`
	TaxRate       float64            `json:"tax_rate"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (in ServiceLineInput) toDomain() domain.ServiceLine {
	ct := domain.ClientType(in.ClientType)
	if ct == "" {
		ct = domain.ClientRegular
	}
	return domain.ServiceLine{
		ServiceID:        in.ServiceID,
		ServiceName:      in.ServiceName,
		StylistID:        in.StylistID,
		StylistName:      in.StylistName,
		BasePrice:        in.BasePrice,
		AdjustedPrice:    in.AdjustedPrice,
		AdjustmentAmount: in.AdjustmentAmount,
		AdjustmentReason: in.AdjustmentReason,
		ClientType:       ct,
		Commission:       in.Commission,
	}
}

func (in ProductLineInput) toDomain() domain.ProductLine {
	return domain.ProductLine{
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		UnitPrice:   in.UnitPrice,
		Quantity:    in.Quantity,
		Total:       in.UnitPrice * float64(in.Quantity),
	}
}
