package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingInService BookingStatus = "in_service"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// Terminal reports whether the status allows no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// CanTransitionTo reports whether the edge s -> next is part of the lifecycle.
// Cancelled is reachable from any non-terminal state, NoShow only from Confirmed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case BookingConfirmed:
		return s == BookingPending
	case BookingInService:
		return s == BookingConfirmed
	case BookingCompleted:
		return s == BookingInService
	case BookingCancelled:
		return true
	case BookingNoShow:
		return s == BookingConfirmed
	default:
		return false
	}
}

type ClientType string

const (
	ClientNew      ClientType = "new"
	ClientRegular  ClientType = "regular"
	ClientTransfer ClientType = "transfer"
)

type LineType string

const (
	LineService LineType = "service"
	LineProduct LineType = "product"
)

type ServiceLine struct {
	ID               int64      `json:"id"`
	BookingID        int64      `json:"booking_id"`
	ServiceID        int64      `json:"service_id" validate:"required"`
	ServiceName      string     `json:"service_name"`
	StylistID        int64      `json:"stylist_id"`
	StylistName      string     `json:"stylist_name"`
	BasePrice        float64    `json:"base_price" validate:"gte=0"`
	AdjustedPrice    float64    `json:"adjusted_price" validate:"gte=0"`
	AdjustmentAmount float64    `json:"adjustment_amount"`
	AdjustmentReason string     `json:"adjustment_reason,omitempty"`
	ClientType       ClientType `json:"client_type"`

	// Commission, once stored, takes precedence over recomputation from the
	// current rate table so later rate edits never rewrite settled history.
	Commission *float64 `json:"commission,omitempty"`
}

type ProductLine struct {
	ID          int64   `json:"id"`
	BookingID   int64   `json:"booking_id"`
	ProductID   int64   `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	Total       float64 `json:"total"`
}

type Booking struct {
	ID          int64         `json:"id"`
	BranchID    int64         `json:"branch_id" validate:"required"`
	ClientID    *int64        `json:"client_id,omitempty"` // nil for guest bookings
	Status      BookingStatus `json:"status"`
	ScheduledAt time.Time     `json:"scheduled_at" validate:"required"`

	ServiceLines []ServiceLine `json:"service_lines"`
	ProductLines []ProductLine `json:"product_lines"`

	// Settlement draft: references and rates, never pre-computed totals.
	// Kind, value, scope and item list are snapshotted from the promotion at
	// draft time so later edits to the code cannot change a settled booking.
	PromotionID     *int64         `json:"promotion_id,omitempty"`
	DiscountKind    DiscountKind   `json:"discount_kind,omitempty"`
	DiscountValue   float64        `json:"discount_value"`
	DiscountScope   PromotionScope `json:"discount_scope,omitempty"`
	DiscountItemIDs []int64        `json:"discount_item_ids,omitempty"`
	TaxRate         float64        `json:"tax_rate"` // fraction, e.g. 0.12

	CancellationReason string     `json:"cancellation_reason,omitempty"`
	ReceiptNumber      string     `json:"receipt_number,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}
