package domain

import "time"

type DiscountKind string

const (
	DiscountFixed      DiscountKind = "fixed"
	DiscountPercentage DiscountKind = "percentage"
)

type PromotionScope string

const (
	ScopeAll      PromotionScope = "all"
	ScopeServices PromotionScope = "services"
	ScopeProducts PromotionScope = "products"
	ScopeItems    PromotionScope = "items" // explicit item list
)

type UsagePolicy string

const (
	UsageOneTime   UsagePolicy = "one_time"
	UsageRepeating UsagePolicy = "repeating"
)

// Promotion is a discount code. BranchID nil means the code is global and is
// contended by every branch; a branch-scoped code wins over a global one with
// the same code.
type Promotion struct {
	ID            int64          `json:"id"`
	Code          string         `json:"code"`
	BranchID      *int64         `json:"branch_id,omitempty"`
	Kind          DiscountKind   `json:"kind"`
	Value         float64        `json:"value"`
	ApplicableTo  PromotionScope `json:"applicable_to"`
	ItemIDs       []int64        `json:"item_ids,omitempty"`
	Policy        UsagePolicy    `json:"policy"`
	MaxUses       *int64         `json:"max_uses,omitempty"`
	UsageCount    int64          `json:"usage_count"`
	Active        bool           `json:"active"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
