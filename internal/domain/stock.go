package domain

import "time"

// StockUsage classifies a batch pool: salon-internal consumption vs retail sale.
type StockUsage string

const (
	StockInternal StockUsage = "internal"
	StockRetail   StockUsage = "retail"
)

// StockBatch is a received lot of one product at one branch. Depletion is
// first-expired-first-out; batches without an expiry date go last.
type StockBatch struct {
	ID         int64      `json:"id"`
	BranchID   int64      `json:"branch_id"`
	ProductID  int64      `json:"product_id"`
	Usage      StockUsage `json:"usage"`
	Quantity   int        `json:"quantity"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	ReceivedAt time.Time  `json:"received_at"`
}
