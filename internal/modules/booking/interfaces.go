package booking

import (
	"context"
	"time"

	"salonbooking/internal/domain"
)

// BookingRepository defines the storage operations of the state machine. All
// status writes are compare-and-set: they report false when the stored status
// no longer matches the expected pre-state.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByBranch(ctx context.Context, branchID int64) ([]domain.Booking, error)
	UpdateStatusCAS(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error)
	CancelCAS(ctx context.Context, id int64, from domain.BookingStatus, reason string) (bool, error)
	CompleteCAS(ctx context.Context, id int64, receiptNumber string, completedAt time.Time) (bool, error)
	StartServiceCAS(ctx context.Context, b *domain.Booking) (bool, error)
	SetServiceLineCommission(ctx context.Context, lineID int64, amount float64) error
}

// PromotionValidator is the promotion module surface the state machine needs.
type PromotionValidator interface {
	Validate(ctx context.Context, code string, branchID int64, clientID *int64) (*domain.Promotion, error)
	TrackUsage(ctx context.Context, promotionID int64, clientID *int64) error
}

// StockDepleter is the external inventory collaborator. Depletion order is
// first-expired-first-out on the adapter's side.
type StockDepleter interface {
	DepleteBatch(ctx context.Context, branchID, productID int64, quantity int, usage domain.StockUsage) error
}

// RateProvider supplies commission percentages; the rate table is external
// configuration, not owned by this module.
type RateProvider interface {
	Rate(lineType domain.LineType, clientType domain.ClientType) float64
}
