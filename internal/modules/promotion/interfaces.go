package promotion

import (
	"context"

	"salonbooking/internal/domain"
)

// PromotionRepository defines the storage operations the validator needs.
// AddRedemption must be an idempotent set-union insert and IncrementUsage a
// single atomic conditional update; read-modify-write is not acceptable here.
type PromotionRepository interface {
	Create(ctx context.Context, p *domain.Promotion) error
	GetByID(ctx context.Context, id int64) (*domain.Promotion, error)
	FindByCode(ctx context.Context, code string, branchID int64) (*domain.Promotion, error)
	HasRedemption(ctx context.Context, promotionID, clientID int64) (bool, error)
	AddRedemption(ctx context.Context, promotionID, clientID int64) error
	IncrementUsage(ctx context.Context, promotionID int64) (bool, error)
}
