package inventory

import (
	"context"
	"time"

	"salonbooking/internal/domain"
	"salonbooking/internal/repository"
)

// Draw is one step of a depletion plan: take Qty units out of batch BatchID.
type Draw struct {
	BatchID int64
	Qty     int
}

type Service struct {
	stock *repository.StockRepository
}

func NewService(stock *repository.StockRepository) *Service {
	return &Service{stock: stock}
}

type ReceiveBatchRequest struct {
	BranchID  int64      `json:"branch_id" binding:"required"`
	ProductID int64      `json:"product_id" binding:"required"`
	Usage     string     `json:"usage" binding:"required,oneof=internal retail"`
	Quantity  int        `json:"quantity" binding:"required,gt=0"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (s *Service) ReceiveBatch(ctx context.Context, req ReceiveBatchRequest) (*domain.StockBatch, error) {
	b := &domain.StockBatch{
		BranchID:   req.BranchID,
		ProductID:  req.ProductID,
		Usage:      domain.StockUsage(req.Usage),
		Quantity:   req.Quantity,
		ExpiresAt:  req.ExpiresAt,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.stock.CreateBatch(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBatches(ctx context.Context, branchID, productID int64, usage domain.StockUsage) ([]domain.StockBatch, error) {
	return s.stock.BatchesFEFO(ctx, branchID, productID, usage)
}

// DepleteBatch takes quantity units out of the branch's pool for the product,
// soonest-expiring batches first. All-or-nothing: a pool that cannot cover
// the quantity leaves every batch untouched.
func (s *Service) DepleteBatch(ctx context.Context, branchID, productID int64, quantity int, usage domain.StockUsage) error {
	if quantity <= 0 {
		return ErrValidation
	}
	return s.stock.Transaction(ctx, func(tx *repository.StockRepository) error {
		batches, err := tx.BatchesFEFO(ctx, branchID, productID, usage)
		if err != nil {
			return err
		}
		plan, err := PlanDepletion(batches, quantity)
		if err != nil {
			return err
		}
		for _, d := range plan {
			ok, err := tx.DecrementBatch(ctx, d.BatchID, d.Qty)
			if err != nil {
				return err
			}
			if !ok {
				// a concurrent draw-down emptied the batch under us; roll
				// everything back rather than deplete out of order
				return ErrInsufficientStock
			}
		}
		return nil
	})
}

// PlanDepletion allocates qty across batches in the order given. The caller
// supplies batches already sorted first-expired-first-out.
func PlanDepletion(batches []domain.StockBatch, qty int) ([]Draw, error) {
	var plan []Draw
	remaining := qty
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		if b.Quantity <= 0 {
			continue
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, Draw{BatchID: b.ID, Qty: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, ErrInsufficientStock
	}
	return plan, nil
}
