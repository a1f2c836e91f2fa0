package repository

import (
	"context"
	"time"

	"salonbooking/internal/domain"

	"gorm.io/gorm"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

type stockBatchModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	BranchID   int64      `gorm:"column:branch_id;index"`
	ProductID  int64      `gorm:"column:product_id;index"`
	Usage      string     `gorm:"column:usage"`
	Quantity   int        `gorm:"column:quantity"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	ReceivedAt time.Time  `gorm:"column:received_at"`
}

func (stockBatchModel) TableName() string { return "stock_batches" }

func toDomainBatch(m stockBatchModel) domain.StockBatch {
	return domain.StockBatch{
		ID:         m.ID,
		BranchID:   m.BranchID,
		ProductID:  m.ProductID,
		Usage:      domain.StockUsage(m.Usage),
		Quantity:   m.Quantity,
		ExpiresAt:  m.ExpiresAt,
		ReceivedAt: m.ReceivedAt,
	}
}

func (r *StockRepository) CreateBatch(ctx context.Context, b *domain.StockBatch) error {
	m := stockBatchModel{
		BranchID:   b.BranchID,
		ProductID:  b.ProductID,
		Usage:      string(b.Usage),
		Quantity:   b.Quantity,
		ExpiresAt:  b.ExpiresAt,
		ReceivedAt: b.ReceivedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	b.ID = m.ID
	return nil
}

// BatchesFEFO lists the pool's non-empty batches soonest-expiring first;
// batches without an expiry date sort last, oldest receipt first within ties.
// CASE-based ordering works on both postgres and sqlite (no NULLS LAST there).
func (r *StockRepository) BatchesFEFO(ctx context.Context, branchID, productID int64, usage domain.StockUsage) ([]domain.StockBatch, error) {
	var rows []stockBatchModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ? AND usage = ? AND quantity > 0", branchID, productID, string(usage)).
		Order("CASE WHEN expires_at IS NULL THEN 1 ELSE 0 END, expires_at, received_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.StockBatch, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainBatch(m))
	}
	return out, nil
}

// DecrementBatch takes qty out of one batch with a guarded UPDATE; returns
// false when the batch no longer holds that much.
func (r *StockRepository) DecrementBatch(ctx context.Context, batchID int64, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&stockBatchModel{}).
		Where("id = ? AND quantity >= ?", batchID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Transaction runs fn inside a database transaction using a repository bound
// to the transactional handle.
func (r *StockRepository) Transaction(ctx context.Context, fn func(txRepo *StockRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&StockRepository{db: tx})
	})
}
