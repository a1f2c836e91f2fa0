package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"salonbooking/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

type promotionModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Code         string    `gorm:"column:code;index"`
	BranchID     *int64    `gorm:"column:branch_id;index"`
	Kind         string    `gorm:"column:kind"`
	Value        float64   `gorm:"column:value"`
	ApplicableTo string    `gorm:"column:applicable_to"`
	ItemIDs      *string   `gorm:"column:item_ids"` // JSON array
	Policy       string    `gorm:"column:policy"`
	MaxUses      *int64    `gorm:"column:max_uses"`
	UsageCount   int64     `gorm:"column:usage_count"`
	Active       bool      `gorm:"column:active"`
	StartDate    time.Time `gorm:"column:start_date"`
	EndDate      time.Time `gorm:"column:end_date"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (promotionModel) TableName() string { return "promotions" }

// redemptionModel is the one-time policy redeemed-set. The composite unique
// index makes the insert an idempotent set-union: a second add is a no-op.
type redemptionModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	PromotionID int64     `gorm:"column:promotion_id;uniqueIndex:idx_promo_client"`
	ClientID    int64     `gorm:"column:client_id;uniqueIndex:idx_promo_client"`
	RedeemedAt  time.Time `gorm:"column:redeemed_at"`
}

func (redemptionModel) TableName() string { return "promotion_redemptions" }

func toDomainPromotion(m promotionModel) *domain.Promotion {
	p := &domain.Promotion{
		ID:           m.ID,
		Code:         m.Code,
		BranchID:     m.BranchID,
		Kind:         domain.DiscountKind(m.Kind),
		Value:        m.Value,
		ApplicableTo: domain.PromotionScope(m.ApplicableTo),
		Policy:       domain.UsagePolicy(m.Policy),
		MaxUses:      m.MaxUses,
		UsageCount:   m.UsageCount,
		Active:       m.Active,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.ItemIDs != nil && *m.ItemIDs != "" {
		_ = json.Unmarshal([]byte(*m.ItemIDs), &p.ItemIDs)
	}
	return p
}

func (r *PromotionRepository) Create(ctx context.Context, p *domain.Promotion) error {
	now := time.Now().UTC()
	m := promotionModel{
		Code:         p.Code,
		BranchID:     p.BranchID,
		Kind:         string(p.Kind),
		Value:        p.Value,
		ApplicableTo: string(p.ApplicableTo),
		Policy:       string(p.Policy),
		MaxUses:      p.MaxUses,
		UsageCount:   p.UsageCount,
		Active:       p.Active,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(p.ItemIDs) > 0 {
		raw, err := json.Marshal(p.ItemIDs)
		if err != nil {
			return err
		}
		s := string(raw)
		m.ItemIDs = &s
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PromotionRepository) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	var m promotionModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainPromotion(m), nil
}

// FindByCode resolves a normalized code for a branch. A branch-scoped match
// takes precedence over a global (null branch) one.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string, branchID int64) (*domain.Promotion, error) {
	var m promotionModel
	tx := r.db.WithContext(ctx).
		Where("code = ? AND branch_id = ?", code, branchID).
		First(&m)
	if tx.Error == nil {
		return toDomainPromotion(m), nil
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, tx.Error
	}

	tx = r.db.WithContext(ctx).
		Where("code = ? AND branch_id IS NULL", code).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainPromotion(m), nil
}

// HasRedemption reports whether clientID already sits in the redeemed-set.
func (r *PromotionRepository) HasRedemption(ctx context.Context, promotionID, clientID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&redemptionModel{}).
		Where("promotion_id = ? AND client_id = ?", promotionID, clientID).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// AddRedemption is an idempotent set-union insert: applying it twice for the
// same (promotion, client) pair leaves exactly one row.
func (r *PromotionRepository) AddRedemption(ctx context.Context, promotionID, clientID int64) error {
	m := redemptionModel{
		PromotionID: promotionID,
		ClientID:    clientID,
		RedeemedAt:  time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil // concurrent insert already won, same outcome
		}
		return err
	}
	return nil
}

// IncrementUsage bumps the counter with a single conditional UPDATE, never a
// read-then-write, so concurrent redemptions cannot under-count or overshoot
// a max-uses bound. Returns false when the bound is already reached.
func (r *PromotionRepository) IncrementUsage(ctx context.Context, promotionID int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&promotionModel{}).
		Where("id = ? AND (max_uses IS NULL OR usage_count < max_uses)", promotionID).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
