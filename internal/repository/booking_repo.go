package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"salonbooking/internal/domain"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	BranchID           int64      `gorm:"column:branch_id;index"`
	ClientID           *int64     `gorm:"column:client_id"`
	Status             string     `gorm:"column:status;index"`
	ScheduledAt        time.Time  `gorm:"column:scheduled_at"`
	PromotionID        *int64     `gorm:"column:promotion_id"`
	DiscountKind       string     `gorm:"column:discount_kind"`
	DiscountValue      float64    `gorm:"column:discount_value"`
	DiscountScope      string     `gorm:"column:discount_scope"`
	DiscountItemIDs    *string    `gorm:"column:discount_item_ids"` // JSON array
	TaxRate            float64    `gorm:"column:tax_rate"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	ReceiptNumber      *string    `gorm:"column:receipt_number"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
}

func (bookingModel) TableName() string { return "bookings" }

type serviceLineModel struct {
	ID               int64    `gorm:"column:id;primaryKey"`
	BookingID        int64    `gorm:"column:booking_id;index"`
	ServiceID        int64    `gorm:"column:service_id"`
	ServiceName      string   `gorm:"column:service_name"`
	StylistID        int64    `gorm:"column:stylist_id"`
	StylistName      string   `gorm:"column:stylist_name"`
	BasePrice        float64  `gorm:"column:base_price"`
	AdjustedPrice    float64  `gorm:"column:adjusted_price"`
	AdjustmentAmount float64  `gorm:"column:adjustment_amount"`
	AdjustmentReason *string  `gorm:"column:adjustment_reason"`
	ClientType       string   `gorm:"column:client_type"`
	Commission       *float64 `gorm:"column:commission"`
}

func (serviceLineModel) TableName() string { return "service_lines" }

type productLineModel struct {
	ID          int64   `gorm:"column:id;primaryKey"`
	BookingID   int64   `gorm:"column:booking_id;index"`
	ProductID   int64   `gorm:"column:product_id"`
	ProductName string  `gorm:"column:product_name"`
	UnitPrice   float64 `gorm:"column:unit_price"`
	Quantity    int     `gorm:"column:quantity"`
	Total       float64 `gorm:"column:total"`
}

func (productLineModel) TableName() string { return "product_lines" }

func toDomainBooking(m bookingModel, svc []serviceLineModel, prod []productLineModel) *domain.Booking {
	b := &domain.Booking{
		ID:            m.ID,
		BranchID:      m.BranchID,
		ClientID:      m.ClientID,
		Status:        domain.BookingStatus(m.Status),
		ScheduledAt:   m.ScheduledAt,
		PromotionID:   m.PromotionID,
		DiscountKind:  domain.DiscountKind(m.DiscountKind),
		DiscountValue: m.DiscountValue,
		DiscountScope: domain.PromotionScope(m.DiscountScope),
		TaxRate:       m.TaxRate,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		CompletedAt:   m.CompletedAt,
	}
	if m.DiscountItemIDs != nil && *m.DiscountItemIDs != "" {
		_ = json.Unmarshal([]byte(*m.DiscountItemIDs), &b.DiscountItemIDs)
	}
	if m.CancellationReason != nil {
		b.CancellationReason = *m.CancellationReason
	}
	if m.ReceiptNumber != nil {
		b.ReceiptNumber = *m.ReceiptNumber
	}
	b.ServiceLines = make([]domain.ServiceLine, 0, len(svc))
	for _, l := range svc {
		b.ServiceLines = append(b.ServiceLines, toDomainServiceLine(l))
	}
	b.ProductLines = make([]domain.ProductLine, 0, len(prod))
	for _, l := range prod {
		b.ProductLines = append(b.ProductLines, domain.ProductLine{
			ID:          l.ID,
			BookingID:   l.BookingID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			Total:       l.Total,
		})
	}
	return b
}

func toDomainServiceLine(l serviceLineModel) domain.ServiceLine {
	out := domain.ServiceLine{
		ID:               l.ID,
		BookingID:        l.BookingID,
		ServiceID:        l.ServiceID,
		ServiceName:      l.ServiceName,
		StylistID:        l.StylistID,
		StylistName:      l.StylistName,
		BasePrice:        l.BasePrice,
		AdjustedPrice:    l.AdjustedPrice,
		AdjustmentAmount: l.AdjustmentAmount,
		ClientType:       domain.ClientType(l.ClientType),
		Commission:       l.Commission,
	}
	if l.AdjustmentReason != nil {
		out.AdjustmentReason = *l.AdjustmentReason
	}
	return out
}

func toServiceLineModel(bookingID int64, l domain.ServiceLine) serviceLineModel {
	m := serviceLineModel{
		ID:               l.ID,
		BookingID:        bookingID,
		ServiceID:        l.ServiceID,
		ServiceName:      l.ServiceName,
		StylistID:        l.StylistID,
		StylistName:      l.StylistName,
		BasePrice:        l.BasePrice,
		AdjustedPrice:    l.AdjustedPrice,
		AdjustmentAmount: l.AdjustmentAmount,
		ClientType:       string(l.ClientType),
		Commission:       l.Commission,
	}
	if l.AdjustmentReason != "" {
		v := l.AdjustmentReason
		m.AdjustmentReason = &v
	}
	return m
}

func toProductLineModel(bookingID int64, l domain.ProductLine) productLineModel {
	return productLineModel{
		ID:          l.ID,
		BookingID:   bookingID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		UnitPrice:   l.UnitPrice,
		Quantity:    l.Quantity,
		Total:       l.Total,
	}
}

func marshalItemIDs(ids []int64) (*string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

// Create inserts the booking together with its lines in one transaction.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		m := bookingModel{
			BranchID:      b.BranchID,
			ClientID:      b.ClientID,
			Status:        string(b.Status),
			ScheduledAt:   b.ScheduledAt,
			PromotionID:   b.PromotionID,
			DiscountKind:  string(b.DiscountKind),
			DiscountValue: b.DiscountValue,
			DiscountScope: string(b.DiscountScope),
			TaxRate:       b.TaxRate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		var err error
		if m.DiscountItemIDs, err = marshalItemIDs(b.DiscountItemIDs); err != nil {
			return err
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		b.ID = m.ID
		b.CreatedAt = m.CreatedAt
		b.UpdatedAt = m.UpdatedAt

		for i := range b.ServiceLines {
			lm := toServiceLineModel(m.ID, b.ServiceLines[i])
			if err := tx.Create(&lm).Error; err != nil {
				return err
			}
			b.ServiceLines[i].ID = lm.ID
			b.ServiceLines[i].BookingID = m.ID
		}
		for i := range b.ProductLines {
			lm := toProductLineModel(m.ID, b.ProductLines[i])
			if err := tx.Create(&lm).Error; err != nil {
				return err
			}
			b.ProductLines[i].ID = lm.ID
			b.ProductLines[i].BookingID = m.ID
		}
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}

	var svc []serviceLineModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).Order("id").Find(&svc).Error; err != nil {
		return nil, err
	}
	var prod []productLineModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", id).Order("id").Find(&prod).Error; err != nil {
		return nil, err
	}
	return toDomainBooking(m, svc, prod), nil
}

func (r *BookingRepository) GetByBranch(ctx context.Context, branchID int64) ([]domain.Booking, error) {
	var rows []bookingModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("scheduled_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m, nil, nil))
	}
	return out, nil
}

// UpdateStatusCAS moves id from->to only when the stored status still equals
// from. Returns false when another terminal won the race (or the booking is
// gone); callers distinguish the two with GetByID.
func (r *BookingRepository) UpdateStatusCAS(ctx context.Context, id int64, from, to domain.BookingStatus) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// CancelCAS is UpdateStatusCAS into cancelled with the reason stored alongside.
func (r *BookingRepository) CancelCAS(ctx context.Context, id int64, from domain.BookingStatus, reason string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":              string(domain.BookingCancelled),
			"cancellation_reason": reason,
			"updated_at":          time.Now().UTC(),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// CompleteCAS moves in_service->completed, stamping completion time and the
// receipt number in the same write.
func (r *BookingRepository) CompleteCAS(ctx context.Context, id int64, receiptNumber string, completedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(domain.BookingInService)).
		Updates(map[string]interface{}{
			"status":         string(domain.BookingCompleted),
			"receipt_number": receiptNumber,
			"completed_at":   completedAt,
			"updated_at":     completedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// StartServiceCAS stores the settlement draft and moves confirmed->in_service
// in one transaction. The draft replaces the booking's lines verbatim; rates
// and references are stored, never pre-computed totals.
func (r *BookingRepository) StartServiceCAS(ctx context.Context, b *domain.Booking) (bool, error) {
	itemIDs, err := marshalItemIDs(b.DiscountItemIDs)
	if err != nil {
		return false, err
	}

	updated := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ?", b.ID, string(domain.BookingConfirmed)).
			Updates(map[string]interface{}{
				"status":            string(domain.BookingInService),
				"promotion_id":      b.PromotionID,
				"discount_kind":     string(b.DiscountKind),
				"discount_value":    b.DiscountValue,
				"discount_scope":    string(b.DiscountScope),
				"discount_item_ids": itemIDs,
				"tax_rate":          b.TaxRate,
				"updated_at":        time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // CAS failed, nothing written
		}

		if err := tx.Where("booking_id = ?", b.ID).Delete(&serviceLineModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", b.ID).Delete(&productLineModel{}).Error; err != nil {
			return err
		}
		for i := range b.ServiceLines {
			lm := toServiceLineModel(b.ID, b.ServiceLines[i])
			lm.ID = 0
			if err := tx.Create(&lm).Error; err != nil {
				return err
			}
			b.ServiceLines[i].ID = lm.ID
		}
		for i := range b.ProductLines {
			lm := toProductLineModel(b.ID, b.ProductLines[i])
			lm.ID = 0
			if err := tx.Create(&lm).Error; err != nil {
				return err
			}
			b.ProductLines[i].ID = lm.ID
		}
		updated = true
		return nil
	})
	return updated, err
}

// SetServiceLineCommission writes a derived commission only when none is
// stored yet, so explicit values always win.
func (r *BookingRepository) SetServiceLineCommission(ctx context.Context, lineID int64, amount float64) error {
	return r.db.WithContext(ctx).
		Model(&serviceLineModel{}).
		Where("id = ? AND commission IS NULL", lineID).
		Update("commission", amount).Error
}
