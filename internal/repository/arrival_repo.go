package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"salonbooking/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrDuplicate = errors.New("duplicate record")

type ArrivalRepository struct {
	db *gorm.DB
}

func NewArrivalRepository(db *gorm.DB) *ArrivalRepository {
	return &ArrivalRepository{db: db}
}

type arrivalModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	BranchID   int64      `gorm:"column:branch_id;index"`
	BookingID  *int64     `gorm:"column:booking_id;index"`
	ClientName string     `gorm:"column:client_name"`
	Status     string     `gorm:"column:status;index"`
	ArrivedAt  time.Time  `gorm:"column:arrived_at"`
	StartedAt  *time.Time `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

func (arrivalModel) TableName() string { return "arrivals" }

func toDomainArrival(m arrivalModel) *domain.Arrival {
	return &domain.Arrival{
		ID:         m.ID,
		BranchID:   m.BranchID,
		BookingID:  m.BookingID,
		ClientName: m.ClientName,
		Status:     domain.ArrivalStatus(m.Status),
		ArrivedAt:  m.ArrivedAt,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
}

// Create inserts the arrival. The active-booking unique index turns a
// concurrent double check-in into ErrDuplicate instead of a second row.
func (r *ArrivalRepository) Create(ctx context.Context, a *domain.Arrival) error {
	m := arrivalModel{
		BranchID:   a.BranchID,
		BookingID:  a.BookingID,
		ClientName: a.ClientName,
		Status:     string(a.Status),
		ArrivedAt:  a.ArrivedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	a.ID = m.ID
	return nil
}

// isUniqueViolation matches the unique-index error of both supported drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *ArrivalRepository) GetByID(ctx context.Context, id int64) (*domain.Arrival, error) {
	var m arrivalModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainArrival(m), nil
}

// HasActiveForBooking is the service's pre-check for a friendly rejection;
// the active-booking unique index is the guard that holds under concurrency.
func (r *ArrivalRepository) HasActiveForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&arrivalModel{}).
		Where("booking_id = ? AND status <> ?", bookingID, string(domain.ArrivalCompleted)).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// BeginServiceCAS moves arrived->in_service and stamps the service start.
func (r *ArrivalRepository) BeginServiceCAS(ctx context.Context, id int64, startedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&arrivalModel{}).
		Where("id = ? AND status = ?", id, string(domain.ArrivalArrived)).
		Updates(map[string]interface{}{
			"status":     string(domain.ArrivalInService),
			"started_at": startedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// FinishCAS moves in_service->completed.
func (r *ArrivalRepository) FinishCAS(ctx context.Context, id int64, finishedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&arrivalModel{}).
		Where("id = ? AND status = ?", id, string(domain.ArrivalInService)).
		Updates(map[string]interface{}{
			"status":      string(domain.ArrivalCompleted),
			"finished_at": finishedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// ListQueue returns the branch's non-completed arrivals ascending by arrival
// time. Wait times are computed by the caller on read, never stored.
func (r *ArrivalRepository) ListQueue(ctx context.Context, branchID int64) ([]domain.Arrival, error) {
	var rows []arrivalModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND status <> ?", branchID, string(domain.ArrivalCompleted)).
		Order("arrived_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Arrival, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainArrival(m))
	}
	return out, nil
}
