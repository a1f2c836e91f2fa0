package arrival

import (
	"context"
	"time"

	"salonbooking/internal/domain"
)

type ArrivalRepository interface {
	Create(ctx context.Context, a *domain.Arrival) error
	GetByID(ctx context.Context, id int64) (*domain.Arrival, error)
	HasActiveForBooking(ctx context.Context, bookingID int64) (bool, error)
	BeginServiceCAS(ctx context.Context, id int64, startedAt time.Time) (bool, error)
	FinishCAS(ctx context.Context, id int64, finishedAt time.Time) (bool, error)
	ListQueue(ctx context.Context, branchID int64) ([]domain.Arrival, error)
}

// QueueBroadcaster pushes a fresh queue snapshot to everyone watching the
// branch. Implemented by Hub.
type QueueBroadcaster interface {
	Broadcast(branchID int64, snapshot QueueSnapshot)
}
