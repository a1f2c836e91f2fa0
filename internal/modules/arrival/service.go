package arrival

import (
	"context"
	"errors"
	"time"

	"salonbooking/internal/domain"
	"salonbooking/internal/repository"
)

type Service struct {
	arrivals ArrivalRepository
	hub      QueueBroadcaster
	logf     func(format string, args ...interface{})
}

func NewService(arrivals ArrivalRepository, hub QueueBroadcaster, logf func(string, ...interface{})) *Service {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Service{arrivals: arrivals, hub: hub, logf: logf}
}

// CheckIn registers a client at the branch. With a booking reference at most
// one active arrival may exist per booking; walk-ins check in without one.
// The pre-check rejects the common case early, the storage uniqueness guard
// settles concurrent check-ins that both pass it.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (*domain.Arrival, error) {
	if req.BranchID <= 0 || req.ClientName == "" {
		return nil, ErrValidation
	}
	if req.BookingID != nil {
		active, err := s.arrivals.HasActiveForBooking(ctx, *req.BookingID)
		if err != nil {
			return nil, err
		}
		if active {
			return nil, ErrAlreadyCheckedIn
		}
	}

	a := &domain.Arrival{
		BranchID:   req.BranchID,
		BookingID:  req.BookingID,
		ClientName: req.ClientName,
		Status:     domain.ArrivalArrived,
		ArrivedAt:  time.Now().UTC(),
	}
	if err := s.arrivals.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	s.publish(ctx, req.BranchID)
	return a, nil
}

func (s *Service) BeginService(ctx context.Context, id int64) (*domain.Arrival, error) {
	a, err := s.getArrival(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.arrivals.BeginServiceCAS(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	s.publish(ctx, a.BranchID)
	return s.getArrival(ctx, id)
}

func (s *Service) Finish(ctx context.Context, id int64) (*domain.Arrival, error) {
	a, err := s.getArrival(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.arrivals.FinishCAS(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	s.publish(ctx, a.BranchID)
	return s.getArrival(ctx, id)
}

// Queue builds the branch's live queue snapshot. Positions and wait times are
// derived at read time from arrival order.
func (s *Service) Queue(ctx context.Context, branchID int64) (QueueSnapshot, error) {
	list, err := s.arrivals.ListQueue(ctx, branchID)
	if err != nil {
		return QueueSnapshot{}, err
	}
	return buildSnapshot(branchID, list, time.Now().UTC()), nil
}

func (s *Service) getArrival(ctx context.Context, id int64) (*domain.Arrival, error) {
	a, err := s.arrivals.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

// publish pushes a fresh snapshot to the branch's watchers. Feed delivery is
// best effort; queue state lives in storage, not in the hub.
func (s *Service) publish(ctx context.Context, branchID int64) {
	snap, err := s.Queue(ctx, branchID)
	if err != nil {
		s.logf("level=error msg=queue snapshot failed branch=%d err=%v", branchID, err)
		return
	}
	s.hub.Broadcast(branchID, snap)
}

func buildSnapshot(branchID int64, list []domain.Arrival, now time.Time) QueueSnapshot {
	entries := make([]QueueEntry, 0, len(list))
	for i, a := range list {
		waiting := int64(now.Sub(a.ArrivedAt).Seconds())
		if a.StartedAt != nil {
			waiting = int64(a.StartedAt.Sub(a.ArrivedAt).Seconds())
		}
		if waiting < 0 {
			waiting = 0
		}
		entries = append(entries, QueueEntry{
			ID:             a.ID,
			BookingID:      a.BookingID,
			ClientName:     a.ClientName,
			Status:         a.Status,
			Position:       i + 1,
			ArrivedAt:      a.ArrivedAt,
			WaitingSeconds: waiting,
		})
	}
	return QueueSnapshot{BranchID: branchID, Entries: entries, GeneratedAt: now}
}
