package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"salonbooking/internal/domain"
	"salonbooking/internal/pkg/validator"
	"salonbooking/internal/repository"

	"github.com/google/uuid"
)

type Service struct {
	bookings BookingRepository
	promos   PromotionValidator
	stock    StockDepleter
	rates    RateProvider
	logf     func(format string, args ...interface{})
}

func NewService(bookings BookingRepository, promos PromotionValidator, stock StockDepleter, rates RateProvider, logf func(string, ...interface{})) *Service {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Service{bookings: bookings, promos: promos, stock: stock, rates: rates, logf: logf}
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	lines := make([]domain.ServiceLine, 0, len(req.ServiceLines))
	assigned := false
	for _, in := range req.ServiceLines {
		l := in.toDomain()
		if errs := validator.Validate(l); errs != nil {
			return nil, ErrValidation
		}
		if l.StylistID > 0 {
			assigned = true
		}
		lines = append(lines, l)
	}
	if !assigned {
		return nil, ErrValidation
	}

	b := &domain.Booking{
		BranchID:     req.BranchID,
		ClientID:     req.ClientID,
		Status:       domain.BookingPending,
		ScheduledAt:  req.ScheduledAt,
		ServiceLines: lines,
	}
	if errs := validator.Validate(b); errs != nil {
		return nil, ErrValidation
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *Service) ListByBranch(ctx context.Context, branchID int64) ([]domain.Booking, error) {
	return s.bookings.GetByBranch(ctx, branchID)
}

func (s *Service) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingConfirmed)
}

func (s *Service) MarkNoShow(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingNoShow)
}

// transition runs the shared check-then-CAS flow: an illegal edge is the
// caller's mistake (ErrInvalidTransition), a legal edge that loses the write
// race is ErrConflict.
func (s *Service) transition(ctx context.Context, id int64, to domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}
	ok, err := s.bookings.UpdateStatusCAS(ctx, id, b.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.GetBooking(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	if reason == "" {
		return nil, ErrValidation
	}
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(domain.BookingCancelled) {
		return nil, ErrInvalidTransition
	}
	ok, err := s.bookings.CancelCAS(ctx, id, b.Status, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.GetBooking(ctx, id)
}

// StartService stores the settlement draft and moves the booking to
// in_service. A promotion code beats a manual discount: when present it is
// validated against the branch and client, and its kind, value, scope and
// item list are snapshotted onto the booking so a later code edit cannot
// change history.
func (s *Service) StartService(ctx context.Context, id int64, draft SettlementDraft) (*domain.Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(domain.BookingInService) {
		return nil, ErrInvalidTransition
	}
	if draft.TaxRate < 0 || draft.TaxRate >= 1 {
		return nil, ErrValidation
	}

	lines := make([]domain.ServiceLine, 0, len(draft.ServiceLines))
	for _, in := range draft.ServiceLines {
		l := in.toDomain()
		if errs := validator.Validate(l); errs != nil {
			return nil, ErrValidation
		}
		lines = append(lines, l)
	}
	products := make([]domain.ProductLine, 0, len(draft.ProductLines))
	for _, in := range draft.ProductLines {
		l := in.toDomain()
		if errs := validator.Validate(l); errs != nil {
			return nil, ErrValidation
		}
		products = append(products, l)
	}

	b.ServiceLines = lines
	b.ProductLines = products
	b.TaxRate = draft.TaxRate
	b.PromotionID = nil
	b.DiscountKind = ""
	b.DiscountValue = 0
	b.DiscountScope = ""
	b.DiscountItemIDs = nil

	if draft.PromotionCode != "" {
		p, err := s.promos.Validate(ctx, draft.PromotionCode, b.BranchID, b.ClientID)
		if err != nil {
			return nil, err
		}
		b.PromotionID = &p.ID
		b.DiscountKind = p.Kind
		b.DiscountValue = p.Value
		b.DiscountScope = p.ApplicableTo
		b.DiscountItemIDs = p.ItemIDs
	} else if draft.DiscountKind != "" {
		kind := domain.DiscountKind(draft.DiscountKind)
		if kind != domain.DiscountFixed && kind != domain.DiscountPercentage {
			return nil, ErrValidation
		}
		if draft.DiscountValue < 0 {
			return nil, ErrValidation
		}
		b.DiscountKind = kind
		b.DiscountValue = draft.DiscountValue
		b.DiscountScope = domain.ScopeAll
	}

	ok, err := s.bookings.StartServiceCAS(ctx, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.GetBooking(ctx, id)
}

// Complete finishes the booking and runs its side effects exactly once:
// commission snapshots, promotion usage tracking and stock depletion all
// belong to whichever caller wins the compare-and-set. Completing an already
// completed booking is a no-op that returns the stored result.
func (s *Service) Complete(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCompleted {
		return b, nil
	}
	if !b.Status.CanTransitionTo(domain.BookingCompleted) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	ok, err := s.bookings.CompleteCAS(ctx, id, newReceiptNumber(now), now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race. If the other caller completed it, the outcome the
		// user asked for exists; anything else is a genuine conflict.
		cur, err := s.GetBooking(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.Status == domain.BookingCompleted {
			return cur, nil
		}
		return nil, ErrConflict
	}

	s.snapshotCommissions(ctx, b)
	if b.PromotionID != nil {
		if err := s.promos.TrackUsage(ctx, *b.PromotionID, b.ClientID); err != nil {
			s.logf("level=warn msg=promotion usage tracking failed booking=%d promotion=%d err=%v", b.ID, *b.PromotionID, err)
		}
	}
	s.depleteStock(ctx, b)

	return s.GetBooking(ctx, id)
}

// snapshotCommissions writes the derived commission for every line that has
// no explicit one. The conditional update in the repository keeps stored
// values authoritative.
func (s *Service) snapshotCommissions(ctx context.Context, b *domain.Booking) {
	for _, l := range b.ServiceLines {
		if l.Commission != nil {
			continue
		}
		amount := math.Round(l.AdjustedPrice*s.rates.Rate(domain.LineService, l.ClientType)*100) / 100
		if err := s.bookings.SetServiceLineCommission(ctx, l.ID, amount); err != nil {
			s.logf("level=error msg=commission snapshot failed booking=%d line=%d err=%v", b.ID, l.ID, err)
		}
	}
}

// depleteStock draws down product quantities first-expired-first-out. A
// shortfall does not undo the completion; the booking stays completed and the
// gap is logged for reconciliation.
func (s *Service) depleteStock(ctx context.Context, b *domain.Booking) {
	for _, l := range b.ProductLines {
		err := s.stock.DepleteBatch(ctx, b.BranchID, l.ProductID, l.Quantity, domain.StockRetail)
		if err != nil {
			s.logf("level=warn msg=stock depletion short booking=%d product=%d qty=%d err=%v", b.ID, l.ProductID, l.Quantity, err)
		}
	}
}

func newReceiptNumber(t time.Time) string {
	return fmt.Sprintf("R-%s-%s", t.Format("20060102"), uuid.NewString()[:8])
}
