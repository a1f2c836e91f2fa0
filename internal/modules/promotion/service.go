package promotion

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"salonbooking/internal/domain"
	"salonbooking/internal/repository"
)

type Service struct {
	promos PromotionRepository
}

func NewService(promos PromotionRepository) *Service {
	return &Service{promos: promos}
}

func (s *Service) CreatePromotion(ctx context.Context, req CreatePromotionRequest) (*domain.Promotion, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, ErrValidation
	}
	scope := domain.PromotionScope(req.ApplicableTo)
	if scope == domain.ScopeItems && len(req.ItemIDs) == 0 {
		return nil, ErrValidation
	}

	p := &domain.Promotion{
		Code:         NormalizeCode(req.Code),
		BranchID:     req.BranchID,
		Kind:         domain.DiscountKind(req.Kind),
		Value:        req.Value,
		ApplicableTo: scope,
		ItemIDs:      req.ItemIDs,
		Policy:       domain.UsagePolicy(req.Policy),
		MaxUses:      req.MaxUses,
		Active:       true,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if err := s.promos.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate runs the full code check chain: lookup (branch match beats global),
// active flag, validity window, then the usage policy against the client.
func (s *Service) Validate(ctx context.Context, code string, branchID int64, clientID *int64) (*domain.Promotion, error) {
	code = NormalizeCode(code)
	if code == "" || branchID <= 0 {
		return nil, ErrValidation
	}

	p, err := s.promos.FindByCode(ctx, code, branchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !p.Active {
		return nil, ErrInactive
	}
	now := time.Now().UTC()
	if now.Before(p.StartDate) {
		return nil, ErrNotYetValid
	}
	if now.After(p.EndDate) {
		return nil, ErrExpired
	}

	switch p.Policy {
	case domain.UsageOneTime:
		if clientID == nil {
			return nil, ErrValidation
		}
		used, err := s.promos.HasRedemption(ctx, p.ID, *clientID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, ErrAlreadyUsed
		}
	case domain.UsageRepeating:
		if p.MaxUses != nil && p.UsageCount >= *p.MaxUses {
			return nil, ErrLimitReached
		}
	}

	return p, nil
}

// TrackUsage records a redemption. One-time codes go into the redeemed-set
// with an idempotent insert; repeating codes bump the counter atomically so
// concurrent redemptions never under-count.
func (s *Service) TrackUsage(ctx context.Context, promotionID int64, clientID *int64) error {
	p, err := s.promos.GetByID(ctx, promotionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	switch p.Policy {
	case domain.UsageOneTime:
		if clientID == nil {
			return ErrValidation
		}
		return s.promos.AddRedemption(ctx, p.ID, *clientID)
	default:
		ok, err := s.promos.IncrementUsage(ctx, p.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLimitReached
		}
		return nil
	}
}

// NormalizeCode case-folds and trims a discount code before lookup.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// CalculateDiscount resolves the applicable subtotal for the promotion's
// scope and applies the discount kind. A fixed discount never exceeds the
// subtotal it discounts; the result is rounded to the currency's minor unit.
func CalculateDiscount(p *domain.Promotion, serviceLines []domain.ServiceLine, productLines []domain.ProductLine) float64 {
	var subtotal float64

	switch p.ApplicableTo {
	case domain.ScopeServices:
		for _, l := range serviceLines {
			subtotal += l.AdjustedPrice
		}
	case domain.ScopeProducts:
		for _, l := range productLines {
			subtotal += l.Total
		}
	case domain.ScopeItems:
		ids := make(map[int64]struct{}, len(p.ItemIDs))
		for _, id := range p.ItemIDs {
			ids[id] = struct{}{}
		}
		for _, l := range serviceLines {
			if _, ok := ids[l.ServiceID]; ok {
				subtotal += l.AdjustedPrice
			}
		}
		for _, l := range productLines {
			if _, ok := ids[l.ProductID]; ok {
				subtotal += l.Total
			}
		}
	default: // all
		for _, l := range serviceLines {
			subtotal += l.AdjustedPrice
		}
		for _, l := range productLines {
			subtotal += l.Total
		}
	}

	var discount float64
	switch p.Kind {
	case domain.DiscountPercentage:
		discount = subtotal * p.Value / 100
	case domain.DiscountFixed:
		discount = math.Min(p.Value, subtotal)
	}
	return math.Round(discount*100) / 100
}
