package settlement

import (
	"context"
	"errors"
	"math"

	"salonbooking/internal/domain"
	"salonbooking/internal/modules/promotion"
	"salonbooking/internal/repository"
)

type Service struct {
	bookings BookingGetter
	rates    RateProvider
}

func NewService(bookings BookingGetter, rates RateProvider) *Service {
	return &Service{bookings: bookings, rates: rates}
}

// Breakdown settles a booking from its stored lines, discount snapshot and
// tax rate. It works for any status, so reception can preview totals before
// completion; only commissions stamped at completion come back as "stored".
func (s *Service) Breakdown(ctx context.Context, bookingID int64) (*Breakdown, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var serviceSubtotal, productSubtotal float64
	for _, l := range b.ServiceLines {
		serviceSubtotal += l.AdjustedPrice
	}
	for _, l := range b.ProductLines {
		productSubtotal += l.Total
	}
	subtotal := round2(serviceSubtotal + productSubtotal)

	discount := discountFromSnapshot(b)
	if discount > subtotal {
		discount = subtotal
	}

	taxable := round2(subtotal - discount)
	tax := round2(taxable * b.TaxRate)

	out := &Breakdown{
		BookingID:       b.ID,
		Status:          b.Status,
		ServiceSubtotal: round2(serviceSubtotal),
		ProductSubtotal: round2(productSubtotal),
		Subtotal:        subtotal,
		Discount:        discount,
		Taxable:         taxable,
		TaxRate:         b.TaxRate,
		Tax:             tax,
		Total:           round2(taxable + tax),
		Commissions:     s.commissions(b),
		ReceiptNumber:   b.ReceiptNumber,
	}
	return out, nil
}

// discountFromSnapshot settles the discount entirely from the kind, value,
// scope and item list snapshotted at draft time. The promotion row is never
// re-read, so editing a code after service started cannot change the record.
func discountFromSnapshot(b *domain.Booking) float64 {
	if b.DiscountKind == "" {
		return 0
	}
	scope := b.DiscountScope
	if scope == "" {
		scope = domain.ScopeAll
	}
	p := &domain.Promotion{
		Kind:         b.DiscountKind,
		Value:        b.DiscountValue,
		ApplicableTo: scope,
		ItemIDs:      b.DiscountItemIDs,
	}
	return promotion.CalculateDiscount(p, b.ServiceLines, b.ProductLines)
}

func (s *Service) commissions(b *domain.Booking) []LineCommission {
	out := make([]LineCommission, 0, len(b.ServiceLines)+len(b.ProductLines))
	for _, l := range b.ServiceLines {
		c := LineCommission{
			LineID:    l.ID,
			LineType:  domain.LineService,
			StylistID: l.StylistID,
		}
		if l.Commission != nil {
			c.Amount = *l.Commission
			c.Source = "stored"
		} else {
			c.Amount = round2(l.AdjustedPrice * s.rates.Rate(domain.LineService, l.ClientType))
			c.Source = "derived"
		}
		out = append(out, c)
	}
	for _, l := range b.ProductLines {
		out = append(out, LineCommission{
			LineID:   l.ID,
			LineType: domain.LineProduct,
			Amount:   round2(l.Total * s.rates.Rate(domain.LineProduct, domain.ClientRegular)),
			Source:   "derived",
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
