package settlement

import (
	"context"
	"testing"

	"salonbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingGetter struct {
	mock.Mock
}

func (m *MockBookingGetter) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type fixedRates struct {
	service float64
	product float64
}

func (r fixedRates) Rate(lt domain.LineType, _ domain.ClientType) float64 {
	if lt == domain.LineProduct {
		return r.product
	}
	return r.service
}

func newTestService(bookings *MockBookingGetter) *Service {
	return NewService(bookings, fixedRates{service: 0.60, product: 0.10})
}

// 600 in services plus 400 in products with a 10% code over everything and
// 12% tax settles to 1008.00.
func TestService_Breakdown_PercentagePromotionWithTax(t *testing.T) {
	promoID := int64(5)
	b := &domain.Booking{
		ID:            1,
		Status:        domain.BookingCompleted,
		PromotionID:   &promoID,
		DiscountKind:  domain.DiscountPercentage,
		DiscountValue: 10,
		DiscountScope: domain.ScopeAll,
		TaxRate:       0.12,
		ServiceLines:  []domain.ServiceLine{{ID: 10, StylistID: 4, AdjustedPrice: 600}},
		ProductLines:  []domain.ProductLine{{ID: 20, UnitPrice: 200, Quantity: 2, Total: 400}},
	}

	mockBookings := new(MockBookingGetter)
	mockBookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	service := newTestService(mockBookings)

	got, err := service.Breakdown(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, 1000.0, got.Subtotal)
	assert.Equal(t, 100.0, got.Discount)
	assert.Equal(t, 900.0, got.Taxable)
	assert.Equal(t, 108.0, got.Tax)
	assert.Equal(t, 1008.0, got.Total)
}

// Kind, value, scope and item list all settle from the snapshot taken at
// draft time; the promotion row is never consulted, so edits or deletion of
// the code after service started cannot change the record.
func TestService_Breakdown_SettlesFromDraftSnapshot(t *testing.T) {
	promoID := int64(5)
	b := &domain.Booking{
		ID:              1,
		PromotionID:     &promoID,
		DiscountKind:    domain.DiscountPercentage,
		DiscountValue:   10,
		DiscountScope:   domain.ScopeItems,
		DiscountItemIDs: []int64{1},
		ServiceLines: []domain.ServiceLine{
			{ID: 10, ServiceID: 1, AdjustedPrice: 600},
			{ID: 11, ServiceID: 2, AdjustedPrice: 400},
		},
	}

	mockBookings := new(MockBookingGetter)
	mockBookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	service := newTestService(mockBookings)

	got, err := service.Breakdown(context.Background(), 1)

	assert.NoError(t, err)
	// 10% of the 600 line only; the 400 line is outside the snapshotted scope
	assert.Equal(t, 60.0, got.Discount)
}

func TestService_Breakdown_ManualFixedDiscountCapped(t *testing.T) {
	b := &domain.Booking{
		ID:            1,
		DiscountKind:  domain.DiscountFixed,
		DiscountValue: 500,
		ServiceLines:  []domain.ServiceLine{{ID: 10, AdjustedPrice: 300}},
	}

	mockBookings := new(MockBookingGetter)
	mockBookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	service := newTestService(mockBookings)

	got, err := service.Breakdown(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, 300.0, got.Discount)
	assert.Equal(t, 0.0, got.Total)
}

func TestService_Breakdown_CommissionSources(t *testing.T) {
	stored := 123.45
	b := &domain.Booking{
		ID:     1,
		Status: domain.BookingCompleted,
		ServiceLines: []domain.ServiceLine{
			{ID: 10, StylistID: 4, AdjustedPrice: 600, Commission: &stored},
			{ID: 11, StylistID: 5, AdjustedPrice: 200},
		},
		ProductLines: []domain.ProductLine{{ID: 20, Total: 400}},
	}

	mockBookings := new(MockBookingGetter)
	mockBookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	service := newTestService(mockBookings)

	got, err := service.Breakdown(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, got.Commissions, 3)
	assert.Equal(t, 123.45, got.Commissions[0].Amount)
	assert.Equal(t, "stored", got.Commissions[0].Source)
	assert.Equal(t, 120.0, got.Commissions[1].Amount) // 200 * 0.60
	assert.Equal(t, "derived", got.Commissions[1].Source)
	assert.Equal(t, 40.0, got.Commissions[2].Amount) // 400 * 0.10
	assert.Equal(t, "derived", got.Commissions[2].Source)
}

func TestService_Breakdown_NoDiscountNoTax(t *testing.T) {
	b := &domain.Booking{
		ID:           1,
		ServiceLines: []domain.ServiceLine{{ID: 10, AdjustedPrice: 250.50}},
	}

	mockBookings := new(MockBookingGetter)
	mockBookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

	service := newTestService(mockBookings)

	got, err := service.Breakdown(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, 250.50, got.Subtotal)
	assert.Equal(t, 0.0, got.Discount)
	assert.Equal(t, 250.50, got.Total)
}
