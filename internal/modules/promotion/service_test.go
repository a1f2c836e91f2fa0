package promotion

import (
	"context"
	"testing"
	"time"

	"salonbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) Create(ctx context.Context, p *domain.Promotion) error {
	args := m.Called(ctx, p)
	if p != nil {
		p.ID = 555 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockPromotionRepository) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) FindByCode(ctx context.Context, code string, branchID int64) (*domain.Promotion, error) {
	args := m.Called(ctx, code, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) HasRedemption(ctx context.Context, promotionID, clientID int64) (bool, error) {
	args := m.Called(ctx, promotionID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPromotionRepository) AddRedemption(ctx context.Context, promotionID, clientID int64) error {
	args := m.Called(ctx, promotionID, clientID)
	return args.Error(0)
}

func (m *MockPromotionRepository) IncrementUsage(ctx context.Context, promotionID int64) (bool, error) {
	args := m.Called(ctx, promotionID)
	return args.Bool(0), args.Error(1)
}

func activePromo(policy domain.UsagePolicy) *domain.Promotion {
	now := time.Now().UTC()
	return &domain.Promotion{
		ID:           5,
		Code:         "summer20",
		Kind:         domain.DiscountPercentage,
		Value:        20,
		ApplicableTo: domain.ScopeAll,
		Policy:       policy,
		Active:       true,
		StartDate:    now.Add(-24 * time.Hour),
		EndDate:      now.Add(24 * time.Hour),
	}
}

func TestService_Validate_Success(t *testing.T) {
	mockRepo := new(MockPromotionRepository)
	mockRepo.On("FindByCode", mock.Anything, "summer20", int64(1)).Return(activePromo(domain.UsageRepeating), nil)

	service := NewService(mockRepo)

	p, err := service.Validate(context.Background(), "  SUMMER20 ", 1, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
}

func TestService_Validate_Inactive(t *testing.T) {
	p := activePromo(domain.UsageRepeating)
	p.Active = false

	mockRepo := new(MockPromotionRepository)
	mockRepo.On("FindByCode", mock.Anything, "summer20", int64(1)).Return(p, nil)

	service := NewService(mockRepo)

	_, err := service.Validate(context.Background(), "summer20", 1, nil)
	assert.ErrorIs(t, err, ErrInactive)
}

func TestService_Validate_NotYetValid(t *testing.T) {
	p := activePromo(domain.UsageRepeating)
	p.StartDate = time.Now().UTC().Add(24 * time.Hour)

	mockRepo := new(MockPromotionRepository)
	mockRepo.On("FindByCode", mock.Anything, "summer20", int64(1)).Return(p, nil)

	service := NewService(mockRepo)

	_, err := service.Validate(context.Background(), "summer20", 1, nil)
	assert.ErrorIs(t, err, ErrNotYetValid)
}

func TestService_Validate_Expired(t *testing.T) {
	p := activePromo(domain.UsageRepeating)
	p.EndDate = time.Now().UTC().Add(-time.Hour)

	mockRepo := new(MockPromotionRepository)
	mockRepo.On("FindByCode", mock.Anything, "summer20", int64(1)).Return(p, nil)

	service := NewService(mockRepo)

	_, err := service.Validate(context.Background(), "summer20", 1, nil)
	assert.ErrorIs(t, err, ErrExpired)
}

// A one-time code already redeemed by this client is rejected; the same code
// is still fine for a different client.
func TestService_Validate_OneTimeAlreadyUsed(t *testing.T) {
	p := activePromo(domain.UsageOneTime)

	mockRepo := new(MockPromotionRepository)
	mockRepo.On("FindByCode", mock.Anything, "summer20", int64(1)).Return(p, nil)
	mockRepo.On("HasRedemption", mock.Anything, int64(5), int64(77)).Return(true, nil)
	mockRepo.On("HasRedemption", mock.Anything, int64(5), int64(88)).Return(false, nil)

	service := NewService(mockRepo)

	usedBy := int64(77)
	_, err := service.Validate(context.Background(), "summer20", 1, &usedBy)
	assert.ErrorIs(t, err, ErrAlreadyUsed)

	freshClient := int64(88)
	got, err := service.Validate(context.Background(), "summer20", 1, &freshClient)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}

func TestService_Validate_OneTimeNeedsClient(t *testing.T) {
	p := activePromo(domain.UsageOneTime)

	mockRepo := new(MockPromotionRepository)
	mockRepo.On("FindByCode", mock.Anything, "summer20", int64(1)).Return(p, nil)

	service := NewService(mockRepo)

	_, err := service.Validate(context.Background(), "summer20", 1, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Validate_RepeatingLimitReached(t *testing.T) {
	p := activePromo(domain.UsageRepeating)
	limit := int64(100)
	p.MaxUses = &limit
	p.UsageCount = 100

	mockRepo := new(MockPromotionRepository)
	mockRepo.On("FindByCode", mock.Anything, "summer20", int64(1)).Return(p, nil)

	service := NewService(mockRepo)

	_, err := service.Validate(context.Background(), "summer20", 1, nil)
	assert.ErrorIs(t, err, ErrLimitReached)
}

func TestService_TrackUsage_OneTime(t *testing.T) {
	mockRepo := new(MockPromotionRepository)
	mockRepo.On("GetByID", mock.Anything, int64(5)).Return(activePromo(domain.UsageOneTime), nil)
	mockRepo.On("AddRedemption", mock.Anything, int64(5), int64(77)).Return(nil)

	service := NewService(mockRepo)

	clientID := int64(77)
	err := service.TrackUsage(context.Background(), 5, &clientID)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestService_TrackUsage_RepeatingAtLimit(t *testing.T) {
	mockRepo := new(MockPromotionRepository)
	mockRepo.On("GetByID", mock.Anything, int64(5)).Return(activePromo(domain.UsageRepeating), nil)
	mockRepo.On("IncrementUsage", mock.Anything, int64(5)).Return(false, nil)

	service := NewService(mockRepo)

	err := service.TrackUsage(context.Background(), 5, nil)
	assert.ErrorIs(t, err, ErrLimitReached)
}

func TestService_CreatePromotion_RejectsInvertedWindow(t *testing.T) {
	service := NewService(new(MockPromotionRepository))

	_, err := service.CreatePromotion(context.Background(), CreatePromotionRequest{
		Code:         "x",
		Kind:         "fixed",
		Value:        10,
		ApplicableTo: "all",
		Policy:       "repeating",
		StartDate:    time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

// Percentage over everything: 20% of 1000.00 is 200.00.
func TestCalculateDiscount_PercentageAll(t *testing.T) {
	p := &domain.Promotion{Kind: domain.DiscountPercentage, Value: 20, ApplicableTo: domain.ScopeAll}

	got := CalculateDiscount(p,
		[]domain.ServiceLine{{AdjustedPrice: 600}},
		[]domain.ProductLine{{Total: 400}},
	)
	assert.Equal(t, 200.0, got)
}

// A fixed discount is capped at the subtotal of the items it applies to.
func TestCalculateDiscount_FixedCappedByScope(t *testing.T) {
	p := &domain.Promotion{
		Kind:         domain.DiscountFixed,
		Value:        500,
		ApplicableTo: domain.ScopeItems,
		ItemIDs:      []int64{2, 9},
	}

	got := CalculateDiscount(p,
		[]domain.ServiceLine{
			{ServiceID: 2, AdjustedPrice: 200},
			{ServiceID: 3, AdjustedPrice: 900}, // out of scope
		},
		[]domain.ProductLine{
			{ProductID: 9, Total: 100},
			{ProductID: 1, Total: 250}, // out of scope
		},
	)
	assert.Equal(t, 300.0, got)
}

func TestCalculateDiscount_ServicesOnly(t *testing.T) {
	p := &domain.Promotion{Kind: domain.DiscountPercentage, Value: 50, ApplicableTo: domain.ScopeServices}

	got := CalculateDiscount(p,
		[]domain.ServiceLine{{AdjustedPrice: 333.33}},
		[]domain.ProductLine{{Total: 1000}},
	)
	assert.Equal(t, 166.67, got)
}
