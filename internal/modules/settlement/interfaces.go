package settlement

import (
	"context"

	"salonbooking/internal/domain"
)

type BookingGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type RateProvider interface {
	Rate(lineType domain.LineType, clientType domain.ClientType) float64
}
