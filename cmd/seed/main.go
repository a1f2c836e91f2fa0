package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"salonbooking/internal/database"
	"salonbooking/internal/domain"
	"salonbooking/internal/repository"
)

// Seeds a development database with a branch worth of demo data: an open
// booking, a couple of discount codes and some retail stock.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "salon_dev.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	now := time.Now().UTC()

	promoRepo := repository.NewPromotionRepository(db)
	branchID := int64(1)
	hundred := int64(100)
	promos := []*domain.Promotion{
		{
			Code:         "summer20",
			Kind:         domain.DiscountPercentage,
			Value:        20,
			ApplicableTo: domain.ScopeAll,
			Policy:       domain.UsageRepeating,
			MaxUses:      &hundred,
			Active:       true,
			StartDate:    now.AddDate(0, -1, 0),
			EndDate:      now.AddDate(0, 2, 0),
		},
		{
			Code:         "welcome",
			BranchID:     &branchID,
			Kind:         domain.DiscountFixed,
			Value:        500,
			ApplicableTo: domain.ScopeServices,
			Policy:       domain.UsageOneTime,
			Active:       true,
			StartDate:    now.AddDate(0, -1, 0),
			EndDate:      now.AddDate(1, 0, 0),
		},
	}
	for _, p := range promos {
		if err := promoRepo.Create(ctx, p); err != nil {
			log.Fatalf("seed promotion %s: %v", p.Code, err)
		}
		log.Printf("seeded promotion id=%d code=%s", p.ID, p.Code)
	}

	stockRepo := repository.NewStockRepository(db)
	soon := now.AddDate(0, 1, 0)
	later := now.AddDate(0, 6, 0)
	batches := []*domain.StockBatch{
		{BranchID: 1, ProductID: 3, Usage: domain.StockRetail, Quantity: 8, ExpiresAt: &soon, ReceivedAt: now.AddDate(0, -2, 0)},
		{BranchID: 1, ProductID: 3, Usage: domain.StockRetail, Quantity: 50, ExpiresAt: &later, ReceivedAt: now.AddDate(0, -1, 0)},
		{BranchID: 1, ProductID: 7, Usage: domain.StockInternal, Quantity: 20, ReceivedAt: now},
	}
	for _, b := range batches {
		if err := stockRepo.CreateBatch(ctx, b); err != nil {
			log.Fatalf("seed batch product=%d: %v", b.ProductID, err)
		}
		log.Printf("seeded batch id=%d product=%d qty=%d", b.ID, b.ProductID, b.Quantity)
	}

	bookingRepo := repository.NewBookingRepository(db)
	clientID := int64(77)
	b := &domain.Booking{
		BranchID:    1,
		ClientID:    &clientID,
		Status:      domain.BookingPending,
		ScheduledAt: now.Add(24 * time.Hour),
		ServiceLines: []domain.ServiceLine{
			{ServiceID: 1, ServiceName: "Haircut", StylistID: 4, StylistName: "A. Kim", BasePrice: 600, AdjustedPrice: 600, ClientType: domain.ClientRegular},
		},
	}
	if err := bookingRepo.Create(ctx, b); err != nil {
		log.Fatalf("seed booking: %v", err)
	}
	log.Printf("seeded booking id=%d", b.ID)
}
