package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"salonbooking/internal/config"
	"salonbooking/internal/database"
	"salonbooking/internal/middleware"
	"salonbooking/internal/modules/arrival"
	"salonbooking/internal/modules/booking"
	"salonbooking/internal/modules/inventory"
	"salonbooking/internal/modules/promotion"
	"salonbooking/internal/modules/settlement"
	jwtsvc "salonbooking/internal/pkg/jwt"
	"salonbooking/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	rates, err := config.LoadRateTable()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	promoRepo := repository.NewPromotionRepository(db)
	arrivalRepo := repository.NewArrivalRepository(db)
	stockRepo := repository.NewStockRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	promoService := promotion.NewService(promoRepo)
	promoHandler := promotion.NewHandler(promoService)

	inventoryService := inventory.NewService(stockRepo)
	inventoryHandler := inventory.NewHandler(inventoryService)

	bookingService := booking.NewService(bookingRepo, promoService, inventoryService, rates, log.Printf)
	bookingHandler := booking.NewHandler(bookingService)

	hub := arrival.NewHub()
	defer hub.Close()
	arrivalService := arrival.NewService(arrivalRepo, hub, log.Printf)
	arrivalHandler := arrival.NewHandler(arrivalService, hub, log.Printf)

	settlementService := settlement.NewService(bookingRepo, rates)
	settlementHandler := settlement.NewHandler(settlementService)

	r := gin.Default()
	r.Use(middleware.CORS(), middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// the live queue feed authenticates on its own terms
		arrivalHandler.RegisterFeedRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			arrivalHandler.RegisterRoutes(protected)
			settlementHandler.RegisterRoutes(protected)
			promoHandler.RegisterRoutes(protected)
			inventoryHandler.RegisterRoutes(protected)

			manager := protected.Group("/")
			manager.Use(middleware.ManagerOnly())
			{
				promoHandler.RegisterManagerRoutes(manager)
				inventoryHandler.RegisterManagerRoutes(manager)
			}
		}
	}

	addr := ":" + os.Getenv("PORT")
	if addr == ":" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
