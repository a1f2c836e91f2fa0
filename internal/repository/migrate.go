package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates every table this package owns. Used on
// startup for local sqlite databases and by the seeder; production postgres
// schemas are managed the same way until a migration tool is warranted.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&bookingModel{},
		&serviceLineModel{},
		&productLineModel{},
		&promotionModel{},
		&redemptionModel{},
		&arrivalModel{},
		&stockBatchModel{},
	); err != nil {
		return err
	}

	// At most one non-terminal arrival per booking. The partial index holds
	// under concurrent check-ins where the service-level pre-check cannot;
	// walk-ins carry no booking_id and stay outside it.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_arrivals_active_booking " +
			"ON arrivals (booking_id) " +
			"WHERE booking_id IS NOT NULL AND status <> 'completed'",
	).Error
}
