package database

import (
	"gorm.io/gorm"

	"github.com/cservice/cservice-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.ChatHistory{},
	)
	if err != nil {
		return err
	}

	// Older rows may predate the not-null details column
	if db.Migrator().HasTable(&models.Booking{}) {
		if err := db.Exec(`UPDATE bookings SET details = '' WHERE details IS NULL`).Error; err != nil {
			return err
		}
		if err := db.Exec(`ALTER TABLE bookings ALTER COLUMN details SET DEFAULT ''`).Error; err != nil {
			return err
		}
		if err := db.Exec(`ALTER TABLE bookings ALTER COLUMN details SET NOT NULL`).Error; err != nil {
			return err
		}

		// At most one active booking per slot. The transaction-level locking
		// in the store does the arbitration; this index is the hard stop
		// underneath it.
		if err := db.Exec(`
			CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_booking_slot
			ON bookings (scheduled_for)
			WHERE status IN ('pending', 'confirmed') AND deleted_at IS NULL`).Error; err != nil {
			return err
		}

		// Status values are a closed set
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		if err := db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed'))`).Error; err != nil {
			return err
		}
	}

	return nil
}
