package database

import (
	"log"

	"github.com/nthoangDev/event-management/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Surfaces unique violations as gorm.ErrDuplicatedKey so services can
		// react to the redemption-code and pending-payment indexes.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Event{}, &models.Ticket{}, &models.Payment{}, &models.Notification{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: at most one pending payment per ticket. The
	// createIntent pre-check alone has a race window; this closes it.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_pending
		ON payments (ticket_id)
		WHERE status = 'pending'
	`)

	return db
}
