package database

import (
	"log"

	"github.com/studyroom/reservation-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	return open(postgres.Open(dsn))
}

func NewSQLiteDB(path string) *gorm.DB {
	return open(sqlite.Open(path))
}

func open(dialector gorm.Dialector) *gorm.DB {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Reservation{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	return db
}
