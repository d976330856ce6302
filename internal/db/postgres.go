package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a DB connection and returns *gorm.DB
func Connect(dsn string) (*gorm.DB, error) {
	log.Println("Connecting to database...")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	// Scheduler and request handlers share this pool.
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)

	log.Println("Database connected")
	return db, nil
}

// Migrate runs AutoMigrate for the given models when enabled (the value of
// the MIGRATE_ON_START config knob).
func Migrate(db *gorm.DB, enabled bool, models ...interface{}) error {
	if !enabled {
		log.Println("Skipping migrations (MIGRATE_ON_START != true)")
		return nil
	}

	log.Println("Running migrations...")
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	log.Println("Migrations completed")
	return nil
}
