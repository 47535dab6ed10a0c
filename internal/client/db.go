package client

import (
	"fmt"
	"time"

	"subscription-service/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitMysqlClient opens the database and provisions the schema.
// TranslateError is required: duplicate-key violations must surface as
// gorm.ErrDuplicatedKey so the ledgers can treat them as idempotent replays.
func InitMysqlClient(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Subscription{},
		&model.SubscriptionPeriod{},
		&model.WebhookEvent{},
	)
}
