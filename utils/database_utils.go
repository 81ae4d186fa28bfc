// database_utils should be the canonical place to put shared DB utils.
// It should not include:
// 1. Any util that doesn't manipulate DB
// 2. Any util that contains business logic
package utils

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/schoolfeed/schoolfeed/model"
)

// GetDBConnection gets a connection to the database specified by env.
func GetDBConnection() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASS"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	return getDB(dsn)
}

func getDB(connectionString string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// DatabaseSetupAndMigration migrates every table the feed depends on.
// Join tables (subscriptions, feed memberships) are plain models with
// composite primary keys, so a single AutoMigrate covers everything.
func DatabaseSetupAndMigration(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Account{},
		&model.Page{},
		&model.NewsItem{},
		&model.Subscription{},
		&model.FeedMembership{},
	)
}
