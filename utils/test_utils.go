package utils

import (
	"log"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/schoolfeed/schoolfeed/model"
)

// CreateTempDB creates a fresh in-memory database for one test case and
// migrates the full schema into it. The database lives for exactly as
// long as the test; the connection is closed in t.Cleanup.
//
// The connection pool is pinned to a single connection because every
// sqlite ":memory:" connection opens a brand new database.
func CreateTempDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalln("cannot open temp DB: ", err)
	}

	conn, err := db.DB()
	if err != nil {
		log.Fatalln("cannot get the underlying SQL DB: ", err)
	}
	conn.SetMaxOpenConns(1)

	if err := DatabaseSetupAndMigration(db); err != nil {
		log.Fatalln("fail to migrate temp DB: ", err)
	}

	t.Cleanup(func() {
		conn.Close()
	})

	return db
}

// DeleteAccountByHandle hard-deletes an account. Test support only,
// mirrors nothing in the API surface; production deletions don't exist.
func DeleteAccountByHandle(db *gorm.DB, handle string) error {
	return db.Where("handle = ?", handle).Delete(&model.Account{}).Error
}
