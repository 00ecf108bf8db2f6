package storage

import (
	"log"
	"os"

	"voyages-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitializeDB connects to Postgres using DB_CONNECTION_STRING and runs the
// schema migrations. The returned handle is passed to every handler; there is
// no package-level singleton.
func InitializeDB() *gorm.DB {
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey so handlers can map them to 409.
	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if dbError != nil {
		log.Panic("error connecting to db: " + dbError.Error())
	}

	if err := Migrate(db); err != nil {
		log.Panic("error running migrations: " + err.Error())
	}

	return db
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Destination{},
		&models.Reservation{},
	)
}
