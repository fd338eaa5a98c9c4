package database

import (
	"log"
	"strings"

	"docvault/internal/domain"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// Pure-Go sqlite driver; registers itself as "sqlite" so local and test
	// databases work without CGO.
	_ "modernc.org/sqlite"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
	if err != nil {
		return nil, err
	}

	// SQLite is single-writer; one pooled connection also keeps :memory:
	// databases stable across the whole test run.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate keeps the schema in sync with the domain models. Join tables
// (document_tags) are created implicitly by the many2many declaration.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Department{},
		&domain.User{},
		&domain.Document{},
		&domain.DocumentVersion{},
		&domain.Tag{},
		&domain.Permission{},
	)
}
