package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database described by dsn. A postgres:// URL selects the
// postgres driver; anything else is treated as a sqlite file path, which keeps
// local development serverless. Foreign-key enforcement is switched on for
// sqlite since the cascade rules depend on it.
func Connect(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		dialector = postgres.Open(dsn)
	} else {
		if dsn == "" {
			dsn = "todopro.db"
		}
		dialector = sqlite.Open(dsn + "?_pragma=foreign_keys(1)")
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// IsPostgres reports whether the open connection uses the postgres driver.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
