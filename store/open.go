package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"photo-catalog/catalog"
)

// Supported drivers for Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Open returns the store for driver rooted at path.
func Open(driver, path string, logger *zap.Logger) (catalog.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store %q: empty path", driver)
	}
	switch strings.ToLower(driver) {
	case DriverFile, "":
		return NewFileStore(path, logger), nil
	case DriverSQLite, "sqlite3":
		return NewSQLiteStore(path, logger)
	case DriverBadger:
		return NewBadgerStore(path, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q (want file, sqlite or badger)", driver)
	}
}
