package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Store persists the whole catalog as one snapshot. Every Save is a full overwrite;
// there is no locking, so two processes sharing a snapshot overwrite each other.
type Store interface {
	// Load returns ErrNoSnapshot when nothing has been saved yet.
	Load() (*Catalog, error)
	Save(c *Catalog) error
	Close() error
}

// Reserved account and album names created on first run.
const (
	AdminUsername = "admin"
	StockUsername = "stock"
	StockAlbum    = "stock"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// IsImageFile reports whether name has one of the supported image extensions.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// LoadOrInit loads the persisted catalog. When nothing is stored, or the snapshot cannot be
// read or fails validation, it seeds the default accounts and saves them. It never fails:
// a save error is logged and the seeded catalog is returned anyway.
func LoadOrInit(store Store, stockDir string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := store.Load()
	if err == nil {
		if err = c.Validate(); err == nil {
			logger.Debug("catalog loaded", zap.Int("users", len(c.Users)))
			return c
		}
	}
	if errors.Is(err, ErrNoSnapshot) {
		logger.Info("no catalog snapshot found, seeding defaults", zap.String("stock_dir", stockDir))
	} else {
		logger.Warn("discarding unreadable catalog snapshot", zap.Error(err))
	}

	c = Seed(stockDir, logger)
	if err := store.Save(c); err != nil {
		logger.Error("save seeded catalog", zap.Error(err))
	}
	return c
}

// Seed builds the default catalog: an administrator with no albums and a "stock" user
// whose single album holds the images found in stockDir.
func Seed(stockDir string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := New()

	admin := NewUser(AdminUsername)
	admin.Role = RoleAdministrator
	admin.Protected = true

	stock := NewUser(StockUsername)
	stock.Protected = true
	album := &Album{Name: StockAlbum}
	stock.Albums = append(stock.Albums, album)

	c.Users = append(c.Users, admin, stock)

	added, err := importStockDir(stock, album, stockDir, os.Stat)
	if err != nil {
		logger.Warn("scan stock directory", zap.String("dir", stockDir), zap.Error(err))
	}
	logger.Debug("stock album seeded", zap.Int("photos", added))
	return c
}

func importStockDir(u *User, a *Album, dir string, stat statFunc) (int, error) {
	if dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	added := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsImageFile(e.Name()) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, e.Name()))
		if err != nil {
			return added, err
		}
		if albumHasPath(u, a, abs) {
			continue
		}
		p, err := newPhoto(newPhotoID(), abs, stat)
		if err != nil {
			continue
		}
		u.Photos[p.ID] = p
		a.PhotoIDs = append(a.PhotoIDs, p.ID)
		added++
	}
	return added, nil
}
