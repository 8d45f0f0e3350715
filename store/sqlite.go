package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"photo-catalog/catalog"
	"photo-catalog/store/migrations"
)

// SQLiteStore keeps the catalog in normalized tables. Save still replaces the whole
// snapshot, inside one transaction.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ catalog.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath and applies pending migrations.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("sqlite store ready", zap.String("path", dbPath))
	return &SQLiteStore{db: db, logger: logger}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Save(c *catalog.Catalog) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"album_photos", "albums", "tags", "photos", "users", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key, value) VALUES ('version', ?)`,
		strconv.Itoa(catalog.SnapshotVersion)); err != nil {
		return err
	}

	for i, u := range c.Users {
		if err := saveUser(tx, i, u); err != nil {
			return fmt.Errorf("save user %s: %w", u.Username, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("snapshot written", zap.Int("users", len(c.Users)))
	return nil
}

func saveUser(tx *sql.Tx, pos int, u *catalog.User) error {
	if _, err := tx.Exec(`INSERT INTO users(username, position, role, password_hash, protected) VALUES (?, ?, ?, ?, ?)`,
		u.Username, pos, string(u.Role), u.PasswordHash, u.Protected); err != nil {
		return err
	}
	for _, p := range u.Photos {
		if _, err := tx.Exec(`INSERT INTO photos(username, id, path, caption, capture_date) VALUES (?, ?, ?, ?, ?)`,
			u.Username, string(p.ID), p.Path, p.Caption, p.CaptureDate.UnixNano()); err != nil {
			return err
		}
		for j, t := range p.Tags {
			if _, err := tx.Exec(`INSERT INTO tags(username, photo_id, position, name, value) VALUES (?, ?, ?, ?, ?)`,
				u.Username, string(p.ID), j, t.Name, t.Value); err != nil {
				return err
			}
		}
	}
	for i, a := range u.Albums {
		if _, err := tx.Exec(`INSERT INTO albums(username, position, name) VALUES (?, ?, ?)`,
			u.Username, i, a.Name); err != nil {
			return err
		}
		for j, id := range a.PhotoIDs {
			if _, err := tx.Exec(`INSERT INTO album_photos(username, album_position, position, photo_id) VALUES (?, ?, ?, ?)`,
				u.Username, i, j, string(id)); err != nil {
				return fmt.Errorf("album %s: %w", a.Name, err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) Load() (*catalog.Catalog, error) {
	var version string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	v, err := strconv.Atoi(version)
	if err != nil || v > catalog.SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %q", catalog.ErrCorruptSnapshot, version)
	}

	c := catalog.New()
	users := make(map[string]*catalog.User)
	err = eachRow(s.db, `SELECT username, role, password_hash, protected FROM users ORDER BY position`,
		func(rows *sql.Rows) error {
			u := catalog.NewUser("")
			var role string
			if err := rows.Scan(&u.Username, &role, &u.PasswordHash, &u.Protected); err != nil {
				return err
			}
			u.Role = catalog.Role(role)
			users[u.Username] = u
			c.Users = append(c.Users, u)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	if err := loadPhotos(s.db, users); err != nil {
		return nil, err
	}
	if err := loadAlbums(s.db, users); err != nil {
		return nil, err
	}
	return c, nil
}

func loadPhotos(db *sql.DB, users map[string]*catalog.User) error {
	err := eachRow(db, `SELECT username, id, path, caption, capture_date FROM photos`,
		func(rows *sql.Rows) error {
			var (
				username string
				nanos    int64
				p        catalog.Photo
			)
			if err := rows.Scan(&username, &p.ID, &p.Path, &p.Caption, &nanos); err != nil {
				return err
			}
			p.CaptureDate = time.Unix(0, nanos).UTC()
			if u, ok := users[username]; ok {
				u.Photos[p.ID] = &p
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("load photos: %w", err)
	}

	err = eachRow(db, `SELECT username, photo_id, name, value FROM tags ORDER BY username, photo_id, position`,
		func(rows *sql.Rows) error {
			var (
				username string
				id       catalog.PhotoID
				t        catalog.Tag
			)
			if err := rows.Scan(&username, &id, &t.Name, &t.Value); err != nil {
				return err
			}
			if u, ok := users[username]; ok {
				if p, ok := u.Photos[id]; ok {
					p.Tags = append(p.Tags, t)
				}
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	return nil
}

func loadAlbums(db *sql.DB, users map[string]*catalog.User) error {
	type albumKey struct {
		user string
		pos  int
	}
	albums := make(map[albumKey]*catalog.Album)

	err := eachRow(db, `SELECT username, position, name FROM albums ORDER BY username, position`,
		func(rows *sql.Rows) error {
			var (
				k    albumKey
				name string
			)
			if err := rows.Scan(&k.user, &k.pos, &name); err != nil {
				return err
			}
			u, ok := users[k.user]
			if !ok {
				return nil
			}
			a := &catalog.Album{Name: name}
			albums[k] = a
			u.Albums = append(u.Albums, a)
			return nil
		})
	if err != nil {
		return fmt.Errorf("load albums: %w", err)
	}

	err = eachRow(db, `SELECT username, album_position, photo_id FROM album_photos ORDER BY username, album_position, position`,
		func(rows *sql.Rows) error {
			var (
				k  albumKey
				id catalog.PhotoID
			)
			if err := rows.Scan(&k.user, &k.pos, &id); err != nil {
				return err
			}
			if a, ok := albums[k]; ok {
				a.PhotoIDs = append(a.PhotoIDs, id)
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("load album photos: %w", err)
	}
	return nil
}

func eachRow(db *sql.DB, query string, fn func(*sql.Rows) error) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
