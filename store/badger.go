package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"photo-catalog/catalog"
)

var snapshotKey = []byte("catalog:snapshot")

// BadgerStore keeps the JSON snapshot as a single value in a Badger directory.
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

var _ catalog.Store = (*BadgerStore)(nil)

func NewBadgerStore(path string, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

func (s *BadgerStore) Load() (*catalog.Catalog, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, catalog.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return decode(data, formatJSON)
}

func (s *BadgerStore) Save(c *catalog.Catalog) error {
	data, err := encode(c, formatJSON)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	}); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.logger.Debug("snapshot written", zap.Int("bytes", len(data)))
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
