// Package badger provides a persistent store.Store implementation backed by
// BadgerDB.
//
// It is the production backend: entries survive restarts and crashes
// (WAL-based recovery), origins are isolated by key layout (see keys.go),
// and prefix listings are single ordered iterations. See keys.go for the
// database schema.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ShipFail/promptware-sub001/pkg/store"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// Options configures a BadgerStore.
type Options struct {
	// Path is the directory holding the database files. Required unless
	// InMemory is set.
	Path string

	// InMemory runs Badger without files; useful for tests that want the
	// production code path without a TempDir.
	InMemory bool

	// SyncWrites forces an fsync on every commit. Slower, but no committed
	// write can be lost to a crash.
	SyncWrites bool

	// Logger receives Badger's own messages at debug level. Optional.
	Logger *slog.Logger
}

// BadgerStore implements store.Store on BadgerDB.
//
// Badger transactions provide the atomic-overwrite guarantee of the Store
// contract directly; no additional locking is needed on top of the DB's
// internal MVCC.
type BadgerStore struct {
	db *badger.DB
}

var _ store.Store = (*BadgerStore)(nil)

// NewBadgerStore opens (creating if necessary) the database directory and
// returns a ready store.
func NewBadgerStore(opts Options) (*BadgerStore, error) {
	if opts.Path == "" && !opts.InMemory {
		return nil, fmt.Errorf("badger store: path is required")
	}

	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(newBadgerLogger(opts.Logger))

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("badger store: open %s: %w", opts.Path, err)
	}
	return &BadgerStore{db: db}, nil
}

// Get returns the value stored at key under origin.
func (s *BadgerStore) Get(ctx context.Context, origin vfs.Origin, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(origin, key))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value = string(raw)
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("key %s: %w", key, store.ErrKeyNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("badger store: get %s: %w", key, err)
	}
	return value, nil
}

// Put stores value at key under origin.
func (s *BadgerStore) Put(ctx context.Context, origin vfs.Origin, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(origin, key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("badger store: put %s: %w", key, err)
	}
	return nil
}

// Delete removes key under origin. Unlike Badger's own Delete (a silent
// no-op on missing keys), this reports absence per the Store contract.
func (s *BadgerStore) Delete(ctx context.Context, origin vfs.Origin, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dbKey := entryKey(origin, key)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(dbKey); err != nil {
			return err
		}
		return txn.Delete(dbKey)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("key %s: %w", key, store.ErrKeyNotFound)
	}
	if err != nil {
		return fmt.Errorf("badger store: delete %s: %w", key, err)
	}
	return nil
}

// Scan returns the sorted keys under origin sharing the given prefix.
func (s *BadgerStore) Scan(ctx context.Context, origin vfs.Origin, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dbPrefix := scanPrefix(origin, prefix)
	keys := make([]string, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false // keys only
		iterOpts.Prefix = dbPrefix

		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(dbPrefix); it.ValidForPrefix(dbPrefix); it.Next() {
			keys = append(keys, logicalKey(origin, it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger store: scan %s: %w", prefix, err)
	}
	return keys, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Badger logger adapter
// ============================================================================

// badgerLogger adapts slog to badger.Logger. Badger is chatty at INFO during
// compactions, so everything is demoted to debug except errors.
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) badger.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &badgerLogger{logger: logger.With("component", "badger")}
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
