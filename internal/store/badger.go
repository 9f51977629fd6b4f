package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/copyleftdev/KERF/internal/engine"
)

// Logger is the logging surface the badger store forwards BadgerDB's
// internal messages to.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
}

// Badger is a Result Store backed by an embedded BadgerDB database.
// Records are JSON-encoded CacheRecords keyed by fingerprint. Safe for
// concurrent use; BadgerDB transactions make PutIfAbsent atomic within
// this process.
type Badger struct {
	db *badger.DB
}

// BadgerConfig configures a Badger store.
type BadgerConfig struct {
	// Path is the directory for database files. Required unless
	// InMemory is set.
	Path string
	// InMemory keeps all data in RAM, with no disk persistence.
	InMemory bool
	// Logger receives BadgerDB's internal log output. When nil,
	// BadgerDB logging is disabled.
	Logger Logger
}

// OpenBadger opens (creating if needed) a Badger store with the given
// configuration. The caller must Close the returned store.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store: path is required for a persistent database")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("store: create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger database: %w", err)
	}
	return &Badger{db: db}, nil
}

// Close releases the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// Get implements engine.Store.
func (b *Badger) Get(ctx context.Context, fingerprint string) (*engine.CacheRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record *engine.CacheRecord
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var rec engine.CacheRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return fmt.Errorf("decode record %s: %w", fingerprint, err)
			}
			record = &rec
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", fingerprint, err)
	}
	return record, nil
}

// Put implements engine.Store.
func (b *Badger) Put(ctx context.Context, record *engine.CacheRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("store: encode record %s: %w", record.Fingerprint, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(record.Fingerprint), data)
	})
	if err != nil {
		return fmt.Errorf("store: put %s: %w", record.Fingerprint, err)
	}
	return nil
}

// PutIfAbsent implements engine.Store. The existence check and the
// write share one transaction, so concurrent writers for the same
// fingerprint cannot both succeed.
func (b *Badger) PutIfAbsent(ctx context.Context, record *engine.CacheRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("store: encode record %s: %w", record.Fingerprint, err)
	}

	inserted := false
	err = b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(record.Fingerprint))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		inserted = true
		return txn.Set([]byte(record.Fingerprint), data)
	})
	if err != nil {
		return false, fmt.Errorf("store: put-if-absent %s: %w", record.Fingerprint, err)
	}
	return inserted, nil
}

// badgerLogger adapts our Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
