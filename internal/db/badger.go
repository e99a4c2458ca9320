package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/config"
)

// Badger wraps an embedded badger key-value store.
type Badger struct {
	DB *badger.DB
}

// OpenBadger opens the store under cfg.BadgerDir. An empty dir opens an
// in-memory store.
func OpenBadger(cfg config.Config) (*Badger, error) {
	opts := badger.DefaultOptions(cfg.BadgerDir).WithLogger(nil)
	if cfg.BadgerDir == "" {
		opts = opts.WithInMemory(true)
	}
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{DB: bdb}, nil
}

func (b *Badger) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// Health reports whether the store is still open.
func (b *Badger) Health(_ context.Context) error {
	if b.DB == nil || b.DB.IsClosed() {
		return errors.New("badger is closed")
	}
	return nil
}
