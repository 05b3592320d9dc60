package storage

import (
	"context"
	"errors"
	"fmt"

	"canary-bot/internal/config"
)

// ErrNotFound is returned by Backend.Read when no document exists under the name.
var ErrNotFound = errors.New("storage: document not found")

// Backend persists whole JSON documents by name. Implementations must make
// Write replace the previous content in full.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "", "json":
		return NewFileBackend(cfg.DataDir)
	case "bolt":
		return NewBoltBackend(cfg.Path)
	case "sqlite":
		backend, err := NewSQLiteBackend(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := backend.Migrate(); err != nil {
			backend.Close()
			return nil, err
		}
		return backend, nil
	case "postgres":
		return NewPostgresBackend(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
