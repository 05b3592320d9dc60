package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var documentsBucket = []byte("documents")

// BoltBackend stores every document as one value in a single bbolt bucket.
type BoltBackend struct {
	db *bolt.DB
}

func NewBoltBackend(path string) (*BoltBackend, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Read(ctx context.Context, name string) ([]byte, error) {
	_ = ctx
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(documentsBucket).Get([]byte(name))
		if value == nil {
			return ErrNotFound
		}
		// bbolt values are only valid inside the transaction.
		data = append([]byte(nil), value...)
		return nil
	})
	return data, err
}

func (b *BoltBackend) Write(ctx context.Context, name string, data []byte) error {
	_ = ctx
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(documentsBucket).Put([]byte(name), data)
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
