package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// SchemaVersion is written into every saved document envelope.
const SchemaVersion = 1

// ErrSkipSave aborts an Update without writing. Update returns nil for it.
var ErrSkipSave = errors.New("storage: skip save")

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Data          json.RawMessage `json:"data"`
}

// Document is one named JSON document. Every load-mutate-save cycle runs
// under the document's mutex, so concurrent handlers cannot lose updates.
type Document[T any] struct {
	mu      sync.Mutex
	backend Backend
	name    string
	empty   func() T
	logger  *zap.Logger
}

func NewDocument[T any](backend Backend, name string, empty func() T, logger *zap.Logger) *Document[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Document[T]{backend: backend, name: name, empty: empty, logger: logger}
}

func (d *Document[T]) Name() string {
	return d.name
}

// Load never fails: missing, unreadable, or corrupt documents come back empty.
func (d *Document[T]) Load(ctx context.Context) T {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, _, _ := d.load(ctx)
	return value
}

// LoadOrInit returns the stored document, or writes and returns init() when
// nothing is stored yet. A failed read returns the error and writes nothing.
func (d *Document[T]) LoadOrInit(ctx context.Context, init func() T) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, present, err := d.load(ctx)
	if err != nil {
		return value, err
	}
	if present {
		return value, nil
	}
	value = init()
	return value, d.save(ctx, value)
}

func (d *Document[T]) Save(ctx context.Context, value T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, value)
}

// Update runs fn on the stored document and saves the result. When the
// backend cannot be read, fn is not called and the read error is returned.
func (d *Document[T]) Update(ctx context.Context, fn func(value *T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	value, _, err := d.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		if errors.Is(err, ErrSkipSave) {
			return nil
		}
		return err
	}
	return d.save(ctx, value)
}

// load reports whether a document is stored. A missing document is not an
// error; a corrupt one decodes as empty so the next save replaces it.
func (d *Document[T]) load(ctx context.Context) (T, bool, error) {
	data, err := d.backend.Read(ctx, d.name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return d.empty(), false, nil
		}
		d.logger.Warn("document read failed", zap.String("document", d.name), zap.Error(err))
		return d.empty(), false, fmt.Errorf("read %s: %w", d.name, err)
	}
	value, err := decode(data, d.empty)
	if err != nil {
		d.logger.Warn("document corrupt, using empty", zap.String("document", d.name), zap.Error(err))
		return d.empty(), true, nil
	}
	return value, true, nil
}

func (d *Document[T]) save(ctx context.Context, value T) error {
	body, err := encode(value)
	if err != nil {
		return err
	}
	if err := d.backend.Write(ctx, d.name, body); err != nil {
		d.logger.Warn("document write failed", zap.String("document", d.name), zap.Error(err))
		return err
	}
	return nil
}

func encode[T any](value T) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(envelope{SchemaVersion: SchemaVersion, Data: raw}, "", "    ")
}

// decode accepts both the versioned envelope and the bare legacy document.
func decode[T any](data []byte, empty func() T) (T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return empty(), nil
	}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.SchemaVersion > 0 {
			trimmed = bytes.TrimSpace(env.Data)
			if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
				return empty(), nil
			}
		}
	}

	value := empty()
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return empty(), err
	}
	return value, nil
}
