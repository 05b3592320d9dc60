package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"canary-bot/internal/config"

	"go.uber.org/zap"
)

type account struct {
	Coins    int       `json:"coins"`
	LastSeen Time      `json:"last_seen"`
	Owner    Snowflake `json:"owner"`
}

func newAccounts() map[string]account {
	return make(map[string]account)
}

func TestFileBackendRoundTrip(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())
	ctx := context.Background()

	if got := doc.Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty document, got %v", got)
	}

	err = doc.Update(ctx, func(value *map[string]account) error {
		(*value)["1"] = account{Coins: 10, Owner: "42"}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got := doc.Load(ctx)
	if got["1"].Coins != 10 || got["1"].Owner != "42" {
		t.Fatalf("unexpected document %+v", got)
	}
}

func TestDocumentWritesEnvelope(t *testing.T) {
	dir := t.TempDir()
	backend, _ := NewFileBackend(dir)
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())
	if err := doc.Save(context.Background(), map[string]account{"1": {Coins: 3}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "coins.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env struct {
		SchemaVersion int             `json:"schema_version"`
		Data          json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.SchemaVersion != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, env.SchemaVersion)
	}
	if !strings.Contains(string(data), "\n    ") {
		t.Fatalf("expected indented output")
	}
}

func TestDocumentReadsLegacyShape(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"123": {"coins": 7, "last_seen": "2024-05-01T10:11:12.123456", "owner": 987654321098765432}}`
	if err := os.WriteFile(filepath.Join(dir, "coins.json"), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	backend, _ := NewFileBackend(dir)
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())

	got := doc.Load(context.Background())
	entry, ok := got["123"]
	if !ok {
		t.Fatalf("expected legacy entry")
	}
	if entry.Coins != 7 {
		t.Fatalf("expected 7 coins, got %d", entry.Coins)
	}
	if entry.Owner != "987654321098765432" {
		t.Fatalf("expected numeric id read as string, got %s", entry.Owner)
	}
	if entry.LastSeen.Year() != 2024 || entry.LastSeen.Month() != time.May {
		t.Fatalf("unexpected legacy time %v", entry.LastSeen)
	}
}

func TestDocumentReadsLegacyArray(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logs.json"), []byte(`[{"coins": 1}, {"coins": 2}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	backend, _ := NewFileBackend(dir)
	doc := NewDocument(backend, "logs.json", func() []account { return nil }, zap.NewNop())

	got := doc.Load(context.Background())
	if len(got) != 2 || got[1].Coins != 2 {
		t.Fatalf("unexpected legacy array %+v", got)
	}
}

func TestDocumentCorruptFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "coins.json"), []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	backend, _ := NewFileBackend(dir)
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())

	if got := doc.Load(context.Background()); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil document, got %v", got)
	}
}

func TestUpdateSkipSave(t *testing.T) {
	dir := t.TempDir()
	backend, _ := NewFileBackend(dir)
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())

	err := doc.Update(context.Background(), func(value *map[string]account) error {
		(*value)["1"] = account{Coins: 1}
		return ErrSkipSave
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "coins.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no file written, got %v", err)
	}
}

func TestUpdateIsSerialized(t *testing.T) {
	backend, _ := NewFileBackend(t.TempDir())
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = doc.Update(ctx, func(value *map[string]account) error {
				entry := (*value)["1"]
				entry.Coins++
				(*value)["1"] = entry
				return nil
			})
		}()
	}
	wg.Wait()

	if got := doc.Load(ctx)["1"].Coins; got != 20 {
		t.Fatalf("expected 20 coins, got %d", got)
	}
}

func TestLoadOrInit(t *testing.T) {
	backend, _ := NewFileBackend(t.TempDir())
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())
	ctx := context.Background()

	value, err := doc.LoadOrInit(ctx, func() map[string]account {
		return map[string]account{"seed": {Coins: 5}}
	})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if value["seed"].Coins != 5 {
		t.Fatalf("expected seeded value")
	}
	if doc.Load(ctx)["seed"].Coins != 5 {
		t.Fatalf("expected seed persisted")
	}
}

func TestBoltBackendRoundTrip(t *testing.T) {
	backend, err := NewBoltBackend(filepath.Join(t.TempDir(), "canary.bolt"))
	if err != nil {
		t.Fatalf("bolt: %v", err)
	}
	defer backend.Close()
	ctx := context.Background()

	if _, err := backend.Read(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := backend.Write(ctx, "doc", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := backend.Read(ctx, "doc")
	if err != nil || string(data) != `{"a":1}` {
		t.Fatalf("unexpected read %q %v", data, err)
	}
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	backend, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "canary.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer backend.Close()
	if err := backend.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()

	doc := NewDocument(backend, "coins", newAccounts, zap.NewNop())
	if err := doc.Save(ctx, map[string]account{"1": {Coins: 9}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := doc.Save(ctx, map[string]account{"1": {Coins: 11}}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := doc.Load(ctx)["1"].Coins; got != 11 {
		t.Fatalf("expected 11 coins, got %d", got)
	}
}

func TestTimeJSON(t *testing.T) {
	var zero Time
	data, err := json.Marshal(zero)
	if err != nil || string(data) != "null" {
		t.Fatalf("expected null, got %s %v", data, err)
	}

	var parsed Time
	if err := json.Unmarshal([]byte(`"2024-01-02"`), &parsed); err != nil {
		t.Fatalf("unmarshal date: %v", err)
	}
	if parsed.Day() != 2 {
		t.Fatalf("unexpected day %d", parsed.Day())
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &parsed); err == nil {
		t.Fatalf("expected error for garbage time")
	}
}

type flakyBackend struct {
	Backend
	failReads int
}

var errDiskBusy = errors.New("disk busy")

func (f *flakyBackend) Read(ctx context.Context, name string) ([]byte, error) {
	if f.failReads > 0 {
		f.failReads--
		return nil, errDiskBusy
	}
	return f.Backend.Read(ctx, name)
}

func TestUpdateKeepsDocumentWhenReadFails(t *testing.T) {
	files, _ := NewFileBackend(t.TempDir())
	backend := &flakyBackend{Backend: files}
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())
	ctx := context.Background()

	if err := doc.Save(ctx, map[string]account{"alice": {Coins: 30000}, "bob": {Coins: 500}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	backend.failReads = 1
	called := false
	err := doc.Update(ctx, func(value *map[string]account) error {
		called = true
		(*value)["carol"] = account{Coins: 10}
		return nil
	})
	if !errors.Is(err, errDiskBusy) {
		t.Fatalf("expected read error, got %v", err)
	}
	if called {
		t.Fatalf("expected mutation not to run on a failed read")
	}

	got := doc.Load(ctx)
	if got["alice"].Coins != 30000 || got["bob"].Coins != 500 {
		t.Fatalf("expected stored accounts intact, got %+v", got)
	}
	if _, ok := got["carol"]; ok {
		t.Fatalf("expected no partial write, got %+v", got)
	}
}

func TestLoadOrInitKeepsDocumentWhenReadFails(t *testing.T) {
	files, _ := NewFileBackend(t.TempDir())
	backend := &flakyBackend{Backend: files}
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())
	ctx := context.Background()

	if err := doc.Save(ctx, map[string]account{"stored": {Coins: 7}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	backend.failReads = 1
	_, err := doc.LoadOrInit(ctx, func() map[string]account {
		return map[string]account{"seed": {Coins: 1}}
	})
	if !errors.Is(err, errDiskBusy) {
		t.Fatalf("expected read error, got %v", err)
	}
	got := doc.Load(ctx)
	if got["stored"].Coins != 7 || len(got) != 1 {
		t.Fatalf("expected stored document untouched, got %+v", got)
	}
}

func TestUpdateReplacesCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "coins.json"), []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	backend, _ := NewFileBackend(dir)
	doc := NewDocument(backend, "coins.json", newAccounts, zap.NewNop())
	ctx := context.Background()

	err := doc.Update(ctx, func(value *map[string]account) error {
		(*value)["1"] = account{Coins: 2}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := doc.Load(ctx)["1"].Coins; got != 2 {
		t.Fatalf("expected 2 coins, got %d", got)
	}
}

func TestLegacyTimeUsesConfiguredZone(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	SetLegacyLocation(brt)
	t.Cleanup(func() { SetLegacyLocation(nil) })

	var parsed Time
	if err := json.Unmarshal([]byte(`"2024-06-01T01:00:00.000000"`), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Fatalf("expected %v, got %v", want, parsed.UTC())
	}
	if parsed.Location() != brt {
		t.Fatalf("expected BRT location, got %v", parsed.Location())
	}

	if err := json.Unmarshal([]byte(`"2024-06-01T01:00:00Z"`), &parsed); err != nil {
		t.Fatalf("unmarshal rfc3339: %v", err)
	}
	if !parsed.Equal(time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected zoned timestamp unaffected, got %v", parsed.UTC())
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := config.StorageConfig{Driver: "postgresql", DataDir: t.TempDir()}
	backend, err := Open(context.Background(), cfg)
	if err == nil {
		backend.Close()
		t.Fatalf("expected unknown driver to fail")
	}
	if !strings.Contains(err.Error(), "postgresql") {
		t.Fatalf("expected error to name the driver, got %v", err)
	}
}
