package guild

import (
	"context"
	"testing"

	"canary-bot/internal/storage"

	"go.uber.org/zap"
)

func TestLogChannelLifecycle(t *testing.T) {
	backend, _ := storage.NewFileBackend(t.TempDir())
	store := NewStore(backend, "server_configs.json", zap.NewNop())
	ctx := context.Background()

	if _, ok := store.LogChannel(ctx, "g1"); ok {
		t.Fatalf("expected no channel configured")
	}
	if err := store.SetLogChannel(ctx, "g1", "c1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if channel, ok := store.LogChannel(ctx, "g1"); !ok || channel != "c1" {
		t.Fatalf("expected c1, got %q %v", channel, ok)
	}
	removed, err := store.RemoveLogChannel(ctx, "g1")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	if removed, _ := store.RemoveLogChannel(ctx, "g1"); removed {
		t.Fatalf("expected second removal to report false")
	}
}

func TestLegacyNumericChannel(t *testing.T) {
	backend, _ := storage.NewFileBackend(t.TempDir())
	ctx := context.Background()
	if err := backend.Write(ctx, "server_configs.json", []byte(`{"111": {"log_channel": 222333444555666777}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewStore(backend, "server_configs.json", zap.NewNop())
	if channel, ok := store.LogChannel(ctx, "111"); !ok || channel != "222333444555666777" {
		t.Fatalf("expected legacy channel, got %q %v", channel, ok)
	}
}
