package guild

import (
	"context"

	"canary-bot/internal/storage"

	"go.uber.org/zap"
)

// Settings is the per-guild configuration.
type Settings struct {
	LogChannel storage.Snowflake `json:"log_channel,omitempty"`
}

type Store struct {
	doc *storage.Document[map[string]Settings]
}

func NewStore(backend storage.Backend, name string, logger *zap.Logger) *Store {
	return &Store{doc: storage.NewDocument(backend, name, newSettings, logger)}
}

func newSettings() map[string]Settings {
	return make(map[string]Settings)
}

func (s *Store) Get(ctx context.Context, guildID string) Settings {
	return s.doc.Load(ctx)[guildID]
}

func (s *Store) LogChannel(ctx context.Context, guildID string) (string, bool) {
	channel := s.Get(ctx, guildID).LogChannel
	return channel.String(), channel != ""
}

func (s *Store) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	return s.doc.Update(ctx, func(guilds *map[string]Settings) error {
		settings := (*guilds)[guildID]
		settings.LogChannel = storage.Snowflake(channelID)
		(*guilds)[guildID] = settings
		return nil
	})
}

// RemoveLogChannel reports whether a channel was configured.
func (s *Store) RemoveLogChannel(ctx context.Context, guildID string) (bool, error) {
	removed := false
	err := s.doc.Update(ctx, func(guilds *map[string]Settings) error {
		settings, ok := (*guilds)[guildID]
		if !ok || settings.LogChannel == "" {
			return storage.ErrSkipSave
		}
		settings.LogChannel = ""
		(*guilds)[guildID] = settings
		removed = true
		return nil
	})
	return removed, err
}
