package audit

import (
	"context"
	"time"

	"canary-bot/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ActionAddCoins    = "ADD_COINS"
	ActionRemoveCoins = "REMOVE_COINS"
	ActionWarn        = "WARN"
	ActionUnwarn      = "UNWARN"
	ActionMute        = "MUTE"
	ActionUnmute      = "UNMUTE"
	ActionBan         = "BAN"
	ActionKick        = "KICK"
	ActionClear       = "CLEAR"
	ActionAutomod     = "AUTOMOD"
)

// Entry is one staff action. Legacy entries have no id or guild.
type Entry struct {
	ID         string       `json:"id,omitempty"`
	GuildID    string       `json:"guild_id,omitempty"`
	Timestamp  storage.Time `json:"timestamp"`
	StaffID    string       `json:"staff_id"`
	StaffName  string       `json:"staff_name"`
	Action     string       `json:"action"`
	TargetID   string       `json:"target_id"`
	TargetName string       `json:"target_name"`
	Amount     int          `json:"amount"`
	Reason     string       `json:"reason"`
	ExtraData  string       `json:"extra_data"`
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Logger keeps the bounded staff timeline, oldest entries evicted first.
type Logger struct {
	doc      *storage.Document[[]Entry]
	capacity int
	clock    Clock
	logger   *zap.Logger
	notify   func(context.Context, Entry)
}

func NewLogger(backend storage.Backend, name string, capacity int, logger *zap.Logger) *Logger {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Logger{
		doc:      storage.NewDocument(backend, name, func() []Entry { return []Entry{} }, logger),
		capacity: capacity,
		clock:    realClock{},
		logger:   logger,
	}
}

func (l *Logger) WithClock(clock Clock) *Logger {
	if clock != nil {
		l.clock = clock
	}
	return l
}

func (l *Logger) SetNotifier(notify func(context.Context, Entry)) {
	l.notify = notify
}

// Log stamps and appends entry. The notifier only runs once the entry is
// persisted.
func (l *Logger) Log(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = storage.NewTime(l.clock.Now())
	}

	err := l.doc.Update(ctx, func(entries *[]Entry) error {
		*entries = append(*entries, entry)
		if overflow := len(*entries) - l.capacity; overflow > 0 {
			*entries = append([]Entry(nil), (*entries)[overflow:]...)
		}
		return nil
	})
	if err != nil {
		l.logger.Error("audit write failed", zap.String("action", entry.Action), zap.Error(err))
		return entry, err
	}

	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Info("audit",
		zap.String("guild_id", entry.GuildID),
		zap.String("staff_id", entry.StaffID),
		zap.String("action", entry.Action),
		zap.String("target_id", entry.TargetID),
		zap.Int("amount", entry.Amount),
		zap.String("reason", entry.Reason),
	)
	return entry, nil
}

// Recent returns up to limit entries, most recent first.
func (l *Logger) Recent(ctx context.Context, limit int) []Entry {
	entries := l.doc.Load(ctx)
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	out := make([]Entry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out
}
