package discipline

import (
	"context"
	"errors"
	"time"

	"canary-bot/internal/storage"

	"go.uber.org/zap"
)

var ErrInvalidDuration = errors.New("discipline: mute duration must be positive")

// WarnRecord ids are sequential per user, not globally unique.
type WarnRecord struct {
	ID        int               `json:"id"`
	Timestamp storage.Time      `json:"timestamp"`
	StaffID   storage.Snowflake `json:"staff_id"`
	Reason    string            `json:"reason"`
	Active    bool              `json:"active"`
}

// MuteRecord is the latest mute for a user; a new mute overwrites it.
type MuteRecord struct {
	Timestamp       storage.Time      `json:"timestamp"`
	StaffID         storage.Snowflake `json:"staff_id"`
	Reason          string            `json:"reason"`
	DurationMinutes int               `json:"duration"`
	MuteUntil       storage.Time      `json:"mute_until"`
	Active          bool              `json:"active"`
}

// EffectiveActive reports whether the mute is in force at now, regardless
// of whether the stored flag has been reconciled yet.
func (m MuteRecord) EffectiveActive(now time.Time) bool {
	return m.Active && now.Before(m.MuteUntil.Time)
}

// Expired reports a stored-active mute whose deadline has passed.
func (m MuteRecord) Expired(now time.Time) bool {
	return m.Active && !now.Before(m.MuteUntil.Time)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Ledger struct {
	warns  *storage.Document[map[string][]WarnRecord]
	mutes  *storage.Document[map[string]MuteRecord]
	clock  Clock
	logger *zap.Logger
}

func New(backend storage.Backend, warnsName, mutesName string, logger *zap.Logger) *Ledger {
	return &Ledger{
		warns:  storage.NewDocument(backend, warnsName, func() map[string][]WarnRecord { return make(map[string][]WarnRecord) }, logger),
		mutes:  storage.NewDocument(backend, mutesName, func() map[string]MuteRecord { return make(map[string]MuteRecord) }, logger),
		clock:  realClock{},
		logger: logger,
	}
}

func (l *Ledger) WithClock(clock Clock) *Ledger {
	if clock != nil {
		l.clock = clock
	}
	return l
}

// AddWarn appends a warn and returns the user's total warn count, active or not.
func (l *Ledger) AddWarn(ctx context.Context, userID, staffID, reason string) (int, error) {
	total := 0
	err := l.warns.Update(ctx, func(warns *map[string][]WarnRecord) error {
		records := (*warns)[userID]
		records = append(records, WarnRecord{
			ID:        len(records) + 1,
			Timestamp: storage.NewTime(l.clock.Now()),
			StaffID:   storage.Snowflake(staffID),
			Reason:    reason,
			Active:    true,
		})
		(*warns)[userID] = records
		total = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (l *Ledger) Warns(ctx context.Context, userID string) []WarnRecord {
	return l.warns.Load(ctx)[userID]
}

func (l *Ledger) ActiveWarnCount(ctx context.Context, userID string) int {
	count := 0
	for _, warn := range l.Warns(ctx, userID) {
		if warn.Active {
			count++
		}
	}
	return count
}

// DeactivateWarn soft-deletes a warn. It returns false when the warn does
// not exist or is already inactive.
func (l *Ledger) DeactivateWarn(ctx context.Context, userID string, warnID int) (bool, error) {
	found := false
	err := l.warns.Update(ctx, func(warns *map[string][]WarnRecord) error {
		records := (*warns)[userID]
		for i := range records {
			if records[i].ID == warnID && records[i].Active {
				records[i].Active = false
				found = true
				return nil
			}
		}
		return storage.ErrSkipSave
	})
	return found, err
}

func (l *Ledger) AddMute(ctx context.Context, userID, staffID string, minutes int, reason string) (MuteRecord, error) {
	if minutes <= 0 {
		return MuteRecord{}, ErrInvalidDuration
	}
	now := l.clock.Now()
	record := MuteRecord{
		Timestamp:       storage.NewTime(now),
		StaffID:         storage.Snowflake(staffID),
		Reason:          reason,
		DurationMinutes: minutes,
		MuteUntil:       storage.NewTime(now.Add(time.Duration(minutes) * time.Minute)),
		Active:          true,
	}
	err := l.mutes.Update(ctx, func(mutes *map[string]MuteRecord) error {
		(*mutes)[userID] = record
		return nil
	})
	return record, err
}

// MuteStatus is a read-only snapshot; it never writes back.
func (l *Ledger) MuteStatus(ctx context.Context, userID string) (MuteRecord, bool) {
	record, ok := l.mutes.Load(ctx)[userID]
	return record, ok
}

// IsMuted reports whether the user is muted now. A stored-active mute that
// has run out is flipped inactive and persisted before returning false.
func (l *Ledger) IsMuted(ctx context.Context, userID string) bool {
	muted := false
	now := l.clock.Now()
	err := l.mutes.Update(ctx, func(mutes *map[string]MuteRecord) error {
		record, ok := (*mutes)[userID]
		if !ok || !record.Active {
			return storage.ErrSkipSave
		}
		if record.EffectiveActive(now) {
			muted = true
			return storage.ErrSkipSave
		}
		record.Active = false
		(*mutes)[userID] = record
		return nil
	})
	if err != nil {
		l.logger.Warn("mute reconcile failed", zap.String("user_id", userID), zap.Error(err))
	}
	return muted
}

// Unmute deactivates the user's mute regardless of expiry. It returns false
// when the user has no mute record.
func (l *Ledger) Unmute(ctx context.Context, userID string) (bool, error) {
	found := false
	err := l.mutes.Update(ctx, func(mutes *map[string]MuteRecord) error {
		record, ok := (*mutes)[userID]
		if !ok {
			return storage.ErrSkipSave
		}
		record.Active = false
		(*mutes)[userID] = record
		found = true
		return nil
	})
	return found, err
}

// ReconcileExpired flips every run-out mute inactive in one write and
// returns how many changed.
func (l *Ledger) ReconcileExpired(ctx context.Context) (int, error) {
	changed := 0
	now := l.clock.Now()
	err := l.mutes.Update(ctx, func(mutes *map[string]MuteRecord) error {
		for userID, record := range *mutes {
			if record.Expired(now) {
				record.Active = false
				(*mutes)[userID] = record
				changed++
			}
		}
		if changed == 0 {
			return storage.ErrSkipSave
		}
		return nil
	})
	return changed, err
}
