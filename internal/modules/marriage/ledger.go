package marriage

import (
	"context"
	"errors"
	"sort"
	"time"

	"canary-bot/internal/config"
	"canary-bot/internal/storage"
	"canary-bot/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrSelfMarriage   = errors.New("marriage: cannot marry yourself")
	ErrAlreadyMarried = errors.New("marriage: already married")
	ErrInvalidPoints  = errors.New("marriage: affinity points must not be negative")
)

// Action is a once-per-day affinity interaction between partners.
type Action string

const (
	Kiss Action = "kiss"
	Hug  Action = "hug"
	Pat  Action = "pat"
)

func ParseAction(value string) (Action, bool) {
	switch Action(value) {
	case Kiss, Hug, Pat:
		return Action(value), true
	default:
		return "", false
	}
}

// Record is one side of a marriage. Both sides always carry the same
// affinity and action timestamps.
type Record struct {
	PartnerID storage.Snowflake `json:"partner_id"`
	Affinity  int               `json:"affinity"`
	LastKiss  storage.Time      `json:"last_kiss"`
	LastHug   storage.Time      `json:"last_hug"`
	LastPat   storage.Time      `json:"last_pat"`
}

func (r *Record) last(action Action) *storage.Time {
	switch action {
	case Kiss:
		return &r.LastKiss
	case Hug:
		return &r.LastHug
	case Pat:
		return &r.LastPat
	default:
		return nil
	}
}

type Couple struct {
	UserID    string
	PartnerID string
	Affinity  int
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Ledger struct {
	doc             *storage.Document[map[string]Record]
	location        *time.Location
	clock           Clock
	maxAffinity     int
	initialAffinity int
}

func New(backend storage.Backend, name string, cfg config.MarriageConfig, location *time.Location, logger *zap.Logger) *Ledger {
	return &Ledger{
		doc:             storage.NewDocument(backend, name, func() map[string]Record { return make(map[string]Record) }, logger),
		location:        location,
		clock:           realClock{},
		maxAffinity:     cfg.AffinityMax,
		initialAffinity: cfg.AffinityInitial,
	}
}

func (l *Ledger) WithClock(clock Clock) *Ledger {
	if clock != nil {
		l.clock = clock
	}
	return l
}

func (l *Ledger) Record(ctx context.Context, userID string) (Record, bool) {
	record, ok := l.doc.Load(ctx)[userID]
	return record, ok
}

func (l *Ledger) IsMarried(ctx context.Context, userID string) bool {
	_, ok := l.Record(ctx, userID)
	return ok
}

func (l *Ledger) Partner(ctx context.Context, userID string) (string, bool) {
	record, ok := l.Record(ctx, userID)
	if !ok {
		return "", false
	}
	return record.PartnerID.String(), true
}

// Marry links both users with the initial affinity and no cooldowns used.
// Consent and the marriage cost are the caller's job.
func (l *Ledger) Marry(ctx context.Context, userID, partnerID string) error {
	if userID == partnerID {
		return ErrSelfMarriage
	}
	return l.doc.Update(ctx, func(records *map[string]Record) error {
		if _, ok := (*records)[userID]; ok {
			return ErrAlreadyMarried
		}
		if _, ok := (*records)[partnerID]; ok {
			return ErrAlreadyMarried
		}
		(*records)[userID] = Record{PartnerID: storage.Snowflake(partnerID), Affinity: l.initialAffinity}
		(*records)[partnerID] = Record{PartnerID: storage.Snowflake(userID), Affinity: l.initialAffinity}
		return nil
	})
}

// Divorce removes both sides in one write and returns the former partner.
func (l *Ledger) Divorce(ctx context.Context, userID string) (string, bool, error) {
	partnerID := ""
	found := false
	err := l.doc.Update(ctx, func(records *map[string]Record) error {
		record, ok := (*records)[userID]
		if !ok {
			return storage.ErrSkipSave
		}
		partnerID = record.PartnerID.String()
		found = true
		delete(*records, userID)
		delete(*records, partnerID)
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return partnerID, found, nil
}

// CanPerformAction is false for unmarried users: the cooldown lives on the
// marriage record.
func (l *Ledger) CanPerformAction(ctx context.Context, userID string, action Action) bool {
	record, ok := l.Record(ctx, userID)
	if !ok {
		return false
	}
	last := record.last(action)
	if last == nil {
		return false
	}
	return utils.CooldownElapsed(last.Time, l.clock.Now(), l.location)
}

// RecordAndUpdateAffinity stamps the action on both partners and raises
// their shared affinity by points, capped at the maximum. It returns false
// when the action was already used today or the user is not married.
func (l *Ledger) RecordAndUpdateAffinity(ctx context.Context, userID string, action Action, points int) (bool, error) {
	if points < 0 {
		return false, ErrInvalidPoints
	}
	updated := false
	now := l.clock.Now()
	err := l.doc.Update(ctx, func(records *map[string]Record) error {
		record, ok := (*records)[userID]
		if !ok {
			return storage.ErrSkipSave
		}
		last := record.last(action)
		if last == nil || !utils.CooldownElapsed(last.Time, now, l.location) {
			return storage.ErrSkipSave
		}
		partnerID := record.PartnerID.String()
		partner, ok := (*records)[partnerID]
		if !ok {
			return storage.ErrSkipSave
		}

		affinity := record.Affinity + points
		if affinity > l.maxAffinity {
			affinity = l.maxAffinity
		}
		for _, side := range []struct {
			id     string
			record Record
		}{{userID, record}, {partnerID, partner}} {
			side.record.Affinity = affinity
			*side.record.last(action) = storage.NewTime(now)
			(*records)[side.id] = side.record
		}
		updated = true
		return nil
	})
	return updated, err
}

// TopCouples lists each couple once, highest affinity first.
func (l *Ledger) TopCouples(ctx context.Context, limit int) []Couple {
	records := l.doc.Load(ctx)
	seen := make(map[string]struct{}, len(records))
	couples := make([]Couple, 0, len(records)/2)
	for userID, record := range records {
		partnerID := record.PartnerID.String()
		if _, ok := seen[userID]; ok {
			continue
		}
		if _, ok := seen[partnerID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		seen[partnerID] = struct{}{}
		first, second := userID, partnerID
		if second < first {
			first, second = second, first
		}
		couples = append(couples, Couple{UserID: first, PartnerID: second, Affinity: record.Affinity})
	}
	sort.Slice(couples, func(i, j int) bool {
		if couples[i].Affinity != couples[j].Affinity {
			return couples[i].Affinity > couples[j].Affinity
		}
		return couples[i].UserID < couples[j].UserID
	})
	if limit > 0 && len(couples) > limit {
		couples = couples[:limit]
	}
	return couples
}
