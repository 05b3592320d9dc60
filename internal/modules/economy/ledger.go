package economy

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"time"

	"canary-bot/internal/config"
	"canary-bot/internal/storage"
	"canary-bot/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrInvalidAmount     = errors.New("economy: amount must be positive")
	ErrInsufficientFunds = errors.New("economy: insufficient funds")
)

// Account is one user's wallet. Coins never go negative and TotalEarned
// only grows.
type Account struct {
	Coins          int            `json:"coins"`
	LastDaily      storage.Time   `json:"last_daily"`
	TotalEarned    int            `json:"total_earned"`
	RoleplayCounts map[string]int `json:"roleplay_counts,omitempty"`
	LastNewPhrase  storage.Time   `json:"last_new_phrase"`
}

type Balance struct {
	UserID string
	Coins  int
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Ledger struct {
	doc      *storage.Document[map[string]Account]
	cfg      config.EconomyConfig
	location *time.Location
	clock    Clock
	intn     func(n int) int
}

func New(backend storage.Backend, name string, cfg config.EconomyConfig, location *time.Location, logger *zap.Logger) *Ledger {
	return &Ledger{
		doc:      storage.NewDocument(backend, name, func() map[string]Account { return make(map[string]Account) }, logger),
		cfg:      cfg,
		location: location,
		clock:    realClock{},
		intn:     rand.IntN,
	}
}

func (l *Ledger) WithClock(clock Clock) *Ledger {
	if clock != nil {
		l.clock = clock
	}
	return l
}

// WithRand replaces the source used for reward amounts. intn(n) must return
// a value in [0, n).
func (l *Ledger) WithRand(intn func(n int) int) *Ledger {
	if intn != nil {
		l.intn = intn
	}
	return l
}

func (l *Ledger) Account(ctx context.Context, userID string) Account {
	return l.doc.Load(ctx)[userID]
}

func (l *Ledger) Coins(ctx context.Context, userID string) int {
	return l.Account(ctx, userID).Coins
}

// AddCoins credits the user and returns the new balance.
func (l *Ledger) AddCoins(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	balance := 0
	err := l.doc.Update(ctx, func(accounts *map[string]Account) error {
		account := (*accounts)[userID]
		credit(&account, amount)
		(*accounts)[userID] = account
		balance = account.Coins
		return nil
	})
	return balance, err
}

// RemoveCoins returns false without changing anything when the balance is
// too small.
func (l *Ledger) RemoveCoins(ctx context.Context, userID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}
	removed := false
	err := l.doc.Update(ctx, func(accounts *map[string]Account) error {
		account, ok := (*accounts)[userID]
		if !ok || account.Coins < amount {
			return storage.ErrSkipSave
		}
		account.Coins -= amount
		(*accounts)[userID] = account
		removed = true
		return nil
	})
	return removed, err
}

// Charge debits amount from every user in one write, or from none of them
// if any balance is short.
func (l *Ledger) Charge(ctx context.Context, amount int, userIDs ...string) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	return l.doc.Update(ctx, func(accounts *map[string]Account) error {
		for _, userID := range userIDs {
			if (*accounts)[userID].Coins < amount {
				return ErrInsufficientFunds
			}
		}
		if amount == 0 {
			return storage.ErrSkipSave
		}
		for _, userID := range userIDs {
			account := (*accounts)[userID]
			account.Coins -= amount
			(*accounts)[userID] = account
		}
		return nil
	})
}

// Refund returns a Charge to every user. Refunds do not count as earnings.
func (l *Ledger) Refund(ctx context.Context, amount int, userIDs ...string) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount == 0 || len(userIDs) == 0 {
		return nil
	}
	return l.doc.Update(ctx, func(accounts *map[string]Account) error {
		for _, userID := range userIDs {
			account := (*accounts)[userID]
			account.Coins += amount
			(*accounts)[userID] = account
		}
		return nil
	})
}

func (l *Ledger) CanClaimDaily(ctx context.Context, userID string) bool {
	return utils.CooldownElapsed(l.Account(ctx, userID).LastDaily.Time, l.clock.Now(), l.location)
}

// ClaimDaily grants a random reward once per calendar day. A second claim
// on the same day returns (false, 0).
func (l *Ledger) ClaimDaily(ctx context.Context, userID string) (bool, int, error) {
	return l.claim(ctx, userID, l.cfg.DailyMin, l.cfg.DailyMax, func(a *Account) *storage.Time { return &a.LastDaily })
}

func (l *Ledger) CanClaimNewPhrase(ctx context.Context, userID string) bool {
	return utils.CooldownElapsed(l.Account(ctx, userID).LastNewPhrase.Time, l.clock.Now(), l.location)
}

func (l *Ledger) ClaimNewPhrase(ctx context.Context, userID string) (bool, int, error) {
	return l.claim(ctx, userID, l.cfg.PhraseMin, l.cfg.PhraseMax, func(a *Account) *storage.Time { return &a.LastNewPhrase })
}

func (l *Ledger) claim(ctx context.Context, userID string, lo, hi int, stamp func(*Account) *storage.Time) (bool, int, error) {
	granted, amount := false, 0
	now := l.clock.Now()
	err := l.doc.Update(ctx, func(accounts *map[string]Account) error {
		account := (*accounts)[userID]
		last := stamp(&account)
		if !utils.CooldownElapsed(last.Time, now, l.location) {
			return storage.ErrSkipSave
		}
		amount = l.between(lo, hi)
		credit(&account, amount)
		*last = storage.NewTime(now)
		(*accounts)[userID] = account
		granted = true
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return granted, amount, nil
}

// IncrementRoleplay bumps a display-only counter and returns its new value.
func (l *Ledger) IncrementRoleplay(ctx context.Context, userID, kind string) (int, error) {
	count := 0
	err := l.doc.Update(ctx, func(accounts *map[string]Account) error {
		account := (*accounts)[userID]
		if account.RoleplayCounts == nil {
			account.RoleplayCounts = make(map[string]int)
		}
		account.RoleplayCounts[kind]++
		count = account.RoleplayCounts[kind]
		(*accounts)[userID] = account
		return nil
	})
	return count, err
}

func (l *Ledger) RoleplayCounts(ctx context.Context, userID string) map[string]int {
	counts := l.Account(ctx, userID).RoleplayCounts
	if counts == nil {
		return map[string]int{}
	}
	return counts
}

// TopBalances returns the richest users, ties broken by user id.
func (l *Ledger) TopBalances(ctx context.Context, limit int) []Balance {
	accounts := l.doc.Load(ctx)
	balances := make([]Balance, 0, len(accounts))
	for userID, account := range accounts {
		if account.Coins > 0 {
			balances = append(balances, Balance{UserID: userID, Coins: account.Coins})
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Coins != balances[j].Coins {
			return balances[i].Coins > balances[j].Coins
		}
		return balances[i].UserID < balances[j].UserID
	})
	if limit > 0 && len(balances) > limit {
		balances = balances[:limit]
	}
	return balances
}

func (l *Ledger) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + l.intn(hi-lo+1)
}

func credit(account *Account, amount int) {
	account.Coins += amount
	account.TotalEarned += amount
}
