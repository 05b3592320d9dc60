package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"canary-bot/internal/config"
	"canary-bot/internal/storage"

	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func newTestLedger(t *testing.T) (*Ledger, *fakeClock) {
	t.Helper()
	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	clock := &fakeClock{now: time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC)}
	cfg := config.DefaultConfig().Economy
	return New(backend, "user_coins.json", cfg, time.UTC, zap.NewNop()).WithClock(clock), clock
}

func TestClaimDailyOncePerDay(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	granted, amount, err := ledger.ClaimDaily(ctx, "u1")
	if err != nil || !granted {
		t.Fatalf("expected first claim granted, got %v %v", granted, err)
	}
	if amount < 50 || amount > 150 {
		t.Fatalf("expected amount in [50,150], got %d", amount)
	}
	if coins := ledger.Coins(ctx, "u1"); coins != amount {
		t.Fatalf("expected balance %d, got %d", amount, coins)
	}

	granted, second, err := ledger.ClaimDaily(ctx, "u1")
	if err != nil || granted || second != 0 {
		t.Fatalf("expected (false, 0), got (%v, %d) %v", granted, second, err)
	}
	if coins := ledger.Coins(ctx, "u1"); coins != amount {
		t.Fatalf("expected unchanged balance %d, got %d", amount, coins)
	}
}

func TestClaimDailyNextDay(t *testing.T) {
	ledger, clock := newTestLedger(t)
	ctx := context.Background()

	_, _, _ = ledger.ClaimDaily(ctx, "u1")
	if ledger.CanClaimDaily(ctx, "u1") {
		t.Fatalf("expected cooldown active")
	}
	clock.now = time.Date(2024, 7, 11, 0, 0, 1, 0, time.UTC)
	if !ledger.CanClaimDaily(ctx, "u1") {
		t.Fatalf("expected claim available next calendar day")
	}
	if granted, _, _ := ledger.ClaimDaily(ctx, "u1"); !granted {
		t.Fatalf("expected second-day claim granted")
	}
}

func TestRewardBounds(t *testing.T) {
	ledger, clock := newTestLedger(t)
	ctx := context.Background()

	ledger.WithRand(func(n int) int { return n - 1 })
	_, high, _ := ledger.ClaimDaily(ctx, "u1")
	if high != 150 {
		t.Fatalf("expected max reward 150, got %d", high)
	}

	ledger.WithRand(func(n int) int { return 0 })
	_, low, _ := ledger.ClaimNewPhrase(ctx, "u1")
	if low != 5 {
		t.Fatalf("expected min phrase reward 5, got %d", low)
	}

	clock.now = clock.now.Add(time.Hour)
	if granted, _, _ := ledger.ClaimNewPhrase(ctx, "u1"); granted {
		t.Fatalf("expected phrase cooldown active")
	}
	account := ledger.Account(ctx, "u1")
	if account.TotalEarned != 155 || account.Coins != 155 {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestDailyAndPhraseCooldownsIndependent(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, _, _ = ledger.ClaimDaily(ctx, "u1")
	if !ledger.CanClaimNewPhrase(ctx, "u1") {
		t.Fatalf("expected new phrase still available after daily")
	}
}

func TestRemoveCoins(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := ledger.AddCoins(ctx, "u1", 100); err != nil {
		t.Fatalf("add: %v", err)
	}
	if ok, _ := ledger.RemoveCoins(ctx, "u1", 101); ok {
		t.Fatalf("expected insufficient funds")
	}
	if coins := ledger.Coins(ctx, "u1"); coins != 100 {
		t.Fatalf("expected balance unchanged, got %d", coins)
	}
	if ok, _ := ledger.RemoveCoins(ctx, "u1", 40); !ok {
		t.Fatalf("expected valid debit")
	}
	if coins := ledger.Coins(ctx, "u1"); coins != 60 {
		t.Fatalf("expected 60, got %d", coins)
	}
	if account := ledger.Account(ctx, "u1"); account.TotalEarned != 100 {
		t.Fatalf("expected total earned untouched by debit, got %d", account.TotalEarned)
	}
	if _, err := ledger.AddCoins(ctx, "u1", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if ok, _ := ledger.RemoveCoins(ctx, "nobody", 1); ok {
		t.Fatalf("expected debit of unknown user to fail")
	}
}

func TestChargeIsAllOrNothing(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, _ = ledger.AddCoins(ctx, "a", 30000)
	_, _ = ledger.AddCoins(ctx, "b", 100)
	if err := ledger.Charge(ctx, 25000, "a", "b"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if coins := ledger.Coins(ctx, "a"); coins != 30000 {
		t.Fatalf("expected a untouched, got %d", coins)
	}

	_, _ = ledger.AddCoins(ctx, "b", 30000)
	if err := ledger.Charge(ctx, 25000, "a", "b"); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if ledger.Coins(ctx, "a") != 5000 || ledger.Coins(ctx, "b") != 5100 {
		t.Fatalf("unexpected balances after charge")
	}
}

func TestRefundKeepsEarnings(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, _ = ledger.AddCoins(ctx, "a", 300)
	if err := ledger.Charge(ctx, 200, "a"); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if err := ledger.Refund(ctx, 200, "a"); err != nil {
		t.Fatalf("refund: %v", err)
	}
	account := ledger.Account(ctx, "a")
	if account.Coins != 300 || account.TotalEarned != 300 {
		t.Fatalf("expected 300 coins and 300 earned, got %d and %d", account.Coins, account.TotalEarned)
	}
	if err := ledger.Refund(ctx, -1, "a"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestRoleplayCountsAndRanking(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	_, _ = ledger.IncrementRoleplay(ctx, "u1", "kiss")
	if count, _ := ledger.IncrementRoleplay(ctx, "u1", "kiss"); count != 2 {
		t.Fatalf("expected kiss count 2, got %d", count)
	}
	if counts := ledger.RoleplayCounts(ctx, "u1"); counts["kiss"] != 2 || counts["hug"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}

	_, _ = ledger.AddCoins(ctx, "a", 10)
	_, _ = ledger.AddCoins(ctx, "b", 30)
	_, _ = ledger.AddCoins(ctx, "c", 20)
	_, _ = ledger.AddCoins(ctx, "d", 5)
	top := ledger.TopBalances(ctx, 3)
	if len(top) != 3 || top[0].UserID != "b" || top[1].UserID != "c" || top[2].UserID != "a" {
		t.Fatalf("unexpected ranking %+v", top)
	}
}

func TestLegacyAccountShape(t *testing.T) {
	backend, _ := storage.NewFileBackend(t.TempDir())
	ctx := context.Background()
	legacy := `{"9": {"coins": 120, "last_daily": "2024-07-10T07:30:00.5", "total_earned": 400, "roleplay_counts": {"hug": 3}}}`
	if err := backend.Write(ctx, "user_coins.json", []byte(legacy)); err != nil {
		t.Fatalf("write: %v", err)
	}
	loc := time.Local
	clock := &fakeClock{now: time.Date(2024, 7, 10, 20, 0, 0, 0, loc)}
	ledger := New(backend, "user_coins.json", config.DefaultConfig().Economy, loc, zap.NewNop()).WithClock(clock)

	if ledger.CanClaimDaily(ctx, "9") {
		t.Fatalf("expected legacy same-day claim to block")
	}
	if !ledger.CanClaimNewPhrase(ctx, "9") {
		t.Fatalf("expected missing last_new_phrase to allow")
	}
	if ledger.RoleplayCounts(ctx, "9")["hug"] != 3 {
		t.Fatalf("expected legacy roleplay counts")
	}
}
