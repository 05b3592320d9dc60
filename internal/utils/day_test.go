package utils

import (
	"testing"
	"time"
)

func TestCooldownElapsed(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	late := time.Date(2024, 5, 1, 23, 50, 0, 0, loc)

	if !CooldownElapsed(time.Time{}, late, loc) {
		t.Fatalf("expected never-done action to be allowed")
	}
	if CooldownElapsed(late, late.Add(5*time.Minute), loc) {
		t.Fatalf("expected same calendar day to be blocked")
	}
	if !CooldownElapsed(late, late.Add(15*time.Minute), loc) {
		t.Fatalf("expected next calendar day to be allowed")
	}
}

func TestCooldownUsesZone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC on the 2nd is still the 1st in BRT.
	first := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)
	second := time.Date(2024, 5, 2, 1, 0, 0, 0, time.UTC)
	if CooldownElapsed(first, second, loc) {
		t.Fatalf("expected same local day to be blocked")
	}
}
