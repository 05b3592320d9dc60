package marriage

import (
	"testing"
	"time"
)

func TestProposalTakenOnce(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC)}
	proposals := NewProposals(5 * time.Minute).WithClock(clock)

	proposal := proposals.Open("g", "a", "b")
	if proposal.ID == "" {
		t.Fatalf("expected proposal id")
	}
	if _, ok := proposals.Peek(proposal.ID); !ok {
		t.Fatalf("expected proposal visible")
	}
	got, ok := proposals.Take(proposal.ID)
	if !ok || got.TargetID != "b" {
		t.Fatalf("expected proposal for b, got %+v %v", got, ok)
	}
	if _, ok := proposals.Take(proposal.ID); ok {
		t.Fatalf("expected proposal consumed")
	}
}

func TestProposalExpires(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC)}
	proposals := NewProposals(time.Minute).WithClock(clock)

	expired := proposals.Open("g", "a", "b")
	clock.now = clock.now.Add(time.Minute)
	if _, ok := proposals.Take(expired.ID); ok {
		t.Fatalf("expected expired proposal refused")
	}

	proposals.Open("g", "c", "d")
	clock.now = clock.now.Add(2 * time.Minute)
	if removed := proposals.Sweep(); removed != 1 {
		t.Fatalf("expected 1 swept, got %d", removed)
	}
}

func TestProposalDiscard(t *testing.T) {
	proposals := NewProposals(time.Minute)
	proposal := proposals.Open("g", "a", "b")

	if !proposals.Discard(proposal.ID) {
		t.Fatalf("expected pending proposal discarded")
	}
	if proposals.Discard(proposal.ID) {
		t.Fatalf("expected second discard to report nothing pending")
	}
	if _, ok := proposals.Take(proposal.ID); ok {
		t.Fatalf("expected discarded proposal gone")
	}
}
