package marriage

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Proposal is a pending two-party request: a marriage proposal or a
// divorce confirmation. It can be taken exactly once before it expires.
type Proposal struct {
	ID         string
	GuildID    string
	ProposerID string
	TargetID   string
	ExpiresAt  time.Time
}

type Proposals struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	pending map[string]Proposal
}

func NewProposals(ttl time.Duration) *Proposals {
	return &Proposals{ttl: ttl, clock: realClock{}, pending: make(map[string]Proposal)}
}

func (p *Proposals) WithClock(clock Clock) *Proposals {
	if clock != nil {
		p.clock = clock
	}
	return p
}

func (p *Proposals) Open(guildID, proposerID, targetID string) Proposal {
	p.mu.Lock()
	defer p.mu.Unlock()

	proposal := Proposal{
		ID:         uuid.NewString(),
		GuildID:    guildID,
		ProposerID: proposerID,
		TargetID:   targetID,
		ExpiresAt:  p.clock.Now().Add(p.ttl),
	}
	p.pending[proposal.ID] = proposal
	return proposal
}

// Peek returns a live proposal without consuming it.
func (p *Proposals) Peek(id string) (Proposal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	proposal, ok := p.pending[id]
	if !ok || !p.clock.Now().Before(proposal.ExpiresAt) {
		return Proposal{}, false
	}
	return proposal, true
}

// Take consumes the proposal. Expired or already-taken proposals return false.
func (p *Proposals) Take(id string) (Proposal, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	proposal, ok := p.pending[id]
	if !ok {
		return Proposal{}, false
	}
	delete(p.pending, id)
	if !p.clock.Now().Before(proposal.ExpiresAt) {
		return Proposal{}, false
	}
	return proposal, true
}

// Sweep drops expired proposals and returns how many were removed.
func (p *Proposals) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock.Now()
	removed := 0
	for id, proposal := range p.pending {
		if !now.Before(proposal.ExpiresAt) {
			delete(p.pending, id)
			removed++
		}
	}
	return removed
}

// Discard removes the proposal whether or not it expired. It reports true
// when the proposal was still pending.
func (p *Proposals) Discard(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pending[id]; !ok {
		return false
	}
	delete(p.pending, id)
	return true
}
