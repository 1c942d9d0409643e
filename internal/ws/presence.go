package ws

import (
	"sort"
	"sync"
)

// Presence tracks which user identifiers currently hold at least one open
// connection. It is a plain set: marking an online user online again or
// removing an absent one are both no-ops.
type Presence struct {
	mu     sync.Mutex
	online map[string]struct{}
}

// NewPresence creates an empty presence set.
func NewPresence() *Presence {
	return &Presence{online: make(map[string]struct{})}
}

// Add marks the user online. Returns false when the user was already there.
func (p *Presence) Add(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.online[userID]; ok {
		return false
	}
	p.online[userID] = struct{}{}
	return true
}

// Remove marks the user offline. Removing an unknown user is harmless.
func (p *Presence) Remove(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
}

// IsOnline reports whether the user is currently marked online.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.online[userID]
	return ok
}

// Snapshot returns the sorted list of online user identifiers.
func (p *Presence) Snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := make([]string, 0, len(p.online))
	for userID := range p.online {
		list = append(list, userID)
	}
	sort.Strings(list)
	return list
}
