package players

import (
	"errors"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Capacity is the number of live identities. Id 0 is reserved for "nobody",
// so every id fits in one byte.
const Capacity = 255

var ErrUnknownPlayer = errors.New("unknown player")

// NameSource hands out display names.
type NameSource interface {
	Next() string
}

// Player is one address-derived identity and the connections bound to it.
type Player struct {
	ID         uint8
	Name       string
	Color      [4]byte
	LastActive time.Time

	outbound []*Outbound
}

// Attach binds another connection (e.g. a second tab) to the player.
func (p *Player) Attach(o *Outbound) {
	p.outbound = append(p.outbound, o)
}

// Send delivers frame to every live connection and prunes the dead ones.
// It returns how many connections accepted the frame.
func (p *Player) Send(frame []byte) int {
	delivered := 0
	live := p.outbound[:0]
	for _, o := range p.outbound {
		if o.Send(frame) {
			live = append(live, o)
			delivered++
		}
	}
	for i := len(live); i < len(p.outbound); i++ {
		p.outbound[i] = nil
	}
	p.outbound = live
	return delivered
}

// Connections is the number of attached connections not yet pruned.
func (p *Player) Connections() int {
	return len(p.outbound)
}

func (p *Player) detachAll() {
	for _, o := range p.outbound {
		o.Close()
	}
	p.outbound = nil
}

// Registry maps address keys to players. It is owned by a single goroutine.
type Registry struct {
	// recency order doubles as the eviction tie-break
	cache *lru.Cache[string, *Player]
	names NameSource
	now   func() time.Time
}

func NewRegistry(names NameSource, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	cache, err := lru.New[string, *Player](Capacity)
	if err != nil {
		panic(fmt.Sprintf("players: lru cache: %v", err))
	}
	return &Registry{cache: cache, names: names, now: now}
}

// Ensure returns the player for addr, creating it when unseen, and marks it
// active. created reports whether a new identity was assigned.
func (r *Registry) Ensure(addr string) (p *Player, created bool) {
	if p, ok := r.cache.Get(addr); ok {
		p.LastActive = r.now()
		return p, false
	}

	id := uint8(r.cache.Len() + 1)
	if r.cache.Len() >= Capacity {
		id = r.evictIdlest()
	}
	p = &Player{
		ID:         id,
		Name:       r.nextName(id),
		Color:      ColorFor(id),
		LastActive: r.now(),
	}
	r.cache.Add(addr, p)
	return p, true
}

// KeepAlive marks addr active and returns its id.
func (r *Registry) KeepAlive(addr string) (uint8, error) {
	p, ok := r.cache.Get(addr)
	if !ok {
		return 0, ErrUnknownPlayer
	}
	p.LastActive = r.now()
	return p.ID, nil
}

// Get looks addr up without marking it active.
func (r *Registry) Get(addr string) (*Player, bool) {
	return r.cache.Peek(addr)
}

// Players lists every player, least recently active first.
func (r *Registry) Players() []*Player {
	return r.cache.Values()
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// Broadcast sends frame to every connection of every player.
func (r *Registry) Broadcast(frame []byte) int {
	delivered := 0
	for _, p := range r.cache.Values() {
		delivered += p.Send(frame)
	}
	return delivered
}

// evictIdlest drops the player with the oldest activity and returns its id
// for reuse. Its connections are closed.
func (r *Registry) evictIdlest() uint8 {
	var (
		victimKey string
		victim    *Player
	)
	for _, key := range r.cache.Keys() {
		p, ok := r.cache.Peek(key)
		if !ok {
			continue
		}
		if victim == nil || p.LastActive.Before(victim.LastActive) {
			victimKey, victim = key, p
		}
	}
	r.cache.Remove(victimKey)
	victim.detachAll()
	log.Printf("[Players] Evicted player %d (%s) idle since %s", victim.ID, Fingerprint(victimKey), victim.LastActive.Format(time.RFC3339))
	return victim.ID
}

func (r *Registry) nextName(id uint8) string {
	if r.names != nil {
		if name := r.names.Next(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("player-%d", id)
}

// CloseAll closes every attached connection. The players stay registered.
func (r *Registry) CloseAll() {
	for _, p := range r.cache.Values() {
		p.detachAll()
	}
}
