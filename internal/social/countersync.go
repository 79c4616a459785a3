package social

import (
	"fmt"
	"sync"
	"time"
)

// CounterKind names one engagement counter on an entity.
type CounterKind int

const (
	KindComments CounterKind = iota
	KindLikes
	KindDislikes
)

// Counters is the engagement counter triple for one entity.
type Counters struct {
	Comments int `json:"comments_count"`
	Likes    int `json:"likes_count"`
	Dislikes int `json:"dislikes_count"`
}

// SetupEntity is the counter-cache key for a trade setup.
func SetupEntity(setupID string) string { return "setup:" + setupID }

// CommentEntity is the counter-cache key for a comment.
func CommentEntity(commentID uint) string { return fmt.Sprintf("comment:%d", commentID) }

type pendingDelta struct {
	delta int
	at    time.Time
}

// CounterSync reconciles locally-optimistic counter deltas against the
// authoritative change feed. Displayed counts are confirmed counts plus
// outstanding optimistic deltas; each delta is consumed exactly once by
// the matching feed event, keyed by row id so at-least-once delivery
// cannot double-count. It is the only shared mutable state in the core:
// request goroutines and the feed loop both touch it, hence the mutex.
type CounterSync struct {
	mu        sync.Mutex
	staleness time.Duration
	now       func() time.Time

	confirmed map[string]*Counters
	pending   map[string]map[CounterKind]*pendingDelta
	seen      map[string]map[string]time.Time
}

// NewCounterSync creates a CounterSync whose optimistic deltas are
// discarded on resync once older than staleness.
func NewCounterSync(staleness time.Duration) *CounterSync {
	return &CounterSync{
		staleness: staleness,
		now:       time.Now,
		confirmed: make(map[string]*Counters),
		pending:   make(map[string]map[CounterKind]*pendingDelta),
		seen:      make(map[string]map[string]time.Time),
	}
}

// Seed records authoritative counts for an entity not yet tracked. An
// already-tracked entity is left alone so in-flight deltas survive.
func (s *CounterSync) Seed(entity string, c Counters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.confirmed[entity]; !ok {
		copied := c
		s.confirmed[entity] = &copied
	}
}

// SetAuthoritative overwrites the confirmed counts for an entity with a
// fresh authoritative read, used during resync.
func (s *CounterSync) SetAuthoritative(entity string, c Counters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := c
	s.confirmed[entity] = &copied
}

// SetAuthoritativeReactions overwrites only the confirmed like/dislike
// counts for an entity, leaving the comments count alone. Used when a
// reaction UPDATE event arrives, which changes two counters at once
// without a row insert or delete to key on. Untracked entities are
// ignored; a partial overwrite on a zero base would leave a fabricated
// comments count behind.
func (s *CounterSync) SetAuthoritativeReactions(entity string, likes, dislikes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.confirmed[entity]
	if !ok {
		return
	}
	c.Likes = likes
	c.Dislikes = dislikes
}

// IsTracked reports whether the cache holds confirmed counts for entity.
func (s *CounterSync) IsTracked(entity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.confirmed[entity]
	return ok
}

// Tracked lists every entity the cache currently holds.
func (s *CounterSync) Tracked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	entities := make([]string, 0, len(s.confirmed))
	for entity := range s.confirmed {
		entities = append(entities, entity)
	}
	return entities
}

// Optimistic applies a local delta ahead of write confirmation. Call it
// only once the write has been accepted for submission; Rollback undoes
// it when the write is rejected synchronously.
func (s *CounterSync) Optimistic(entity string, kind CounterKind, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addPending(entity, kind, delta)
}

// Rollback removes a previously applied optimistic delta.
func (s *CounterSync) Rollback(entity string, kind CounterKind, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addPending(entity, kind, -delta)
}

// ConfirmWrite settles a completed local write: the row's event key is
// marked consumed so the feed echo is ignored, the matching optimistic
// delta is retired, and confirmed counts absorb the delta.
func (s *CounterSync) ConfirmWrite(entity string, kind CounterKind, eventKey string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markSeen(entity, eventKey)
	s.addPending(entity, kind, -delta)
	s.addConfirmed(entity, kind, delta)
}

// ApplyInsert applies an INSERT feed event. Duplicate delivery of the
// same event key is a no-op. An outstanding local delta for the same
// (entity, kind) is consumed instead of incrementing the displayed count
// a second time; with no matching delta the literal +1 is trusted.
// Events for entities the cache has never seeded are ignored: a lone ±1
// on top of a zero base would fabricate an absolute count, whereas the
// next read seeds authoritatively and already includes the row.
func (s *CounterSync) ApplyInsert(entity string, kind CounterKind, eventKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.confirmed[entity]; !ok {
		return
	}
	if s.isSeen(entity, eventKey) {
		return
	}
	s.markSeen(entity, eventKey)

	if pd := s.pendingFor(entity, kind); pd != nil && pd.delta > 0 {
		s.addPending(entity, kind, -1)
	}
	s.addConfirmed(entity, kind, 1)
}

// ApplyDelete applies a DELETE feed event: decrement by exactly one,
// floored at zero, once per event key. Untracked entities are ignored
// like in ApplyInsert.
func (s *CounterSync) ApplyDelete(entity string, kind CounterKind, eventKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.confirmed[entity]; !ok {
		return
	}
	if s.isSeen(entity, eventKey) {
		return
	}
	s.markSeen(entity, eventKey)

	if pd := s.pendingFor(entity, kind); pd != nil && pd.delta < 0 {
		s.addPending(entity, kind, 1)
	}
	s.addConfirmed(entity, kind, -1)
}

// ExpireStale discards optimistic deltas older than the staleness window.
// Called when the change feed reconnects, before authoritative re-reads,
// so the cache stops trusting deltas whose confirmations may have been
// lost while disconnected. Consumed event keys age out on the same
// window: a key that old cannot be usefully redelivered, and keeping it
// would grow the dedup sets without bound.
func (s *CounterSync) ExpireStale() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.staleness)
	for entity, kinds := range s.pending {
		for kind, pd := range kinds {
			if pd.at.Before(cutoff) {
				delete(kinds, kind)
			}
		}
		if len(kinds) == 0 {
			delete(s.pending, entity)
		}
	}

	for entity, keys := range s.seen {
		for key, at := range keys {
			if at.Before(cutoff) {
				delete(keys, key)
			}
		}
		if len(keys) == 0 {
			delete(s.seen, entity)
		}
	}
}

// Counters returns the displayed counts for an entity: confirmed plus
// outstanding optimistic deltas, floored at zero per counter.
func (s *CounterSync) Counters(entity string) (Counters, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.confirmed[entity]
	if !ok {
		return Counters{}, false
	}
	out := *base
	for kind, pd := range s.pending[entity] {
		switch kind {
		case KindComments:
			out.Comments += pd.delta
		case KindLikes:
			out.Likes += pd.delta
		case KindDislikes:
			out.Dislikes += pd.delta
		}
	}
	out.Comments = max(out.Comments, 0)
	out.Likes = max(out.Likes, 0)
	out.Dislikes = max(out.Dislikes, 0)
	return out, true
}

func (s *CounterSync) pendingFor(entity string, kind CounterKind) *pendingDelta {
	kinds, ok := s.pending[entity]
	if !ok {
		return nil
	}
	return kinds[kind]
}

func (s *CounterSync) addPending(entity string, kind CounterKind, delta int) {
	if delta == 0 {
		return
	}
	kinds, ok := s.pending[entity]
	if !ok {
		kinds = make(map[CounterKind]*pendingDelta)
		s.pending[entity] = kinds
	}
	pd, ok := kinds[kind]
	if !ok {
		kinds[kind] = &pendingDelta{delta: delta, at: s.now()}
		return
	}
	pd.delta += delta
	pd.at = s.now()
	if pd.delta == 0 {
		delete(kinds, kind)
	}
}

func (s *CounterSync) addConfirmed(entity string, kind CounterKind, delta int) {
	c, ok := s.confirmed[entity]
	if !ok {
		c = &Counters{}
		s.confirmed[entity] = c
	}
	switch kind {
	case KindComments:
		c.Comments = max(c.Comments+delta, 0)
	case KindLikes:
		c.Likes = max(c.Likes+delta, 0)
	case KindDislikes:
		c.Dislikes = max(c.Dislikes+delta, 0)
	}
}

func (s *CounterSync) markSeen(entity, eventKey string) {
	keys, ok := s.seen[entity]
	if !ok {
		keys = make(map[string]time.Time)
		s.seen[entity] = keys
	}
	keys[eventKey] = s.now()
}

func (s *CounterSync) isSeen(entity, eventKey string) bool {
	_, ok := s.seen[entity][eventKey]
	return ok
}
