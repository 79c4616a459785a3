package social

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, c Counters) *CounterSync {
	t.Helper()
	s := NewCounterSync(30 * time.Second)
	s.Seed("setup:s1", c)
	return s
}

func counts(t *testing.T, s *CounterSync, entity string) Counters {
	t.Helper()
	c, ok := s.Counters(entity)
	require.True(t, ok)
	return c
}

func TestSeedDoesNotOverwriteTrackedEntity(t *testing.T) {
	s := seeded(t, Counters{Comments: 3})
	s.Optimistic("setup:s1", KindComments, 1)

	// A second seed must not clobber the in-flight delta.
	s.Seed("setup:s1", Counters{Comments: 10})
	assert.Equal(t, 4, counts(t, s, "setup:s1").Comments)
}

func TestOptimisticThenConfirm(t *testing.T) {
	s := seeded(t, Counters{Comments: 3})

	s.Optimistic("setup:s1", KindComments, 1)
	assert.Equal(t, 4, counts(t, s, "setup:s1").Comments)

	s.ConfirmWrite("setup:s1", KindComments, "INSERT:comments:7", 1)
	assert.Equal(t, 4, counts(t, s, "setup:s1").Comments)

	// The feed echo of our own write is already consumed by key.
	s.ApplyInsert("setup:s1", KindComments, "INSERT:comments:7")
	assert.Equal(t, 4, counts(t, s, "setup:s1").Comments)
}

func TestRollbackUndoesOptimistic(t *testing.T) {
	s := seeded(t, Counters{Likes: 2})

	s.Optimistic("setup:s1", KindLikes, 1)
	s.Rollback("setup:s1", KindLikes, 1)
	assert.Equal(t, 2, counts(t, s, "setup:s1").Likes)
}

func TestApplyInsertDuplicateDelivery(t *testing.T) {
	s := seeded(t, Counters{Comments: 3})

	s.ApplyInsert("setup:s1", KindComments, "INSERT:comments:9")
	s.ApplyInsert("setup:s1", KindComments, "INSERT:comments:9")
	assert.Equal(t, 4, counts(t, s, "setup:s1").Comments)
}

func TestApplyInsertConsumesPendingOnce(t *testing.T) {
	s := seeded(t, Counters{Comments: 3})

	// A foreign write raced ours: our optimistic delta is consumed by the
	// first insert, the second insert counts in full.
	s.Optimistic("setup:s1", KindComments, 1)
	s.ApplyInsert("setup:s1", KindComments, "INSERT:comments:8")
	assert.Equal(t, 4, counts(t, s, "setup:s1").Comments)

	s.ApplyInsert("setup:s1", KindComments, "INSERT:comments:9")
	assert.Equal(t, 5, counts(t, s, "setup:s1").Comments)
}

func TestApplyDeleteFloorsAtZero(t *testing.T) {
	s := seeded(t, Counters{Comments: 0})

	s.ApplyDelete("setup:s1", KindComments, "DELETE:comments:4")
	assert.Equal(t, 0, counts(t, s, "setup:s1").Comments)
}

func TestApplyDeleteConsumesNegativePending(t *testing.T) {
	s := seeded(t, Counters{Comments: 2})

	s.Optimistic("setup:s1", KindComments, -1)
	assert.Equal(t, 1, counts(t, s, "setup:s1").Comments)

	s.ApplyDelete("setup:s1", KindComments, "DELETE:comments:4")
	assert.Equal(t, 1, counts(t, s, "setup:s1").Comments)
}

func TestUntrackedEntity(t *testing.T) {
	s := NewCounterSync(30 * time.Second)
	_, ok := s.Counters("setup:unknown")
	assert.False(t, ok)
}

func TestFeedEventsIgnoreUntrackedEntity(t *testing.T) {
	s := NewCounterSync(30 * time.Second)

	// A lone ±1 on a never-seeded entity would fabricate an absolute
	// count; the event must leave the entity untracked instead.
	s.ApplyInsert("setup:s9", KindComments, "INSERT:comments:4")
	_, ok := s.Counters("setup:s9")
	assert.False(t, ok)

	s.ApplyDelete("setup:s9", KindComments, "DELETE:comments:4")
	_, ok = s.Counters("setup:s9")
	assert.False(t, ok)

	s.SetAuthoritativeReactions("setup:s9", 2, 1)
	_, ok = s.Counters("setup:s9")
	assert.False(t, ok)
}

func TestSetAuthoritativeOverwrites(t *testing.T) {
	s := seeded(t, Counters{Comments: 3, Likes: 1})
	s.SetAuthoritative("setup:s1", Counters{Comments: 7, Likes: 2})

	c := counts(t, s, "setup:s1")
	assert.Equal(t, 7, c.Comments)
	assert.Equal(t, 2, c.Likes)
}

func TestSetAuthoritativeReactionsKeepsComments(t *testing.T) {
	s := seeded(t, Counters{Comments: 5, Likes: 1, Dislikes: 1})
	s.SetAuthoritativeReactions("setup:s1", 4, 0)

	c := counts(t, s, "setup:s1")
	assert.Equal(t, 5, c.Comments)
	assert.Equal(t, 4, c.Likes)
	assert.Equal(t, 0, c.Dislikes)
}

func TestExpireStaleDropsOldDeltas(t *testing.T) {
	s := NewCounterSync(30 * time.Second)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Seed("setup:s1", Counters{Comments: 3})
	s.Optimistic("setup:s1", KindComments, 1)

	// Fresh delta survives a resync.
	s.ExpireStale()
	assert.Equal(t, 4, counts(t, s, "setup:s1").Comments)

	current = current.Add(31 * time.Second)
	s.ExpireStale()
	assert.Equal(t, 3, counts(t, s, "setup:s1").Comments)
}

func TestExpireStalePrunesConsumedEventKeys(t *testing.T) {
	s := NewCounterSync(30 * time.Second)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Seed("setup:s1", Counters{Comments: 3})
	s.ApplyInsert("setup:s1", KindComments, "INSERT:comments:4")
	require.Len(t, s.seen["setup:s1"], 1)

	// Fresh keys survive a resync, old ones are dropped.
	s.ExpireStale()
	require.Len(t, s.seen["setup:s1"], 1)

	current = current.Add(31 * time.Second)
	s.ExpireStale()
	assert.Empty(t, s.seen["setup:s1"])
}

func TestDisplayedCountersFlooredAtZero(t *testing.T) {
	s := seeded(t, Counters{Likes: 0})

	s.Optimistic("setup:s1", KindLikes, -1)
	assert.Equal(t, 0, counts(t, s, "setup:s1").Likes)
}

func TestTracked(t *testing.T) {
	s := NewCounterSync(30 * time.Second)
	s.Seed("setup:s1", Counters{})
	s.Seed("comment:4", Counters{})

	assert.ElementsMatch(t, []string{"setup:s1", "comment:4"}, s.Tracked())
}
