package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePair(t *testing.T) {
	first, second := NormalizePair("bob", "alice")
	assert.Equal(t, "alice", first)
	assert.Equal(t, "bob", second)

	first, second = NormalizePair("alice", "bob")
	assert.Equal(t, "alice", first)
	assert.Equal(t, "bob", second)
}

func TestNormalizePairEqualInputs(t *testing.T) {
	first, second := NormalizePair("alice", "alice")
	assert.Equal(t, "alice", first)
	assert.Equal(t, "alice", second)
}
