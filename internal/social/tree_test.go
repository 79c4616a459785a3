package social

import (
	"testing"

	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comment(id uint, parentID *uint) models.Comment {
	c := models.Comment{ParentCommentID: parentID}
	c.ID = id
	return c
}

func ptr(v uint) *uint { return &v }

func TestBuildCommentTreeNests(t *testing.T) {
	comments := []models.Comment{
		comment(1, nil),
		comment(2, ptr(1)),
		comment(3, ptr(1)),
		comment(4, ptr(2)),
		comment(5, nil),
	}

	tree := BuildCommentTree(comments)
	require.Len(t, tree, 2)

	assert.Equal(t, uint(1), tree[0].ID)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, uint(2), tree[0].Replies[0].ID)
	assert.Equal(t, uint(3), tree[0].Replies[1].ID)

	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, uint(4), tree[0].Replies[0].Replies[0].ID)

	assert.Equal(t, uint(5), tree[1].ID)
	assert.Empty(t, tree[1].Replies)
}

func TestBuildCommentTreePromotesOrphans(t *testing.T) {
	comments := []models.Comment{
		comment(1, nil),
		comment(2, ptr(99)), // parent deleted, must not be dropped
	}

	tree := BuildCommentTree(comments)
	require.Len(t, tree, 2)
	assert.Equal(t, uint(1), tree[0].ID)
	assert.Equal(t, uint(2), tree[1].ID)
}

func TestBuildCommentTreePreservesInputOrder(t *testing.T) {
	comments := []models.Comment{
		comment(3, nil),
		comment(1, nil),
		comment(5, ptr(3)),
		comment(4, ptr(3)),
	}

	tree := BuildCommentTree(comments)
	require.Len(t, tree, 2)
	assert.Equal(t, uint(3), tree[0].ID)
	assert.Equal(t, uint(1), tree[1].ID)

	// Replies keep the order they were given in, not id order.
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, uint(5), tree[0].Replies[0].ID)
	assert.Equal(t, uint(4), tree[0].Replies[1].ID)
}

func TestBuildCommentTreeSelfParent(t *testing.T) {
	// A row whose parent id points at itself must not recurse.
	comments := []models.Comment{comment(1, ptr(1))}

	tree := BuildCommentTree(comments)
	require.Len(t, tree, 1)
	assert.Equal(t, uint(1), tree[0].ID)
	assert.Empty(t, tree[0].Replies)
}

func TestBuildCommentTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildCommentTree(nil))
}
