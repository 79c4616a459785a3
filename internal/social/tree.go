package social

import "github.com/pipcrest/tradejournal/backend/internal/models"

// CommentNode is a comment with its ordered replies attached.
type CommentNode struct {
	models.Comment
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree turns a flat comment list into a nested reply tree.
// The input order is preserved at every level, so callers control the
// sort (typically chronological). Replies whose parent is missing from
// the input are promoted to roots rather than dropped. Pure function,
// linear in the number of comments.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	index := make(map[uint]*CommentNode, len(comments))
	nodes := make([]*CommentNode, len(comments))
	for i := range comments {
		node := &CommentNode{Comment: comments[i], Replies: []*CommentNode{}}
		nodes[i] = node
		index[comments[i].ID] = node
	}

	roots := make([]*CommentNode, 0, len(comments))
	for _, node := range nodes {
		if node.ParentCommentID != nil {
			if parent, ok := index[*node.ParentCommentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
