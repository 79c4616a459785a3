package models

import "gorm.io/gorm"

// Comment represents a comment on a shared trade setup. A comment with a
// non-nil ParentCommentID is a reply; reply depth is unbounded in storage.
type Comment struct {
	gorm.Model
	TradeSetupID    string `json:"trade_setup_id" gorm:"index"` // ID of the setup the comment belongs to (MongoDB ObjectID as string)
	AuthorID        string `json:"author_id" gorm:"index"`      // Firebase UID of the comment author
	Content         string `json:"content"`
	ParentCommentID *uint  `json:"parent_comment_id,omitempty" gorm:"index"` // nil means top-level
	IsEdited        bool   `json:"is_edited" gorm:"default:false"`

	// Derived from the reactions table, never stored here.
	LikesCount    int `json:"likes_count" gorm:"-"`
	DislikesCount int `json:"dislikes_count" gorm:"-"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// CreateReplyRequest defines the request body for replying to a comment
type CreateReplyRequest struct {
	ParentCommentID uint   `json:"parent_comment_id" validate:"required"`
	Content         string `json:"content" validate:"required,min=1,max=1000"`
}

// UpdateCommentRequest defines the request body for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}
