package models

import "time"

// ReactionType is either a like or a dislike.
type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// TargetKind identifies what a reaction or counter attaches to.
type TargetKind string

const (
	TargetSetup   TargetKind = "setup"
	TargetComment TargetKind = "comment"
)

// Reaction represents a single user's like or dislike on a trade setup or
// a comment. At most one row may exist per (target, user); repeating the
// same type removes the row, the other type updates it in place.
type Reaction struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	TargetKind TargetKind   `json:"target_kind" gorm:"type:varchar(10);uniqueIndex:idx_reaction_target_user"`
	TargetID   string       `json:"target_id" gorm:"index;uniqueIndex:idx_reaction_target_user"`
	UserID     string       `json:"user_id" gorm:"index;uniqueIndex:idx_reaction_target_user"` // Firebase UID
	Type       ReactionType `json:"type" gorm:"type:varchar(10)"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ReactRequest defines the request body for reacting to a setup or comment
type ReactRequest struct {
	Type ReactionType `json:"type" validate:"required,oneof=like dislike"`
}
