package models

import "gorm.io/gorm"

// RequestStatus is the lifecycle status of a directional friend request.
// A cancelled request is deleted outright; there is no cancelled status.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusDeclined RequestStatus = "declined"
)

// FriendRequest represents a directional friend request between two traders.
// SenderID and RecipientID are Firebase UIDs.
type FriendRequest struct {
	gorm.Model
	SenderID    string        `json:"sender_id" gorm:"index;uniqueIndex:idx_request_pair"`
	RecipientID string        `json:"recipient_id" gorm:"index;uniqueIndex:idx_request_pair"`
	Status      RequestStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
}

// RelationshipStatus is the status carried by the canonical Friendship
// row. Only blocks are stored here; accepted friendships are derived
// from the request table.
type RelationshipStatus string

const (
	RelationshipBlocked RelationshipStatus = "blocked"
)

// Friendship is the canonical relationship row for an unordered pair of
// users. User1ID < User2ID lexicographically, so that any block or lookup
// issued from either side resolves to the same row.
type Friendship struct {
	gorm.Model
	User1ID      string             `json:"user1_id" gorm:"index;uniqueIndex:idx_friendship_pair"`
	User2ID      string             `json:"user2_id" gorm:"index;uniqueIndex:idx_friendship_pair"`
	Status       RelationshipStatus `json:"status" gorm:"type:varchar(20)"`
	ActionUserID string             `json:"action_user_id"` // who last changed the row; only they may unblock
}

// CreateFriendRequestBody defines the request body for sending a friend request
type CreateFriendRequestBody struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

// UserTargetBody defines the request body for operations that target another user
type UserTargetBody struct {
	UserID string `json:"user_id" validate:"required"`
}
