package models

import "time"

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"` // friend_request, request_accepted, comment, reaction
	ActorID     string    `json:"actor_id" gorm:"index"`     // Firebase UID of who triggered it
	RecipientID string    `json:"recipient_id" gorm:"index"` // Firebase UID of who receives it
	TargetID    string    `json:"target_id"`                 // setup ID, comment ID, etc.
	TargetType  string    `json:"target_type" gorm:"size:20"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

const (
	NotificationFriendRequest   = "friend_request"
	NotificationRequestAccepted = "request_accepted"
	NotificationComment         = "comment"
	NotificationReaction        = "reaction"
)
