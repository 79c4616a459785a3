package repositories

import (
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendshipRepository defines the interface for friend request and
// canonical relationship data operations. It covers both tables the
// state machine reconciles: friend_requests (directional) and
// friendships (normalized pair).
type FriendshipRepository interface {
	GetRequestBetween(userA, userB string) (*models.FriendRequest, error)
	CreateRequest(req *models.FriendRequest) error
	UpdatePendingRequest(senderID, recipientID string, to models.RequestStatus) (int64, error)
	DeleteRequestByID(id uint) error
	DeletePendingRequest(senderID, recipientID string) (int64, error)
	DeleteAcceptedBetween(userA, userB string) (int64, error)
	ListIncomingRequests(recipientID string) ([]models.FriendRequest, error)
	ListFriends(userID string) ([]models.User, error)

	UpsertFriendship(f *models.Friendship) error
	GetFriendship(user1ID, user2ID string) (*models.Friendship, error)
	DeleteFriendship(user1ID, user2ID string) (int64, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// GetRequestBetween retrieves the friend request between two users in
// either direction. Returns gorm.ErrRecordNotFound when none exists.
func (r *PostgresFriendshipRepository) GetRequestBetween(userA, userB string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
		userA, userB, userB, userA).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest creates a new friend request row
func (r *PostgresFriendshipRepository) CreateRequest(req *models.FriendRequest) error {
	return r.db.Create(req).Error
}

// UpdatePendingRequest moves a pending request from senderID to recipientID
// into the given status. Returns the number of rows affected; zero means
// the request was never there or already actioned.
func (r *PostgresFriendshipRepository) UpdatePendingRequest(senderID, recipientID string, to models.RequestStatus) (int64, error) {
	res := r.db.Model(&models.FriendRequest{}).
		Where("sender_id = ? AND recipient_id = ? AND status = ?", senderID, recipientID, models.RequestStatusPending).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// DeleteRequestByID deletes a friend request row by primary key
func (r *PostgresFriendshipRepository) DeleteRequestByID(id uint) error {
	return r.db.Unscoped().Delete(&models.FriendRequest{}, id).Error
}

// DeletePendingRequest hard-deletes a pending request from senderID to recipientID
func (r *PostgresFriendshipRepository) DeletePendingRequest(senderID, recipientID string) (int64, error) {
	res := r.db.Unscoped().
		Where("sender_id = ? AND recipient_id = ? AND status = ?", senderID, recipientID, models.RequestStatusPending).
		Delete(&models.FriendRequest{})
	return res.RowsAffected, res.Error
}

// DeleteAcceptedBetween hard-deletes the accepted request between two users,
// irrespective of original direction
func (r *PostgresFriendshipRepository) DeleteAcceptedBetween(userA, userB string) (int64, error) {
	res := r.db.Unscoped().
		Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)) AND status = ?",
			userA, userB, userB, userA, models.RequestStatusAccepted).
		Delete(&models.FriendRequest{})
	return res.RowsAffected, res.Error
}

// ListIncomingRequests retrieves all pending friend requests addressed to a user
func (r *PostgresFriendshipRepository) ListIncomingRequests(recipientID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.Where("recipient_id = ? AND status = ?", recipientID, models.RequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// ListFriends retrieves all users with an accepted request shared with userID
func (r *PostgresFriendshipRepository) ListFriends(userID string) ([]models.User, error) {
	var friends []models.User
	sentTo := r.db.Table("friend_requests").Select("recipient_id").
		Where("sender_id = ? AND status = ?", userID, models.RequestStatusAccepted)
	receivedFrom := r.db.Table("friend_requests").Select("sender_id").
		Where("recipient_id = ? AND status = ?", userID, models.RequestStatusAccepted)

	err := r.db.Where("firebase_uid IN (?) OR firebase_uid IN (?)", sentTo, receivedFrom).
		Order("name ASC").
		Find(&friends).Error
	if err != nil {
		return nil, err
	}
	return friends, nil
}

// UpsertFriendship creates or overwrites the canonical relationship row,
// keyed on the normalized (user1_id, user2_id) pair
func (r *PostgresFriendshipRepository) UpsertFriendship(f *models.Friendship) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "action_user_id", "updated_at"}),
	}).Create(f).Error
}

// GetFriendship retrieves the canonical relationship row for a normalized pair.
// Returns gorm.ErrRecordNotFound when none exists.
func (r *PostgresFriendshipRepository) GetFriendship(user1ID, user2ID string) (*models.Friendship, error) {
	var f models.Friendship
	err := r.db.Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFriendship hard-deletes the canonical relationship row for a normalized pair
func (r *PostgresFriendshipRepository) DeleteFriendship(user1ID, user2ID string) (int64, error) {
	res := r.db.Unscoped().
		Where("user1_id = ? AND user2_id = ?", user1ID, user2ID).
		Delete(&models.Friendship{})
	return res.RowsAffected, res.Error
}
