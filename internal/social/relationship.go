package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Relationship is the state of a user pair as observed from one side.
type Relationship string

const (
	RelationshipNone            Relationship = "none"
	RelationshipPendingSent     Relationship = "pending_sent"
	RelationshipPendingReceived Relationship = "pending_received"
	RelationshipFriends         Relationship = "friends"
	RelationshipBlocked         Relationship = "blocked"
)

// Notifier delivers a best-effort notification. Failures are logged and
// swallowed; they never fail the operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// FriendshipService owns the friendship lifecycle: the directional
// friend_requests table for request/accept/decline/cancel/unfriend and
// the canonical friendships table for block/unblock. A BLOCKED row takes
// precedence over any request-derived state.
type FriendshipService struct {
	repo     repositories.FriendshipRepository
	notifier Notifier
	log      *logrus.Logger
}

// NewFriendshipService creates a new FriendshipService
func NewFriendshipService(repo repositories.FriendshipRepository, notifier Notifier, log *logrus.Logger) *FriendshipService {
	return &FriendshipService{repo: repo, notifier: notifier, log: log}
}

// SendRequest creates a pending request from self to other. A declined
// request between the pair is superseded; a pending or accepted one is a
// domain error telling the caller which transition to take instead.
func (s *FriendshipService) SendRequest(ctx context.Context, self, other string) (*models.FriendRequest, error) {
	if self == other {
		return nil, ErrSelfReference
	}

	existing, err := s.repo.GetRequestBetween(self, other)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up existing request: %w", err)
	}

	if existing != nil {
		switch existing.Status {
		case models.RequestStatusAccepted:
			return nil, ErrAlreadyFriends
		case models.RequestStatusPending:
			if existing.SenderID == self {
				return nil, ErrDuplicateRequest
			}
			return nil, ErrReciprocalRequest
		case models.RequestStatusDeclined:
			// A decline does not permanently bar future requests.
			if err := s.repo.DeleteRequestByID(existing.ID); err != nil {
				return nil, fmt.Errorf("supersede declined request: %w", err)
			}
		}
	}

	req := &models.FriendRequest{
		SenderID:    self,
		RecipientID: other,
		Status:      models.RequestStatusPending,
	}
	if err := s.repo.CreateRequest(req); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Someone else created the competing row between our read and write.
			return nil, ErrDuplicateRequest
		}
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	s.notifyAsync(models.Notification{
		Type:        models.NotificationFriendRequest,
		ActorID:     self,
		RecipientID: other,
		TargetType:  "user",
		TargetID:    self,
		Message:     "sent you a friend request",
	})

	return req, nil
}

// AcceptRequest accepts a pending request sent by senderID to self.
// "Never existed" and "already actioned" are indistinguishable to the
// caller: both surface as ErrRequestNotFound.
func (s *FriendshipService) AcceptRequest(ctx context.Context, self, senderID string) error {
	rows, err := s.repo.UpdatePendingRequest(senderID, self, models.RequestStatusAccepted)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}

	s.notifyAsync(models.Notification{
		Type:        models.NotificationRequestAccepted,
		ActorID:     self,
		RecipientID: senderID,
		TargetType:  "user",
		TargetID:    self,
		Message:     "accepted your friend request",
	})
	return nil
}

// DeclineRequest declines a pending request sent by senderID to self. The
// declined row is retained until a future request supersedes it.
func (s *FriendshipService) DeclineRequest(ctx context.Context, self, senderID string) error {
	rows, err := s.repo.UpdatePendingRequest(senderID, self, models.RequestStatusDeclined)
	if err != nil {
		return fmt.Errorf("decline friend request: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// CancelRequest deletes self's own still-pending request to recipientID.
// Cancellation is a hard delete; no cancelled status exists.
func (s *FriendshipService) CancelRequest(ctx context.Context, self, recipientID string) error {
	rows, err := s.repo.DeletePendingRequest(self, recipientID)
	if err != nil {
		return fmt.Errorf("cancel friend request: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Unfriend deletes the accepted request between self and other,
// irrespective of who originally sent it.
func (s *FriendshipService) Unfriend(ctx context.Context, self, other string) error {
	rows, err := s.repo.DeleteAcceptedBetween(self, other)
	if err != nil {
		return fmt.Errorf("unfriend: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Block upserts the canonical relationship row to BLOCKED for the
// normalized pair, superseding any prior row. Request history is left
// untouched; Relationship gives BLOCKED precedence over it.
func (s *FriendshipService) Block(ctx context.Context, self, other string) error {
	if self == other {
		return ErrSelfReference
	}

	user1, user2 := NormalizePair(self, other)
	f := &models.Friendship{
		User1ID:      user1,
		User2ID:      user2,
		Status:       models.RelationshipBlocked,
		ActionUserID: self,
	}
	if err := s.repo.UpsertFriendship(f); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrRelationshipConflict
		}
		return fmt.Errorf("block user: %w", err)
	}
	return nil
}

// Unblock deletes the BLOCKED row for the pair, but only for the user who
// performed the block.
func (s *FriendshipService) Unblock(ctx context.Context, self, other string) error {
	user1, user2 := NormalizePair(self, other)

	f, err := s.repo.GetFriendship(user1, user2)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("look up block: %w", err)
	}
	if f.Status != models.RelationshipBlocked {
		return ErrRequestNotFound
	}
	if f.ActionUserID != self {
		return ErrNotAuthorized
	}

	rows, err := s.repo.DeleteFriendship(user1, user2)
	if err != nil {
		return fmt.Errorf("unblock user: %w", err)
	}
	if rows == 0 {
		// Raced with a concurrent unblock; already gone.
		return ErrRequestNotFound
	}
	return nil
}

// Relationship answers "what is the relationship between self and other"
// as observed from self's side. A BLOCKED canonical row wins over any
// request-derived state.
func (s *FriendshipService) Relationship(ctx context.Context, self, other string) (Relationship, error) {
	if self == other {
		return "", ErrSelfReference
	}

	user1, user2 := NormalizePair(self, other)
	f, err := s.repo.GetFriendship(user1, user2)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("look up relationship: %w", err)
	}
	if f != nil && f.Status == models.RelationshipBlocked {
		return RelationshipBlocked, nil
	}

	req, err := s.repo.GetRequestBetween(self, other)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RelationshipNone, nil
		}
		return "", fmt.Errorf("look up request: %w", err)
	}

	switch req.Status {
	case models.RequestStatusAccepted:
		return RelationshipFriends, nil
	case models.RequestStatusPending:
		if req.SenderID == self {
			return RelationshipPendingSent, nil
		}
		return RelationshipPendingReceived, nil
	default:
		return RelationshipNone, nil
	}
}

// ListFriends retrieves all accepted friends of userID
func (s *FriendshipService) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	return s.repo.ListFriends(userID)
}

// ListIncomingRequests retrieves all pending requests addressed to userID
func (s *FriendshipService) ListIncomingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.repo.ListIncomingRequests(userID)
}

func (s *FriendshipService) notifyAsync(n models.Notification) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.WithError(err).WithField("type", n.Type).Warn("notification delivery failed")
		}
	}()
}
