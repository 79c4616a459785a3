package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/repositories"
	"gorm.io/gorm"
)

// ReactionResult is the outcome of a reaction toggle: the user's new
// reaction state (nil after a toggle-off) and the fresh counter pair, so
// callers can update a local view without re-fetching.
type ReactionResult struct {
	Reaction      *models.Reaction `json:"reaction,omitempty"`
	LikesCount    int              `json:"likes_count"`
	DislikesCount int              `json:"dislikes_count"`
}

// ReactionService maintains at most one reaction per (target, user) with
// toggle/replace semantics. Two concurrent calls from the same user for
// the same target are not serialized; the unique index in storage is the
// only arbiter and the last write wins.
type ReactionService struct {
	repo repositories.ReactionRepository
}

// NewReactionService creates a new ReactionService
func NewReactionService(repo repositories.ReactionRepository) *ReactionService {
	return &ReactionService{repo: repo}
}

// React applies one user action: no existing reaction inserts, the same
// type toggles off, the other type switches in place.
func (s *ReactionService) React(ctx context.Context, kind models.TargetKind, targetID, userID string, t models.ReactionType) (*ReactionResult, error) {
	existing, err := s.repo.GetReaction(kind, targetID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up reaction: %w", err)
	}

	var current *models.Reaction
	switch {
	case existing == nil:
		reaction := &models.Reaction{
			TargetKind: kind,
			TargetID:   targetID,
			UserID:     userID,
			Type:       t,
		}
		err = s.repo.CreateReaction(reaction)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent call from the same user won the insert; re-read
			// and resolve against that row instead.
			existing, err = s.repo.GetReaction(kind, targetID, userID)
			if err != nil {
				return nil, fmt.Errorf("re-read racing reaction: %w", err)
			}
			return s.resolveExisting(existing, t, kind, targetID)
		}
		if err != nil {
			return nil, fmt.Errorf("create reaction: %w", err)
		}
		current = reaction

	default:
		return s.resolveExisting(existing, t, kind, targetID)
	}

	return s.result(current, kind, targetID)
}

func (s *ReactionService) resolveExisting(existing *models.Reaction, t models.ReactionType, kind models.TargetKind, targetID string) (*ReactionResult, error) {
	if existing.Type == t {
		if err := s.repo.DeleteReaction(existing.ID); err != nil {
			return nil, fmt.Errorf("remove reaction: %w", err)
		}
		return s.result(nil, kind, targetID)
	}

	if err := s.repo.UpdateReactionType(existing.ID, t); err != nil {
		return nil, fmt.Errorf("switch reaction: %w", err)
	}
	existing.Type = t
	return s.result(existing, kind, targetID)
}

func (s *ReactionService) result(current *models.Reaction, kind models.TargetKind, targetID string) (*ReactionResult, error) {
	likes, dislikes, err := s.repo.CountReactions(kind, targetID)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	return &ReactionResult{
		Reaction:      current,
		LikesCount:    int(likes),
		DislikesCount: int(dislikes),
	}, nil
}
