package repositories

import (
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	GetReaction(kind models.TargetKind, targetID, userID string) (*models.Reaction, error)
	CreateReaction(reaction *models.Reaction) error
	UpdateReactionType(id uint, t models.ReactionType) error
	DeleteReaction(id uint) error
	CountReactions(kind models.TargetKind, targetID string) (likes, dislikes int64, err error)
}

type postgresReactionRepository struct {
	db *gorm.DB
}

func NewPostgresReactionRepository(db *gorm.DB) ReactionRepository {
	return &postgresReactionRepository{db: db}
}

// GetReaction retrieves the single reaction a user holds on a target.
// Returns gorm.ErrRecordNotFound when the user has not reacted.
func (r *postgresReactionRepository) GetReaction(kind models.TargetKind, targetID, userID string) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.Where("target_kind = ? AND target_id = ? AND user_id = ?", kind, targetID, userID).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *postgresReactionRepository) CreateReaction(reaction *models.Reaction) error {
	return r.db.Create(reaction).Error
}

func (r *postgresReactionRepository) UpdateReactionType(id uint, t models.ReactionType) error {
	return r.db.Model(&models.Reaction{}).Where("id = ?", id).Update("type", t).Error
}

func (r *postgresReactionRepository) DeleteReaction(id uint) error {
	return r.db.Delete(&models.Reaction{}, id).Error
}

// CountReactions returns the like and dislike totals for a target
func (r *postgresReactionRepository) CountReactions(kind models.TargetKind, targetID string) (int64, int64, error) {
	var likes, dislikes int64
	err := r.db.Model(&models.Reaction{}).
		Where("target_kind = ? AND target_id = ? AND type = ?", kind, targetID, models.ReactionLike).
		Count(&likes).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&models.Reaction{}).
		Where("target_kind = ? AND target_id = ? AND type = ?", kind, targetID, models.ReactionDislike).
		Count(&dislikes).Error
	if err != nil {
		return 0, 0, err
	}
	return likes, dislikes, nil
}
