package repositories

import (
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	ListCommentsBySetup(setupID string) ([]models.Comment, error)
	UpdateCommentContent(id uint, content string) error
	DeleteComment(id uint) error
	CountCommentsBySetup(setupID string) (int64, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListCommentsBySetup retrieves all comments for a trade setup in
// chronological order, the order the tree builder preserves
func (r *PostgresCommentRepository) ListCommentsBySetup(setupID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("trade_setup_id = ?", setupID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateCommentContent replaces a comment's content and marks it edited
func (r *PostgresCommentRepository) UpdateCommentContent(id uint, content string) error {
	return r.db.Model(&models.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"content": content, "is_edited": true}).Error
}

// DeleteComment hard-deletes a comment by ID. Replies are left in place;
// the tree builder promotes them to roots.
func (r *PostgresCommentRepository) DeleteComment(id uint) error {
	return r.db.Unscoped().Delete(&models.Comment{}, id).Error
}

// CountCommentsBySetup counts all comments attached to a trade setup
func (r *PostgresCommentRepository) CountCommentsBySetup(setupID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("trade_setup_id = ?", setupID).Count(&count).Error
	return count, err
}
