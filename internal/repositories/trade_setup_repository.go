package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/pipcrest/tradejournal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TradeSetupRepository defines the interface for trade setup data operations
type TradeSetupRepository interface {
	CreateSetup(ctx context.Context, setup *models.TradeSetup) error
	GetSetupByID(ctx context.Context, id string) (*models.TradeSetup, error)
	GetSetupsByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]models.TradeSetup, error)
	GetAllSetups(ctx context.Context, skip, limit int64) ([]models.TradeSetup, error)
	DeleteSetup(ctx context.Context, id string) error
	AdjustLikesCount(ctx context.Context, setupID string, delta int) error
	AdjustDislikesCount(ctx context.Context, setupID string, delta int) error
	AdjustCommentsCount(ctx context.Context, setupID string, delta int) error
}

// MongoTradeSetupRepository implements TradeSetupRepository for MongoDB
type MongoTradeSetupRepository struct {
	collection *mongo.Collection
}

// NewMongoTradeSetupRepository creates a new MongoTradeSetupRepository
func NewMongoTradeSetupRepository(db *mongo.Database) *MongoTradeSetupRepository {
	return &MongoTradeSetupRepository{collection: db.Collection("trade_setups")}
}

// CreateSetup creates a new trade setup in MongoDB
func (r *MongoTradeSetupRepository) CreateSetup(ctx context.Context, setup *models.TradeSetup) error {
	setup.ID = primitive.NewObjectID()
	setup.CreatedAt = time.Now()
	setup.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, setup)
	return err
}

// GetSetupByID retrieves a trade setup by ID from MongoDB
func (r *MongoTradeSetupRepository) GetSetupByID(ctx context.Context, id string) (*models.TradeSetup, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid setup ID format: %w", err)
	}

	var setup models.TradeSetup
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&setup)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("trade setup not found")
		}
		return nil, err
	}
	return &setup, nil
}

// GetSetupsByAuthor retrieves setups shared by a specific trader
func (r *MongoTradeSetupRepository) GetSetupsByAuthor(ctx context.Context, authorID string, skip, limit int64) ([]models.TradeSetup, error) {
	var setups []models.TradeSetup
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"author_id": authorID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &setups); err != nil {
		return nil, err
	}
	return setups, nil
}

// GetAllSetups retrieves the shared setup feed with pagination
func (r *MongoTradeSetupRepository) GetAllSetups(ctx context.Context, skip, limit int64) ([]models.TradeSetup, error) {
	var setups []models.TradeSetup
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &setups); err != nil {
		return nil, err
	}
	return setups, nil
}

// DeleteSetup deletes a trade setup by ID from MongoDB
func (r *MongoTradeSetupRepository) DeleteSetup(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid setup ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("trade setup not found")
	}
	return nil
}

// AdjustLikesCount applies a delta to the likes counter of a setup
func (r *MongoTradeSetupRepository) AdjustLikesCount(ctx context.Context, setupID string, delta int) error {
	return r.adjustCounter(ctx, setupID, "likes_count", delta)
}

// AdjustDislikesCount applies a delta to the dislikes counter of a setup
func (r *MongoTradeSetupRepository) AdjustDislikesCount(ctx context.Context, setupID string, delta int) error {
	return r.adjustCounter(ctx, setupID, "dislikes_count", delta)
}

// AdjustCommentsCount applies a delta to the comments counter of a setup
func (r *MongoTradeSetupRepository) AdjustCommentsCount(ctx context.Context, setupID string, delta int) error {
	return r.adjustCounter(ctx, setupID, "comments_count", delta)
}

func (r *MongoTradeSetupRepository) adjustCounter(ctx context.Context, setupID, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(setupID)
	if err != nil {
		return fmt.Errorf("invalid setup ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}
