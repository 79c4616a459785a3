package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TradeSetup represents a trade idea shared to the social forum, stored in MongoDB
type TradeSetup struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID      string             `json:"author_id" bson:"author_id"` // Firebase UID of the trader who shared the setup
	Pair          string             `json:"pair" bson:"pair"`           // e.g. "EURUSD"
	Direction     string             `json:"direction" bson:"direction"` // "long" or "short"
	EntryPrice    float64            `json:"entry_price" bson:"entry_price"`
	StopLoss      float64            `json:"stop_loss" bson:"stop_loss"`
	TakeProfit    float64            `json:"take_profit" bson:"take_profit"`
	Notes         string             `json:"notes,omitempty" bson:"notes,omitempty"`
	ChartImageURL string             `json:"chart_image_url,omitempty" bson:"chart_image_url,omitempty"`
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	DislikesCount int                `json:"dislikes_count" bson:"dislikes_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateTradeSetupRequest defines the request body for sharing a new setup
type CreateTradeSetupRequest struct {
	Pair          string  `json:"pair" validate:"required,len=6,alpha"`
	Direction     string  `json:"direction" validate:"required,oneof=long short"`
	EntryPrice    float64 `json:"entry_price" validate:"required,gt=0"`
	StopLoss      float64 `json:"stop_loss" validate:"required,gt=0"`
	TakeProfit    float64 `json:"take_profit" validate:"required,gt=0"`
	Notes         string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ChartImageURL string  `json:"chart_image_url,omitempty" validate:"omitempty,url"`
}
