package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story media types
const (
	StoryMediaImage = "image"
	StoryMediaVideo = "video"
)

// Story represents an ephemeral story stored in MongoDB. The expires_at field
// carries a TTL index so the store deletes the document 24h after creation.
type Story struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"user_id" bson:"user_id"`
	MediaURL      string             `json:"media_url" bson:"media_url"`
	MediaType     string             `json:"media_type" bson:"media_type"` // "image" or "video"
	Caption       string             `json:"caption,omitempty" bson:"caption,omitempty"`
	Location      string             `json:"location,omitempty" bson:"location,omitempty"`
	TaggedUserIDs []uint             `json:"tagged_user_ids,omitempty" bson:"tagged_user_ids,omitempty"`
	LikeUserIDs   []uint             `json:"like_user_ids" bson:"like_user_ids"`
	Views         []StoryView        `json:"views" bson:"views"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt     time.Time          `json:"expires_at" bson:"expires_at"`
}

// StoryView records a single viewer of a story. At most one per viewer.
type StoryView struct {
	UserID   uint      `json:"user_id" bson:"user_id"`
	ViewedAt time.Time `json:"viewed_at" bson:"viewed_at"`
}

// IsOwnedBy reports whether the story belongs to the given user
func (s *Story) IsOwnedBy(userID uint) bool {
	return s.UserID == userID
}

// IsLikedBy reports whether the given user is in the liker set
func (s *Story) IsLikedBy(userID uint) bool {
	for _, id := range s.LikeUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// StoryItemRequest is one story in a batch create request
type StoryItemRequest struct {
	MediaURL      string `json:"media_url" validate:"required,url"`
	MediaType     string `json:"media_type" validate:"required,oneof=image video"`
	Caption       string `json:"caption,omitempty" validate:"omitempty,max=500"`
	Location      string `json:"location,omitempty" validate:"omitempty,max=100"`
	TaggedUserIDs []uint `json:"tagged_user_ids,omitempty"`
}

// CreateStoriesRequest defines the request body for creating stories.
// Each item becomes its own story document.
type CreateStoriesRequest struct {
	Items []StoryItemRequest `json:"items" validate:"required,min=1,dive"`
}
