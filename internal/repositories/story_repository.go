package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/nahid71/vibegram/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStoryNotFound is returned when a story id does not resolve, including
// stories already removed by the TTL monitor.
var ErrStoryNotFound = fmt.Errorf("story not found")

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	EnsureIndexes(ctx context.Context) error
	CreateStories(ctx context.Context, stories []*models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	GetStoriesByUserIDs(ctx context.Context, userIDs []uint) ([]models.Story, error)
	AddLike(ctx context.Context, storyID string, userID uint) (bool, error)
	RemoveLike(ctx context.Context, storyID string, userID uint) (bool, error)
	RecordView(ctx context.Context, storyID string, view models.StoryView) error
	DeleteStory(ctx context.Context, id string) error
	DeleteStoriesByUserID(ctx context.Context, userID uint) error
	DeleteExpiredStories(ctx context.Context) error
}

type mongoStoryRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
}

// NewMongoStoryRepository creates a story repository over the given database.
// ttl is the story visibility window from creation.
func NewMongoStoryRepository(db *mongo.Database, ttl time.Duration) StoryRepository {
	return &mongoStoryRepository{
		collection: db.Collection("stories"),
		ttl:        ttl,
	}
}

// EnsureIndexes creates the TTL index on expires_at so the store deletes
// stories at their expiry instant, plus the author query index.
func (r *mongoStoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	return err
}

// CreateStories inserts the batch all-or-nothing. Each story gets its ID and
// timestamps here. On a partial insert failure the already-inserted documents
// are removed again so no half-created batch survives.
func (r *mongoStoryRepository) CreateStories(ctx context.Context, stories []*models.Story) error {
	if len(stories) == 0 {
		return fmt.Errorf("empty story batch")
	}

	now := time.Now()
	docs := make([]interface{}, len(stories))
	ids := make([]primitive.ObjectID, len(stories))
	for i, s := range stories {
		s.ID = primitive.NewObjectID()
		s.CreatedAt = now
		s.ExpiresAt = now.Add(r.ttl)
		if s.LikeUserIDs == nil {
			s.LikeUserIDs = []uint{}
		}
		if s.Views == nil {
			s.Views = []models.StoryView{}
		}
		docs[i] = s
		ids[i] = s.ID
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		// Compensate: roll back whatever part of the batch made it in.
		r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
		return err
	}
	return nil
}

func (r *mongoStoryRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrStoryNotFound
	}
	var story models.Story
	err = r.collection.FindOne(ctx, bson.M{
		"_id":        objID,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&story)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return &story, nil
}

// GetStoriesByUserIDs returns non-expired stories by the given authors,
// newest first.
func (r *mongoStoryRepository) GetStoriesByUserIDs(ctx context.Context, userIDs []uint) ([]models.Story, error) {
	filter := bson.M{
		"user_id":    bson.M{"$in": userIDs},
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// AddLike adds the user to the liker set as a single conditional update.
// Returns true when the user was newly added, false when already present.
func (r *mongoStoryRepository) AddLike(ctx context.Context, storyID string, userID uint) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return false, ErrStoryNotFound
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "expires_at": bson.M{"$gt": time.Now()}},
		bson.M{"$addToSet": bson.M{"like_user_ids": userID}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrStoryNotFound
	}
	return res.ModifiedCount > 0, nil
}

// RemoveLike pulls the user from the liker set. Returns true when a like was
// actually removed.
func (r *mongoStoryRepository) RemoveLike(ctx context.Context, storyID string, userID uint) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return false, ErrStoryNotFound
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "expires_at": bson.M{"$gt": time.Now()}},
		bson.M{"$pull": bson.M{"like_user_ids": userID}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrStoryNotFound
	}
	return res.ModifiedCount > 0, nil
}

// RecordView appends a view record unless one already exists for the viewer.
// The uniqueness guard lives in the update filter, so concurrent first views
// cannot double-append. A repeat view matches the story but modifies nothing,
// which is the intended no-op.
func (r *mongoStoryRepository) RecordView(ctx context.Context, storyID string, view models.StoryView) error {
	objID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return ErrStoryNotFound
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":           objID,
			"expires_at":    bson.M{"$gt": time.Now()},
			"views.user_id": bson.M{"$ne": view.UserID},
		},
		bson.M{"$push": bson.M{"views": view}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the story is gone or the viewer already has a record.
		// Distinguish the two so a missing story still 404s.
		count, err := r.collection.CountDocuments(ctx, bson.M{
			"_id":        objID,
			"expires_at": bson.M{"$gt": time.Now()},
		})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrStoryNotFound
		}
	}
	return nil
}

func (r *mongoStoryRepository) DeleteStory(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrStoryNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrStoryNotFound
	}
	return nil
}

func (r *mongoStoryRepository) DeleteStoriesByUserID(ctx context.Context, userID uint) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

// DeleteExpiredStories is a safety sweep behind the TTL index, kept for
// deployments where the TTL monitor is disabled.
func (r *mongoStoryRepository) DeleteExpiredStories(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	return err
}
