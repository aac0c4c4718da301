package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestCreateStoriesCompensatesPartialInsertFailure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("mid-batch failure rolls back the whole batch", func(mt *mtest.T) {
		repo := NewMongoStoryRepository(mt.DB, 24*time.Hour)

		// Second document of the batch fails to insert.
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   1,
				Code:    11000,
				Message: "duplicate key",
			}),
			mtest.CreateSuccessResponse(),
		)

		stories := []*models.Story{
			{UserID: 1, MediaURL: "https://cdn.example.com/1.jpg", MediaType: models.StoryMediaImage},
			{UserID: 1, MediaURL: "https://cdn.example.com/2.jpg", MediaType: models.StoryMediaImage},
		}
		err := repo.CreateStories(context.Background(), stories)
		require.Error(mt, err)

		insertEvt := mt.GetStartedEvent()
		require.NotNil(mt, insertEvt)
		require.Equal(mt, "insert", insertEvt.CommandName)

		deleteEvt := mt.GetStartedEvent()
		require.NotNil(mt, deleteEvt)
		require.Equal(mt, "delete", deleteEvt.CommandName)

		// The rollback targets exactly the ids generated for this batch, so a
		// half-inserted batch cannot survive.
		deletes := deleteEvt.Command.Lookup("deletes").Array()
		filter := deletes.Index(0).Value().Document().Lookup("q").Document()
		ids, err := filter.Lookup("_id").Document().Lookup("$in").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, ids, 2)
	})

	mt.Run("empty batch rejected before touching the store", func(mt *mtest.T) {
		repo := NewMongoStoryRepository(mt.DB, 24*time.Hour)
		require.Error(mt, repo.CreateStories(context.Background(), nil))
		require.Nil(mt, mt.GetStartedEvent())
	})
}
