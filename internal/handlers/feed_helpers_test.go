package handlers

import (
	"testing"

	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestGroupStoriesByAuthorKeepsFirstAppearanceOrder(t *testing.T) {
	t.Parallel()

	// Newest-first input interleaving two authors.
	stories := []models.Story{
		{UserID: 2, Caption: "b-new"},
		{UserID: 1, Caption: "a-new"},
		{UserID: 2, Caption: "b-old"},
		{UserID: 1, Caption: "a-old"},
	}

	groups := groupStoriesByAuthor(stories)
	require.Len(t, groups, 2)

	require.Equal(t, uint(2), groups[0][0].UserID)
	require.Equal(t, []string{"b-new", "b-old"}, captions(groups[0]))
	require.Equal(t, uint(1), groups[1][0].UserID)
	require.Equal(t, []string{"a-new", "a-old"}, captions(groups[1]))
}

func TestGroupStoriesByAuthorEmptyInput(t *testing.T) {
	t.Parallel()
	require.Empty(t, groupStoriesByAuthor(nil))
}

func TestGroupStoriesByAuthorSingleAuthor(t *testing.T) {
	t.Parallel()
	groups := groupStoriesByAuthor([]models.Story{
		{UserID: 7, Caption: "one"},
		{UserID: 7, Caption: "two"},
	})
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 2)
}

func TestVisibleExploreAuthorsHidesUnfollowedPrivateAccounts(t *testing.T) {
	t.Parallel()

	authors := []models.User{
		{ID: 1, Username: "public_a"},
		{ID: 2, Username: "private_followed", IsPrivate: true},
		{ID: 3, Username: "private_stranger", IsPrivate: true},
		{ID: 4, Username: "viewer_self", IsPrivate: true},
	}

	visible := visibleExploreAuthors(4, authors, []uint{2})

	require.Len(t, visible, 3)
	require.Equal(t, "public_a", visible[0].Username)
	require.Equal(t, "private_followed", visible[1].Username)
	require.Equal(t, "viewer_self", visible[2].Username)
}

func TestVisibleExploreAuthorsNoFollowing(t *testing.T) {
	t.Parallel()

	authors := []models.User{
		{ID: 1, IsPrivate: true},
		{ID: 2},
	}
	visible := visibleExploreAuthors(9, authors, nil)
	require.Len(t, visible, 1)
	require.Equal(t, uint(2), visible[0].ID)
}

func captions(stories []models.Story) []string {
	out := make([]string, 0, len(stories))
	for _, s := range stories {
		out = append(out, s.Caption)
	}
	return out
}
