package handlers

import "github.com/nahid71/vibegram/backend/internal/models"

// visibleExploreAuthors filters candidate authors down to those whose content
// the viewer may see in explore/search contexts: public accounts are visible
// to all, private accounts only to their followers (and themselves).
func visibleExploreAuthors(viewerID uint, authors []models.User, followingIDs []uint) []models.User {
	following := make(map[uint]bool, len(followingIDs))
	for _, id := range followingIDs {
		following[id] = true
	}

	visible := make([]models.User, 0, len(authors))
	for _, a := range authors {
		if !a.IsPrivate || a.ID == viewerID || following[a.ID] {
			visible = append(visible, a)
		}
	}
	return visible
}

// groupStoriesByAuthor folds a newest-first story list into rail groups.
// The group key is the author; group order derives from each author's most
// recent story, which is their first appearance in the input.
func groupStoriesByAuthor(stories []models.Story) [][]models.Story {
	index := make(map[uint]int)
	groups := make([][]models.Story, 0)
	for _, s := range stories {
		if i, ok := index[s.UserID]; ok {
			groups[i] = append(groups[i], s)
			continue
		}
		index[s.UserID] = len(groups)
		groups = append(groups, []models.Story{s})
	}
	return groups
}
