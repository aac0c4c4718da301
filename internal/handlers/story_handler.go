package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/notify"
	"github.com/nahid71/vibegram/backend/internal/repositories"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	storyRepository        repositories.StoryRepository
	userRepository         repositories.UserRepository
	followRepository       repositories.FollowRepository
	reportRepository       repositories.ReportRepository
	notificationRepository repositories.NotificationRepository
	emitter                *notify.Emitter
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(
	storyRepo repositories.StoryRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	reportRepo repositories.ReportRepository,
	notifRepo repositories.NotificationRepository,
	emitter *notify.Emitter,
) *StoryHandler {
	return &StoryHandler{
		storyRepository:        storyRepo,
		userRepository:         userRepo,
		followRepository:       followRepo,
		reportRepository:       reportRepo,
		notificationRepository: notifRepo,
		emitter:                emitter,
	}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.POST("/stories", h.CreateStories)
	g.POST("/stories/:id/like", h.ToggleLike)
	g.POST("/stories/:id/view", h.RecordView)
	g.GET("/stories/:id/views", h.ListViewers)
	g.DELETE("/stories/:id", h.DeleteStory)
}

// StoryResponse is the enriched story response
type StoryResponse struct {
	ID         string             `json:"id"`
	Author     models.UserCompact `json:"author"`
	MediaURL   string             `json:"media_url"`
	MediaType  string             `json:"media_type"`
	Caption    string             `json:"caption,omitempty"`
	Location   string             `json:"location,omitempty"`
	LikesCount int                `json:"likes_count"`
	ViewsCount int                `json:"views_count"`
	IsLiked    bool               `json:"is_liked"`
	IsViewed   bool               `json:"is_viewed"`
	CreatedAt  string             `json:"created_at"`
	ExpiresAt  string             `json:"expires_at"`
}

// StoryGroup is one author's rail entry, stories newest first
type StoryGroup struct {
	Author  models.UserCompact `json:"author"`
	Stories []StoryResponse    `json:"stories"`
}

func storyToResponse(s models.Story, author models.UserCompact, viewerID uint) StoryResponse {
	isViewed := false
	for _, v := range s.Views {
		if v.UserID == viewerID {
			isViewed = true
			break
		}
	}
	return StoryResponse{
		ID:         s.ID.Hex(),
		Author:     author,
		MediaURL:   s.MediaURL,
		MediaType:  s.MediaType,
		Caption:    s.Caption,
		Location:   s.Location,
		LikesCount: len(s.LikeUserIDs),
		ViewsCount: len(s.Views),
		IsLiked:    s.IsLikedBy(viewerID),
		IsViewed:   isViewed,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
		ExpiresAt:  s.ExpiresAt.Format(time.RFC3339),
	}
}

// GetStories returns the viewer's story rail: own + followed authors'
// non-expired stories, grouped by author, groups ordered by their most
// recent story.
func (h *StoryHandler) GetStories(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	authorIDs := append([]uint{currentUserID}, followingIDs...)

	stories, err := h.storyRepository.GetStoriesByUserIDs(c.Request().Context(), authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ownerIDs := make([]uint, len(stories))
	for i, s := range stories {
		ownerIDs[i] = s.UserID
	}
	userMap := buildUserMap(h.userRepository, uniqueIDs(ownerIDs))

	// Stories come back newest first, so groups form in rail order.
	grouped := groupStoriesByAuthor(stories)
	groups := make([]StoryGroup, len(grouped))
	for i, g := range grouped {
		author := userMap[g[0].UserID]
		responses := make([]StoryResponse, len(g))
		for j, s := range g {
			responses[j] = storyToResponse(s, author, currentUserID)
		}
		groups[i] = StoryGroup{Author: author, Stories: responses}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"groups": groups},
	})
}

// CreateStories creates one story per submitted item, all timestamped at
// call time. The batch is all-or-nothing.
func (h *StoryHandler) CreateStories(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateStoriesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	stories := make([]*models.Story, len(req.Items))
	for i, item := range req.Items {
		stories[i] = &models.Story{
			UserID:        currentUserID,
			MediaURL:      item.MediaURL,
			MediaType:     item.MediaType,
			Caption:       item.Caption,
			Location:      item.Location,
			TaggedUserIDs: item.TaggedUserIDs,
		}
	}

	if err := h.storyRepository.CreateStories(c.Request().Context(), stories); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"stories": stories}})
}

// ToggleLike adds the actor to the liker set, or removes it when already
// present. The story owner is notified on the add transition only.
func (h *StoryHandler) ToggleLike(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	storyID := c.Param("id")

	added, err := h.storyRepository.AddLike(c.Request().Context(), storyID, currentUserID)
	if err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !added {
		// Already in the set, so this call is the remove half of the toggle.
		if _, err := h.storyRepository.RemoveLike(c.Request().Context(), storyID, currentUserID); err != nil {
			if err == repositories.ErrStoryNotFound {
				return echo.NewHTTPError(http.StatusNotFound, "Story not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": false}})
	}

	story, err := h.storyRepository.GetStoryByID(c.Request().Context(), storyID)
	if err == nil && story.UserID != currentUserID {
		actor, aerr := h.userRepository.GetUserByID(currentUserID)
		if aerr == nil {
			h.emitter.Emit(notify.StoryLikeNotification(actor, story.UserID, storyID, story.MediaURL))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": true}})
}

// RecordView appends a view record for the caller unless one exists. Repeat
// views are acknowledged without writing anything.
func (h *StoryHandler) RecordView(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	storyID := c.Param("id")

	view := models.StoryView{UserID: currentUserID, ViewedAt: time.Now()}
	if err := h.storyRepository.RecordView(c.Request().Context(), storyID, view); err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"viewed": true}})
}

// ViewerResponse is one entry in the owner-facing viewer list
type ViewerResponse struct {
	Viewer   models.UserCompact `json:"viewer"`
	ViewedAt string             `json:"viewed_at"`
	IsLiker  bool               `json:"is_liker"`
}

// ListViewers returns who viewed the story, owner only
func (h *StoryHandler) ListViewers(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	storyID := c.Param("id")

	story, err := h.storyRepository.GetStoryByID(c.Request().Context(), storyID)
	if err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !story.IsOwnedBy(currentUserID) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the story owner can see viewers")
	}

	viewerIDs := make([]uint, len(story.Views))
	for i, v := range story.Views {
		viewerIDs[i] = v.UserID
	}
	userMap := buildUserMap(h.userRepository, viewerIDs)

	viewers := make([]ViewerResponse, len(story.Views))
	for i, v := range story.Views {
		viewers[i] = ViewerResponse{
			Viewer:   userMap[v.UserID],
			ViewedAt: v.ViewedAt.Format(time.RFC3339),
			IsLiker:  story.IsLikedBy(v.UserID),
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"viewers": viewers}})
}

// DeleteStory deletes a story, permitted for the owner or an admin. Reports
// and notifications referencing the story are cleaned up in cascade. An admin
// deleting someone else's story additionally issues a warning notification
// with a snapshot of the removed media.
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	storyID := c.Param("id")

	story, err := h.storyRepository.GetStoryByID(c.Request().Context(), storyID)
	if err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isAdmin := isAdminFromContext(c)
	if !story.IsOwnedBy(currentUserID) && !isAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Not allowed to delete this story")
	}

	if err := h.storyRepository.DeleteStory(c.Request().Context(), storyID); err != nil {
		if err == repositories.ErrStoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Story not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Cascade cleanup. Failures here leave stale rows but never the story.
	h.reportRepository.DeleteReportsByTarget(storyID, models.TargetStory)
	h.notificationRepository.DeleteByCriteria(repositories.NotificationFilter{
		TargetID:   storyID,
		TargetType: models.TargetStory,
	})

	if isAdmin && !story.IsOwnedBy(currentUserID) {
		h.emitter.Emit(notify.WarningNotification(story.UserID, storyID, models.TargetStory, story.MediaURL, c.QueryParam("reason")))
	}

	return c.NoContent(http.StatusNoContent)
}
