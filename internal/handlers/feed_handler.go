package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/repositories"
)

// FeedHandler assembles what a user sees: posts by themselves and the
// authors they follow, newest first
type FeedHandler struct {
	postRepository   repositories.PostRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
	likeRepository   repositories.LikeRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
		likeRepository:   likeRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/explore", h.GetExplore)
}

// EnrichedPost is a post with author info and user-specific flags
type EnrichedPost struct {
	models.Post
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"is_liked"`
}

func (h *FeedHandler) enrichPosts(posts []models.Post, currentUserID uint) []EnrichedPost {
	authorIDs := make([]uint, len(posts))
	for i, p := range posts {
		authorIDs[i] = p.UserID
	}
	userMap := buildUserMap(h.userRepository, uniqueIDs(authorIDs))

	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		liked := false
		if currentUserID > 0 {
			liked, _ = h.likeRepository.HasUserLikedPost(p.ID.Hex(), currentUserID)
		}
		enriched[i] = EnrichedPost{
			Post:    p,
			Author:  userMap[p.UserID],
			IsLiked: liked,
		}
	}
	return enriched
}

func paginationParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}

// GetFeed returns enriched posts by the viewer and the authors they follow,
// strictly newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, limit := paginationParams(c)
	skip := int64((page - 1) * limit)

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	authorIDs := append([]uint{currentUserID}, followingIDs...)

	posts, err := h.postRepository.GetPostsByUserIDs(c.Request().Context(), authorIDs, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalItems, err := h.postRepository.CountPostsByUserIDs(c.Request().Context(), authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": h.enrichPosts(posts, currentUserID),
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      totalItems,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetExplore returns posts from accounts the viewer is allowed to discover:
// public accounts plus private accounts the viewer follows
func (h *FeedHandler) GetExplore(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, limit := paginationParams(c)
	skip := int64((page - 1) * limit)

	query := c.QueryParam("q")
	candidates, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	visible := visibleExploreAuthors(currentUserID, candidates, followingIDs)
	authorIDs := make([]uint, len(visible))
	for i, u := range visible {
		authorIDs[i] = u.ID
	}

	posts, err := h.postRepository.GetPostsByUserIDs(c.Request().Context(), authorIDs, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": h.enrichPosts(posts, currentUserID),
		},
	})
}
