package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/notify"
	"github.com/nahid71/vibegram/backend/internal/repositories"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	likeRepository         repositories.LikeRepository
	commentRepository      repositories.CommentRepository
	reportRepository       repositories.ReportRepository
	notificationRepository repositories.NotificationRepository
	emitter                *notify.Emitter
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	reportRepo repositories.ReportRepository,
	notifRepo repositories.NotificationRepository,
	emitter *notify.Emitter,
) *PostHandler {
	return &PostHandler{
		postRepository:         postRepo,
		userRepository:         userRepo,
		likeRepository:         likeRepo,
		commentRepository:      commentRepo,
		reportRepository:       reportRepo,
		notificationRepository: notifRepo,
		emitter:                emitter,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/like", h.ToggleLike)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.POST("/posts/:id/share", h.SharePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		UserID:    currentUserID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		VideoURLs: req.VideoURLs,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"post": post}})
}

// GetPost returns a single post with author info
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var author models.UserCompact
	if user, err := h.userRepository.GetUserByID(post.UserID); err == nil {
		author = user.ToCompact()
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"post": post, "author": author}})
}

// UpdatePost edits a post's content or media, owner only
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not allowed to update this post")
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if req.ImageURLs != nil {
		post.ImageURLs = req.ImageURLs
	}
	if req.VideoURLs != nil {
		post.VideoURLs = req.VideoURLs
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"post": post}})
}

// DeletePost deletes a post, permitted for the owner or an admin. Likes,
// comments, reports and notifications referencing the post are cleaned up in
// cascade; an admin removing someone else's post issues a warning
// notification with a media snapshot.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isAdmin := isAdminFromContext(c)
	if post.UserID != currentUserID && !isAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Not allowed to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.likeRepository.DeleteLikesByPostID(postID)
	h.commentRepository.DeleteCommentsByPostID(postID)
	h.reportRepository.DeleteReportsByTarget(postID, models.TargetPost)
	h.notificationRepository.DeleteByCriteria(repositories.NotificationFilter{
		TargetID:   postID,
		TargetType: models.TargetPost,
	})

	if isAdmin && post.UserID != currentUserID {
		h.emitter.Emit(notify.WarningNotification(post.UserID, postID, models.TargetPost, post.FirstMediaURL(), c.QueryParam("reason")))
	}

	return c.NoContent(http.StatusNoContent)
}

// ToggleLike likes the post, or unlikes it when already liked. The owner is
// notified on the like transition only.
func (h *PostHandler) ToggleLike(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	hasLiked, err := h.likeRepository.HasUserLikedPost(postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if hasLiked {
		if err := h.likeRepository.DeleteLike(postID, currentUserID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.postRepository.DecrementLikesCount(c.Request().Context(), postID)
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": false}})
	}

	like := &models.Like{PostID: postID, UserID: currentUserID}
	if err := h.likeRepository.CreateLike(like); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.postRepository.IncrementLikesCount(c.Request().Context(), postID)

	if post.UserID != currentUserID {
		if actor, err := h.userRepository.GetUserByID(currentUserID); err == nil {
			h.emitter.Emit(notify.LikeNotification(actor, post.UserID, postID, post.FirstMediaURL()))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": true}})
}

// CreateComment adds a comment to a post and notifies the post owner
func (h *PostHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  currentUserID,
		Content: req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.postRepository.IncrementCommentsCount(c.Request().Context(), postID)

	if post.UserID != currentUserID {
		if actor, err := h.userRepository.GetUserByID(currentUserID); err == nil {
			h.emitter.Emit(notify.CommentNotification(actor, post.UserID, postID, post.FirstMediaURL()))
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"comment": comment}})
}

// GetComments lists a post's comments, oldest first, with author info
func (h *PostHandler) GetComments(c echo.Context) error {
	postID := c.Param("id")

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authorIDs := make([]uint, len(comments))
	for i, cm := range comments {
		authorIDs[i] = cm.UserID
	}
	userMap := buildUserMap(h.userRepository, uniqueIDs(authorIDs))

	type enrichedComment struct {
		models.Comment
		Author models.UserCompact `json:"author"`
	}
	enriched := make([]enrichedComment, len(comments))
	for i, cm := range comments {
		enriched[i] = enrichedComment{Comment: cm, Author: userMap[cm.UserID]}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"comments": enriched}})
}

// SharePost notifies the post owner their post was shared
func (h *PostHandler) SharePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != currentUserID {
		if actor, err := h.userRepository.GetUserByID(currentUserID); err == nil {
			h.emitter.Emit(notify.ShareNotification(actor, post.UserID, postID))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"shared": true}})
}
