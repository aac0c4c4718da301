package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/notify"
	"github.com/nahid71/vibegram/backend/internal/repositories"
	"gorm.io/gorm"
)

// FollowHandler handles follow/unfollow HTTP requests, including the
// private-account request/accept handshake
type FollowHandler struct {
	followRepository       repositories.FollowRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	emitter                *notify.Emitter
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	emitter *notify.Emitter,
) *FollowHandler {
	return &FollowHandler{
		followRepository:       followRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		emitter:                emitter,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.POST("/follow-requests/:id/accept", h.AcceptFollowRequest)
	g.DELETE("/follow-requests/:id", h.RejectFollowRequest)
}

// FollowUser follows a public user directly, or files a follow request when
// the target account is private.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if currentUserID == uint(targetID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	target, err := h.userRepository.GetUserByID(uint(targetID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isFollowing, err := h.followRepository.IsFollowing(currentUserID, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isFollowing {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	if target.IsPrivate {
		hasPending, err := h.followRepository.HasPendingRequest(currentUserID, uint(targetID))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if hasPending {
			return echo.NewHTTPError(http.StatusConflict, "Follow request already pending")
		}

		request := &models.FollowRequest{RequesterID: currentUserID, TargetID: uint(targetID)}
		if err := h.followRepository.CreateFollowRequest(request); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		h.emitter.Emit(notify.FollowRequestNotification(actor, uint(targetID)))

		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requested": true, "following": false}})
	}

	follow := &models.Follow{FollowerID: currentUserID, FollowingID: uint(targetID)}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.emitter.Emit(notify.FollowNotification(actor, uint(targetID)))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user, or withdraws a pending follow request.
// Withdrawing also removes the now-irrelevant follow_request notification.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	err = h.followRepository.DeleteFollow(currentUserID, uint(targetID))
	if err == nil {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
	}
	if err != repositories.ErrFollowNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// No follow row: treat as a request withdrawal.
	request, err := h.followRepository.GetFollowRequest(currentUserID, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Not following this user")
	}
	if err := h.followRepository.DeleteFollowRequest(request.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.notificationRepository.DeleteByCriteria(repositories.NotificationFilter{
		RecipientID: uint(targetID),
		ActorID:     currentUserID,
		Type:        models.NotificationFollowRequest,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requested": false, "following": false}})
}

// AcceptFollowRequest lets the target of a pending request approve it. The
// follow row is created, the request removed, and the requester notified.
func (h *FollowHandler) AcceptFollowRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	request, err := h.followRepository.GetFollowRequestByID(uint(requestID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Follow request not found")
	}
	if request.TargetID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the requested user can accept")
	}

	follow := &models.Follow{FollowerID: request.RequesterID, FollowingID: request.TargetID}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.followRepository.DeleteFollowRequest(request.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err == nil {
		h.emitter.Emit(notify.FollowAcceptNotification(actor, request.RequesterID))
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"accepted": true}})
}

// RejectFollowRequest lets the target dismiss a pending request. The request
// and its notification are removed; the requester is not notified.
func (h *FollowHandler) RejectFollowRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	request, err := h.followRepository.GetFollowRequestByID(uint(requestID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Follow request not found")
	}
	if request.TargetID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the requested user can reject")
	}

	if err := h.followRepository.DeleteFollowRequest(request.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.notificationRepository.DeleteByCriteria(repositories.NotificationFilter{
		RecipientID: currentUserID,
		ActorID:     request.RequesterID,
		Type:        models.NotificationFollowRequest,
	})

	return c.NoContent(http.StatusNoContent)
}

// GetFollowers lists a user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listRelations(c, h.followRepository.GetFollowers)
}

// GetFollowing lists who a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listRelations(c, h.followRepository.GetFollowing)
}

func (h *FollowHandler) listRelations(c echo.Context, fetch func(uint) ([]models.User, error)) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := fetch(uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	compact := make([]models.UserCompact, len(users))
	for i, u := range users {
		compact[i] = u.ToCompact()
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"users": compact, "count": len(compact)}})
}
