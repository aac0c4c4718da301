package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/notify"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type followHandlerFixture struct {
	handler       *FollowHandler
	follows       *memFollowRepo
	users         *memUserRepo
	notifications *memNotificationRepo
}

func newFollowFixture(users ...models.User) *followHandlerFixture {
	f := &followHandlerFixture{
		follows:       newMemFollowRepo(),
		users:         newMemUserRepo(users...),
		notifications: newMemNotificationRepo(),
	}
	emitter := notify.NewEmitter(f.notifications, nil, zap.NewNop().Sugar())
	f.handler = NewFollowHandler(f.follows, f.users, f.notifications, emitter)
	return f
}

func followContext(method string, actorID, targetID uint) echo.Context {
	c, _ := newTestContext(method, "/users/"+strconv.Itoa(int(targetID))+"/follow", "", actorID, "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(targetID)))
	return c
}

func TestFollowPublicUserIsImmediate(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana", DisplayName: "Ana"},
		models.User{ID: 2, Username: "ben", DisplayName: "Ben"},
	)

	c := followContext(http.MethodPost, 1, 2)
	require.NoError(t, f.handler.FollowUser(c))

	following, err := f.follows.IsFollowing(1, 2)
	require.NoError(t, err)
	require.True(t, following)

	notifs := f.notifications.byType(2, models.NotificationFollow)
	require.Len(t, notifs, 1)
	require.Equal(t, uint(1), notifs[0].ActorID)
	require.Equal(t, models.TargetUser, notifs[0].TargetType)
}

func TestFollowPrivateUserFilesRequest(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana", DisplayName: "Ana"},
		models.User{ID: 2, Username: "ben", DisplayName: "Ben", IsPrivate: true},
	)

	c := followContext(http.MethodPost, 1, 2)
	require.NoError(t, f.handler.FollowUser(c))

	following, _ := f.follows.IsFollowing(1, 2)
	require.False(t, following)
	pending, _ := f.follows.HasPendingRequest(1, 2)
	require.True(t, pending)
	require.Len(t, f.notifications.byType(2, models.NotificationFollowRequest), 1)

	// A second follow attempt while the request is pending conflicts.
	c2 := followContext(http.MethodPost, 1, 2)
	err := f.handler.FollowUser(c2)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestFollowSelfIsRejected(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(models.User{ID: 1, Username: "ana"})

	c := followContext(http.MethodPost, 1, 1)
	err := f.handler.FollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestFollowAlreadyFollowingConflicts(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana"},
		models.User{ID: 2, Username: "ben"},
	)
	f.follows.CreateFollow(&models.Follow{FollowerID: 1, FollowingID: 2})

	c := followContext(http.MethodPost, 1, 2)
	err := f.handler.FollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestUnfollowWithdrawsPendingRequest(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana", DisplayName: "Ana"},
		models.User{ID: 2, Username: "ben", IsPrivate: true},
	)

	c := followContext(http.MethodPost, 1, 2)
	require.NoError(t, f.handler.FollowUser(c))
	require.Len(t, f.notifications.byType(2, models.NotificationFollowRequest), 1)

	c2 := followContext(http.MethodDelete, 1, 2)
	require.NoError(t, f.handler.UnfollowUser(c2))

	pending, _ := f.follows.HasPendingRequest(1, 2)
	require.False(t, pending)
	// Withdrawal also removes the stale request notification.
	require.Empty(t, f.notifications.byType(2, models.NotificationFollowRequest))
}

func TestUnfollowNobodyReturns404(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana"},
		models.User{ID: 2, Username: "ben"},
	)

	c := followContext(http.MethodDelete, 1, 2)
	err := f.handler.UnfollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestUnfollowSurfacesStoreFailures(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana"},
		models.User{ID: 2, Username: "ben"},
	)
	f.follows.CreateFollow(&models.Follow{FollowerID: 1, FollowingID: 2})
	f.follows.deleteFollowErr = errors.New("connection reset")

	c := followContext(http.MethodDelete, 1, 2)
	err := f.handler.UnfollowUser(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	// A store outage is not "not following"; it must come back as a 500.
	require.Equal(t, http.StatusInternalServerError, httpErr.Code)

	// The follow row survives the failed call.
	following, _ := f.follows.IsFollowing(1, 2)
	require.True(t, following)
}

func TestAcceptFollowRequestCreatesFollow(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana", DisplayName: "Ana"},
		models.User{ID: 2, Username: "ben", DisplayName: "Ben", IsPrivate: true},
	)

	request := &models.FollowRequest{RequesterID: 1, TargetID: 2}
	require.NoError(t, f.follows.CreateFollowRequest(request))

	c, _ := newTestContext(http.MethodPost, "/follow-requests/1/accept", "", 2, "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(request.ID)))
	require.NoError(t, f.handler.AcceptFollowRequest(c))

	following, _ := f.follows.IsFollowing(1, 2)
	require.True(t, following)
	pending, _ := f.follows.HasPendingRequest(1, 2)
	require.False(t, pending)
	require.Len(t, f.notifications.byType(1, models.NotificationFollowAccept), 1)
}

func TestAcceptFollowRequestIsTargetOnly(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana"},
		models.User{ID: 2, Username: "ben", IsPrivate: true},
		models.User{ID: 3, Username: "eve"},
	)

	request := &models.FollowRequest{RequesterID: 1, TargetID: 2}
	require.NoError(t, f.follows.CreateFollowRequest(request))

	c, _ := newTestContext(http.MethodPost, "/follow-requests/1/accept", "", 3, "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(request.ID)))
	err := f.handler.AcceptFollowRequest(c)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, httpErr.Code)

	pending, _ := f.follows.HasPendingRequest(1, 2)
	require.True(t, pending)
}

func TestRejectFollowRequestRemovesRequestAndNotification(t *testing.T) {
	t.Parallel()
	f := newFollowFixture(
		models.User{ID: 1, Username: "ana", DisplayName: "Ana"},
		models.User{ID: 2, Username: "ben", IsPrivate: true},
	)

	c := followContext(http.MethodPost, 1, 2)
	require.NoError(t, f.handler.FollowUser(c))
	request, err := f.follows.GetFollowRequest(1, 2)
	require.NoError(t, err)

	c2, rec := newTestContext(http.MethodDelete, "/follow-requests/1", "", 2, "")
	c2.SetParamNames("id")
	c2.SetParamValues(strconv.Itoa(int(request.ID)))
	require.NoError(t, f.handler.RejectFollowRequest(c2))
	require.Equal(t, http.StatusNoContent, rec.Code)

	pending, _ := f.follows.HasPendingRequest(1, 2)
	require.False(t, pending)
	require.Empty(t, f.notifications.byType(2, models.NotificationFollowRequest))
	// The requester is not told about the rejection.
	require.Empty(t, f.notifications.byType(1, models.NotificationFollowAccept))
}
