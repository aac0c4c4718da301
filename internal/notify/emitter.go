package notify

import (
	"fmt"

	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/realtime"
	"github.com/nahid71/vibegram/backend/internal/repositories"
	"go.uber.org/zap"
)

// NotificationEvent is the event name pushed over the realtime channel
const NotificationEvent = "notification"

// Emitter durably records a social-action notification and pushes it to the
// recipient's active sessions. The persisted row is the source of truth; the
// push is a best-effort fast path whose failure is absorbed.
type Emitter struct {
	notifications repositories.NotificationRepository
	pusher        realtime.Pusher
	log           *zap.SugaredLogger
}

// NewEmitter creates an Emitter. pusher may be nil, in which case no
// real-time delivery is attempted.
func NewEmitter(notifRepo repositories.NotificationRepository, pusher realtime.Pusher, log *zap.SugaredLogger) *Emitter {
	return &Emitter{
		notifications: notifRepo,
		pusher:        pusher,
		log:           log,
	}
}

// Emit persists the notification, then pushes it to the recipient's room.
// Exactly one row is written per call regardless of delivery outcome.
func (e *Emitter) Emit(n *models.Notification) error {
	if err := e.notifications.CreateNotification(n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	if e.pusher != nil {
		e.pusher.EmitToUser(n.RecipientID, NotificationEvent, n)
	}
	e.log.Debugw("notification emitted", "type", n.Type, "recipient_id", n.RecipientID)
	return nil
}

// The constructors below each carry the reference type valid for their kind,
// so the polymorphic target_id never points into the wrong collection.

// FollowNotification targets the followed user; reference is the actor's user id
func FollowNotification(actor *models.User, recipientID uint) *models.Notification {
	return &models.Notification{
		Type:        models.NotificationFollow,
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetID:    fmt.Sprintf("%d", actor.ID),
		TargetType:  models.TargetUser,
		Message:     actor.DisplayName + " started following you",
	}
}

// FollowRequestNotification targets the private account being requested
func FollowRequestNotification(actor *models.User, recipientID uint) *models.Notification {
	return &models.Notification{
		Type:        models.NotificationFollowRequest,
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetID:    fmt.Sprintf("%d", actor.ID),
		TargetType:  models.TargetUser,
		Message:     actor.DisplayName + " requested to follow you",
	}
}

// FollowAcceptNotification tells the requester their request was accepted
func FollowAcceptNotification(actor *models.User, recipientID uint) *models.Notification {
	return &models.Notification{
		Type:        models.NotificationFollowAccept,
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetID:    fmt.Sprintf("%d", actor.ID),
		TargetType:  models.TargetUser,
		Message:     actor.DisplayName + " accepted your follow request",
	}
}

// StoryLikeNotification targets the story owner; reference is the story id
func StoryLikeNotification(actor *models.User, recipientID uint, storyID, mediaURL string) *models.Notification {
	return &models.Notification{
		Type:            models.NotificationStoryLike,
		ActorID:         actor.ID,
		RecipientID:     recipientID,
		TargetID:        storyID,
		TargetType:      models.TargetStory,
		PreviewImageURL: mediaURL,
		Message:         actor.DisplayName + " liked your story",
	}
}

// LikeNotification targets the post owner; reference is the post id
func LikeNotification(actor *models.User, recipientID uint, postID, mediaURL string) *models.Notification {
	return &models.Notification{
		Type:            models.NotificationLike,
		ActorID:         actor.ID,
		RecipientID:     recipientID,
		TargetID:        postID,
		TargetType:      models.TargetPost,
		PreviewImageURL: mediaURL,
		Message:         actor.DisplayName + " liked your post",
	}
}

// CommentNotification targets the post owner; reference is the post id
func CommentNotification(actor *models.User, recipientID uint, postID, mediaURL string) *models.Notification {
	return &models.Notification{
		Type:            models.NotificationComment,
		ActorID:         actor.ID,
		RecipientID:     recipientID,
		TargetID:        postID,
		TargetType:      models.TargetPost,
		PreviewImageURL: mediaURL,
		Message:         actor.DisplayName + " commented on your post",
	}
}

// ShareNotification targets the post owner; reference is the post id
func ShareNotification(actor *models.User, recipientID uint, postID string) *models.Notification {
	return &models.Notification{
		Type:        models.NotificationShare,
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetID:    postID,
		TargetType:  models.TargetPost,
		Message:     actor.DisplayName + " shared your post",
	}
}

// WarningNotification tells a user their content was removed by moderation.
// mediaURL snapshots the removed content so it can still be shown after
// deletion; targetType says which collection the removed id belonged to.
func WarningNotification(recipientID uint, targetID, targetType, mediaURL, reason string) *models.Notification {
	msg := "Your content was removed for violating community guidelines"
	if reason != "" {
		msg = msg + ": " + reason
	}
	return &models.Notification{
		Type:            models.NotificationWarning,
		RecipientID:     recipientID,
		TargetID:        targetID,
		TargetType:      targetType,
		PreviewImageURL: mediaURL,
		Message:         msg,
	}
}
