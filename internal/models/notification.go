package models

import "time"

// Notification types
const (
	NotificationMessage       = "message"
	NotificationLike          = "like"
	NotificationComment       = "comment"
	NotificationFollow        = "follow"
	NotificationFollowRequest = "follow_request"
	NotificationFollowAccept  = "follow_accept"
	NotificationStoryLike     = "story_like"
	NotificationAdmin         = "admin"
	NotificationWarning       = "warning"
	NotificationShare         = "share"
)

// Notification target types. TargetID points into a different collection
// depending on the notification type; TargetType makes that explicit.
const (
	TargetPost  = "post"
	TargetStory = "story"
	TargetUser  = "user"
)

// Notification represents a durable record of a social action (PostgreSQL).
// Real-time delivery is best-effort; this row is the source of truth.
type Notification struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Type            string    `json:"type" gorm:"size:30;index"`
	ActorID         uint      `json:"actor_id" gorm:"index"`
	RecipientID     uint      `json:"recipient_id" gorm:"index"`
	TargetID        string    `json:"target_id"`
	TargetType      string    `json:"target_type" gorm:"size:20"`
	PreviewImageURL string    `json:"preview_image_url"` // media snapshot, survives deletion of the target
	Message         string    `json:"message"`
	IsRead          bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}
