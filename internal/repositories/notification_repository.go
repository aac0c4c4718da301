package repositories

import (
	"github.com/nahid71/vibegram/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationFilter narrows cascading deletes to the notifications made
// irrelevant by the triggering action. Zero fields are ignored.
type NotificationFilter struct {
	RecipientID uint
	ActorID     uint
	Type        string
	TargetID    string
	TargetType  string
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetLatestByRecipientID(recipientID uint, limit int) ([]models.Notification, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAllAsRead(recipientID uint) error
	DeleteByCriteria(filter NotificationFilter) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) GetLatestByRecipientID(recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).Count(&count).Error
	return count, err
}

// MarkAllAsRead flips every unread notification for the recipient. Succeeds
// even when nothing was unread.
func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) error {
	return r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).Update("is_read", true).Error
}

// DeleteByCriteria removes notifications matching the filter. Used by
// cascading deletes (content removal, follow-request withdrawal, account
// deletion); it has no user-facing contract of its own.
func (r *postgresNotificationRepository) DeleteByCriteria(filter NotificationFilter) error {
	q := r.db.Model(&models.Notification{})
	if filter.RecipientID != 0 {
		q = q.Where("recipient_id = ?", filter.RecipientID)
	}
	if filter.ActorID != 0 {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.TargetID != "" {
		q = q.Where("target_id = ?", filter.TargetID)
	}
	if filter.TargetType != "" {
		q = q.Where("target_type = ?", filter.TargetType)
	}
	return q.Delete(&models.Notification{}).Error
}
