package models

import "time"

// Report is a user-filed report against a story or post (PostgreSQL).
// Reports are deleted in cascade when the reported content is deleted.
type Report struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ReporterID uint      `json:"reporter_id" gorm:"index"`
	TargetID   string    `json:"target_id" gorm:"index"`
	TargetType string    `json:"target_type" gorm:"size:20"` // "story" or "post"
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateReportRequest defines the request body for filing a report
type CreateReportRequest struct {
	TargetID   string `json:"target_id" validate:"required"`
	TargetType string `json:"target_type" validate:"required,oneof=story post"`
	Reason     string `json:"reason" validate:"required,min=1,max=500"`
}
