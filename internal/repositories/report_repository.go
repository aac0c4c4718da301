package repositories

import (
	"github.com/nahid71/vibegram/backend/internal/models"
	"gorm.io/gorm"
)

// ReportRepository defines the interface for moderation report operations
type ReportRepository interface {
	CreateReport(report *models.Report) error
	GetReportsByTarget(targetID, targetType string) ([]models.Report, error)
	DeleteReportsByTarget(targetID, targetType string) error
}

// PostgresReportRepository implements ReportRepository for PostgreSQL
type PostgresReportRepository struct {
	db *gorm.DB
}

// NewPostgresReportRepository creates a new PostgresReportRepository
func NewPostgresReportRepository(db *gorm.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

// CreateReport files a new report
func (r *PostgresReportRepository) CreateReport(report *models.Report) error {
	return r.db.Create(report).Error
}

// GetReportsByTarget lists reports filed against a story or post
func (r *PostgresReportRepository) GetReportsByTarget(targetID, targetType string) ([]models.Report, error) {
	var reports []models.Report
	if err := r.db.Where("target_id = ? AND target_type = ?", targetID, targetType).Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// DeleteReportsByTarget removes reports in cascade when the reported content is deleted
func (r *PostgresReportRepository) DeleteReportsByTarget(targetID, targetType string) error {
	return r.db.Where("target_id = ? AND target_type = ?", targetID, targetType).Delete(&models.Report{}).Error
}
