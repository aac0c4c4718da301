package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/repositories"
)

// ReportHandler handles moderation report HTTP requests
type ReportHandler struct {
	reportRepository repositories.ReportRepository
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportRepo repositories.ReportRepository) *ReportHandler {
	return &ReportHandler{reportRepository: reportRepo}
}

// RegisterReportRoutes registers report-related routes
func (h *ReportHandler) RegisterReportRoutes(g *echo.Group) {
	g.POST("/reports", h.CreateReport)
	g.GET("/reports", h.GetReports)
}

// CreateReport files a report against a story or post
func (h *ReportHandler) CreateReport(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	report := &models.Report{
		ReporterID: currentUserID,
		TargetID:   req.TargetID,
		TargetType: req.TargetType,
		Reason:     req.Reason,
	}
	if err := h.reportRepository.CreateReport(report); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"report": report}})
}

// GetReports lists reports against a target, admin only
func (h *ReportHandler) GetReports(c echo.Context) error {
	if !isAdminFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
	}

	targetID := c.QueryParam("target_id")
	targetType := c.QueryParam("target_type")
	if targetID == "" || targetType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "target_id and target_type are required")
	}

	reports, err := h.reportRepository.GetReportsByTarget(targetID, targetType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reports": reports}})
}
