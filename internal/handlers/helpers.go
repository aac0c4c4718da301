package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
)

// getUserIDFromContext returns the authenticated user's ID, or 0 when the
// request carries no valid claims.
func getUserIDFromContext(c echo.Context) uint {
	if id, ok := c.Get("userID").(uint); ok {
		return id
	}
	if claims, ok := c.Get("user").(*models.JwtCustomClaims); ok {
		return claims.UserID
	}
	return 0
}

// isAdminFromContext reports whether the authenticated user holds the admin role
func isAdminFromContext(c echo.Context) bool {
	if role, ok := c.Get("userRole").(string); ok {
		return role == models.RoleAdmin
	}
	if claims, ok := c.Get("user").(*models.JwtCustomClaims); ok {
		return claims.Role == models.RoleAdmin
	}
	return false
}

// buildUserMap fetches the given users in one query and keys them by ID
func buildUserMap(userRepo interface {
	GetUsersByIDs(ids []uint) ([]models.User, error)
}, ids []uint) map[uint]models.UserCompact {
	userMap := make(map[uint]models.UserCompact)
	users, err := userRepo.GetUsersByIDs(ids)
	if err != nil {
		return userMap
	}
	for _, u := range users {
		userMap[u.ID] = u.ToCompact()
	}
	return userMap
}

// uniqueIDs deduplicates while preserving first-seen order
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
