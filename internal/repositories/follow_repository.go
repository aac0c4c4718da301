package repositories

import (
	"fmt"

	"github.com/nahid71/vibegram/backend/internal/models"
	"gorm.io/gorm"
)

// ErrFollowNotFound is returned when no follow row links the two users
var ErrFollowNotFound = fmt.Errorf("follow relationship not found")

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, followingID uint) error
	IsFollowing(followerID, followingID uint) (bool, error)
	GetFollowers(userID uint) ([]models.User, error)
	GetFollowing(userID uint) ([]models.User, error)
	GetFollowingIDs(userID uint) ([]uint, error)
	CreateFollowRequest(request *models.FollowRequest) error
	GetFollowRequest(requesterID, targetID uint) (*models.FollowRequest, error)
	GetFollowRequestByID(id uint) (*models.FollowRequest, error)
	DeleteFollowRequest(id uint) error
	HasPendingRequest(requesterID, targetID uint) (bool, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

func (r *PostgresFollowRepository) DeleteFollow(followerID, followingID uint) error {
	res := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowers(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("follows").Select("follower_id").Where("following_id = ?", userID),
	).Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowing(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Table("follows").Select("following_id").Where("follower_id = ?", userID),
	).Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) CreateFollowRequest(request *models.FollowRequest) error {
	return r.db.Create(request).Error
}

func (r *PostgresFollowRepository) GetFollowRequest(requesterID, targetID uint) (*models.FollowRequest, error) {
	var request models.FollowRequest
	if err := r.db.Where("requester_id = ? AND target_id = ?", requesterID, targetID).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *PostgresFollowRepository) GetFollowRequestByID(id uint) (*models.FollowRequest, error) {
	var request models.FollowRequest
	if err := r.db.First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *PostgresFollowRepository) DeleteFollowRequest(id uint) error {
	return r.db.Delete(&models.FollowRequest{}, id).Error
}

func (r *PostgresFollowRepository) HasPendingRequest(requesterID, targetID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.FollowRequest{}).Where("requester_id = ? AND target_id = ?", requesterID, targetID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
