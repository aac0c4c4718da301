package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/repositories"
	"github.com/nahid71/vibegram/backend/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// In-memory repository fakes backing the handler tests. Each fake implements
// the same contract as its store-backed counterpart, including the not-found
// sentinels and the first-write-wins semantics of likes and views.

type memStoryRepo struct {
	mu      sync.Mutex
	stories map[string]*models.Story
	ttl     time.Duration
}

func newMemStoryRepo() *memStoryRepo {
	return &memStoryRepo{
		stories: make(map[string]*models.Story),
		ttl:     24 * time.Hour,
	}
}

// seed inserts a story directly, bypassing batch semantics. Returns its hex id.
func (r *memStoryRepo) seed(s models.Story) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = s.CreatedAt.Add(r.ttl)
	}
	if s.LikeUserIDs == nil {
		s.LikeUserIDs = []uint{}
	}
	if s.Views == nil {
		s.Views = []models.StoryView{}
	}
	r.stories[s.ID.Hex()] = &s
	return s.ID.Hex()
}

func (r *memStoryRepo) live(id string) *models.Story {
	s, ok := r.stories[id]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil
	}
	return s
}

func (r *memStoryRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *memStoryRepo) CreateStories(ctx context.Context, stories []*models.Story) error {
	if len(stories) == 0 {
		return fmt.Errorf("empty story batch")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range stories {
		s.ID = primitive.NewObjectID()
		s.CreatedAt = now
		s.ExpiresAt = now.Add(r.ttl)
		if s.LikeUserIDs == nil {
			s.LikeUserIDs = []uint{}
		}
		if s.Views == nil {
			s.Views = []models.StoryView{}
		}
		r.stories[s.ID.Hex()] = s
	}
	return nil
}

func (r *memStoryRepo) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.live(id)
	if s == nil {
		return nil, repositories.ErrStoryNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memStoryRepo) GetStoriesByUserIDs(ctx context.Context, userIDs []uint) ([]models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []models.Story
	for _, s := range r.stories {
		if wanted[s.UserID] && s.ExpiresAt.After(time.Now()) {
			out = append(out, *s)
		}
	}
	// Newest first, matching the store's sort.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *memStoryRepo) AddLike(ctx context.Context, storyID string, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.live(storyID)
	if s == nil {
		return false, repositories.ErrStoryNotFound
	}
	for _, id := range s.LikeUserIDs {
		if id == userID {
			return false, nil
		}
	}
	s.LikeUserIDs = append(s.LikeUserIDs, userID)
	return true, nil
}

func (r *memStoryRepo) RemoveLike(ctx context.Context, storyID string, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.live(storyID)
	if s == nil {
		return false, repositories.ErrStoryNotFound
	}
	for i, id := range s.LikeUserIDs {
		if id == userID {
			s.LikeUserIDs = append(s.LikeUserIDs[:i], s.LikeUserIDs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memStoryRepo) RecordView(ctx context.Context, storyID string, view models.StoryView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.live(storyID)
	if s == nil {
		return repositories.ErrStoryNotFound
	}
	for _, v := range s.Views {
		if v.UserID == view.UserID {
			return nil
		}
	}
	s.Views = append(s.Views, view)
	return nil
}

func (r *memStoryRepo) DeleteStory(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stories[id]; !ok {
		return repositories.ErrStoryNotFound
	}
	delete(r.stories, id)
	return nil
}

func (r *memStoryRepo) DeleteStoriesByUserID(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.stories {
		if s.UserID == userID {
			delete(r.stories, id)
		}
	}
	return nil
}

func (r *memStoryRepo) DeleteExpiredStories(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.stories {
		if !s.ExpiresAt.After(time.Now()) {
			delete(r.stories, id)
		}
	}
	return nil
}

type memUserRepo struct {
	users map[uint]models.User
}

func newMemUserRepo(users ...models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[uint]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) CreateUser(user *models.User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	for _, u := range r.users {
		if u.FirebaseUID == firebaseUID {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) UpdateUser(user *models.User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) DeleteUser(id uint) error {
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) SearchUsers(query string) ([]models.User, error) {
	var out []models.User
	q := strings.ToLower(query)
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.DisplayName), q) {
			out = append(out, u)
		}
	}
	return out, nil
}

type memFollowRepo struct {
	follows  map[[2]uint]bool
	requests map[uint]models.FollowRequest
	nextID   uint

	// when set, DeleteFollow fails with this error to simulate a store outage
	deleteFollowErr error
}

func newMemFollowRepo() *memFollowRepo {
	return &memFollowRepo{
		follows:  make(map[[2]uint]bool),
		requests: make(map[uint]models.FollowRequest),
	}
}

func (r *memFollowRepo) CreateFollow(follow *models.Follow) error {
	key := [2]uint{follow.FollowerID, follow.FollowingID}
	if r.follows[key] {
		return fmt.Errorf("duplicate follow")
	}
	r.follows[key] = true
	return nil
}

func (r *memFollowRepo) DeleteFollow(followerID, followingID uint) error {
	if r.deleteFollowErr != nil {
		return r.deleteFollowErr
	}
	key := [2]uint{followerID, followingID}
	if !r.follows[key] {
		return repositories.ErrFollowNotFound
	}
	delete(r.follows, key)
	return nil
}

func (r *memFollowRepo) IsFollowing(followerID, followingID uint) (bool, error) {
	return r.follows[[2]uint{followerID, followingID}], nil
}

func (r *memFollowRepo) GetFollowers(userID uint) ([]models.User, error) {
	var out []models.User
	for key := range r.follows {
		if key[1] == userID {
			out = append(out, models.User{ID: key[0]})
		}
	}
	return out, nil
}

func (r *memFollowRepo) GetFollowing(userID uint) ([]models.User, error) {
	var out []models.User
	for key := range r.follows {
		if key[0] == userID {
			out = append(out, models.User{ID: key[1]})
		}
	}
	return out, nil
}

func (r *memFollowRepo) GetFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	for key := range r.follows {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

func (r *memFollowRepo) CreateFollowRequest(request *models.FollowRequest) error {
	r.nextID++
	request.ID = r.nextID
	r.requests[request.ID] = *request
	return nil
}

func (r *memFollowRepo) GetFollowRequest(requesterID, targetID uint) (*models.FollowRequest, error) {
	for _, req := range r.requests {
		if req.RequesterID == requesterID && req.TargetID == targetID {
			copied := req
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memFollowRepo) GetFollowRequestByID(id uint) (*models.FollowRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (r *memFollowRepo) DeleteFollowRequest(id uint) error {
	delete(r.requests, id)
	return nil
}

func (r *memFollowRepo) HasPendingRequest(requesterID, targetID uint) (bool, error) {
	for _, req := range r.requests {
		if req.RequesterID == requesterID && req.TargetID == targetID {
			return true, nil
		}
	}
	return false, nil
}

type memNotificationRepo struct {
	rows   []models.Notification
	nextID uint
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) CreateNotification(n *models.Notification) error {
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	r.rows = append(r.rows, *n)
	return nil
}

func (r *memNotificationRepo) GetLatestByRecipientID(recipientID uint, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].RecipientID == recipientID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *memNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	for _, n := range r.rows {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkAllAsRead(recipientID uint) error {
	for i := range r.rows {
		if r.rows[i].RecipientID == recipientID {
			r.rows[i].IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) DeleteByCriteria(filter repositories.NotificationFilter) error {
	kept := r.rows[:0]
	for _, n := range r.rows {
		if matchesFilter(n, filter) {
			continue
		}
		kept = append(kept, n)
	}
	r.rows = kept
	return nil
}

func matchesFilter(n models.Notification, f repositories.NotificationFilter) bool {
	if f.RecipientID != 0 && n.RecipientID != f.RecipientID {
		return false
	}
	if f.ActorID != 0 && n.ActorID != f.ActorID {
		return false
	}
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	if f.TargetID != "" && n.TargetID != f.TargetID {
		return false
	}
	if f.TargetType != "" && n.TargetType != f.TargetType {
		return false
	}
	return true
}

// byType returns the recipient's notifications of the given type
func (r *memNotificationRepo) byType(recipientID uint, typ string) []models.Notification {
	var out []models.Notification
	for _, n := range r.rows {
		if n.RecipientID == recipientID && n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type memReportRepo struct {
	rows []models.Report
}

func newMemReportRepo() *memReportRepo { return &memReportRepo{} }

func (r *memReportRepo) CreateReport(report *models.Report) error {
	r.rows = append(r.rows, *report)
	return nil
}

func (r *memReportRepo) GetReportsByTarget(targetID, targetType string) ([]models.Report, error) {
	var out []models.Report
	for _, rep := range r.rows {
		if rep.TargetID == targetID && rep.TargetType == targetType {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *memReportRepo) DeleteReportsByTarget(targetID, targetType string) error {
	kept := r.rows[:0]
	for _, rep := range r.rows {
		if rep.TargetID == targetID && rep.TargetType == targetType {
			continue
		}
		kept = append(kept, rep)
	}
	r.rows = kept
	return nil
}

// newTestContext builds an echo context with the validator wired in and the
// auth context values a passed JWT middleware would have set.
func newTestContext(method, target, body string, userID uint, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validators.NewValidator()

	httpReq := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		httpReq.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(httpReq, rec)
	if userID != 0 {
		c.Set("userID", userID)
	}
	if role != "" {
		c.Set("userRole", role)
	}
	return c, rec
}
