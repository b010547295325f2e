package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes mirroring the conditional-update semantics of the real
// repositories: a set mutation reports changed=false when the membership
// already matched, and counters only move together with their set.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		if u.Followers == nil {
			u.Followers = []string{}
		}
		if u.Following == nil {
			u.Following = []string{}
		}
		if u.FollowRequests == nil {
			u.FollowRequests = []string{}
		}
		if u.SavedPosts == nil {
			u.SavedPosts = []string{}
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return repositories.ErrAlreadyExists
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByHandle(_ context.Context, handle string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Handle == handle {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Name = user.Name
	stored.Handle = user.Handle
	stored.AvatarURL = user.AvatarURL
	stored.Bio = user.Bio
	stored.IsPrivate = user.IsPrivate
	return nil
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, _ string) ([]models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) mutateSet(userID string, pick func(*models.User) *[]string, counter func(*models.User) *int64, member string, add bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	set := pick(u)
	idx := -1
	for i, v := range *set {
		if v == member {
			idx = i
			break
		}
	}
	if add {
		if idx >= 0 {
			return false, nil
		}
		*set = append(*set, member)
		if counter != nil {
			*counter(u)++
		}
		return true, nil
	}
	if idx < 0 {
		return false, nil
	}
	*set = append((*set)[:idx], (*set)[idx+1:]...)
	if counter != nil {
		*counter(u)--
	}
	return true, nil
}

func (r *fakeUserRepo) AddFollower(_ context.Context, targetID, followerID string) (bool, error) {
	return r.mutateSet(targetID,
		func(u *models.User) *[]string { return &u.Followers },
		func(u *models.User) *int64 { return &u.Stats.Followers },
		followerID, true)
}

func (r *fakeUserRepo) RemoveFollower(_ context.Context, targetID, followerID string) (bool, error) {
	return r.mutateSet(targetID,
		func(u *models.User) *[]string { return &u.Followers },
		func(u *models.User) *int64 { return &u.Stats.Followers },
		followerID, false)
}

func (r *fakeUserRepo) AddFollowing(_ context.Context, userID, targetID string) (bool, error) {
	return r.mutateSet(userID,
		func(u *models.User) *[]string { return &u.Following },
		func(u *models.User) *int64 { return &u.Stats.Following },
		targetID, true)
}

func (r *fakeUserRepo) RemoveFollowing(_ context.Context, userID, targetID string) (bool, error) {
	return r.mutateSet(userID,
		func(u *models.User) *[]string { return &u.Following },
		func(u *models.User) *int64 { return &u.Stats.Following },
		targetID, false)
}

func (r *fakeUserRepo) AddFollowRequest(_ context.Context, targetID, requesterID string) (bool, error) {
	return r.mutateSet(targetID,
		func(u *models.User) *[]string { return &u.FollowRequests },
		nil, requesterID, true)
}

func (r *fakeUserRepo) RemoveFollowRequest(_ context.Context, targetID, requesterID string) (bool, error) {
	return r.mutateSet(targetID,
		func(u *models.User) *[]string { return &u.FollowRequests },
		nil, requesterID, false)
}

func (r *fakeUserRepo) AddSavedPost(_ context.Context, userID, postID string) (bool, error) {
	return r.mutateSet(userID,
		func(u *models.User) *[]string { return &u.SavedPosts },
		nil, postID, true)
}

func (r *fakeUserRepo) RemoveSavedPost(_ context.Context, userID, postID string) (bool, error) {
	return r.mutateSet(userID,
		func(u *models.User) *[]string { return &u.SavedPosts },
		nil, postID, false)
}

func (r *fakeUserRepo) SetVerified(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (r *fakeUserRepo) AdjustPostCount(_ context.Context, userID string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Stats.Posts += delta
	return nil
}

// get returns the stored user for assertions, bypassing the copy.
func (r *fakeUserRepo) get(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		if p.LikedBy == nil {
			p.LikedBy = []string{}
		}
		r.posts[p.ID.Hex()] = p
	}
	return r
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	r.posts[post.ID.Hex()] = post
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePostRepo) newestFirst(filter func(*models.Post) bool) []models.Post {
	var out []models.Post
	for _, p := range r.posts {
		if filter(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakePostRepo) GetPostsByAuthor(_ context.Context, authorID string, _, _ int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newestFirst(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *fakePostRepo) GetPostsByAuthors(_ context.Context, authorIDs []string, _, _ int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	return r.newestFirst(func(p *models.Post) bool { return authors[p.AuthorID] }), nil
}

func (r *fakePostRepo) GetPostsByIDs(_ context.Context, ids []string) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) GetPostsLikedBy(_ context.Context, userID string, _, _ int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newestFirst(func(p *models.Post) bool { return p.IsLikedBy(userID) }), nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id, authorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok || p.AuthorID != authorID {
		return repositories.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) Like(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if p.IsLikedBy(userID) {
		return false, nil
	}
	p.LikedBy = append(p.LikedBy, userID)
	p.Likes++
	return true, nil
}

func (r *fakePostRepo) Unlike(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	for i, v := range p.LikedBy {
		if v == userID {
			p.LikedBy = append(p.LikedBy[:i], p.LikedBy[i+1:]...)
			p.Likes--
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePostRepo) get(id string) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id]
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*models.Notification
	inserts       chan models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		notifications: make(map[string]*models.Notification),
		inserts:       make(chan models.Notification, 16),
	}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[n.ID]; ok {
		return repositories.ErrAlreadyExists
	}
	n.CreatedAt = time.Now()
	r.notifications[n.ID] = n
	select {
	case r.inserts <- *n:
	default:
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNotificationRepo) GetByRecipient(_ context.Context, recipientID string, _, _ int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) DeleteOlderThan(_ context.Context, cutoff time.Time, types []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match := make(map[string]bool, len(types))
	for _, t := range types {
		match[t] = true
	}
	var count int64
	for id, n := range r.notifications {
		if match[n.Type] && n.CreatedAt.Before(cutoff) {
			delete(r.notifications, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) WatchInserts(_ context.Context) (<-chan models.Notification, error) {
	return r.inserts, nil
}

// byRecipient returns the stored notifications for assertions.
func (r *fakeNotificationRepo) byRecipient(recipientID string) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out
}

// fakeTxn runs the function directly; atomicity is the store's concern.
type fakeTxn struct{}

func (fakeTxn) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
